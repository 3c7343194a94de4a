package repository

import (
	"errors"

	"github.com/bekzodm/levelcheck/internal/model"
	"gorm.io/gorm"
)

type TestRepository interface {
	Create(test *model.Test) error
	FindByID(id uint) (*model.Test, error)
	FindByIDWithQuestions(id uint) (*model.Test, error)
	FindAllActive() ([]model.Test, error)
	FindAllWithQuestionCount() ([]TestWithQuestionCount, error)
	SetActive(id uint, active bool) error
	CountQuestions(testID uint) (int64, error)
	SumQuestionWeights(testID uint) (float64, error)
}

type TestWithQuestionCount struct {
	model.Test
	QuestionCount int
}

type testRepository struct {
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) Create(test *model.Test) error {
	// Creates nested questions and options in one go via the association tags.
	return r.db.Create(test).Error
}

func (r *testRepository) FindByID(id uint) (*model.Test, error) {
	var test model.Test
	if err := r.db.First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) FindByIDWithQuestions(id uint) (*model.Test, error) {
	var test model.Test
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.sort_order ASC, questions.id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.sort_order ASC, options.id ASC")
		}).
		First(&test, id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) FindAllActive() ([]model.Test, error) {
	var tests []model.Test
	err := r.db.Where("is_active = ?", true).Order("id DESC").Find(&tests).Error
	return tests, err
}

func (r *testRepository) FindAllWithQuestionCount() ([]TestWithQuestionCount, error) {
	var results []TestWithQuestionCount
	err := r.db.Model(&model.Test{}).
		Select("tests.*, (SELECT COUNT(*) FROM questions WHERE questions.test_id = tests.id AND questions.deleted_at IS NULL) as question_count").
		Order("tests.id DESC").
		Scan(&results).Error
	return results, err
}

func (r *testRepository) SetActive(id uint, active bool) error {
	res := r.db.Model(&model.Test{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *testRepository) CountQuestions(testID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Question{}).Where("test_id = ?", testID).Count(&count).Error
	return count, err
}

func (r *testRepository) SumQuestionWeights(testID uint) (float64, error) {
	var total float64
	err := r.db.Model(&model.Question{}).
		Where("test_id = ?", testID).
		Select("COALESCE(SUM(weight), 0)").
		Scan(&total).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	return total, nil
}
