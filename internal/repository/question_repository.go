package repository

import (
	"errors"

	"github.com/bekzodm/levelcheck/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	FindByID(id uint) (*model.Question, error)
	FindByTestID(testID uint) ([]model.Question, error)
	// FindNextUnanswered returns the first question of the test, in
	// (sort_order, id) order, that has no answer under the attempt. A nil
	// question means every question is answered.
	FindNextUnanswered(testID, attemptID uint) (*model.Question, error)
	FindOptionByID(optionID uint) (*model.Option, error)
	FindCorrectOptionsByTestID(testID uint) ([]model.Option, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	err := r.db.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("options.sort_order ASC, options.id ASC")
	}).First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByTestID(testID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Where("test_id = ?", testID).
		Order("sort_order ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindNextUnanswered(testID, attemptID uint) (*model.Question, error) {
	answered := r.db.Model(&model.Answer{}).
		Select("question_id").
		Where("attempt_id = ?", attemptID)

	var question model.Question
	err := r.db.
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.sort_order ASC, options.id ASC")
		}).
		Where("test_id = ?", testID).
		Where("id NOT IN (?)", answered).
		Order("sort_order ASC, id ASC").
		First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindOptionByID(optionID uint) (*model.Option, error) {
	var option model.Option
	if err := r.db.First(&option, optionID).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

func (r *questionRepository) FindCorrectOptionsByTestID(testID uint) ([]model.Option, error) {
	var options []model.Option
	err := r.db.
		Joins("JOIN questions ON questions.id = options.question_id").
		Where("questions.test_id = ? AND options.is_correct = ?", testID, true).
		Order("options.sort_order ASC, options.id ASC").
		Find(&options).Error
	return options, err
}
