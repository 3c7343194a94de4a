package repository

import (
	"errors"

	"github.com/bekzodm/levelcheck/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	// Create inserts a new started attempt. The partial unique index on
	// (user_id, test_id) WHERE status='started' makes a duplicate start
	// surface as gorm.ErrDuplicatedKey.
	Create(attempt *model.Attempt) error
	FindByID(id uint) (*model.Attempt, error)
	FindByIDWithTest(id uint) (*model.Attempt, error)
	FindActive(userID, testID uint) (*model.Attempt, error)
	FindAllByUserAndTest(userID, testID uint) ([]model.Attempt, error)
	// CompleteIfStarted applies the terminal fields with a single conditional
	// update and reports whether this caller won the transition.
	CompleteIfStarted(id uint, finals model.AttemptFinals) (bool, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.Attempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDWithTest(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.Preload("Test").First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindActive(userID, testID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Where("user_id = ? AND test_id = ? AND status = ?", userID, testID, model.AttemptStatusStarted).
		Order("id DESC").
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindAllByUserAndTest(userID, testID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.
		Where("user_id = ? AND test_id = ?", userID, testID).
		Order("started_at DESC, id DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) CompleteIfStarted(id uint, finals model.AttemptFinals) (bool, error) {
	res := r.db.Model(&model.Attempt{}).
		Where("id = ? AND status = ?", id, model.AttemptStatusStarted).
		Updates(map[string]interface{}{
			"status":           model.AttemptStatusCompleted,
			"finished_at":      finals.FinishedAt,
			"score":            finals.Score,
			"percent":          finals.Percent,
			"level_guess":      finals.LevelGuess,
			"duration_seconds": finals.DurationSeconds,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
