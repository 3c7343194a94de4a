package repository

import (
	"time"

	"github.com/bekzodm/levelcheck/internal/model"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	// Upsert inserts the answer or, when a row already exists for the same
	// (attempt_id, question_id), overwrites the chosen option and its
	// denormalized correctness fields. Repeats converge to one row. The write
	// is conditioned on the parent attempt still being started, so an answer
	// racing a completion cannot touch a scored attempt; returns false when
	// the guard rejected it.
	Upsert(answer *model.Answer) (bool, error)
	FindByAttemptID(attemptID uint) ([]model.Answer, error)
	FindByAttemptIDWithDetails(attemptID uint) ([]model.Answer, error)
	CountByAttemptID(attemptID uint) (int64, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Upsert(answer *model.Answer) (bool, error) {
	// INSERT ... SELECT so the attempt-status guard sits inside the statement:
	// when the attempt is no longer started the SELECT yields nothing, no
	// conflict fires, and the whole upsert is a no-op.
	now := time.Now()
	res := r.db.Exec(`
		INSERT INTO answers (attempt_id, question_id, option_id, is_correct, awarded_score, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM attempts WHERE attempts.id = ? AND attempts.status = ?)
		ON CONFLICT (attempt_id, question_id) DO UPDATE SET
			option_id = excluded.option_id,
			is_correct = excluded.is_correct,
			awarded_score = excluded.awarded_score,
			updated_at = excluded.updated_at`,
		answer.AttemptID, answer.QuestionID, answer.OptionID, answer.IsCorrect, answer.AwardedScore, now, now,
		answer.AttemptID, model.AttemptStatusStarted,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *answerRepository) FindByAttemptID(attemptID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.Where("attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}

func (r *answerRepository) FindByAttemptIDWithDetails(attemptID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.
		Preload("Question").
		Preload("Option").
		Where("attempt_id = ?", attemptID).
		Find(&answers).Error
	return answers, err
}

func (r *answerRepository) CountByAttemptID(attemptID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Answer{}).Where("attempt_id = ?", attemptID).Count(&count).Error
	return count, err
}
