package service

import (
	"errors"

	"github.com/bekzodm/levelcheck/internal/apperr"
	"github.com/bekzodm/levelcheck/internal/model"
	"github.com/bekzodm/levelcheck/internal/repository"
	"gorm.io/gorm"
)

// AnswerService records answers idempotently: one row per (attempt,
// question), resubmissions overwrite. It accepts any valid question of the
// attempt's test: strict turn-taking is a UI convention, not an engine rule.
type AnswerService interface {
	Record(attemptID, questionID, optionID uint) (*model.Answer, error)
}

type answerService struct {
	attemptRepo  repository.AttemptRepository
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
}

func NewAnswerService(
	attemptRepo repository.AttemptRepository,
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
) AnswerService {
	return &answerService{
		attemptRepo:  attemptRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
	}
}

func (s *answerService) Record(attemptID, questionID, optionID uint) (*model.Answer, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("attempt %d not found", attemptID)
	}
	if err != nil {
		return nil, apperr.Storage(err, "load attempt %d", attemptID)
	}
	// A scored attempt is read-only; late or replayed submissions are
	// rejected rather than silently mutating a published result. This check
	// only shapes the error; the upsert itself carries the status guard.
	if attempt.Status != model.AttemptStatusStarted {
		return nil, apperr.NotFoundf("attempt %d is no longer open for answers", attemptID)
	}

	option, err := s.questionRepo.FindOptionByID(optionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("option %d not found", optionID)
	}
	if err != nil {
		return nil, apperr.Storage(err, "load option %d", optionID)
	}
	if option.QuestionID != questionID {
		return nil, apperr.Validationf("option %d does not belong to question %d", optionID, questionID)
	}

	question, err := s.questionRepo.FindByID(questionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("question %d not found", questionID)
	}
	if err != nil {
		return nil, apperr.Storage(err, "load question %d", questionID)
	}
	if question.TestID != attempt.TestID {
		return nil, apperr.Validationf("question %d is not part of test %d", questionID, attempt.TestID)
	}

	awarded := 0.0
	if option.IsCorrect {
		awarded = option.Weight
		if awarded == 0 {
			// Legacy rows with an unset weight count as 1.
			awarded = 1
		}
	}

	answer := &model.Answer{
		AttemptID:    attemptID,
		QuestionID:   questionID,
		OptionID:     optionID,
		IsCorrect:    option.IsCorrect,
		AwardedScore: awarded,
	}
	applied, err := s.answerRepo.Upsert(answer)
	if err != nil {
		return nil, apperr.Storage(err, "record answer for attempt %d question %d", attemptID, questionID)
	}
	if !applied {
		// A completion landed between the status read and the write; the
		// storage guard kept the scored attempt untouched.
		return nil, apperr.NotFoundf("attempt %d is no longer open for answers", attemptID)
	}
	return answer, nil
}
