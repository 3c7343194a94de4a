package service

import (
	"github.com/bekzodm/levelcheck/internal/apperr"
	"github.com/bekzodm/levelcheck/internal/model"
	"github.com/bekzodm/levelcheck/internal/repository"
)

// SequencerService picks the next question to present: the smallest
// (sort_order, id) of the test with no answer under the attempt. A pure read
// with no side effects, so redelivered chat messages get the same question
// until an answer changes the exclusion set. Nil means the attempt is done.
type SequencerService interface {
	Next(testID, attemptID uint) (*model.Question, error)
}

type sequencerService struct {
	questionRepo repository.QuestionRepository
}

func NewSequencerService(questionRepo repository.QuestionRepository) SequencerService {
	return &sequencerService{questionRepo: questionRepo}
}

func (s *sequencerService) Next(testID, attemptID uint) (*model.Question, error) {
	question, err := s.questionRepo.FindNextUnanswered(testID, attemptID)
	if err != nil {
		return nil, apperr.Storage(err, "select next question for attempt %d", attemptID)
	}
	return question, nil
}
