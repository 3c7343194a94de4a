package service

import (
	"errors"
	"time"

	"github.com/bekzodm/levelcheck/internal/apperr"
	"github.com/bekzodm/levelcheck/internal/model"
	"github.com/bekzodm/levelcheck/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AttemptService is the attempt ledger: it owns the lifecycle from start to
// the single, irreversible completed transition.
type AttemptService interface {
	FindActive(userID, testID uint) (*model.Attempt, error)
	// Start creates a new started attempt, or fails with a conflict when one
	// is already live for the (user, test) pair. The storage layer enforces
	// this with a partial unique index, so a racing double-start cannot slip
	// through the lookup the caller did beforehand.
	Start(userID, testID uint) (*model.Attempt, error)
	// Complete transitions started -> completed and writes the score fields
	// atomically. Calling it again, or concurrently, is a no-op that returns
	// the existing terminal row.
	Complete(attemptID uint, result *ScoreResult) (*model.Attempt, error)
}

type attemptService struct {
	attemptRepo repository.AttemptRepository
	now         func() time.Time
}

func NewAttemptService(attemptRepo repository.AttemptRepository) AttemptService {
	return &attemptService{attemptRepo: attemptRepo, now: time.Now}
}

func (s *attemptService) FindActive(userID, testID uint) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.FindActive(userID, testID)
	if err != nil {
		return nil, apperr.Storage(err, "look up active attempt for user %d test %d", userID, testID)
	}
	return attempt, nil
}

func (s *attemptService) Start(userID, testID uint) (*model.Attempt, error) {
	attempt := &model.Attempt{
		UserID:    userID,
		TestID:    testID,
		Status:    model.AttemptStatusStarted,
		StartedAt: s.now(),
	}
	err := s.attemptRepo.Create(attempt)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflictf("user %d already has a started attempt for test %d", userID, testID)
	}
	if err != nil {
		return nil, apperr.Storage(err, "create attempt for user %d test %d", userID, testID)
	}
	return attempt, nil
}

func (s *attemptService) Complete(attemptID uint, result *ScoreResult) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("attempt %d not found", attemptID)
	}
	if err != nil {
		return nil, apperr.Storage(err, "load attempt %d", attemptID)
	}
	if attempt.Status == model.AttemptStatusCompleted {
		return attempt, nil
	}

	now := s.now()
	finals := model.AttemptFinals{
		Score:           result.TotalScore,
		Percent:         result.Percent,
		LevelGuess:      result.Level,
		FinishedAt:      now,
		DurationSeconds: int(now.Sub(attempt.StartedAt).Seconds()),
	}
	won, err := s.attemptRepo.CompleteIfStarted(attemptID, finals)
	if err != nil {
		return nil, apperr.Storage(err, "complete attempt %d", attemptID)
	}
	if !won {
		// A concurrent completion won the conditional update; theirs stands.
		log.Info().Uint("attemptID", attemptID).Msg("Attempt already completed by a racing call")
	}

	completed, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, apperr.Storage(err, "reload attempt %d", attemptID)
	}
	return completed, nil
}
