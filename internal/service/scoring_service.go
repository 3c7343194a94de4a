package service

import (
	"errors"
	"math"

	"github.com/bekzodm/levelcheck/internal/apperr"
	"github.com/bekzodm/levelcheck/internal/repository"
	"gorm.io/gorm"
)

// ScoreResult is the write-once payload applied with the completed
// transition and handed to the report renderer.
type ScoreResult struct {
	TotalQuestions int
	TotalScore     float64
	CorrectCount   int
	WrongCount     int
	Percent        float64
	Level          string
}

type ScoringPolicy struct {
	Scale LevelScale
	// WeightedTotal switches the percent denominator from the plain question
	// count to the summed question weights.
	WeightedTotal bool
}

// ScoringService computes the final score of an attempt. It performs no
// writes: the caller feeds the result into the attempt ledger's Complete.
type ScoringService interface {
	Finish(attemptID uint) (*ScoreResult, error)
	Classify(percent float64) string
}

type scoringService struct {
	attemptRepo repository.AttemptRepository
	testRepo    repository.TestRepository
	answerRepo  repository.AnswerRepository
	policy      ScoringPolicy
}

func NewScoringService(
	attemptRepo repository.AttemptRepository,
	testRepo repository.TestRepository,
	answerRepo repository.AnswerRepository,
	policy ScoringPolicy,
) ScoringService {
	return &scoringService{
		attemptRepo: attemptRepo,
		testRepo:    testRepo,
		answerRepo:  answerRepo,
		policy:      policy,
	}
}

func (s *scoringService) Finish(attemptID uint) (*ScoreResult, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("attempt %d not found", attemptID)
	}
	if err != nil {
		return nil, apperr.Storage(err, "load attempt %d", attemptID)
	}

	// The denominator counts every question of the test, answered or not:
	// skipped questions count against the user.
	totalQuestions, err := s.testRepo.CountQuestions(attempt.TestID)
	if err != nil {
		return nil, apperr.Storage(err, "count questions of test %d", attempt.TestID)
	}

	answers, err := s.answerRepo.FindByAttemptID(attemptID)
	if err != nil {
		return nil, apperr.Storage(err, "load answers of attempt %d", attemptID)
	}

	result := &ScoreResult{TotalQuestions: int(totalQuestions)}
	for _, answer := range answers {
		if answer.IsCorrect {
			result.CorrectCount++
			result.TotalScore += answer.AwardedScore
		}
	}
	result.WrongCount = result.TotalQuestions - result.CorrectCount
	if result.WrongCount < 0 {
		result.WrongCount = 0
	}

	denominator := float64(totalQuestions)
	if s.policy.WeightedTotal {
		denominator, err = s.testRepo.SumQuestionWeights(attempt.TestID)
		if err != nil {
			return nil, apperr.Storage(err, "sum question weights of test %d", attempt.TestID)
		}
	}
	if denominator > 0 {
		result.Percent = round2(result.TotalScore / denominator * 100)
	}
	result.Level = s.policy.Scale.Classify(result.Percent)
	return result, nil
}

func (s *scoringService) Classify(percent float64) string {
	return s.policy.Scale.Classify(percent)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
