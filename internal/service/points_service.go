package service

import (
	"errors"
	"time"

	"github.com/bekzodm/levelcheck/config"
	"github.com/bekzodm/levelcheck/internal/apperr"
	"github.com/bekzodm/levelcheck/internal/model"
	"github.com/bekzodm/levelcheck/internal/repository"
	"gorm.io/gorm"
)

type AwardResult struct {
	Awarded       int
	MonthlyTotal  int
	LifetimeTotal int
}

type PointsPolicy struct {
	BasePoints  int
	LifetimeCap int
	// RecordZeroAwards persists a zero-point entry when the cap leaves no
	// headroom, permanently settling the (user, test) grant. Off, the write
	// is suppressed and a later cap raise lets the user catch up.
	RecordZeroAwards bool
}

func NewPointsPolicy(cfg *config.Config) PointsPolicy {
	return PointsPolicy{
		BasePoints:       cfg.Points.BasePoints,
		LifetimeCap:      cfg.Points.LifetimeCap,
		RecordZeroAwards: cfg.Points.RecordZeroAwards,
	}
}

// PointsService grants the one-time-per-test completion credit. Students earn
// unbounded points; everyone else is clamped to the lifetime cap. The unique
// (user, test, reason) index is the real guard; the pre-check only avoids a
// pointless insert on the common repeat path.
type PointsService interface {
	Award(userID, testID, attemptID uint) (*AwardResult, error)
	Totals(userID uint) (monthly, lifetime int, err error)
}

type pointsService struct {
	pointsRepo repository.PointsRepository
	userRepo   repository.UserRepository
	policy     PointsPolicy
	now        func() time.Time
}

func NewPointsService(pointsRepo repository.PointsRepository, userRepo repository.UserRepository, policy PointsPolicy) PointsService {
	return &pointsService{
		pointsRepo: pointsRepo,
		userRepo:   userRepo,
		policy:     policy,
		now:        time.Now,
	}
}

func (s *pointsService) Award(userID, testID, attemptID uint) (*AwardResult, error) {
	monthKey := s.now().Format("01")

	granted, err := s.pointsRepo.HasGrant(userID, testID, model.PointsReasonCompleteTest)
	if err != nil {
		return nil, apperr.Storage(err, "check points grant for user %d test %d", userID, testID)
	}
	if granted {
		// Retakes earn nothing: the grant is per-test, not per-attempt.
		return s.zeroResult(userID, monthKey)
	}

	award := s.policy.BasePoints

	user, err := s.userRepo.FindByID(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Storage(err, "load user %d", userID)
	}
	capped := user == nil || !user.IsStudent
	if capped {
		lifetime, err := s.pointsRepo.LifetimeTotal(userID)
		if err != nil {
			return nil, apperr.Storage(err, "sum lifetime points for user %d", userID)
		}
		remaining := s.policy.LifetimeCap - lifetime
		if remaining < 0 {
			remaining = 0
		}
		if award > remaining {
			award = remaining
		}
		if award <= 0 && !s.policy.RecordZeroAwards {
			return s.zeroResult(userID, monthKey)
		}
	}

	entry := &model.PointsEntry{
		UserID:      userID,
		TestID:      testID,
		AttemptID:   attemptID,
		Points:      award,
		PeriodMonth: monthKey,
		Reason:      model.PointsReasonCompleteTest,
	}
	inserted, err := s.pointsRepo.InsertOnce(entry)
	if err != nil {
		return nil, apperr.Storage(err, "insert points entry for user %d test %d", userID, testID)
	}
	if !inserted {
		// Lost the race against a concurrent completion of the same test.
		return s.zeroResult(userID, monthKey)
	}

	monthly, lifetime, err := s.Totals(userID)
	if err != nil {
		return nil, err
	}
	return &AwardResult{Awarded: award, MonthlyTotal: monthly, LifetimeTotal: lifetime}, nil
}

func (s *pointsService) Totals(userID uint) (int, int, error) {
	monthKey := s.now().Format("01")
	monthly, err := s.pointsRepo.MonthlyTotal(userID, monthKey)
	if err != nil {
		return 0, 0, apperr.Storage(err, "sum monthly points for user %d", userID)
	}
	lifetime, err := s.pointsRepo.LifetimeTotal(userID)
	if err != nil {
		return 0, 0, apperr.Storage(err, "sum lifetime points for user %d", userID)
	}
	return monthly, lifetime, nil
}

func (s *pointsService) zeroResult(userID uint, monthKey string) (*AwardResult, error) {
	monthly, err := s.pointsRepo.MonthlyTotal(userID, monthKey)
	if err != nil {
		return nil, apperr.Storage(err, "sum monthly points for user %d", userID)
	}
	lifetime, err := s.pointsRepo.LifetimeTotal(userID)
	if err != nil {
		return nil, apperr.Storage(err, "sum lifetime points for user %d", userID)
	}
	return &AwardResult{Awarded: 0, MonthlyTotal: monthly, LifetimeTotal: lifetime}, nil
}
