package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bekzodm/levelcheck/internal/apperr"
	"github.com/bekzodm/levelcheck/internal/dto"
	"github.com/bekzodm/levelcheck/internal/model"
	"github.com/bekzodm/levelcheck/internal/repository"
)

// UserService covers chat-side identity: registration by Telegram id, phone
// capture, and the profile view with points totals.
type UserService interface {
	Register(req dto.RegisterUserRequest) (*dto.ProfileDTO, error)
	SavePhone(tgID int64, req dto.SavePhoneRequest) error
	Profile(userID uint) (*dto.ProfileDTO, error)
}

type userService struct {
	userRepo repository.UserRepository
	points   PointsService
}

func NewUserService(userRepo repository.UserRepository, points PointsService) UserService {
	return &userService{userRepo: userRepo, points: points}
}

func (s *userService) Register(req dto.RegisterUserRequest) (*dto.ProfileDTO, error) {
	user := &model.User{
		TgID:      req.TgID,
		FullName:  req.FullName,
		Username:  req.Username,
		Lang:      req.Lang,
		IsStudent: req.IsStudent,
	}
	if user.Lang == "" {
		user.Lang = "uz"
	}
	if err := s.userRepo.UpsertByTgID(user); err != nil {
		return nil, apperr.Storage(err, "register user tg %d", req.TgID)
	}
	return s.Profile(user.ID)
}

func (s *userService) SavePhone(tgID int64, req dto.SavePhoneRequest) error {
	err := s.userRepo.SavePhone(tgID, req.Phone, req.FullName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("user with tg id %d not found", tgID)
	}
	if err != nil {
		return apperr.Storage(err, "save phone for tg %d", tgID)
	}
	return nil
}

func (s *userService) Profile(userID uint) (*dto.ProfileDTO, error) {
	user, err := s.userRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("user %d not found", userID)
	}
	if err != nil {
		return nil, apperr.Storage(err, "load user %d", userID)
	}

	monthly, lifetime, err := s.points.Totals(userID)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileDTO{
		ID:            user.ID,
		TgID:          user.TgID,
		FullName:      user.FullName,
		Username:      user.Username,
		Phone:         user.Phone,
		IsStudent:     user.IsStudent,
		MonthlyTotal:  monthly,
		LifetimeTotal: lifetime,
	}, nil
}
