package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bekzodm/levelcheck/internal/apperr"
	"github.com/bekzodm/levelcheck/internal/cache"
	"github.com/bekzodm/levelcheck/internal/dto"
	"github.com/bekzodm/levelcheck/internal/model"
	"github.com/bekzodm/levelcheck/internal/repository"
)

// AdminTestService authors content: a test with its questions and options in
// one request. Content is immutable from the engine's point of view once
// attempts run against it, so authoring is create + activate, not edit.
type AdminTestService interface {
	CreateTest(req dto.TestCreateDTO) (*dto.TestDetailDTO, error)
	SetTestActive(id uint, active bool) error
}

type adminTestService struct {
	testRepo repository.TestRepository
	cache    *cache.Cache
}

func NewAdminTestService(testRepo repository.TestRepository, contentCache *cache.Cache) AdminTestService {
	return &adminTestService{testRepo: testRepo, cache: contentCache}
}

func (s *adminTestService) CreateTest(req dto.TestCreateDTO) (*dto.TestDetailDTO, error) {
	test := model.Test{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	for qi, questionReq := range req.Questions {
		question := model.Question{
			Text:      questionReq.Text,
			SortOrder: questionReq.SortOrder,
			Weight:    questionReq.Weight,
		}
		if question.SortOrder == 0 {
			question.SortOrder = qi + 1
		}
		if question.Weight == 0 {
			question.Weight = 1
		}

		correct := 0
		for oi, optionReq := range questionReq.Options {
			option := model.Option{
				Text:      optionReq.Text,
				SortOrder: optionReq.SortOrder,
				IsCorrect: optionReq.IsCorrect,
				Weight:    optionReq.Weight,
			}
			if option.SortOrder == 0 {
				option.SortOrder = oi + 1
			}
			if option.Weight == 0 {
				option.Weight = 1
			}
			if option.IsCorrect {
				correct++
			}
			question.Options = append(question.Options, option)
		}
		if correct == 0 {
			return nil, apperr.Validationf("question %d has no correct option", qi+1)
		}
		test.Questions = append(test.Questions, question)
	}

	if err := s.testRepo.Create(&test); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflictf("test code %q already exists", req.Code)
		}
		return nil, apperr.Storage(err, "create test %q", req.Code)
	}
	log.Info().Uint("testID", test.ID).Str("code", test.Code).Int("questions", len(test.Questions)).Msg("Test created")

	s.cache.Invalidate(context.Background(), cacheKeyCatalog, fmt.Sprintf(cacheKeyTestFmt, test.ID))

	created, err := s.testRepo.FindByIDWithQuestions(test.ID)
	if err != nil {
		return nil, apperr.Storage(err, "reload test %d", test.ID)
	}
	var detail dto.TestDetailDTO
	copier.Copy(&detail, created)
	return &detail, nil
}

func (s *adminTestService) SetTestActive(id uint, active bool) error {
	err := s.testRepo.SetActive(id, active)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("test %d not found", id)
	}
	if err != nil {
		return apperr.Storage(err, "update test %d", id)
	}
	s.cache.Invalidate(context.Background(), cacheKeyCatalog, fmt.Sprintf(cacheKeyTestFmt, id))
	return nil
}
