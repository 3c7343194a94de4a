package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"

	"github.com/bekzodm/levelcheck/internal/apperr"
	"github.com/bekzodm/levelcheck/internal/cache"
	"github.com/bekzodm/levelcheck/internal/dto"
	"github.com/bekzodm/levelcheck/internal/repository"
)

const (
	cacheKeyCatalog = "catalog:active"
	cacheKeyTestFmt = "test:%d"
)

// CatalogService serves content-store reads for browsing: active tests
// grouped by level track, and full test details. Reads go through the redis
// cache; engine correctness paths never touch this service.
type CatalogService interface {
	ListActiveTests(group string) ([]dto.TestSummaryDTO, error)
	GetTestDetails(id uint) (*dto.TestDetailDTO, error)
}

type catalogService struct {
	testRepo repository.TestRepository
	cache    *cache.Cache
}

func NewCatalogService(testRepo repository.TestRepository, contentCache *cache.Cache) CatalogService {
	return &catalogService{testRepo: testRepo, cache: contentCache}
}

func (s *catalogService) ListActiveTests(group string) ([]dto.TestSummaryDTO, error) {
	ctx := context.Background()

	var summaries []dto.TestSummaryDTO
	if !s.cache.GetJSON(ctx, cacheKeyCatalog, &summaries) {
		rows, err := s.testRepo.FindAllWithQuestionCount()
		if err != nil {
			return nil, apperr.Storage(err, "list tests")
		}
		summaries = make([]dto.TestSummaryDTO, 0, len(rows))
		for _, row := range rows {
			if !row.IsActive {
				continue
			}
			summaries = append(summaries, dto.TestSummaryDTO{
				ID:            row.ID,
				Code:          row.Code,
				Name:          row.Name,
				Description:   row.Description,
				Group:         ParseLevelGroup(row.Code, row.Name),
				IsActive:      row.IsActive,
				QuestionCount: row.QuestionCount,
			})
		}
		s.cache.SetJSON(ctx, cacheKeyCatalog, summaries)
	}

	if group == "" {
		return summaries, nil
	}
	group = strings.ToUpper(group)
	filtered := make([]dto.TestSummaryDTO, 0, len(summaries))
	for _, summary := range summaries {
		if summary.Group == group {
			filtered = append(filtered, summary)
		}
	}
	return filtered, nil
}

func (s *catalogService) GetTestDetails(id uint) (*dto.TestDetailDTO, error) {
	ctx := context.Background()
	key := fmt.Sprintf(cacheKeyTestFmt, id)

	var detail dto.TestDetailDTO
	if s.cache.GetJSON(ctx, key, &detail) {
		return &detail, nil
	}

	test, err := s.testRepo.FindByIDWithQuestions(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("test %d not found", id)
	}
	if err != nil {
		return nil, apperr.Storage(err, "load test %d", id)
	}

	copier.Copy(&detail, test)
	s.cache.SetJSON(ctx, key, &detail)
	return &detail, nil
}

// Level tracks a test can belong to, recognized from its code or name.
var levelGroupPatterns = []struct {
	Key string
	Re  *regexp.Regexp
}{
	{"BEGINNER", regexp.MustCompile(`\bBEGINNER\b`)},
	{"ELEMENTARY", regexp.MustCompile(`\bELEMENTARY\b`)},
	{"PRE-INTERMEDIATE", regexp.MustCompile(`\bPRE[\s-]?INTERMEDIATE\b`)},
	{"UPPER-INTERMEDIATE", regexp.MustCompile(`\bUPPER[\s-]?INTERMEDIATE\b`)},
	{"INTERMEDIATE", regexp.MustCompile(`\bINTERMEDIATE\b`)},
	{"ADVANCED", regexp.MustCompile(`\bADVANCED\b`)},
	{"IELTS", regexp.MustCompile(`\bIELTS\b`)},
	{"CEFR", regexp.MustCompile(`\bCEFR\b`)},
}

var cefrMarkRe = regexp.MustCompile(`(^|[^A-Z])(A1|A2|B1|B2|C1|C2)($|[^A-Z0-9])`)

var cefrToGroup = map[string]string{
	"A1": "BEGINNER",
	"A2": "ELEMENTARY",
	"B1": "PRE-INTERMEDIATE",
	"B2": "INTERMEDIATE",
	"C1": "UPPER-INTERMEDIATE",
	"C2": "ADVANCED",
}

// ParseLevelGroup classifies a test into a level track from its code and
// name. Explicit track names win; a bare CEFR mark (e.g. "A2") maps onto the
// corresponding track; anything else is ungrouped.
func ParseLevelGroup(code, name string) string {
	haystack := strings.ToUpper(code + " " + name)
	for _, pattern := range levelGroupPatterns {
		if pattern.Re.MatchString(haystack) {
			return pattern.Key
		}
	}
	if m := cefrMarkRe.FindStringSubmatch(haystack); m != nil {
		return cefrToGroup[m[2]]
	}
	return ""
}
