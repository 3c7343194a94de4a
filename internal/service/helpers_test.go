package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bekzodm/levelcheck/internal/event"
	"github.com/bekzodm/levelcheck/internal/model"
)

// openTestDB gives each test its own named in-memory SQLite database so the
// real constraint behaviour (partial unique index, upserts, conditional
// updates) is exercised, not mocked.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Test{},
		&model.Question{},
		&model.Option{},
		&model.User{},
		&model.Attempt{},
		&model.Answer{},
		&model.PointsEntry{},
	))
	return db
}

// seedTest creates an active test with questionCount questions, each with
// one correct option (weight 1) followed by one wrong option.
func seedTest(t *testing.T, db *gorm.DB, code string, questionCount int) *model.Test {
	t.Helper()
	test := &model.Test{Code: code, Name: code, IsActive: true}
	for i := 0; i < questionCount; i++ {
		test.Questions = append(test.Questions, model.Question{
			Text:      "question",
			SortOrder: i + 1,
			Weight:    1,
			Options: []model.Option{
				{Text: "right", SortOrder: 1, IsCorrect: true, Weight: 1},
				{Text: "wrong", SortOrder: 2, IsCorrect: false, Weight: 1},
			},
		})
	}
	require.NoError(t, db.Create(test).Error)
	return test
}

// seedWeightedTest creates an active test with two questions: the first worth
// 3 points, the second worth 1 (summed weights 4).
func seedWeightedTest(t *testing.T, db *gorm.DB) *model.Test {
	t.Helper()
	test := &model.Test{Code: "WEIGHTED-1", Name: "Weighted", IsActive: true}
	test.Questions = []model.Question{
		{
			Text:      "heavy question",
			SortOrder: 1,
			Weight:    3,
			Options: []model.Option{
				{Text: "right", SortOrder: 1, IsCorrect: true, Weight: 3},
				{Text: "wrong", SortOrder: 2, Weight: 3},
			},
		},
		{
			Text:      "light question",
			SortOrder: 2,
			Weight:    1,
			Options: []model.Option{
				{Text: "right", SortOrder: 1, IsCorrect: true, Weight: 1},
				{Text: "wrong", SortOrder: 2, Weight: 1},
			},
		},
	}
	require.NoError(t, db.Create(test).Error)
	return test
}

func seedUser(t *testing.T, db *gorm.DB, tgID int64, isStudent bool) *model.User {
	t.Helper()
	user := &model.User{TgID: tgID, FullName: "Test User", IsStudent: isStudent}
	require.NoError(t, db.Create(user).Error)
	return user
}

// correctOption returns the correct option of the i-th question (0-based).
func correctOption(test *model.Test, i int) (questionID, optionID uint) {
	q := test.Questions[i]
	for _, o := range q.Options {
		if o.IsCorrect {
			return q.ID, o.ID
		}
	}
	return q.ID, 0
}

func wrongOption(test *model.Test, i int) (questionID, optionID uint) {
	q := test.Questions[i]
	for _, o := range q.Options {
		if !o.IsCorrect {
			return q.ID, o.ID
		}
	}
	return q.ID, 0
}

func startAttempt(t *testing.T, db *gorm.DB, userID, testID uint) *model.Attempt {
	t.Helper()
	attempt := &model.Attempt{
		UserID:    userID,
		TestID:    testID,
		Status:    model.AttemptStatusStarted,
		StartedAt: time.Now(),
	}
	require.NoError(t, db.Create(attempt).Error)
	return attempt
}

func namedScalePolicy() ScoringPolicy {
	return ScoringPolicy{Scale: levelPresets["named"]}
}

type nopEvents struct{}

func (nopEvents) AttemptCompleted(context.Context, event.AttemptCompletedEvent) {}
