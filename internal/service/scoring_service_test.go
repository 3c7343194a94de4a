package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bekzodm/levelcheck/internal/apperr"
	"github.com/bekzodm/levelcheck/internal/repository"
)

func newScoringFixture(t *testing.T, db *gorm.DB, policy ScoringPolicy) (ScoringService, AnswerService) {
	t.Helper()
	attemptRepo := repository.NewAttemptRepository(db)
	testRepo := repository.NewTestRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	scoring := NewScoringService(attemptRepo, testRepo, answerRepo, policy)
	answers := NewAnswerService(attemptRepo, questionRepo, answerRepo)
	return scoring, answers
}

func TestScoringFinishAllAnswered(t *testing.T) {
	db := openTestDB(t)
	scoring, answers := newScoringFixture(t, db, namedScalePolicy())

	test := seedTest(t, db, "BEGINNER-1", 4)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, test.ID)

	for i := 0; i < 3; i++ {
		qID, oID := correctOption(test, i)
		_, err := answers.Record(attempt.ID, qID, oID)
		require.NoError(t, err)
	}
	qID, oID := wrongOption(test, 3)
	_, err := answers.Record(attempt.ID, qID, oID)
	require.NoError(t, err)

	result, err := scoring.Finish(attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalQuestions)
	assert.Equal(t, 3, result.CorrectCount)
	assert.Equal(t, 1, result.WrongCount)
	assert.Equal(t, 3.0, result.TotalScore)
	assert.Equal(t, 75.0, result.Percent)
	assert.Equal(t, "Pre-Intermediate", result.Level)
}

func TestScoringFinishUnansweredCountAgainstUser(t *testing.T) {
	db := openTestDB(t)
	scoring, answers := newScoringFixture(t, db, namedScalePolicy())

	test := seedTest(t, db, "BEGINNER-1", 4)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, test.ID)

	for i := 0; i < 2; i++ {
		qID, oID := correctOption(test, i)
		_, err := answers.Record(attempt.ID, qID, oID)
		require.NoError(t, err)
	}

	result, err := scoring.Finish(attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalQuestions)
	assert.Equal(t, 2, result.CorrectCount)
	assert.Equal(t, 2, result.WrongCount, "skipped questions count as wrong")
	assert.Equal(t, 50.0, result.Percent)
	assert.Equal(t, "Beginner", result.Level)
}

func TestScoringFinishRoundsPercent(t *testing.T) {
	db := openTestDB(t)
	scoring, answers := newScoringFixture(t, db, namedScalePolicy())

	test := seedTest(t, db, "BEGINNER-1", 3)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, test.ID)

	qID, oID := correctOption(test, 0)
	_, err := answers.Record(attempt.ID, qID, oID)
	require.NoError(t, err)

	result, err := scoring.Finish(attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 33.33, result.Percent)
}

func TestScoringFinishNoAnswers(t *testing.T) {
	db := openTestDB(t)
	scoring, _ := newScoringFixture(t, db, namedScalePolicy())

	test := seedTest(t, db, "BEGINNER-1", 4)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, test.ID)

	result, err := scoring.Finish(attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.CorrectCount)
	assert.Equal(t, 4, result.WrongCount)
	assert.Equal(t, 0.0, result.Percent)
	assert.Equal(t, "Beginner", result.Level)
}

func TestScoringFinishEmptyTest(t *testing.T) {
	db := openTestDB(t)
	scoring, _ := newScoringFixture(t, db, namedScalePolicy())

	test := seedTest(t, db, "EMPTY-1", 0)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, test.ID)

	result, err := scoring.Finish(attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalQuestions)
	assert.Equal(t, 0.0, result.Percent)
	assert.Equal(t, "Beginner", result.Level)
}

func TestScoringFinishWeightedDenominator(t *testing.T) {
	db := openTestDB(t)
	scoring, answers := newScoringFixture(t, db, ScoringPolicy{Scale: levelPresets["named"], WeightedTotal: true})

	// One heavy question (weight 3), one light (weight 1).
	heavy := seedWeightedTest(t, db)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, heavy.ID)

	qID, oID := correctOption(heavy, 0)
	_, err := answers.Record(attempt.ID, qID, oID)
	require.NoError(t, err)

	result, err := scoring.Finish(attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, result.TotalScore)
	assert.Equal(t, 75.0, result.Percent, "denominator is summed weights (4), not question count (2)")
}

func TestScoringFinishMissingAttempt(t *testing.T) {
	db := openTestDB(t)
	scoring, _ := newScoringFixture(t, db, namedScalePolicy())

	_, err := scoring.Finish(12345)
	assert.True(t, apperr.IsNotFound(err))
}

func TestScoringClassifyDelegatesToScale(t *testing.T) {
	db := openTestDB(t)
	scoring, _ := newScoringFixture(t, db, namedScalePolicy())
	assert.Equal(t, "Elementary", scoring.Classify(60))
}
