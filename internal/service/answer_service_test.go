package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bekzodm/levelcheck/internal/apperr"
	"github.com/bekzodm/levelcheck/internal/model"
	"github.com/bekzodm/levelcheck/internal/repository"
)

func newAnswerFixture(t *testing.T, db *gorm.DB) AnswerService {
	t.Helper()
	return NewAnswerService(
		repository.NewAttemptRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewAnswerRepository(db),
	)
}

func countAnswers(t *testing.T, db *gorm.DB, attemptID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Answer{}).Where("attempt_id = ?", attemptID).Count(&count).Error)
	return count
}

func TestAnswerRecordCorrectAndWrong(t *testing.T) {
	db := openTestDB(t)
	answers := newAnswerFixture(t, db)

	test := seedTest(t, db, "BEGINNER-1", 2)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, test.ID)

	qID, oID := correctOption(test, 0)
	answer, err := answers.Record(attempt.ID, qID, oID)
	require.NoError(t, err)
	assert.True(t, answer.IsCorrect)
	assert.Equal(t, 1.0, answer.AwardedScore)

	qID, oID = wrongOption(test, 1)
	answer, err = answers.Record(attempt.ID, qID, oID)
	require.NoError(t, err)
	assert.False(t, answer.IsCorrect)
	assert.Equal(t, 0.0, answer.AwardedScore)
}

func TestAnswerResubmissionOverwrites(t *testing.T) {
	db := openTestDB(t)
	answers := newAnswerFixture(t, db)

	test := seedTest(t, db, "BEGINNER-1", 2)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, test.ID)

	qID, wrongID := wrongOption(test, 0)
	_, err := answers.Record(attempt.ID, qID, wrongID)
	require.NoError(t, err)

	_, correctID := correctOption(test, 0)
	_, err = answers.Record(attempt.ID, qID, correctID)
	require.NoError(t, err)

	assert.EqualValues(t, 1, countAnswers(t, db, attempt.ID), "one row per (attempt, question)")

	var stored model.Answer
	require.NoError(t, db.Where("attempt_id = ? AND question_id = ?", attempt.ID, qID).First(&stored).Error)
	assert.Equal(t, correctID, stored.OptionID)
	assert.True(t, stored.IsCorrect)
	assert.Equal(t, 1.0, stored.AwardedScore)
}

func TestAnswerIdenticalResubmissionIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	answers := newAnswerFixture(t, db)

	test := seedTest(t, db, "BEGINNER-1", 2)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, test.ID)

	qID, oID := correctOption(test, 0)
	for i := 0; i < 3; i++ {
		_, err := answers.Record(attempt.ID, qID, oID)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, countAnswers(t, db, attempt.ID))
}

func TestAnswerRejectedAfterCompletion(t *testing.T) {
	db := openTestDB(t)
	answers := newAnswerFixture(t, db)
	attempts := NewAttemptService(repository.NewAttemptRepository(db))

	test := seedTest(t, db, "BEGINNER-1", 2)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, test.ID)
	_, err := attempts.Complete(attempt.ID, &ScoreResult{Percent: 0, Level: "Beginner"})
	require.NoError(t, err)

	qID, oID := correctOption(test, 0)
	_, err = answers.Record(attempt.ID, qID, oID)
	assert.True(t, apperr.IsNotFound(err), "a scored attempt is read-only")
	assert.EqualValues(t, 0, countAnswers(t, db, attempt.ID))
}

func TestAnswerOptionMustBelongToQuestion(t *testing.T) {
	db := openTestDB(t)
	answers := newAnswerFixture(t, db)

	test := seedTest(t, db, "BEGINNER-1", 2)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, test.ID)

	q1ID, _ := correctOption(test, 0)
	_, o2ID := correctOption(test, 1)
	_, err := answers.Record(attempt.ID, q1ID, o2ID)
	assert.True(t, apperr.IsValidation(err))
}

func TestAnswerQuestionMustBelongToAttemptTest(t *testing.T) {
	db := openTestDB(t)
	answers := newAnswerFixture(t, db)

	testA := seedTest(t, db, "BEGINNER-1", 1)
	testB := seedTest(t, db, "ELEMENTARY-1", 1)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, testA.ID)

	qID, oID := correctOption(testB, 0)
	_, err := answers.Record(attempt.ID, qID, oID)
	assert.True(t, apperr.IsValidation(err))
}

func TestAnswerUpsertGuardedByCompletion(t *testing.T) {
	db := openTestDB(t)
	answers := newAnswerFixture(t, db)
	answerRepo := repository.NewAnswerRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)

	test := seedTest(t, db, "BEGINNER-1", 2)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, test.ID)

	qID, wrongID := wrongOption(test, 0)
	_, err := answers.Record(attempt.ID, qID, wrongID)
	require.NoError(t, err)

	// A completion lands after a racing submitter already passed the status
	// read; the write itself must still bounce off.
	won, err := attemptRepo.CompleteIfStarted(attempt.ID, model.AttemptFinals{FinishedAt: time.Now()})
	require.NoError(t, err)
	require.True(t, won)

	_, correctID := correctOption(test, 0)
	applied, err := answerRepo.Upsert(&model.Answer{
		AttemptID: attempt.ID, QuestionID: qID, OptionID: correctID, IsCorrect: true, AwardedScore: 1,
	})
	require.NoError(t, err)
	assert.False(t, applied, "the statement-level guard keeps a scored attempt untouched")

	var stored model.Answer
	require.NoError(t, db.Where("attempt_id = ? AND question_id = ?", attempt.ID, qID).First(&stored).Error)
	assert.Equal(t, wrongID, stored.OptionID)
	assert.False(t, stored.IsCorrect)

	// A brand-new answer is rejected the same way, not just overwrites.
	q2ID, o2ID := correctOption(test, 1)
	applied, err = answerRepo.Upsert(&model.Answer{
		AttemptID: attempt.ID, QuestionID: q2ID, OptionID: o2ID, IsCorrect: true, AwardedScore: 1,
	})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.EqualValues(t, 1, countAnswers(t, db, attempt.ID))
}

func TestAnswerUnknownReferences(t *testing.T) {
	db := openTestDB(t)
	answers := newAnswerFixture(t, db)

	test := seedTest(t, db, "BEGINNER-1", 1)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, test.ID)
	qID, _ := correctOption(test, 0)

	_, err := answers.Record(9999, qID, 1)
	assert.True(t, apperr.IsNotFound(err))

	_, err = answers.Record(attempt.ID, qID, 9999)
	assert.True(t, apperr.IsNotFound(err))
}
