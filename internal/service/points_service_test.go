package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bekzodm/levelcheck/internal/model"
	"github.com/bekzodm/levelcheck/internal/repository"
)

func newPointsFixture(t *testing.T, db *gorm.DB, policy PointsPolicy) PointsService {
	t.Helper()
	return NewPointsService(repository.NewPointsRepository(db), repository.NewUserRepository(db), policy)
}

func defaultPointsPolicy() PointsPolicy {
	return PointsPolicy{BasePoints: 2, LifetimeCap: 10}
}

func grantPoints(t *testing.T, db *gorm.DB, userID, testID uint, points int) {
	t.Helper()
	entry := &model.PointsEntry{
		UserID:      userID,
		TestID:      testID,
		Points:      points,
		PeriodMonth: time.Now().Format("01"),
		Reason:      model.PointsReasonCompleteTest,
	}
	require.NoError(t, db.Create(entry).Error)
}

func countPointsEntries(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.PointsEntry{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func TestPointsFirstCompletionAwardsBase(t *testing.T) {
	db := openTestDB(t)
	points := newPointsFixture(t, db, defaultPointsPolicy())

	test := seedTest(t, db, "BEGINNER-1", 1)
	user := seedUser(t, db, 100, false)
	attempt := startAttempt(t, db, user.ID, test.ID)

	result, err := points.Award(user.ID, test.ID, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Awarded)
	assert.Equal(t, 2, result.MonthlyTotal)
	assert.Equal(t, 2, result.LifetimeTotal)
}

func TestPointsRetakeEarnsNothing(t *testing.T) {
	db := openTestDB(t)
	points := newPointsFixture(t, db, defaultPointsPolicy())

	test := seedTest(t, db, "BEGINNER-1", 1)
	user := seedUser(t, db, 100, false)
	first := startAttempt(t, db, user.ID, test.ID)

	result, err := points.Award(user.ID, test.ID, first.ID)
	require.NoError(t, err)
	require.Equal(t, 2, result.Awarded)

	// Same test again, different attempt.
	result, err = points.Award(user.ID, test.ID, first.ID+1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Awarded)
	assert.Equal(t, 2, result.LifetimeTotal)
	assert.EqualValues(t, 1, countPointsEntries(t, db, user.ID))
}

func TestPointsDifferentTestAwardsAgain(t *testing.T) {
	db := openTestDB(t)
	points := newPointsFixture(t, db, defaultPointsPolicy())

	testA := seedTest(t, db, "BEGINNER-1", 1)
	testB := seedTest(t, db, "ELEMENTARY-1", 1)
	user := seedUser(t, db, 100, false)

	_, err := points.Award(user.ID, testA.ID, 1)
	require.NoError(t, err)
	result, err := points.Award(user.ID, testB.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Awarded)
	assert.Equal(t, 4, result.LifetimeTotal)
}

func TestPointsLifetimeCapClampsAward(t *testing.T) {
	db := openTestDB(t)
	points := newPointsFixture(t, db, defaultPointsPolicy())

	testA := seedTest(t, db, "BEGINNER-1", 1)
	testB := seedTest(t, db, "ELEMENTARY-1", 1)
	user := seedUser(t, db, 100, false)
	grantPoints(t, db, user.ID, testA.ID, 9)

	result, err := points.Award(user.ID, testB.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Awarded, "only the headroom under the cap is granted")
	assert.Equal(t, 10, result.LifetimeTotal)
}

func TestPointsCapReachedSuppressesWriteByDefault(t *testing.T) {
	db := openTestDB(t)
	points := newPointsFixture(t, db, defaultPointsPolicy())

	testA := seedTest(t, db, "BEGINNER-1", 1)
	testB := seedTest(t, db, "ELEMENTARY-1", 1)
	user := seedUser(t, db, 100, false)
	grantPoints(t, db, user.ID, testA.ID, 10)

	result, err := points.Award(user.ID, testB.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Awarded)
	assert.EqualValues(t, 1, countPointsEntries(t, db, user.ID), "no zero row, the user stays eligible if the cap rises")
}

func TestPointsCapReachedRecordsZeroWhenConfigured(t *testing.T) {
	db := openTestDB(t)
	policy := defaultPointsPolicy()
	policy.RecordZeroAwards = true
	points := newPointsFixture(t, db, policy)

	testA := seedTest(t, db, "BEGINNER-1", 1)
	testB := seedTest(t, db, "ELEMENTARY-1", 1)
	user := seedUser(t, db, 100, false)
	grantPoints(t, db, user.ID, testA.ID, 10)

	result, err := points.Award(user.ID, testB.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Awarded)
	assert.EqualValues(t, 2, countPointsEntries(t, db, user.ID), "the zero grant settles the (user, test) pair for good")

	// The settled pair never pays out later.
	result, err = points.Award(user.ID, testB.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Awarded)
}

func TestPointsStudentsAreUncapped(t *testing.T) {
	db := openTestDB(t)
	points := newPointsFixture(t, db, defaultPointsPolicy())

	testA := seedTest(t, db, "BEGINNER-1", 1)
	testB := seedTest(t, db, "ELEMENTARY-1", 1)
	student := seedUser(t, db, 100, true)
	grantPoints(t, db, student.ID, testA.ID, 10)

	result, err := points.Award(student.ID, testB.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Awarded)
	assert.Equal(t, 12, result.LifetimeTotal)
}

func TestPointsUnknownUserIsTreatedAsCapped(t *testing.T) {
	db := openTestDB(t)
	points := newPointsFixture(t, db, PointsPolicy{BasePoints: 2, LifetimeCap: 0})

	test := seedTest(t, db, "BEGINNER-1", 1)

	result, err := points.Award(4242, test.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Awarded)
}

func TestPointsInsertOnceSwallowsDuplicate(t *testing.T) {
	db := openTestDB(t)
	pointsRepo := repository.NewPointsRepository(db)

	test := seedTest(t, db, "BEGINNER-1", 1)
	user := seedUser(t, db, 100, false)

	entry := func() *model.PointsEntry {
		return &model.PointsEntry{
			UserID:      user.ID,
			TestID:      test.ID,
			Points:      2,
			PeriodMonth: time.Now().Format("01"),
			Reason:      model.PointsReasonCompleteTest,
		}
	}

	inserted, err := pointsRepo.InsertOnce(entry())
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = pointsRepo.InsertOnce(entry())
	require.NoError(t, err)
	assert.False(t, inserted)

	total, err := pointsRepo.LifetimeTotal(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestPointsConcurrentAwardsGrantOnce(t *testing.T) {
	db := openTestDB(t)
	pointsRepo := repository.NewPointsRepository(db)
	points := NewPointsService(pointsRepo, repository.NewUserRepository(db), defaultPointsPolicy())

	test := seedTest(t, db, "BEGINNER-1", 1)
	user := seedUser(t, db, 100, false)

	const workers = 8
	results := make([]*AwardResult, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = points.Award(user.ID, test.ID, uint(i+1))
		}(i)
	}
	wg.Wait()

	granted := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if results[i].Awarded > 0 {
			granted++
			assert.Equal(t, 2, results[i].Awarded)
		}
	}
	assert.Equal(t, 1, granted, "insert-or-nothing lets exactly one racing completion pay out")
	assert.EqualValues(t, 1, countPointsEntries(t, db, user.ID))

	lifetime, err := pointsRepo.LifetimeTotal(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, lifetime)
}

func TestPointsTotalsSplitByMonth(t *testing.T) {
	db := openTestDB(t)
	points := newPointsFixture(t, db, defaultPointsPolicy())

	testA := seedTest(t, db, "BEGINNER-1", 1)
	testB := seedTest(t, db, "ELEMENTARY-1", 1)
	user := seedUser(t, db, 100, false)

	// A grant from another month counts toward lifetime only.
	lastMonth := "01"
	if time.Now().Format("01") == "01" {
		lastMonth = "02"
	}
	require.NoError(t, db.Create(&model.PointsEntry{
		UserID:      user.ID,
		TestID:      testA.ID,
		Points:      3,
		PeriodMonth: lastMonth,
		Reason:      model.PointsReasonCompleteTest,
	}).Error)

	result, err := points.Award(user.ID, testB.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Awarded)
	assert.Equal(t, 2, result.MonthlyTotal)
	assert.Equal(t, 5, result.LifetimeTotal)

	monthly, lifetime, err := points.Totals(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, monthly)
	assert.Equal(t, 5, lifetime)
}
