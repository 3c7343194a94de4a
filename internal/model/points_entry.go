package model

import "time"

const PointsReasonCompleteTest = "complete_test"

// PointsEntry is append-only. The unique (user, test, reason) index makes the
// grant per-test rather than per-attempt, regardless of retakes or racing
// completions.
type PointsEntry struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:uq_points_user_test_reason,priority:1"`
	TestID      uint      `json:"test_id" gorm:"not null;uniqueIndex:uq_points_user_test_reason,priority:2"`
	AttemptID   uint      `json:"attempt_id" gorm:"not null"`
	Points      int       `json:"points" gorm:"not null"`
	PeriodMonth string    `json:"period_month" gorm:"not null;size:2"` // calendar month bucket, "01".."12"
	Reason      string    `json:"reason" gorm:"not null;uniqueIndex:uq_points_user_test_reason,priority:3"`
	CreatedAt   time.Time `json:"created_at"`
}
