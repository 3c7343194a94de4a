package model

import "time"

const (
	AttemptStatusStarted   = "started"
	AttemptStatusCompleted = "completed"
)

// Attempt is the central mutable entity. The partial unique index keeps at
// most one started attempt per (user, test) no matter how the check-then-act
// race goes; the score fields are written exactly once, together with the
// started -> completed transition.
type Attempt struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	UserID          uint       `json:"user_id" gorm:"not null;index;uniqueIndex:uq_attempts_active,where:status = 'started'"`
	TestID          uint       `json:"test_id" gorm:"not null;index;uniqueIndex:uq_attempts_active"`
	Test            Test       `json:"test,omitempty" gorm:"foreignKey:TestID"`
	Status          string     `json:"status" gorm:"not null;default:'started'"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	Score           *float64   `json:"score,omitempty"`
	Percent         *float64   `json:"percent,omitempty"`
	LevelGuess      *string    `json:"level_guess,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	Answers         []Answer   `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AttemptFinals are the write-once fields applied with the completed
// transition.
type AttemptFinals struct {
	Score           float64
	Percent         float64
	LevelGuess      string
	FinishedAt      time.Time
	DurationSeconds int
}
