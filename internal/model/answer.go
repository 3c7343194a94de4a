package model

import "time"

// Answer holds at most one row per (attempt, question); resubmissions
// overwrite the prior choice. Correctness and the awarded weight are
// denormalized at write time so scoring is a plain aggregation.
type Answer struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	AttemptID    uint      `json:"attempt_id" gorm:"not null;uniqueIndex:uq_answers_attempt_question,priority:1"`
	QuestionID   uint      `json:"question_id" gorm:"not null;uniqueIndex:uq_answers_attempt_question,priority:2"`
	Question     Question  `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	OptionID     uint      `json:"option_id" gorm:"not null"`
	Option       Option    `json:"option,omitempty" gorm:"foreignKey:OptionID"`
	IsCorrect    bool      `json:"is_correct" gorm:"not null;default:false"`
	AwardedScore float64   `json:"awarded_score" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
