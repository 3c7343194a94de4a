package model

import (
	"time"

	"gorm.io/gorm"
)

// Option carries the correctness flag and the weight awarded when chosen and
// correct. A question may have several correct options (partial credit).
type Option struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	QuestionID uint           `json:"question_id" gorm:"not null;index"`
	Text       string         `json:"text" gorm:"not null"`
	SortOrder  int            `json:"sort_order" gorm:"not null;default:0"`
	IsCorrect  bool           `json:"is_correct" gorm:"not null;default:false"`
	Weight     float64        `json:"weight" gorm:"not null;default:1"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
