package model

import (
	"time"

	"gorm.io/gorm"
)

type Test struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Code        string         `json:"code" gorm:"not null;uniqueIndex"` // e.g. "BEGINNER-01", "CEFR-A2"
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description,omitempty"`
	IsActive    bool           `json:"is_active" gorm:"not null;default:false;index"`
	Questions   []Question     `json:"questions,omitempty" gorm:"foreignKey:TestID"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
