package model

import (
	"time"

	"gorm.io/gorm"
)

// Question content is owned by the content store and never mutated by the
// engine. Presentation order is (sort_order, id); Weight only matters to the
// weighted-denominator scoring convention.
type Question struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	TestID    uint           `json:"test_id" gorm:"not null;index"`
	Text      string         `json:"text" gorm:"type:text;not null"`
	SortOrder int            `json:"sort_order" gorm:"not null;default:0"`
	Weight    float64        `json:"weight" gorm:"not null;default:1"`
	Options   []Option       `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
