package model

import "time"

// User mirrors the chat-side identity. IsStudent selects the points class:
// students earn unbounded points, everyone else is clamped to the lifetime cap.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	TgID      int64     `json:"tg_id" gorm:"not null;uniqueIndex"`
	FullName  string    `json:"full_name,omitempty"`
	Username  string    `json:"username,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Lang      string    `json:"lang,omitempty" gorm:"default:'uz'"`
	IsStudent bool      `json:"is_student" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
