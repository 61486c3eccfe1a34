package models

import "time"

// DiaryEntry is a free-form note or reminder attached to a client, project
// or activity (at least one of the three).
type DiaryEntry struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UserID       uint    `gorm:"not null;index" json:"user_id"`
	ClientID     *uint   `gorm:"index" json:"client_id"`
	ProjectID    *uint   `gorm:"index" json:"project_id"`
	ActivityID   *uint   `gorm:"index" json:"activity_id"`
	Content      string  `gorm:"not null" json:"content"`
	ReminderDate *string `json:"reminder_date"`
	Completed    bool    `gorm:"not null;default:false" json:"completed"`
	Priority     int     `gorm:"not null;default:0" json:"priority"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
