package models

import "time"

const (
	ScheduleOpen   = "aperta"
	ScheduleClosed = "chiusa"
)

// Schedule is a planned time-box attached either to a whole project
// (ActivityID nil) or to one activity within it.
type Schedule struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	ProjectID    uint    `gorm:"not null;index" json:"project_id"`
	ActivityID   *uint   `gorm:"index" json:"activity_id"`
	StartDate    string  `gorm:"not null" json:"start_date"`
	EndDate      string  `gorm:"not null" json:"end_date"`
	PlannedHours float64 `gorm:"not null" json:"planned_hours"`
	Budget       float64 `gorm:"not null;default:0" json:"budget"`
	Note         string  `json:"note"`
	Status       string  `gorm:"not null;default:'aperta'" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
