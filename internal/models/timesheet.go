package models

import "time"

// Work dates cross the API and storage boundary as YYYY-MM-DD strings; the
// engine never reinterprets them except through the date helpers.
type Timesheet struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	WorkDate string `gorm:"not null;index" json:"work_date"`
	// Denormalized triple; coherence is enforced by rate resolution at insert.
	ClientID   uint    `gorm:"not null;index" json:"client_id"`
	ProjectID  uint    `gorm:"not null;index" json:"project_id"`
	ActivityID uint    `gorm:"not null;index" json:"activity_id"`
	Hours      float64 `gorm:"not null" json:"hours"`
	Note       string  `json:"note"`
	// EffectiveRate and Cost are frozen at insert time and never recomputed.
	EffectiveRate float64   `gorm:"not null;default:0" json:"effective_rate"`
	Cost          float64   `gorm:"not null;default:0" json:"cost"`
	CreatedAt     time.Time `json:"created_at"`
}
