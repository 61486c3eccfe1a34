package models

import "time"

// Master data: Client owns Projects, Project owns Activities.
// Hourly rates use 0 as "inherit from parent"; resolution lives in services.
type Client struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	Name       string  `gorm:"unique;not null" json:"name"`
	HourlyRate float64 `gorm:"not null;default:0" json:"hourly_rate"`
	Referent   string  `json:"referent"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
	Notes      string  `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Project struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	ClientID    uint    `gorm:"not null;index;uniqueIndex:idx_project_client_name" json:"client_id"`
	Client      Client  `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	Name        string  `gorm:"not null;uniqueIndex:idx_project_client_name" json:"name"`
	HourlyRate  float64 `gorm:"not null;default:0" json:"hourly_rate"`
	Referent    string  `json:"referent"`
	Description string  `json:"description"`
	Notes       string  `json:"notes"`
	// Closed applies when no project-level schedule governs the project.
	Closed    bool      `gorm:"not null;default:false" json:"closed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Activity struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	ProjectID  uint    `gorm:"not null;index;uniqueIndex:idx_activity_project_name" json:"project_id"`
	Project    Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Name       string  `gorm:"not null;uniqueIndex:idx_activity_project_name" json:"name"`
	HourlyRate float64 `gorm:"not null;default:0" json:"hourly_rate"`
	Notes      string  `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
