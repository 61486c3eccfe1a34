package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"unique;not null;index" json:"username"`
	FullName     string `gorm:"not null" json:"full_name"`
	Role         string `gorm:"not null" json:"role"` // admin, user
	PasswordHash string `gorm:"not null" json:"-"`
	Active       bool   `gorm:"not null;default:true" json:"active"`
	// Tab visibility permissions mirrored from the desktop client.
	TabCalendar bool      `gorm:"not null;default:true" json:"tab_calendar"`
	TabMaster   bool      `gorm:"not null;default:true" json:"tab_master"`
	TabPlan     bool      `gorm:"not null;default:true" json:"tab_plan"`
	TabControl  bool      `gorm:"not null;default:true" json:"tab_control"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// ProjectAssignment restricts non-admin users to the projects they may log
// time against.
type ProjectAssignment struct {
	UserID     uint      `gorm:"primaryKey" json:"user_id"`
	ProjectID  uint      `gorm:"primaryKey" json:"project_id"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`
}
