package services

import (
	"errors"
	"strings"
	"time"

	"github.com/diewo77/timesheet-app/internal/models"
	"gorm.io/gorm"
)

// ErrDiaryUnanchored rejects diary entries attached to nothing.
var ErrDiaryUnanchored = errors.New("at least one of client, project or activity is required")

// DiaryService manages notes and reminders hanging off the hierarchy.
type DiaryService struct {
	db *gorm.DB
}

func NewDiaryService(db *gorm.DB) *DiaryService { return &DiaryService{db: db} }

type DiaryInput struct {
	ClientID     *uint   `json:"client_id"`
	ProjectID    *uint   `json:"project_id"`
	ActivityID   *uint   `json:"activity_id"`
	Content      string  `json:"content"`
	ReminderDate *string `json:"reminder_date"`
	Priority     int     `json:"priority"`
}

// DiaryRow is a diary entry with the joined names of whatever it hangs off.
type DiaryRow struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"user_id"`
	ClientID     *uint     `json:"client_id"`
	ProjectID    *uint     `json:"project_id"`
	ActivityID   *uint     `json:"activity_id"`
	Content      string    `json:"content"`
	ReminderDate *string   `json:"reminder_date"`
	Completed    bool      `json:"completed"`
	Priority     int       `json:"priority"`
	CreatedAt    time.Time `json:"created_at"`
	ClientName   string    `json:"client_name"`
	ProjectName  string    `json:"project_name"`
	ActivityName string    `json:"activity_name"`
	UserName     string    `json:"user_name"`
}

// DiaryFilter narrows a listing; zero ids mean no filter.
type DiaryFilter struct {
	ClientID             uint
	ProjectID            uint
	ActivityID           uint
	UserID               uint
	ShowCompleted        bool
	OnlyPendingReminders bool
}

func (s *DiaryService) Create(userID uint, in DiaryInput) (models.DiaryEntry, error) {
	if in.ClientID == nil && in.ProjectID == nil && in.ActivityID == nil {
		return models.DiaryEntry{}, ErrDiaryUnanchored
	}
	entry := models.DiaryEntry{
		UserID:       userID,
		ClientID:     in.ClientID,
		ProjectID:    in.ProjectID,
		ActivityID:   in.ActivityID,
		Content:      strings.TrimSpace(in.Content),
		ReminderDate: in.ReminderDate,
		Priority:     in.Priority,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return models.DiaryEntry{}, err
	}
	return entry, nil
}

func (s *DiaryService) Update(entryID uint, in DiaryInput) error {
	if in.ClientID == nil && in.ProjectID == nil && in.ActivityID == nil {
		return ErrDiaryUnanchored
	}
	return s.db.Model(&models.DiaryEntry{}).Where("id = ?", entryID).
		Updates(map[string]any{
			"client_id":     in.ClientID,
			"project_id":    in.ProjectID,
			"activity_id":   in.ActivityID,
			"content":       strings.TrimSpace(in.Content),
			"reminder_date": in.ReminderDate,
			"priority":      in.Priority,
		}).Error
}

func (s *DiaryService) Delete(entryID uint) error {
	return s.db.Delete(&models.DiaryEntry{}, entryID).Error
}

func (s *DiaryService) ToggleCompleted(entryID uint) error {
	return s.db.Model(&models.DiaryEntry{}).Where("id = ?", entryID).
		Update("completed", gorm.Expr("NOT completed")).Error
}

func (s *DiaryService) Get(entryID uint) (*DiaryRow, error) {
	var row DiaryRow
	res := s.baseQuery().Where("d.id = ?", entryID).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

// List orders by priority, then soonest reminder, then newest.
func (s *DiaryService) List(f DiaryFilter, today time.Time) ([]DiaryRow, error) {
	q := s.baseQuery()
	if f.ClientID != 0 {
		q = q.Where("d.client_id = ?", f.ClientID)
	}
	if f.ProjectID != 0 {
		q = q.Where("d.project_id = ?", f.ProjectID)
	}
	if f.ActivityID != 0 {
		q = q.Where("d.activity_id = ?", f.ActivityID)
	}
	if f.UserID != 0 {
		q = q.Where("d.user_id = ?", f.UserID)
	}
	if !f.ShowCompleted {
		q = q.Where("d.completed = ?", false)
	}
	if f.OnlyPendingReminders {
		q = q.Where("d.reminder_date IS NOT NULL AND d.reminder_date <= ? AND d.completed = ?",
			today.Format(dateLayout), false)
	}
	var rows []DiaryRow
	err := q.Order("d.priority DESC, d.reminder_date IS NULL, d.reminder_date ASC, d.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountPendingReminders counts uncompleted reminders due today or earlier.
// Zero userID counts across all users.
func (s *DiaryService) CountPendingReminders(userID uint, today time.Time) (int64, error) {
	q := s.db.Model(&models.DiaryEntry{}).
		Where("reminder_date IS NOT NULL AND reminder_date <= ? AND completed = ?",
			today.Format(dateLayout), false)
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (s *DiaryService) baseQuery() *gorm.DB {
	return s.db.Table("diary_entries d").
		Select(`d.id, d.user_id, d.client_id, d.project_id, d.activity_id,
			d.content, d.reminder_date, d.completed, d.priority, d.created_at,
			COALESCE(c.name, '') AS client_name,
			COALESCE(p.name, '') AS project_name,
			COALESCE(a.name, '') AS activity_name,
			u.full_name AS user_name`).
		Joins("LEFT JOIN clients c ON c.id = d.client_id").
		Joins("LEFT JOIN projects p ON p.id = d.project_id").
		Joins("LEFT JOIN activities a ON a.id = d.activity_id").
		Joins("JOIN users u ON u.id = d.user_id")
}
