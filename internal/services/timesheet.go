package services

import (
	"errors"
	"math"

	"github.com/diewo77/timesheet-app/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrProjectClosed rejects logging against a project flagged closed.
	ErrProjectClosed = errors.New("project is closed")
	// ErrNotOwner rejects deleting another user's entry without admin role.
	ErrNotOwner = errors.New("entry belongs to another user")
	// ErrEntryNotFound signals a missing timesheet entry.
	ErrEntryNotFound = errors.New("timesheet entry not found")
)

// TimesheetService records and queries logged hours. Cost is computed from
// the resolved rate once, at insert, so later rate edits never rewrite
// history.
type TimesheetService struct {
	db    *gorm.DB
	rates *RateService
}

func NewTimesheetService(db *gorm.DB, rates *RateService) *TimesheetService {
	return &TimesheetService{db: db, rates: rates}
}

type TimesheetInput struct {
	WorkDate   string  `json:"work_date"`
	ClientID   uint    `json:"client_id"`
	ProjectID  uint    `json:"project_id"`
	ActivityID uint    `json:"activity_id"`
	Hours      float64 `json:"hours"`
	Note       string  `json:"note"`
}

// Add resolves the effective rate for the triple, freezes it with the derived
// cost, and inserts the entry. Closed projects are rejected up front.
func (s *TimesheetService) Add(userID uint, in TimesheetInput) (models.Timesheet, error) {
	closed, err := s.IsProjectClosed(in.ProjectID)
	if err != nil {
		return models.Timesheet{}, err
	}
	if closed {
		return models.Timesheet{}, ErrProjectClosed
	}

	rate, err := s.rates.ResolveEffectiveRate(in.ClientID, in.ProjectID, in.ActivityID)
	if err != nil {
		return models.Timesheet{}, err
	}

	entry := models.Timesheet{
		UserID:        userID,
		WorkDate:      in.WorkDate,
		ClientID:      in.ClientID,
		ProjectID:     in.ProjectID,
		ActivityID:    in.ActivityID,
		Hours:         in.Hours,
		Note:          in.Note,
		EffectiveRate: rate,
		Cost:          math.Round(in.Hours*rate*100) / 100,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return models.Timesheet{}, err
	}
	return entry, nil
}

// Delete removes an entry. Non-admins may only delete their own.
func (s *TimesheetService) Delete(entryID, userID uint, isAdmin bool) error {
	var entry models.Timesheet
	err := s.db.First(&entry, entryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEntryNotFound
	}
	if err != nil {
		return err
	}
	if !isAdmin && entry.UserID != userID {
		return ErrNotOwner
	}
	return s.db.Delete(&entry).Error
}

// DayEntry is one logged entry with its joined hierarchy names.
type DayEntry struct {
	ID           uint    `json:"id"`
	WorkDate     string  `json:"work_date"`
	Hours        float64 `json:"hours"`
	Cost         float64 `json:"cost"`
	Note         string  `json:"note"`
	ClientName   string  `json:"client_name"`
	ProjectName  string  `json:"project_name"`
	ActivityName string  `json:"activity_name"`
	Username     string  `json:"username"`
	FullName     string  `json:"full_name"`
	UserID       uint    `json:"user_id"`
}

// DayEntries lists entries for one work date. Zero userID returns every
// user's entries; otherwise only that user's.
func (s *TimesheetService) DayEntries(workDate string, userID uint) ([]DayEntry, error) {
	q := s.db.Table("timesheets t").
		Select(`t.id, t.work_date, t.hours, t.cost, t.note, t.user_id,
			c.name AS client_name, p.name AS project_name, a.name AS activity_name,
			u.username, u.full_name`).
		Joins("JOIN clients c ON c.id = t.client_id").
		Joins("JOIN projects p ON p.id = t.project_id").
		Joins("JOIN activities a ON a.id = t.activity_id").
		Joins("JOIN users u ON u.id = t.user_id").
		Where("t.work_date = ?", workDate)
	if userID != 0 {
		q = q.Where("t.user_id = ?", userID)
	}
	var rows []DayEntry
	if err := q.Order("c.name, p.name, a.name").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MonthHours maps each day-of-month (two digits, "01".."31") to the summed
// hours, for the calendar heatmap. month is "YYYY-MM".
func (s *TimesheetService) MonthHours(month string, userID uint) (map[string]float64, error) {
	var rows []struct {
		Day   string
		Hours float64
	}
	q := s.db.Table("timesheets").
		Select("substr(work_date, 9, 2) AS day, SUM(hours) AS hours").
		Where("substr(work_date, 1, 7) = ?", month)
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Group("substr(work_date, 9, 2)").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(rows))
	for _, r := range rows {
		out[r.Day] = r.Hours
	}
	return out, nil
}

// IsProjectClosed reports the project's closed flag; unknown projects read
// as open so the insert fails on the foreign key instead.
func (s *TimesheetService) IsProjectClosed(projectID uint) (bool, error) {
	var p models.Project
	err := s.db.Select("closed").First(&p, projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.Closed, nil
}
