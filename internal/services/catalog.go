package services

import (
	"strings"

	"github.com/diewo77/timesheet-app/internal/models"
	"gorm.io/gorm"
)

// CatalogService manages the master data: clients, projects and activities.
// Deletes cascade over everything the record owns inside one transaction.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService { return &CatalogService{db: db} }

type ClientInput struct {
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourly_rate"`
	Referent   string  `json:"referent"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
	Notes      string  `json:"notes"`
}

func (s *CatalogService) CreateClient(in ClientInput) (models.Client, error) {
	client := models.Client{
		Name:       strings.TrimSpace(in.Name),
		HourlyRate: in.HourlyRate,
		Referent:   strings.TrimSpace(in.Referent),
		Phone:      strings.TrimSpace(in.Phone),
		Email:      strings.TrimSpace(in.Email),
		Notes:      strings.TrimSpace(in.Notes),
	}
	if err := s.db.Create(&client).Error; err != nil {
		return models.Client{}, err
	}
	return client, nil
}

func (s *CatalogService) UpdateClient(clientID uint, in ClientInput) error {
	return s.db.Model(&models.Client{}).Where("id = ?", clientID).
		Updates(map[string]any{
			"name":        strings.TrimSpace(in.Name),
			"hourly_rate": in.HourlyRate,
			"referent":    strings.TrimSpace(in.Referent),
			"phone":       strings.TrimSpace(in.Phone),
			"email":       strings.TrimSpace(in.Email),
			"notes":       strings.TrimSpace(in.Notes),
		}).Error
}

// DeleteClient removes the client with all its projects, activities,
// schedules and timesheets.
func (s *CatalogService) DeleteClient(clientID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", clientID).Delete(&models.Timesheet{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id IN (?)",
			tx.Model(&models.Project{}).Select("id").Where("client_id = ?", clientID),
		).Delete(&models.Schedule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id IN (?)",
			tx.Model(&models.Project{}).Select("id").Where("client_id = ?", clientID),
		).Delete(&models.Activity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", clientID).Delete(&models.Project{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Client{}, clientID).Error
	})
}

func (s *CatalogService) ListClients() ([]models.Client, error) {
	var clients []models.Client
	if err := s.db.Order("name").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

type ProjectInput struct {
	ClientID    uint    `json:"client_id"`
	Name        string  `json:"name"`
	HourlyRate  float64 `json:"hourly_rate"`
	Referent    string  `json:"referent"`
	Description string  `json:"description"`
	Notes       string  `json:"notes"`
}

func (s *CatalogService) CreateProject(in ProjectInput) (models.Project, error) {
	project := models.Project{
		ClientID:    in.ClientID,
		Name:        strings.TrimSpace(in.Name),
		HourlyRate:  in.HourlyRate,
		Referent:    strings.TrimSpace(in.Referent),
		Description: strings.TrimSpace(in.Description),
		Notes:       strings.TrimSpace(in.Notes),
	}
	if err := s.db.Create(&project).Error; err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (s *CatalogService) UpdateProject(projectID uint, in ProjectInput) error {
	return s.db.Model(&models.Project{}).Where("id = ?", projectID).
		Updates(map[string]any{
			"name":        strings.TrimSpace(in.Name),
			"hourly_rate": in.HourlyRate,
			"referent":    strings.TrimSpace(in.Referent),
			"description": strings.TrimSpace(in.Description),
			"notes":       strings.TrimSpace(in.Notes),
		}).Error
}

func (s *CatalogService) SetProjectClosed(projectID uint, closed bool) error {
	return s.db.Model(&models.Project{}).Where("id = ?", projectID).
		Update("closed", closed).Error
}

// DeleteProject removes the project with its activities, schedules and
// timesheets.
func (s *CatalogService) DeleteProject(projectID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Timesheet{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Schedule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Activity{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
}

// ProjectRow is a project joined with its client for listings.
type ProjectRow struct {
	ID          uint    `json:"id"`
	ClientID    uint    `json:"client_id"`
	Name        string  `json:"name"`
	HourlyRate  float64 `json:"hourly_rate"`
	Referent    string  `json:"referent"`
	Description string  `json:"description"`
	Notes       string  `json:"notes"`
	Closed      bool    `json:"closed"`
	ClientName  string  `json:"client_name"`
}

// ListProjects filters by client (0 = all), open-schedule state and user
// assignment (0 = all users). onlyWithOpenSchedules keeps projects that have
// at least one open schedule and no closed project-level schedule.
func (s *CatalogService) ListProjects(clientID uint, onlyWithOpenSchedules bool, userID uint) ([]ProjectRow, error) {
	q := s.db.Table("projects p").
		Select(`p.id, p.client_id, p.name, p.hourly_rate, p.referent, p.description,
			p.notes, p.closed, c.name AS client_name`).
		Joins("JOIN clients c ON c.id = p.client_id")
	if clientID != 0 {
		q = q.Where("p.client_id = ?", clientID)
	}
	if onlyWithOpenSchedules {
		q = q.Where("p.id IN (SELECT DISTINCT project_id FROM schedules WHERE status = ?)", models.ScheduleOpen).
			Where("p.id NOT IN (SELECT DISTINCT project_id FROM schedules WHERE status = ? AND activity_id IS NULL)", models.ScheduleClosed)
	}
	if userID != 0 {
		q = q.Joins("JOIN project_assignments pa ON pa.project_id = p.id").
			Where("pa.user_id = ?", userID)
	}
	var rows []ProjectRow
	if err := q.Order("c.name, p.name").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type ActivityInput struct {
	ProjectID  uint    `json:"project_id"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourly_rate"`
	Notes      string  `json:"notes"`
}

func (s *CatalogService) CreateActivity(in ActivityInput) (models.Activity, error) {
	activity := models.Activity{
		ProjectID:  in.ProjectID,
		Name:       strings.TrimSpace(in.Name),
		HourlyRate: in.HourlyRate,
		Notes:      strings.TrimSpace(in.Notes),
	}
	if err := s.db.Create(&activity).Error; err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

func (s *CatalogService) UpdateActivity(activityID uint, in ActivityInput) error {
	return s.db.Model(&models.Activity{}).Where("id = ?", activityID).
		Updates(map[string]any{
			"name":        strings.TrimSpace(in.Name),
			"hourly_rate": in.HourlyRate,
			"notes":       strings.TrimSpace(in.Notes),
		}).Error
}

// DeleteActivity removes the activity with its schedules and timesheets.
func (s *CatalogService) DeleteActivity(activityID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", activityID).Delete(&models.Timesheet{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", activityID).Delete(&models.Schedule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Activity{}, activityID).Error
	})
}

// ActivityRow is an activity joined with its project for listings.
type ActivityRow struct {
	ID          uint    `json:"id"`
	ProjectID   uint    `json:"project_id"`
	Name        string  `json:"name"`
	HourlyRate  float64 `json:"hourly_rate"`
	Notes       string  `json:"notes"`
	ProjectName string  `json:"project_name"`
}

// ListActivities filters by project (0 = all). onlyWithOpenSchedules keeps
// activities with an open schedule of their own whose project carries no
// closed project-level schedule.
func (s *CatalogService) ListActivities(projectID uint, onlyWithOpenSchedules bool) ([]ActivityRow, error) {
	q := s.db.Table("activities a").
		Select("a.id, a.project_id, a.name, a.hourly_rate, a.notes, p.name AS project_name").
		Joins("JOIN projects p ON p.id = a.project_id")
	if projectID != 0 {
		q = q.Where("a.project_id = ?", projectID)
	}
	if onlyWithOpenSchedules {
		q = q.Where("a.id IN (SELECT DISTINCT activity_id FROM schedules WHERE status = ? AND activity_id IS NOT NULL)", models.ScheduleOpen).
			Where("a.project_id NOT IN (SELECT DISTINCT project_id FROM schedules WHERE status = ? AND activity_id IS NULL)", models.ScheduleClosed)
	}
	var rows []ActivityRow
	if err := q.Order("p.name, a.name").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
