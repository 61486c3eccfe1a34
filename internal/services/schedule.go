package services

import (
	"errors"
	"time"

	"github.com/diewo77/timesheet-app/internal/models"
	"gorm.io/gorm"
)

// wholeProjectLabel replaces the activity name on schedules that cover the
// entire project (activity_id NULL).
const wholeProjectLabel = "(Tutta la commessa)"

var (
	// ErrActivityMismatch signals a schedule whose activity does not belong
	// to the selected project.
	ErrActivityMismatch = errors.New("activity does not belong to the selected project")
	// ErrInvalidStatus signals a schedule status outside aperta/chiusa.
	ErrInvalidStatus = errors.New("status must be aperta or chiusa")
)

type ScheduleService struct {
	db *gorm.DB
}

func NewScheduleService(db *gorm.DB) *ScheduleService { return &ScheduleService{db: db} }

type ScheduleInput struct {
	ProjectID    uint    `json:"project_id"`
	ActivityID   *uint   `json:"activity_id"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	PlannedHours float64 `json:"planned_hours"`
	Budget       float64 `json:"budget"`
	Note         string  `json:"note"`
}

func (s *ScheduleService) checkActivity(in ScheduleInput) error {
	if in.ActivityID == nil {
		return nil
	}
	var count int64
	err := s.db.Model(&models.Activity{}).
		Where("id = ? AND project_id = ?", *in.ActivityID, in.ProjectID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrActivityMismatch
	}
	return nil
}

func (s *ScheduleService) Create(in ScheduleInput) (models.Schedule, error) {
	if err := s.checkActivity(in); err != nil {
		return models.Schedule{}, err
	}
	sched := models.Schedule{
		ProjectID:    in.ProjectID,
		ActivityID:   in.ActivityID,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		PlannedHours: in.PlannedHours,
		Budget:       in.Budget,
		Note:         in.Note,
		Status:       models.ScheduleOpen,
	}
	if err := s.db.Create(&sched).Error; err != nil {
		return models.Schedule{}, err
	}
	return sched, nil
}

func (s *ScheduleService) Update(scheduleID uint, in ScheduleInput) error {
	if err := s.checkActivity(in); err != nil {
		return err
	}
	return s.db.Model(&models.Schedule{}).Where("id = ?", scheduleID).
		Updates(map[string]any{
			"project_id":    in.ProjectID,
			"activity_id":   in.ActivityID,
			"start_date":    in.StartDate,
			"end_date":      in.EndDate,
			"planned_hours": in.PlannedHours,
			"budget":        in.Budget,
			"note":          in.Note,
		}).Error
}

func (s *ScheduleService) Delete(scheduleID uint) error {
	return s.db.Delete(&models.Schedule{}, scheduleID).Error
}

// SetStatus toggles a schedule between aperta and chiusa without deleting it.
func (s *ScheduleService) SetStatus(scheduleID uint, status string) error {
	if status != models.ScheduleOpen && status != models.ScheduleClosed {
		return ErrInvalidStatus
	}
	return s.db.Model(&models.Schedule{}).Where("id = ?", scheduleID).
		Update("status", status).Error
}

// ScheduleRow is a schedule joined with its client/project/activity names.
type ScheduleRow struct {
	ID           uint    `json:"id"`
	ProjectID    uint    `json:"project_id"`
	ActivityID   *uint   `json:"activity_id"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	PlannedHours float64 `json:"planned_hours"`
	Budget       float64 `json:"budget"`
	Note         string  `json:"note"`
	Status       string  `json:"status"`
	ClientName   string  `json:"client_name"`
	ProjectName  string  `json:"project_name"`
	ActivityName string  `json:"activity_name"`
}

// List returns all schedules with joined names, newest range first.
func (s *ScheduleService) List(onlyOpen bool) ([]ScheduleRow, error) {
	q := s.db.Table("schedules s").
		Select(`s.id, s.project_id, s.activity_id, s.start_date, s.end_date,
			s.planned_hours, s.budget, s.note, s.status,
			c.name AS client_name, p.name AS project_name,
			COALESCE(a.name, '') AS activity_name`).
		Joins("JOIN projects p ON p.id = s.project_id").
		Joins("JOIN clients c ON c.id = p.client_id").
		Joins("LEFT JOIN activities a ON a.id = s.activity_id")
	if onlyOpen {
		q = q.Where("s.status = ?", models.ScheduleOpen)
	}
	var rows []ScheduleRow
	if err := q.Order("s.start_date DESC, c.name, p.name").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ScheduleControl is one schedule's planned-versus-actual snapshot, with
// actuals scoped to the schedule's date range.
type ScheduleControl struct {
	ID              uint            `json:"id"`
	ClientName      string          `json:"client_name"`
	ProjectName     string          `json:"project_name"`
	ActivityName    string          `json:"activity_name"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	PlannedHours    float64         `json:"planned_hours"`
	ActualHours     float64         `json:"actual_hours"`
	RemainingHours  float64         `json:"remaining_hours"`
	RemainingDays   int             `json:"remaining_days"`
	Budget          float64         `json:"budget"`
	ActualCost      float64         `json:"actual_cost"`
	RemainingBudget float64         `json:"remaining_budget"`
	Status          string          `json:"status"`
	Note            string          `json:"note"`
	Timesheets      []TimesheetLeaf `json:"timesheet_details"`
}

// ControlData computes planned/actual/remaining figures for every schedule.
// Activity schedules scope actuals to (project, activity); project schedules
// cover all activities. Both restrict to the schedule's inclusive date range.
func (s *ScheduleService) ControlData(today time.Time) ([]ScheduleControl, error) {
	rows, err := s.List(false)
	if err != nil {
		return nil, err
	}

	result := make([]ScheduleControl, 0, len(rows))
	for _, sched := range rows {
		var actual struct {
			ActualHours float64
			ActualCost  float64
		}
		var details []TimesheetLeaf
		if sched.ActivityID != nil {
			err = s.db.Raw(`
				SELECT COALESCE(SUM(hours), 0) AS actual_hours,
				       COALESCE(SUM(cost), 0) AS actual_cost
				FROM timesheets
				WHERE project_id = ? AND activity_id = ?
				  AND work_date >= ? AND work_date <= ?`,
				sched.ProjectID, *sched.ActivityID, sched.StartDate, sched.EndDate).Scan(&actual).Error
			if err != nil {
				return nil, err
			}
			err = s.db.Raw(`
				SELECT t.id, t.work_date, t.hours, t.cost, t.note, u.username, u.full_name
				FROM timesheets t
				JOIN users u ON u.id = t.user_id
				WHERE t.project_id = ? AND t.activity_id = ?
				  AND t.work_date >= ? AND t.work_date <= ?
				ORDER BY t.work_date DESC`,
				sched.ProjectID, *sched.ActivityID, sched.StartDate, sched.EndDate).Scan(&details).Error
		} else {
			err = s.db.Raw(`
				SELECT COALESCE(SUM(hours), 0) AS actual_hours,
				       COALESCE(SUM(cost), 0) AS actual_cost
				FROM timesheets
				WHERE project_id = ?
				  AND work_date >= ? AND work_date <= ?`,
				sched.ProjectID, sched.StartDate, sched.EndDate).Scan(&actual).Error
			if err != nil {
				return nil, err
			}
			err = s.db.Raw(`
				SELECT t.id, t.work_date, t.hours, t.cost, t.note, u.username, u.full_name,
				       a.name AS activity_name
				FROM timesheets t
				JOIN users u ON u.id = t.user_id
				JOIN activities a ON a.id = t.activity_id
				WHERE t.project_id = ?
				  AND t.work_date >= ? AND t.work_date <= ?
				ORDER BY t.work_date DESC`,
				sched.ProjectID, sched.StartDate, sched.EndDate).Scan(&details).Error
		}
		if err != nil {
			return nil, err
		}

		activityName := sched.ActivityName
		if activityName == "" {
			activityName = wholeProjectLabel
		}
		result = append(result, ScheduleControl{
			ID:              sched.ID,
			ClientName:      sched.ClientName,
			ProjectName:     sched.ProjectName,
			ActivityName:    activityName,
			StartDate:       sched.StartDate,
			EndDate:         sched.EndDate,
			PlannedHours:    sched.PlannedHours,
			ActualHours:     actual.ActualHours,
			RemainingHours:  sched.PlannedHours - actual.ActualHours,
			RemainingDays:   remainingDays(sched.EndDate, today),
			Budget:          sched.Budget,
			ActualCost:      actual.ActualCost,
			RemainingBudget: sched.Budget - actual.ActualCost,
			Status:          sched.Status,
			Note:            sched.Note,
			Timesheets:      details,
		})
	}
	return result, nil
}

// UserHoursRow aggregates one user's hours and cost within a schedule scope.
type UserHoursRow struct {
	Username string  `json:"username"`
	FullName string  `json:"full_name"`
	Hours    float64 `json:"hours"`
	Cost     float64 `json:"cost"`
}

// ScheduleReport is the full per-schedule report: control figures plus the
// day-span breakdown and a per-user aggregation.
type ScheduleReport struct {
	ScheduleControl
	TotalDays   int            `json:"total_days"`
	ElapsedDays int            `json:"elapsed_days"`
	UserHours   []UserHoursRow `json:"user_hours"`
}

// Report builds the report for one schedule, or nil when it does not exist.
func (s *ScheduleService) Report(scheduleID uint, today time.Time) (*ScheduleReport, error) {
	var sched ScheduleRow
	res := s.db.Table("schedules s").
		Select(`s.id, s.project_id, s.activity_id, s.start_date, s.end_date,
			s.planned_hours, s.budget, s.note, s.status,
			c.name AS client_name, p.name AS project_name,
			COALESCE(a.name, '') AS activity_name`).
		Joins("JOIN projects p ON p.id = s.project_id").
		Joins("JOIN clients c ON c.id = p.client_id").
		Joins("LEFT JOIN activities a ON a.id = s.activity_id").
		Where("s.id = ?", scheduleID).
		Scan(&sched)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var actual struct {
		ActualHours float64
		ActualCost  float64
	}
	var details []TimesheetLeaf
	var users []UserHoursRow
	if sched.ActivityID != nil {
		err := s.db.Raw(`
			SELECT COALESCE(SUM(hours), 0) AS actual_hours,
			       COALESCE(SUM(cost), 0) AS actual_cost
			FROM timesheets
			WHERE project_id = ? AND activity_id = ?
			  AND work_date >= ? AND work_date <= ?`,
			sched.ProjectID, *sched.ActivityID, sched.StartDate, sched.EndDate).Scan(&actual).Error
		if err != nil {
			return nil, err
		}
		err = s.db.Raw(`
			SELECT t.id, t.work_date, t.hours, t.cost, t.note, u.username, u.full_name
			FROM timesheets t
			JOIN users u ON u.id = t.user_id
			WHERE t.project_id = ? AND t.activity_id = ?
			  AND t.work_date >= ? AND t.work_date <= ?
			ORDER BY t.work_date DESC`,
			sched.ProjectID, *sched.ActivityID, sched.StartDate, sched.EndDate).Scan(&details).Error
		if err != nil {
			return nil, err
		}
		err = s.db.Raw(`
			SELECT u.username, u.full_name, SUM(t.hours) AS hours, SUM(t.cost) AS cost
			FROM timesheets t
			JOIN users u ON u.id = t.user_id
			WHERE t.project_id = ? AND t.activity_id = ?
			  AND t.work_date >= ? AND t.work_date <= ?
			GROUP BY u.id, u.username, u.full_name
			ORDER BY hours DESC`,
			sched.ProjectID, *sched.ActivityID, sched.StartDate, sched.EndDate).Scan(&users).Error
		if err != nil {
			return nil, err
		}
	} else {
		err := s.db.Raw(`
			SELECT COALESCE(SUM(hours), 0) AS actual_hours,
			       COALESCE(SUM(cost), 0) AS actual_cost
			FROM timesheets
			WHERE project_id = ?
			  AND work_date >= ? AND work_date <= ?`,
			sched.ProjectID, sched.StartDate, sched.EndDate).Scan(&actual).Error
		if err != nil {
			return nil, err
		}
		err = s.db.Raw(`
			SELECT t.id, t.work_date, t.hours, t.cost, t.note, u.username, u.full_name,
			       a.name AS activity_name
			FROM timesheets t
			JOIN users u ON u.id = t.user_id
			JOIN activities a ON a.id = t.activity_id
			WHERE t.project_id = ?
			  AND t.work_date >= ? AND t.work_date <= ?
			ORDER BY t.work_date DESC`,
			sched.ProjectID, sched.StartDate, sched.EndDate).Scan(&details).Error
		if err != nil {
			return nil, err
		}
		err = s.db.Raw(`
			SELECT u.username, u.full_name, SUM(t.hours) AS hours, SUM(t.cost) AS cost
			FROM timesheets t
			JOIN users u ON u.id = t.user_id
			WHERE t.project_id = ?
			  AND t.work_date >= ? AND t.work_date <= ?
			GROUP BY u.id, u.username, u.full_name
			ORDER BY hours DESC`,
			sched.ProjectID, sched.StartDate, sched.EndDate).Scan(&users).Error
		if err != nil {
			return nil, err
		}
	}

	totalDays, elapsedDays := 0, 0
	if start, ok := parseDateOrZero(sched.StartDate); ok {
		if end, ok := parseDateOrZero(sched.EndDate); ok {
			t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
			totalDays = int(end.Sub(start).Hours()/24) + 1
			if !t.Before(start) {
				elapsedDays = int(t.Sub(start).Hours()/24) + 1
			}
		}
	}

	activityName := sched.ActivityName
	if activityName == "" {
		activityName = wholeProjectLabel
	}
	return &ScheduleReport{
		ScheduleControl: ScheduleControl{
			ID:              sched.ID,
			ClientName:      sched.ClientName,
			ProjectName:     sched.ProjectName,
			ActivityName:    activityName,
			StartDate:       sched.StartDate,
			EndDate:         sched.EndDate,
			PlannedHours:    sched.PlannedHours,
			ActualHours:     actual.ActualHours,
			RemainingHours:  sched.PlannedHours - actual.ActualHours,
			RemainingDays:   remainingDays(sched.EndDate, today),
			Budget:          sched.Budget,
			ActualCost:      actual.ActualCost,
			RemainingBudget: sched.Budget - actual.ActualCost,
			Status:          sched.Status,
			Note:            sched.Note,
			Timesheets:      details,
		},
		TotalDays:   totalDays,
		ElapsedDays: elapsedDays,
		UserHours:   users,
	}, nil
}
