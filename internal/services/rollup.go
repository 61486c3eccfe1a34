package services

import (
	"errors"
	"time"

	"github.com/diewo77/timesheet-app/internal/models"
	"gorm.io/gorm"
)

// TimesheetLeaf is one logged entry under an activity in the rollup tree.
type TimesheetLeaf struct {
	ID           uint    `json:"id"`
	WorkDate     string  `json:"work_date"`
	Hours        float64 `json:"hours"`
	Cost         float64 `json:"cost"`
	Note         string  `json:"note"`
	Username     string  `json:"username"`
	FullName     string  `json:"full_name"`
	ActivityName string  `json:"activity_name,omitempty"`
}

// ActivityNode carries an activity's actuals plus the derived planning
// figures of its own schedule, when one exists. Status is nil when no
// schedule governs the activity, which is distinct from "chiusa".
type ActivityNode struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	HourlyRate      float64         `json:"hourly_rate"`
	ScheduleID      *uint           `json:"schedule_id"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	PlannedHours    float64         `json:"planned_hours"`
	ActualHours     float64         `json:"actual_hours"`
	HoursDiff       float64         `json:"hours_diff"`
	Budget          float64         `json:"budget"`
	ActualCost      float64         `json:"actual_cost"`
	BudgetRemaining float64         `json:"budget_remaining"`
	RemainingDays   int             `json:"remaining_days"`
	WorkingDays     int             `json:"working_days"`
	Status          *string         `json:"status"`
	ScheduleNote    string          `json:"schedule_note"`
	Timesheets      []TimesheetLeaf `json:"timesheets"`
}

type ProjectNode struct {
	ID              uint           `json:"id"`
	Name            string         `json:"name"`
	HourlyRate      float64        `json:"hourly_rate"`
	StartDate       string         `json:"start_date"`
	EndDate         string         `json:"end_date"`
	PlannedHours    float64        `json:"planned_hours"`
	ActualHours     float64        `json:"actual_hours"`
	HoursDiff       float64        `json:"hours_diff"`
	Budget          float64        `json:"budget"`
	ActualCost      float64        `json:"actual_cost"`
	BudgetRemaining float64        `json:"budget_remaining"`
	RemainingDays   int            `json:"remaining_days"`
	WorkingDays     int            `json:"working_days"`
	Status          *string        `json:"status"`
	Activities      []ActivityNode `json:"activities"`
}

type ClientNode struct {
	ID              uint          `json:"id"`
	Name            string        `json:"name"`
	HourlyRate      float64       `json:"hourly_rate"`
	StartDate       string        `json:"start_date"`
	EndDate         string        `json:"end_date"`
	PlannedHours    float64       `json:"planned_hours"`
	ActualHours     float64       `json:"actual_hours"`
	HoursDiff       float64       `json:"hours_diff"`
	Budget          float64       `json:"budget"`
	ActualCost      float64       `json:"actual_cost"`
	BudgetRemaining float64       `json:"budget_remaining"`
	RemainingDays   int           `json:"remaining_days"`
	WorkingDays     int           `json:"working_days"`
	Projects        []ProjectNode `json:"projects"`
}

// RollupService walks the Client > Project > Activity hierarchy and merges
// schedules with timesheet aggregates into planned/actual figures at every
// level. It is a read-only query over the current snapshot.
type RollupService struct {
	db *gorm.DB
}

func NewRollupService(db *gorm.DB) *RollupService { return &RollupService{db: db} }

func (s *RollupService) Hierarchy() ([]ClientNode, error) {
	return s.HierarchyAt(time.Now())
}

// HierarchyAt computes the rollup tree against an explicit "today", used for
// remaining-days figures. Clients whose projects have neither schedules nor
// timesheet entries are omitted entirely.
func (s *RollupService) HierarchyAt(today time.Time) ([]ClientNode, error) {
	var clients []struct {
		ID         uint
		Name       string
		HourlyRate float64
	}
	err := s.db.Raw(`
		SELECT DISTINCT c.id, c.name, c.hourly_rate
		FROM clients c
		JOIN projects p ON p.client_id = c.id
		LEFT JOIN schedules s ON s.project_id = p.id
		LEFT JOIN timesheets t ON t.project_id = p.id
		WHERE s.id IS NOT NULL OR t.id IS NOT NULL
		ORDER BY c.name`).Scan(&clients).Error
	if err != nil {
		return nil, err
	}

	result := make([]ClientNode, 0, len(clients))
	for _, c := range clients {
		node, err := s.clientNode(c.ID, c.Name, c.HourlyRate, today)
		if err != nil {
			return nil, err
		}
		result = append(result, node)
	}
	return result, nil
}

func (s *RollupService) clientNode(clientID uint, name string, rate float64, today time.Time) (ClientNode, error) {
	var projects []struct {
		ID         uint
		Name       string
		HourlyRate float64
	}
	err := s.db.Raw(`
		SELECT DISTINCT p.id, p.name, p.hourly_rate
		FROM projects p
		LEFT JOIN schedules s ON s.project_id = p.id
		LEFT JOIN timesheets t ON t.project_id = p.id
		WHERE p.client_id = ? AND (s.id IS NOT NULL OR t.id IS NOT NULL)
		ORDER BY p.name`, clientID).Scan(&projects).Error
	if err != nil {
		return ClientNode{}, err
	}

	node := ClientNode{ID: clientID, Name: name, HourlyRate: rate, Projects: make([]ProjectNode, 0, len(projects))}
	for _, p := range projects {
		pn, err := s.projectNode(p.ID, p.Name, p.HourlyRate, today)
		if err != nil {
			return ClientNode{}, err
		}
		node.Projects = append(node.Projects, pn)

		node.PlannedHours += pn.PlannedHours
		node.ActualHours += pn.ActualHours
		node.Budget += pn.Budget
		node.ActualCost += pn.ActualCost
		if pn.StartDate != "" && (node.StartDate == "" || pn.StartDate < node.StartDate) {
			node.StartDate = pn.StartDate
		}
		if pn.EndDate != "" && (node.EndDate == "" || pn.EndDate > node.EndDate) {
			node.EndDate = pn.EndDate
		}
	}
	node.HoursDiff = node.PlannedHours - node.ActualHours
	node.BudgetRemaining = node.Budget - node.ActualCost
	node.RemainingDays = remainingDays(node.EndDate, today)
	node.WorkingDays = WorkingDays(node.StartDate, node.EndDate)
	return node, nil
}

func (s *RollupService) projectNode(projectID uint, name string, rate float64, today time.Time) (ProjectNode, error) {
	node := ProjectNode{ID: projectID, Name: name, HourlyRate: rate}

	projectSchedule, err := s.latestSchedule(projectID, nil)
	if err != nil {
		return ProjectNode{}, err
	}

	if projectSchedule != nil {
		// A project-level schedule governs: planned figures come from it and
		// actuals are the whole-project sums, bypassing per-activity folding
		// so split sub-schedules cannot double-count.
		node.PlannedHours = projectSchedule.PlannedHours
		node.Budget = projectSchedule.Budget
		node.StartDate = projectSchedule.StartDate
		node.EndDate = projectSchedule.EndDate
		status := projectSchedule.Status
		node.Status = &status

		var totals struct {
			TotalHours float64
			TotalCost  float64
		}
		err := s.db.Raw(`
			SELECT COALESCE(SUM(hours), 0) AS total_hours,
			       COALESCE(SUM(cost), 0) AS total_cost
			FROM timesheets
			WHERE project_id = ?`, projectID).Scan(&totals).Error
		if err != nil {
			return ProjectNode{}, err
		}
		node.ActualHours = totals.TotalHours
		node.ActualCost = totals.TotalCost
	}

	var activities []struct {
		ID         uint
		Name       string
		HourlyRate float64
	}
	err = s.db.Raw(`
		SELECT DISTINCT a.id, a.name, a.hourly_rate
		FROM activities a
		LEFT JOIN schedules s ON s.activity_id = a.id AND s.project_id = ?
		LEFT JOIN timesheets t ON t.activity_id = a.id AND t.project_id = ?
		WHERE s.id IS NOT NULL OR t.id IS NOT NULL
		ORDER BY a.name`, projectID, projectID).Scan(&activities).Error
	if err != nil {
		return ProjectNode{}, err
	}

	node.Activities = make([]ActivityNode, 0, len(activities))
	for _, a := range activities {
		an, err := s.activityNode(projectID, a.ID, a.Name, a.HourlyRate, today)
		if err != nil {
			return ProjectNode{}, err
		}
		node.Activities = append(node.Activities, an)

		if projectSchedule == nil {
			if an.PlannedHours > 0 {
				node.PlannedHours += an.PlannedHours
			}
			node.ActualHours += an.ActualHours
			if an.Budget > 0 {
				node.Budget += an.Budget
			}
			node.ActualCost += an.ActualCost
			if an.StartDate != "" && (node.StartDate == "" || an.StartDate < node.StartDate) {
				node.StartDate = an.StartDate
			}
			if an.EndDate != "" && (node.EndDate == "" || an.EndDate > node.EndDate) {
				node.EndDate = an.EndDate
			}
		}
	}

	node.HoursDiff = node.PlannedHours - node.ActualHours
	node.BudgetRemaining = node.Budget - node.ActualCost
	node.RemainingDays = remainingDays(node.EndDate, today)
	node.WorkingDays = WorkingDays(node.StartDate, node.EndDate)
	return node, nil
}

func (s *RollupService) activityNode(projectID, activityID uint, name string, rate float64, today time.Time) (ActivityNode, error) {
	node := ActivityNode{ID: activityID, Name: name, HourlyRate: rate}

	var leaves []TimesheetLeaf
	err := s.db.Raw(`
		SELECT t.id, t.work_date, t.hours, t.cost, t.note, u.username, u.full_name
		FROM timesheets t
		JOIN users u ON u.id = t.user_id
		WHERE t.project_id = ? AND t.activity_id = ?
		ORDER BY t.work_date DESC`, projectID, activityID).Scan(&leaves).Error
	if err != nil {
		return ActivityNode{}, err
	}
	node.Timesheets = leaves
	for _, l := range leaves {
		node.ActualHours += l.Hours
		node.ActualCost += l.Cost
	}

	sched, err := s.latestSchedule(projectID, &activityID)
	if err != nil {
		return ActivityNode{}, err
	}
	if sched != nil {
		node.ScheduleID = &sched.ID
		node.StartDate = sched.StartDate
		node.EndDate = sched.EndDate
		node.PlannedHours = sched.PlannedHours
		node.Budget = sched.Budget
		status := sched.Status
		node.Status = &status
		node.ScheduleNote = sched.Note
		node.RemainingDays = remainingDays(sched.EndDate, today)
		node.WorkingDays = WorkingDays(sched.StartDate, sched.EndDate)
		node.HoursDiff = node.PlannedHours - node.ActualHours
		node.BudgetRemaining = node.Budget - node.ActualCost
	}
	return node, nil
}

// latestSchedule returns the authoritative schedule for a scope when storage
// holds duplicates: max end_date, then max id. activityID nil selects the
// project-level schedule.
func (s *RollupService) latestSchedule(projectID uint, activityID *uint) (*models.Schedule, error) {
	q := s.db.Where("project_id = ?", projectID)
	if activityID == nil {
		q = q.Where("activity_id IS NULL")
	} else {
		q = q.Where("activity_id = ?", *activityID)
	}
	var sched models.Schedule
	err := q.Order("end_date DESC, id DESC").First(&sched).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sched, nil
}
