package services

import (
	"time"

	"github.com/diewo77/timesheet-app/internal/models"
	"gorm.io/gorm"
)

// ReportService shapes the read-only report payloads. Every method returns
// nil (not an error) when the requested client/project/user does not exist.
type ReportService struct {
	db        *gorm.DB
	schedules *ScheduleService
}

func NewReportService(db *gorm.DB, schedules *ScheduleService) *ReportService {
	return &ReportService{db: db, schedules: schedules}
}

// SummaryRow aggregates hours and cost under one label pair. Name2 is empty
// for single-dimension groupings.
type SummaryRow struct {
	Name       string  `json:"name"`
	Name2      string  `json:"name2,omitempty"`
	TotalHours float64 `json:"total_hours"`
	TotalCost  float64 `json:"total_cost"`
}

// ReportEntry is a timesheet row with every joined name, as reports show it.
type ReportEntry struct {
	WorkDate     string  `json:"work_date"`
	Hours        float64 `json:"hours"`
	Cost         float64 `json:"cost"`
	Note         string  `json:"note"`
	ClientName   string  `json:"client_name"`
	ProjectName  string  `json:"project_name"`
	ActivityName string  `json:"activity_name"`
	Username     string  `json:"username"`
	FullName     string  `json:"full_name"`
}

// ClientScheduleRow is one schedule in the per-client report, with actuals
// scoped to the schedule's own date range.
type ClientScheduleRow struct {
	ProjectName  string  `json:"project_name"`
	ActivityName string  `json:"activity_name"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	PlannedHours float64 `json:"planned_hours"`
	Budget       float64 `json:"budget"`
	ActualHours  float64 `json:"actual_hours"`
	ActualCost   float64 `json:"actual_cost"`
}

type ClientReport struct {
	Client            models.Client       `json:"client"`
	Schedules         []ClientScheduleRow `json:"schedules"`
	TotalPlannedHours float64             `json:"total_planned_hours"`
	TotalBudget       float64             `json:"total_budget"`
	TotalActualHours  float64             `json:"total_actual_hours"`
	TotalActualCost   float64             `json:"total_actual_cost"`
}

// ByClient reports every schedule under a client's projects. When both dates
// are given only schedules overlapping [startDate, endDate] are included.
func (s *ReportService) ByClient(clientID uint, startDate, endDate string) (*ClientReport, error) {
	var client models.Client
	res := s.db.Limit(1).Find(&client, clientID)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	type schedRow struct {
		ProjectID    uint
		ActivityID   *uint
		ProjectName  string
		ActivityName string
		StartDate    string
		EndDate      string
		PlannedHours float64
		Budget       float64
	}
	q := s.db.Table("schedules s").
		Select(`s.project_id, s.activity_id, s.start_date, s.end_date,
			s.planned_hours, s.budget,
			p.name AS project_name, COALESCE(a.name, '') AS activity_name`).
		Joins("JOIN projects p ON p.id = s.project_id").
		Joins("LEFT JOIN activities a ON a.id = s.activity_id").
		Where("p.client_id = ?", clientID)
	if startDate != "" && endDate != "" {
		q = q.Where("s.start_date <= ? AND s.end_date >= ?", endDate, startDate)
	}
	var scheds []schedRow
	if err := q.Order("s.start_date DESC").Scan(&scheds).Error; err != nil {
		return nil, err
	}

	report := &ClientReport{Client: client, Schedules: make([]ClientScheduleRow, 0, len(scheds))}
	for _, sched := range scheds {
		var actual struct {
			Hours float64
			Cost  float64
		}
		var err error
		if sched.ActivityID != nil {
			err = s.db.Raw(`
				SELECT COALESCE(SUM(hours), 0) AS hours, COALESCE(SUM(cost), 0) AS cost
				FROM timesheets
				WHERE project_id = ? AND activity_id = ? AND work_date >= ? AND work_date <= ?`,
				sched.ProjectID, *sched.ActivityID, sched.StartDate, sched.EndDate).Scan(&actual).Error
		} else {
			err = s.db.Raw(`
				SELECT COALESCE(SUM(hours), 0) AS hours, COALESCE(SUM(cost), 0) AS cost
				FROM timesheets
				WHERE project_id = ? AND work_date >= ? AND work_date <= ?`,
				sched.ProjectID, sched.StartDate, sched.EndDate).Scan(&actual).Error
		}
		if err != nil {
			return nil, err
		}

		activityName := sched.ActivityName
		if activityName == "" {
			activityName = wholeProjectLabel
		}
		report.Schedules = append(report.Schedules, ClientScheduleRow{
			ProjectName:  sched.ProjectName,
			ActivityName: activityName,
			StartDate:    sched.StartDate,
			EndDate:      sched.EndDate,
			PlannedHours: sched.PlannedHours,
			Budget:       sched.Budget,
			ActualHours:  actual.Hours,
			ActualCost:   actual.Cost,
		})
		report.TotalPlannedHours += sched.PlannedHours
		report.TotalBudget += sched.Budget
		report.TotalActualHours += actual.Hours
		report.TotalActualCost += actual.Cost
	}
	return report, nil
}

type ProjectReport struct {
	Project           models.Project `json:"project"`
	ClientName        string         `json:"client_name"`
	Schedules         []ScheduleRow  `json:"schedules"`
	Timesheets        []ReportEntry  `json:"timesheets"`
	ActivitiesSummary []SummaryRow   `json:"activities_summary"`
	UsersSummary      []SummaryRow   `json:"users_summary"`
	TotalPlannedHours float64        `json:"total_planned_hours"`
	TotalBudget       float64        `json:"total_budget"`
	TotalActualHours  float64        `json:"total_actual_hours"`
	TotalActualCost   float64        `json:"total_actual_cost"`
}

// ByProject reports one project: all its schedules, all logged entries, and
// per-activity and per-user aggregates. Actuals are not date-scoped here.
func (s *ReportService) ByProject(projectID uint) (*ProjectReport, error) {
	var project models.Project
	res := s.db.Limit(1).Find(&project, projectID)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	var clientName string
	if err := s.db.Model(&models.Client{}).Select("name").Where("id = ?", project.ClientID).Scan(&clientName).Error; err != nil {
		return nil, err
	}

	var scheds []ScheduleRow
	err := s.db.Table("schedules s").
		Select(`s.id, s.project_id, s.activity_id, s.start_date, s.end_date,
			s.planned_hours, s.budget, s.note, s.status,
			'' AS client_name, '' AS project_name,
			COALESCE(a.name, '') AS activity_name`).
		Joins("LEFT JOIN activities a ON a.id = s.activity_id").
		Where("s.project_id = ?", projectID).
		Order("s.start_date DESC").Scan(&scheds).Error
	if err != nil {
		return nil, err
	}

	var entries []ReportEntry
	err = s.db.Raw(`
		SELECT t.work_date, t.hours, t.cost, t.note,
		       a.name AS activity_name, u.username, u.full_name
		FROM timesheets t
		JOIN users u ON u.id = t.user_id
		JOIN activities a ON a.id = t.activity_id
		WHERE t.project_id = ?
		ORDER BY t.work_date DESC`, projectID).Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	var activities []SummaryRow
	err = s.db.Raw(`
		SELECT a.name AS name, SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost
		FROM timesheets t
		JOIN activities a ON a.id = t.activity_id
		WHERE t.project_id = ?
		GROUP BY a.id, a.name
		ORDER BY total_hours DESC`, projectID).Scan(&activities).Error
	if err != nil {
		return nil, err
	}

	var users []SummaryRow
	err = s.db.Raw(`
		SELECT u.full_name AS name, u.username AS name2,
		       SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost
		FROM timesheets t
		JOIN users u ON u.id = t.user_id
		WHERE t.project_id = ?
		GROUP BY u.id, u.full_name, u.username
		ORDER BY total_hours DESC`, projectID).Scan(&users).Error
	if err != nil {
		return nil, err
	}

	report := &ProjectReport{
		Project:           project,
		ClientName:        clientName,
		Schedules:         scheds,
		Timesheets:        entries,
		ActivitiesSummary: activities,
		UsersSummary:      users,
	}
	for i := range scheds {
		report.TotalPlannedHours += scheds[i].PlannedHours
		report.TotalBudget += scheds[i].Budget
	}
	for i := range entries {
		report.TotalActualHours += entries[i].Hours
		report.TotalActualCost += entries[i].Cost
	}
	return report, nil
}

type PeriodReport struct {
	StartDate       string        `json:"start_date"`
	EndDate         string        `json:"end_date"`
	Timesheets      []ReportEntry `json:"timesheets"`
	ClientsSummary  []SummaryRow  `json:"clients_summary"`
	ProjectsSummary []SummaryRow  `json:"projects_summary"`
	UsersSummary    []SummaryRow  `json:"users_summary"`
	TotalHours      float64       `json:"total_hours"`
	TotalCost       float64       `json:"total_cost"`
}

// ByPeriod reports every entry in [startDate, endDate], optionally narrowed
// to one client or one project (0 means no filter).
func (s *ReportService) ByPeriod(startDate, endDate string, clientID, projectID uint) (*PeriodReport, error) {
	base := func() *gorm.DB {
		q := s.db.Table("timesheets t").
			Joins("JOIN projects p ON p.id = t.project_id").
			Joins("JOIN clients c ON c.id = p.client_id").
			Where("t.work_date >= ? AND t.work_date <= ?", startDate, endDate)
		if clientID != 0 {
			q = q.Where("p.client_id = ?", clientID)
		}
		if projectID != 0 {
			q = q.Where("t.project_id = ?", projectID)
		}
		return q
	}

	var entries []ReportEntry
	err := base().
		Select(`t.work_date, t.hours, t.cost, t.note,
			c.name AS client_name, p.name AS project_name,
			a.name AS activity_name, u.username, u.full_name`).
		Joins("JOIN activities a ON a.id = t.activity_id").
		Joins("JOIN users u ON u.id = t.user_id").
		Order("t.work_date DESC").Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	var clients []SummaryRow
	err = base().
		Select("c.name AS name, SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost").
		Group("c.id, c.name").Order("total_hours DESC").Scan(&clients).Error
	if err != nil {
		return nil, err
	}

	var projects []SummaryRow
	err = base().
		Select("c.name AS name, p.name AS name2, SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost").
		Group("p.id, c.name, p.name").Order("total_hours DESC").Scan(&projects).Error
	if err != nil {
		return nil, err
	}

	var users []SummaryRow
	err = base().
		Select("u.full_name AS name, u.username AS name2, SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost").
		Joins("JOIN users u ON u.id = t.user_id").
		Group("u.id, u.full_name, u.username").Order("total_hours DESC").Scan(&users).Error
	if err != nil {
		return nil, err
	}

	report := &PeriodReport{
		StartDate:       startDate,
		EndDate:         endDate,
		Timesheets:      entries,
		ClientsSummary:  clients,
		ProjectsSummary: projects,
		UsersSummary:    users,
	}
	for i := range entries {
		report.TotalHours += entries[i].Hours
		report.TotalCost += entries[i].Cost
	}
	return report, nil
}

type UserReport struct {
	User              models.User   `json:"user"`
	StartDate         string        `json:"start_date"`
	EndDate           string        `json:"end_date"`
	Timesheets        []ReportEntry `json:"timesheets"`
	ClientsSummary    []SummaryRow  `json:"clients_summary"`
	ProjectsSummary   []SummaryRow  `json:"projects_summary"`
	ActivitiesSummary []SummaryRow  `json:"activities_summary"`
	TotalHours        float64       `json:"total_hours"`
	TotalCost         float64       `json:"total_cost"`
	WorkDays          int           `json:"work_days"`
	AvgHoursPerDay    float64       `json:"avg_hours_per_day"`
}

// ByUser reports one user's entries over a period, plus the distinct work
// days and the hours-per-worked-day average.
func (s *ReportService) ByUser(userID uint, startDate, endDate string) (*UserReport, error) {
	var user models.User
	res := s.db.Limit(1).Find(&user, userID)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var entries []ReportEntry
	err := s.db.Raw(`
		SELECT t.work_date, t.hours, t.cost, t.note,
		       c.name AS client_name, p.name AS project_name, a.name AS activity_name
		FROM timesheets t
		JOIN projects p ON p.id = t.project_id
		JOIN clients c ON c.id = p.client_id
		JOIN activities a ON a.id = t.activity_id
		WHERE t.user_id = ? AND t.work_date >= ? AND t.work_date <= ?
		ORDER BY t.work_date DESC`, userID, startDate, endDate).Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	var clients []SummaryRow
	err = s.db.Raw(`
		SELECT c.name AS name, SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost
		FROM timesheets t
		JOIN projects p ON p.id = t.project_id
		JOIN clients c ON c.id = p.client_id
		WHERE t.user_id = ? AND t.work_date >= ? AND t.work_date <= ?
		GROUP BY c.id, c.name
		ORDER BY total_hours DESC`, userID, startDate, endDate).Scan(&clients).Error
	if err != nil {
		return nil, err
	}

	var projects []SummaryRow
	err = s.db.Raw(`
		SELECT c.name AS name, p.name AS name2, SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost
		FROM timesheets t
		JOIN projects p ON p.id = t.project_id
		JOIN clients c ON c.id = p.client_id
		WHERE t.user_id = ? AND t.work_date >= ? AND t.work_date <= ?
		GROUP BY p.id, c.name, p.name
		ORDER BY total_hours DESC`, userID, startDate, endDate).Scan(&projects).Error
	if err != nil {
		return nil, err
	}

	var activities []SummaryRow
	err = s.db.Raw(`
		SELECT a.name AS name, SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost
		FROM timesheets t
		JOIN activities a ON a.id = t.activity_id
		WHERE t.user_id = ? AND t.work_date >= ? AND t.work_date <= ?
		GROUP BY a.id, a.name
		ORDER BY total_hours DESC`, userID, startDate, endDate).Scan(&activities).Error
	if err != nil {
		return nil, err
	}

	report := &UserReport{
		User:              user,
		StartDate:         startDate,
		EndDate:           endDate,
		Timesheets:        entries,
		ClientsSummary:    clients,
		ProjectsSummary:   projects,
		ActivitiesSummary: activities,
	}
	workDates := make(map[string]struct{})
	for i := range entries {
		report.TotalHours += entries[i].Hours
		report.TotalCost += entries[i].Cost
		workDates[entries[i].WorkDate] = struct{}{}
	}
	report.WorkDays = len(workDates)
	if report.WorkDays > 0 {
		report.AvgHoursPerDay = report.TotalHours / float64(report.WorkDays)
	}
	return report, nil
}

type GeneralReport struct {
	StartDate          string            `json:"start_date"`
	EndDate            string            `json:"end_date"`
	Schedules          []ScheduleControl `json:"schedules"`
	SchedulesAtRisk    []ScheduleControl `json:"schedules_at_risk"`
	ClientsSummary     []SummaryRow      `json:"clients_summary"`
	ProjectsSummary    []SummaryRow      `json:"projects_summary"`
	UsersSummary       []SummaryRow      `json:"users_summary"`
	TotalHours         float64           `json:"total_hours"`
	TotalCost          float64           `json:"total_cost"`
	NumActiveSchedules int               `json:"num_active_schedules"`
	NumAtRisk          int               `json:"num_at_risk"`
}

// General builds the dashboard report: every schedule's control snapshot, the
// at-risk subset (overrun, or under a week left with work remaining), and
// top-level aggregates. Empty dates mean all time; projects are capped to the
// ten most expensive.
func (s *ReportService) General(startDate, endDate string, today time.Time) (*GeneralReport, error) {
	schedules, err := s.schedules.ControlData(today)
	if err != nil {
		return nil, err
	}

	base := func() *gorm.DB {
		q := s.db.Table("timesheets t").
			Joins("JOIN projects p ON p.id = t.project_id").
			Joins("JOIN clients c ON c.id = p.client_id")
		if startDate != "" && endDate != "" {
			q = q.Where("t.work_date >= ? AND t.work_date <= ?", startDate, endDate)
		}
		return q
	}

	var clients []SummaryRow
	err = base().
		Select("c.name AS name, SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost").
		Group("c.id, c.name").Order("total_cost DESC").Scan(&clients).Error
	if err != nil {
		return nil, err
	}

	var projects []SummaryRow
	err = base().
		Select("c.name AS name, p.name AS name2, SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost").
		Group("p.id, c.name, p.name").Order("total_cost DESC").Limit(10).Scan(&projects).Error
	if err != nil {
		return nil, err
	}

	var users []SummaryRow
	err = base().
		Select("u.full_name AS name, u.username AS name2, SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost").
		Joins("JOIN users u ON u.id = t.user_id").
		Group("u.id, u.full_name, u.username").Order("total_hours DESC").Scan(&users).Error
	if err != nil {
		return nil, err
	}

	var totals struct {
		Hours float64
		Cost  float64
	}
	tq := s.db.Table("timesheets").
		Select("COALESCE(SUM(hours), 0) AS hours, COALESCE(SUM(cost), 0) AS cost")
	if startDate != "" && endDate != "" {
		tq = tq.Where("work_date >= ? AND work_date <= ?", startDate, endDate)
	}
	if err := tq.Scan(&totals).Error; err != nil {
		return nil, err
	}

	atRisk := make([]ScheduleControl, 0)
	for _, sc := range schedules {
		if sc.RemainingHours < 0 || (sc.RemainingDays < 7 && sc.RemainingHours > 0) {
			atRisk = append(atRisk, sc)
		}
	}

	return &GeneralReport{
		StartDate:          startDate,
		EndDate:            endDate,
		Schedules:          schedules,
		SchedulesAtRisk:    atRisk,
		ClientsSummary:     clients,
		ProjectsSummary:    projects,
		UsersSummary:       users,
		TotalHours:         totals.Hours,
		TotalCost:          totals.Cost,
		NumActiveSchedules: len(schedules),
		NumAtRisk:          len(atRisk),
	}, nil
}

// ReportFilter narrows the flexible report; zero values mean no filter.
type ReportFilter struct {
	ClientID   uint   `json:"client_id"`
	ProjectID  uint   `json:"project_id"`
	ActivityID uint   `json:"activity_id"`
	UserID     uint   `json:"user_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

type FilteredReport struct {
	StartDate         string        `json:"start_date"`
	EndDate           string        `json:"end_date"`
	Timesheets        []ReportEntry `json:"timesheets"`
	ClientsSummary    []SummaryRow  `json:"clients_summary"`
	ProjectsSummary   []SummaryRow  `json:"projects_summary"`
	ActivitiesSummary []SummaryRow  `json:"activities_summary"`
	UsersSummary      []SummaryRow  `json:"users_summary"`
	TotalHours        float64       `json:"total_hours"`
	TotalCost         float64       `json:"total_cost"`
}

// Filtered reports entries matching any combination of client, project,
// activity, user and period, with four aggregate views of the same rows.
func (s *ReportService) Filtered(f ReportFilter) (*FilteredReport, error) {
	base := func() *gorm.DB {
		q := s.db.Table("timesheets t").
			Joins("JOIN projects p ON p.id = t.project_id").
			Joins("JOIN clients c ON c.id = p.client_id").
			Joins("JOIN activities a ON a.id = t.activity_id").
			Joins("JOIN users u ON u.id = t.user_id")
		if f.StartDate != "" {
			q = q.Where("t.work_date >= ?", f.StartDate)
		}
		if f.EndDate != "" {
			q = q.Where("t.work_date <= ?", f.EndDate)
		}
		if f.ClientID != 0 {
			q = q.Where("p.client_id = ?", f.ClientID)
		}
		if f.ProjectID != 0 {
			q = q.Where("t.project_id = ?", f.ProjectID)
		}
		if f.ActivityID != 0 {
			q = q.Where("t.activity_id = ?", f.ActivityID)
		}
		if f.UserID != 0 {
			q = q.Where("t.user_id = ?", f.UserID)
		}
		return q
	}

	var entries []ReportEntry
	err := base().
		Select(`t.work_date, t.hours, t.cost, t.note,
			c.name AS client_name, p.name AS project_name,
			a.name AS activity_name, u.full_name, u.username`).
		Order("t.work_date DESC, c.name, p.name, a.name").Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	var clients []SummaryRow
	err = base().
		Select("c.name AS name, SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost").
		Group("c.id, c.name").Order("total_hours DESC").Scan(&clients).Error
	if err != nil {
		return nil, err
	}

	var projects []SummaryRow
	err = base().
		Select("c.name AS name, p.name AS name2, SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost").
		Group("p.id, c.name, p.name").Order("total_hours DESC").Scan(&projects).Error
	if err != nil {
		return nil, err
	}

	var activities []SummaryRow
	err = base().
		Select("a.name AS name, SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost").
		Group("a.id, a.name").Order("total_hours DESC").Scan(&activities).Error
	if err != nil {
		return nil, err
	}

	var users []SummaryRow
	err = base().
		Select("u.full_name AS name, SUM(t.hours) AS total_hours, SUM(t.cost) AS total_cost").
		Group("u.id, u.full_name").Order("total_hours DESC").Scan(&users).Error
	if err != nil {
		return nil, err
	}

	report := &FilteredReport{
		StartDate:         f.StartDate,
		EndDate:           f.EndDate,
		Timesheets:        entries,
		ClientsSummary:    clients,
		ProjectsSummary:   projects,
		ActivitiesSummary: activities,
		UsersSummary:      users,
	}
	for i := range entries {
		report.TotalHours += entries[i].Hours
		report.TotalCost += entries[i].Cost
	}
	return report, nil
}
