package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/timesheet-app/internal/models"
)

func newReportService(db *gorm.DB) *ReportService {
	return NewReportService(db, NewScheduleService(db))
}

func TestByClientMissing(t *testing.T) {
	db := setupTestDB(t)
	rep, err := newReportService(db).ByClient(999, "", "")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep != nil {
		t.Fatalf("expected nil for missing client, got %+v", rep)
	}
}

func TestByClientOverlapFilter(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "anna", models.RoleUser)
	c, p, a := seedHierarchy(t, db, 50, 0, 0)

	// Straddles the queried period: kept by the overlap rule.
	seedSchedule(t, db, p.ID, &a.ID, "2025-05-15", "2025-06-05", 40, 2000)
	// Entirely before the period: dropped.
	seedSchedule(t, db, p.ID, &a.ID, "2025-01-01", "2025-02-28", 20, 1000)
	seedTimesheet(t, db, u.ID, c, p, a, "2025-05-20", 8, 50)

	svc := newReportService(db)
	rep, err := svc.ByClient(c.ID, "2025-06-01", "2025-06-30")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(rep.Schedules) != 1 {
		t.Fatalf("got %d schedules, want 1 overlapping", len(rep.Schedules))
	}
	if rep.TotalPlannedHours != 40 || rep.TotalBudget != 2000 {
		t.Fatalf("totals = %v/%v", rep.TotalPlannedHours, rep.TotalBudget)
	}
	// Actuals stay scoped to the schedule's own range, not the query period.
	if rep.Schedules[0].ActualHours != 8 {
		t.Fatalf("actual hours = %v, want 8", rep.Schedules[0].ActualHours)
	}

	// Without dates every schedule is included.
	all, err := svc.ByClient(c.ID, "", "")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(all.Schedules) != 2 {
		t.Fatalf("unfiltered: got %d schedules, want 2", len(all.Schedules))
	}
}

func TestByProject(t *testing.T) {
	db := setupTestDB(t)
	u1 := seedUser(t, db, "anna", models.RoleUser)
	u2 := seedUser(t, db, "luca", models.RoleUser)
	c, p, a := seedHierarchy(t, db, 50, 0, 0)
	b := models.Activity{ProjectID: p.ID, Name: "Testing"}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("activity: %v", err)
	}
	seedSchedule(t, db, p.ID, &a.ID, "2025-06-01", "2025-06-30", 40, 2000)
	seedTimesheet(t, db, u1.ID, c, p, a, "2025-06-03", 8, 50)
	seedTimesheet(t, db, u2.ID, c, p, b, "2025-06-04", 4, 50)

	rep, err := newReportService(db).ByProject(p.ID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep == nil {
		t.Fatal("expected report, got nil")
	}
	if rep.ClientName != c.Name {
		t.Fatalf("client name = %q", rep.ClientName)
	}
	if len(rep.Timesheets) != 2 || rep.TotalActualHours != 12 || rep.TotalActualCost != 600 {
		t.Fatalf("entries/totals: %d %v %v", len(rep.Timesheets), rep.TotalActualHours, rep.TotalActualCost)
	}
	if rep.TotalPlannedHours != 40 || rep.TotalBudget != 2000 {
		t.Fatalf("planned totals: %v/%v", rep.TotalPlannedHours, rep.TotalBudget)
	}
	if len(rep.ActivitiesSummary) != 2 || rep.ActivitiesSummary[0].Name != "Development" {
		t.Fatalf("activities summary: %+v", rep.ActivitiesSummary)
	}
	if len(rep.UsersSummary) != 2 || rep.UsersSummary[0].Name2 != "anna" {
		t.Fatalf("users summary: %+v", rep.UsersSummary)
	}
}

func TestByPeriodWithFilters(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "anna", models.RoleUser)
	c, p, a := seedHierarchy(t, db, 50, 0, 0)
	seedTimesheet(t, db, u.ID, c, p, a, "2025-06-03", 8, 50)
	seedTimesheet(t, db, u.ID, c, p, a, "2025-06-20", 4, 50)
	seedTimesheet(t, db, u.ID, c, p, a, "2025-07-01", 2, 50) // outside period

	svc := newReportService(db)
	rep, err := svc.ByPeriod("2025-06-01", "2025-06-30", 0, 0)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(rep.Timesheets) != 2 || rep.TotalHours != 12 || rep.TotalCost != 600 {
		t.Fatalf("period: %d entries, %v/%v", len(rep.Timesheets), rep.TotalHours, rep.TotalCost)
	}
	if len(rep.ClientsSummary) != 1 || rep.ClientsSummary[0].TotalHours != 12 {
		t.Fatalf("clients summary: %+v", rep.ClientsSummary)
	}

	// A non-matching project filter empties the report.
	empty, err := svc.ByPeriod("2025-06-01", "2025-06-30", 0, p.ID+99)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(empty.Timesheets) != 0 || empty.TotalHours != 0 {
		t.Fatalf("filtered: %+v", empty)
	}
}

func TestByUserWorkDays(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "anna", models.RoleUser)
	c, p, a := seedHierarchy(t, db, 50, 0, 0)
	// Two entries on the same day count as one work day.
	seedTimesheet(t, db, u.ID, c, p, a, "2025-06-03", 4, 50)
	seedTimesheet(t, db, u.ID, c, p, a, "2025-06-03", 2, 50)
	seedTimesheet(t, db, u.ID, c, p, a, "2025-06-04", 6, 50)

	rep, err := newReportService(db).ByUser(u.ID, "2025-06-01", "2025-06-30")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep == nil {
		t.Fatal("expected report, got nil")
	}
	if rep.WorkDays != 2 {
		t.Fatalf("work days = %d, want 2", rep.WorkDays)
	}
	if rep.TotalHours != 12 || rep.AvgHoursPerDay != 6 {
		t.Fatalf("hours/avg = %v/%v, want 12/6", rep.TotalHours, rep.AvgHoursPerDay)
	}

	missing, err := newReportService(db).ByUser(u.ID+99, "2025-06-01", "2025-06-30")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing user, got %+v", missing)
	}
}

func TestGeneralAtRisk(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "anna", models.RoleUser)
	c, p, a := seedHierarchy(t, db, 50, 0, 0)
	b := models.Activity{ProjectID: p.ID, Name: "Testing"}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("activity: %v", err)
	}
	d := models.Activity{ProjectID: p.ID, Name: "Docs"}
	if err := db.Create(&d).Error; err != nil {
		t.Fatalf("activity: %v", err)
	}

	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	// Overrun: 12 actual against 10 planned.
	seedSchedule(t, db, p.ID, &a.ID, "2025-06-01", "2025-08-31", 10, 0)
	seedTimesheet(t, db, u.ID, c, p, a, "2025-06-03", 12, 50)
	// Deadline squeeze: 5 days left, work remaining.
	seedSchedule(t, db, p.ID, &b.ID, "2025-06-01", "2025-06-15", 40, 0)
	seedTimesheet(t, db, u.ID, c, p, b, "2025-06-04", 8, 50)
	// Healthy: plenty of time and hours left.
	seedSchedule(t, db, p.ID, &d.ID, "2025-06-01", "2025-12-31", 100, 0)
	seedTimesheet(t, db, u.ID, c, p, d, "2025-06-05", 4, 50)

	rep, err := newReportService(db).General("", "", today)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep.NumActiveSchedules != 3 {
		t.Fatalf("active schedules = %d, want 3", rep.NumActiveSchedules)
	}
	if rep.NumAtRisk != 2 {
		t.Fatalf("at risk = %d, want 2: %+v", rep.NumAtRisk, rep.SchedulesAtRisk)
	}
	if rep.TotalHours != 24 || rep.TotalCost != 1200 {
		t.Fatalf("totals = %v/%v", rep.TotalHours, rep.TotalCost)
	}
	if len(rep.UsersSummary) != 1 || rep.UsersSummary[0].TotalHours != 24 {
		t.Fatalf("users summary: %+v", rep.UsersSummary)
	}
}

func TestGeneralExhaustedNotAtRisk(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "anna", models.RoleUser)
	c, p, a := seedHierarchy(t, db, 50, 0, 0)
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	// Deadline within a week but exactly zero hours remaining: not at risk.
	seedSchedule(t, db, p.ID, &a.ID, "2025-06-01", "2025-06-12", 8, 0)
	seedTimesheet(t, db, u.ID, c, p, a, "2025-06-03", 8, 50)

	rep, err := newReportService(db).General("", "", today)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep.NumAtRisk != 0 {
		t.Fatalf("at risk = %d, want 0: %+v", rep.NumAtRisk, rep.SchedulesAtRisk)
	}
}

func TestFilteredCombinesFilters(t *testing.T) {
	db := setupTestDB(t)
	u1 := seedUser(t, db, "anna", models.RoleUser)
	u2 := seedUser(t, db, "luca", models.RoleUser)
	c, p, a := seedHierarchy(t, db, 50, 0, 0)
	b := models.Activity{ProjectID: p.ID, Name: "Testing"}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("activity: %v", err)
	}
	seedTimesheet(t, db, u1.ID, c, p, a, "2025-06-03", 8, 50)
	seedTimesheet(t, db, u1.ID, c, p, b, "2025-06-04", 4, 50)
	seedTimesheet(t, db, u2.ID, c, p, a, "2025-06-05", 2, 50)

	svc := newReportService(db)
	rep, err := svc.Filtered(ReportFilter{UserID: u1.ID, ActivityID: a.ID})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(rep.Timesheets) != 1 || rep.TotalHours != 8 {
		t.Fatalf("filtered: %d entries, %v hours", len(rep.Timesheets), rep.TotalHours)
	}

	all, err := svc.Filtered(ReportFilter{})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(all.Timesheets) != 3 || all.TotalHours != 14 {
		t.Fatalf("unfiltered: %d entries, %v hours", len(all.Timesheets), all.TotalHours)
	}
	if len(all.ActivitiesSummary) != 2 || all.ActivitiesSummary[0].Name != "Development" {
		t.Fatalf("activities summary: %+v", all.ActivitiesSummary)
	}
}
