package services

import (
	"errors"
	"testing"
	"time"

	"github.com/diewo77/timesheet-app/internal/models"
)

func TestCreateScheduleActivityMismatch(t *testing.T) {
	db := setupTestDB(t)
	c, p, _ := seedHierarchy(t, db, 50, 0, 0)
	p2 := models.Project{ClientID: c.ID, Name: "Intranet"}
	if err := db.Create(&p2).Error; err != nil {
		t.Fatalf("project: %v", err)
	}
	a2 := models.Activity{ProjectID: p2.ID, Name: "Design"}
	if err := db.Create(&a2).Error; err != nil {
		t.Fatalf("activity: %v", err)
	}

	svc := NewScheduleService(db)
	_, err := svc.Create(ScheduleInput{
		ProjectID: p.ID, ActivityID: &a2.ID,
		StartDate: "2025-06-01", EndDate: "2025-06-30", PlannedHours: 10,
	})
	if !errors.Is(err, ErrActivityMismatch) {
		t.Fatalf("expected ErrActivityMismatch, got %v", err)
	}
}

func TestCreateScheduleOpensByDefault(t *testing.T) {
	db := setupTestDB(t)
	_, p, a := seedHierarchy(t, db, 50, 0, 0)

	svc := NewScheduleService(db)
	sched, err := svc.Create(ScheduleInput{
		ProjectID: p.ID, ActivityID: &a.ID,
		StartDate: "2025-06-01", EndDate: "2025-06-30", PlannedHours: 40, Budget: 2000,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sched.Status != models.ScheduleOpen {
		t.Fatalf("status = %q, want aperta", sched.Status)
	}
}

func TestSetStatus(t *testing.T) {
	db := setupTestDB(t)
	_, p, _ := seedHierarchy(t, db, 50, 0, 0)
	sched := seedSchedule(t, db, p.ID, nil, "2025-06-01", "2025-06-30", 40, 0)

	svc := NewScheduleService(db)
	if err := svc.SetStatus(sched.ID, "archiviata"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if err := svc.SetStatus(sched.ID, models.ScheduleClosed); err != nil {
		t.Fatalf("set status: %v", err)
	}
	var reloaded models.Schedule
	if err := db.First(&reloaded, sched.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != models.ScheduleClosed {
		t.Fatalf("status = %q, want chiusa", reloaded.Status)
	}
}

func TestListOnlyOpen(t *testing.T) {
	db := setupTestDB(t)
	_, p, a := seedHierarchy(t, db, 50, 0, 0)
	seedSchedule(t, db, p.ID, &a.ID, "2025-06-01", "2025-06-30", 40, 0)
	closed := seedSchedule(t, db, p.ID, nil, "2025-05-01", "2025-05-31", 20, 0)
	if err := db.Model(&models.Schedule{}).Where("id = ?", closed.ID).
		Update("status", models.ScheduleClosed).Error; err != nil {
		t.Fatalf("close: %v", err)
	}

	svc := NewScheduleService(db)
	all, err := svc.List(false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all: got %d, want 2", len(all))
	}
	open, err := svc.List(true)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 1 || open[0].Status != models.ScheduleOpen {
		t.Fatalf("open: %+v", open)
	}
}

func TestControlDataScopesToDateRange(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "anna", models.RoleUser)
	c, p, a := seedHierarchy(t, db, 50, 0, 0)
	seedSchedule(t, db, p.ID, &a.ID, "2025-06-01", "2025-06-30", 40, 2000)

	seedTimesheet(t, db, u.ID, c, p, a, "2025-06-10", 8, 50)
	seedTimesheet(t, db, u.ID, c, p, a, "2025-05-20", 4, 50) // before the range
	seedTimesheet(t, db, u.ID, c, p, a, "2025-07-02", 4, 50) // after the range

	controls, err := NewScheduleService(db).ControlData(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("control: %v", err)
	}
	if len(controls) != 1 {
		t.Fatalf("got %d controls, want 1", len(controls))
	}
	ctl := controls[0]
	if ctl.ActualHours != 8 || ctl.ActualCost != 400 {
		t.Fatalf("actuals = %v/%v, want in-range only 8/400", ctl.ActualHours, ctl.ActualCost)
	}
	if ctl.RemainingHours != 32 {
		t.Fatalf("remaining hours = %v, want 32", ctl.RemainingHours)
	}
	if ctl.RemainingDays != 20 {
		t.Fatalf("remaining days = %v, want 20", ctl.RemainingDays)
	}
	if len(ctl.Timesheets) != 1 {
		t.Fatalf("details: got %d, want 1", len(ctl.Timesheets))
	}
}

func TestControlDataProjectLevelCoversAllActivities(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "anna", models.RoleUser)
	c, p, a := seedHierarchy(t, db, 50, 0, 0)
	b := models.Activity{ProjectID: p.ID, Name: "Testing"}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("activity: %v", err)
	}
	seedSchedule(t, db, p.ID, nil, "2025-06-01", "2025-06-30", 100, 5000)
	seedTimesheet(t, db, u.ID, c, p, a, "2025-06-03", 8, 50)
	seedTimesheet(t, db, u.ID, c, p, b, "2025-06-04", 4, 50)

	controls, err := NewScheduleService(db).ControlData(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("control: %v", err)
	}
	ctl := controls[0]
	if ctl.ActivityName != "(Tutta la commessa)" {
		t.Fatalf("activity label = %q", ctl.ActivityName)
	}
	if ctl.ActualHours != 12 || ctl.ActualCost != 600 {
		t.Fatalf("actuals = %v/%v, want 12/600", ctl.ActualHours, ctl.ActualCost)
	}
	// Project-level details include the activity name per entry.
	if len(ctl.Timesheets) != 2 || ctl.Timesheets[0].ActivityName == "" {
		t.Fatalf("details: %+v", ctl.Timesheets)
	}
}

func TestScheduleReport(t *testing.T) {
	db := setupTestDB(t)
	u1 := seedUser(t, db, "anna", models.RoleUser)
	u2 := seedUser(t, db, "luca", models.RoleUser)
	c, p, a := seedHierarchy(t, db, 50, 0, 0)
	sched := seedSchedule(t, db, p.ID, &a.ID, "2025-06-01", "2025-06-30", 40, 2000)
	seedTimesheet(t, db, u1.ID, c, p, a, "2025-06-03", 8, 50)
	seedTimesheet(t, db, u1.ID, c, p, a, "2025-06-04", 2, 50)
	seedTimesheet(t, db, u2.ID, c, p, a, "2025-06-05", 4, 50)

	svc := NewScheduleService(db)
	rep, err := svc.Report(sched.ID, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep == nil {
		t.Fatal("expected report, got nil")
	}
	if rep.TotalDays != 30 {
		t.Fatalf("total days = %d, want 30", rep.TotalDays)
	}
	if rep.ElapsedDays != 10 {
		t.Fatalf("elapsed days = %d, want 10", rep.ElapsedDays)
	}
	if rep.ActualHours != 14 {
		t.Fatalf("actual hours = %v, want 14", rep.ActualHours)
	}
	if len(rep.UserHours) != 2 {
		t.Fatalf("user hours: %+v", rep.UserHours)
	}
	// Ordered by hours descending.
	if rep.UserHours[0].Username != "anna" || rep.UserHours[0].Hours != 10 {
		t.Fatalf("top user: %+v", rep.UserHours[0])
	}
}

func TestScheduleReportMissing(t *testing.T) {
	db := setupTestDB(t)
	rep, err := NewScheduleService(db).Report(12345, time.Now())
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep != nil {
		t.Fatalf("expected nil report, got %+v", rep)
	}
}
