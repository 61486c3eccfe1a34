package services

import (
	"testing"
	"time"

	"github.com/diewo77/timesheet-app/internal/models"
)

var rollupToday = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func TestHierarchyOmitsClientsWithoutData(t *testing.T) {
	db := setupTestDB(t)
	seedHierarchy(t, db, 50, 0, 0) // no schedules, no timesheets

	tree, err := NewRollupService(db).HierarchyAt(rollupToday)
	if err != nil {
		t.Fatalf("rollup: %v", err)
	}
	if len(tree) != 0 {
		t.Fatalf("expected empty tree, got %d clients", len(tree))
	}
}

func TestHierarchyActivityFolding(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "mario", models.RoleUser)
	c, p, a := seedHierarchy(t, db, 50, 0, 0)
	b := models.Activity{ProjectID: p.ID, Name: "Testing"}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("activity: %v", err)
	}

	seedSchedule(t, db, p.ID, &a.ID, "2025-06-01", "2025-06-15", 40, 2000)
	seedSchedule(t, db, p.ID, &b.ID, "2025-05-20", "2025-06-30", 20, 1000)
	seedTimesheet(t, db, u.ID, c, p, a, "2025-06-03", 8, 50)
	seedTimesheet(t, db, u.ID, c, p, b, "2025-06-04", 4, 50)

	tree, err := NewRollupService(db).HierarchyAt(rollupToday)
	if err != nil {
		t.Fatalf("rollup: %v", err)
	}
	if len(tree) != 1 || len(tree[0].Projects) != 1 {
		t.Fatalf("unexpected tree shape: %+v", tree)
	}
	proj := tree[0].Projects[0]
	if proj.PlannedHours != 60 {
		t.Fatalf("planned = %v, want 60", proj.PlannedHours)
	}
	if proj.ActualHours != 12 {
		t.Fatalf("actual = %v, want 12", proj.ActualHours)
	}
	if proj.Budget != 3000 {
		t.Fatalf("budget = %v, want 3000", proj.Budget)
	}
	if proj.ActualCost != 600 {
		t.Fatalf("cost = %v, want 600", proj.ActualCost)
	}
	// Date range widens across both activity schedules.
	if proj.StartDate != "2025-05-20" || proj.EndDate != "2025-06-30" {
		t.Fatalf("range = %s..%s, want 2025-05-20..2025-06-30", proj.StartDate, proj.EndDate)
	}
	if proj.HoursDiff != 48 {
		t.Fatalf("hours diff = %v, want 48", proj.HoursDiff)
	}
	// Client totals mirror the single project.
	if tree[0].PlannedHours != proj.PlannedHours || tree[0].ActualCost != proj.ActualCost {
		t.Fatalf("client totals diverge from project: %+v vs %+v", tree[0], proj)
	}
}

func TestHierarchyProjectSchedulePrecedence(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "anna", models.RoleUser)
	c, p, a := seedHierarchy(t, db, 50, 0, 0)
	b := models.Activity{ProjectID: p.ID, Name: "Testing"}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("activity: %v", err)
	}

	// Per-activity schedules that would sum to 60 planned hours.
	seedSchedule(t, db, p.ID, &a.ID, "2025-06-01", "2025-06-15", 40, 2000)
	seedSchedule(t, db, p.ID, &b.ID, "2025-06-01", "2025-06-15", 20, 1000)
	// Project-level schedule governs instead.
	seedSchedule(t, db, p.ID, nil, "2025-06-01", "2025-07-31", 100, 5000)

	seedTimesheet(t, db, u.ID, c, p, a, "2025-06-03", 8, 50)
	seedTimesheet(t, db, u.ID, c, p, b, "2025-06-04", 4, 50)

	tree, err := NewRollupService(db).HierarchyAt(rollupToday)
	if err != nil {
		t.Fatalf("rollup: %v", err)
	}
	proj := tree[0].Projects[0]
	if proj.PlannedHours != 100 {
		t.Fatalf("planned = %v, want 100 from project schedule", proj.PlannedHours)
	}
	if proj.Budget != 5000 {
		t.Fatalf("budget = %v, want 5000", proj.Budget)
	}
	// Actuals are whole-project sums, counted once despite the per-activity
	// schedules still existing.
	if proj.ActualHours != 12 || proj.ActualCost != 600 {
		t.Fatalf("actuals = %v/%v, want 12/600", proj.ActualHours, proj.ActualCost)
	}
	if proj.StartDate != "2025-06-01" || proj.EndDate != "2025-07-31" {
		t.Fatalf("range = %s..%s, want project schedule range", proj.StartDate, proj.EndDate)
	}
	if proj.Status == nil || *proj.Status != models.ScheduleOpen {
		t.Fatalf("status = %v, want aperta", proj.Status)
	}
	// Activity nodes still carry their own schedules underneath.
	if len(proj.Activities) != 2 {
		t.Fatalf("expected 2 activity nodes, got %d", len(proj.Activities))
	}
}

func TestHierarchyTimesheetsOnlyNoSchedule(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "luca", models.RoleUser)
	c, p, a := seedHierarchy(t, db, 50, 0, 0)
	seedTimesheet(t, db, u.ID, c, p, a, "2025-06-03", 6, 50)

	tree, err := NewRollupService(db).HierarchyAt(rollupToday)
	if err != nil {
		t.Fatalf("rollup: %v", err)
	}
	proj := tree[0].Projects[0]
	if proj.PlannedHours != 0 || proj.Budget != 0 {
		t.Fatalf("planned/budget = %v/%v, want zero without schedules", proj.PlannedHours, proj.Budget)
	}
	if proj.ActualHours != 6 || proj.ActualCost != 300 {
		t.Fatalf("actuals = %v/%v, want 6/300", proj.ActualHours, proj.ActualCost)
	}
	if proj.StartDate != "" || proj.EndDate != "" {
		t.Fatalf("expected empty date range, got %s..%s", proj.StartDate, proj.EndDate)
	}
	if proj.Status != nil {
		t.Fatalf("expected nil status without schedule, got %v", *proj.Status)
	}
	act := proj.Activities[0]
	if len(act.Timesheets) != 1 {
		t.Fatalf("expected 1 timesheet leaf, got %d", len(act.Timesheets))
	}
	if act.Timesheets[0].Username != "luca" {
		t.Fatalf("leaf username = %s", act.Timesheets[0].Username)
	}
}

func TestHierarchyZeroPlannedNotFolded(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "gio", models.RoleUser)
	c, p, a := seedHierarchy(t, db, 50, 0, 0)

	// Schedule with zero planned hours and zero budget still contributes its
	// date range but nothing to the sums.
	seedSchedule(t, db, p.ID, &a.ID, "2025-06-01", "2025-06-15", 0, 0)
	seedTimesheet(t, db, u.ID, c, p, a, "2025-06-03", 2, 50)

	tree, err := NewRollupService(db).HierarchyAt(rollupToday)
	if err != nil {
		t.Fatalf("rollup: %v", err)
	}
	proj := tree[0].Projects[0]
	if proj.PlannedHours != 0 || proj.Budget != 0 {
		t.Fatalf("planned/budget = %v/%v, want 0/0", proj.PlannedHours, proj.Budget)
	}
	if proj.StartDate != "2025-06-01" || proj.EndDate != "2025-06-15" {
		t.Fatalf("range = %s..%s", proj.StartDate, proj.EndDate)
	}
}

func TestLatestScheduleTieBreak(t *testing.T) {
	db := setupTestDB(t)
	_, p, a := seedHierarchy(t, db, 50, 0, 0)

	seedSchedule(t, db, p.ID, &a.ID, "2025-01-01", "2025-03-31", 10, 0)
	s2 := seedSchedule(t, db, p.ID, &a.ID, "2025-04-01", "2025-06-30", 20, 0)
	// Same end date as s2, higher id: wins the tie.
	s3 := seedSchedule(t, db, p.ID, &a.ID, "2025-05-01", "2025-06-30", 30, 0)

	svc := NewRollupService(db)
	got, err := svc.latestSchedule(p.ID, &a.ID)
	if err != nil {
		t.Fatalf("latestSchedule: %v", err)
	}
	if got == nil || got.ID != s3.ID {
		t.Fatalf("expected schedule %d, got %+v (tied with %d)", s3.ID, got, s2.ID)
	}
}

func TestHierarchyRemainingDaysOverrun(t *testing.T) {
	db := setupTestDB(t)
	_, p, a := seedHierarchy(t, db, 50, 0, 0)
	seedSchedule(t, db, p.ID, &a.ID, "2025-05-01", "2025-06-05", 10, 0)

	tree, err := NewRollupService(db).HierarchyAt(rollupToday)
	if err != nil {
		t.Fatalf("rollup: %v", err)
	}
	act := tree[0].Projects[0].Activities[0]
	if act.RemainingDays != -5 {
		t.Fatalf("remaining days = %d, want -5", act.RemainingDays)
	}
	if act.WorkingDays != WorkingDays("2025-05-01", "2025-06-05") {
		t.Fatalf("working days mismatch: %d", act.WorkingDays)
	}
}
