package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/timesheet-app/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.ProjectAssignment{},
		&models.Client{}, &models.Project{}, &models.Activity{},
		&models.Schedule{}, &models.Timesheet{}, &models.DiaryEntry{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()
	u := models.User{Username: username, FullName: "User " + username, Role: role, PasswordHash: "x", Active: true}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// seedHierarchy creates one client > project > activity chain with the given
// hourly rates.
func seedHierarchy(t *testing.T, db *gorm.DB, clientRate, projectRate, activityRate float64) (models.Client, models.Project, models.Activity) {
	t.Helper()
	c := models.Client{Name: "Acme-" + t.Name(), HourlyRate: clientRate}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	p := models.Project{ClientID: c.ID, Name: "Website", HourlyRate: projectRate}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	a := models.Activity{ProjectID: p.ID, Name: "Development", HourlyRate: activityRate}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("seed activity: %v", err)
	}
	return c, p, a
}

func seedTimesheet(t *testing.T, db *gorm.DB, userID uint, c models.Client, p models.Project, a models.Activity, workDate string, hours, rate float64) models.Timesheet {
	t.Helper()
	entry := models.Timesheet{
		UserID: userID, WorkDate: workDate,
		ClientID: c.ID, ProjectID: p.ID, ActivityID: a.ID,
		Hours: hours, EffectiveRate: rate, Cost: hours * rate,
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("seed timesheet: %v", err)
	}
	return entry
}

func seedSchedule(t *testing.T, db *gorm.DB, projectID uint, activityID *uint, start, end string, planned, budget float64) models.Schedule {
	t.Helper()
	s := models.Schedule{
		ProjectID: projectID, ActivityID: activityID,
		StartDate: start, EndDate: end,
		PlannedHours: planned, Budget: budget, Status: models.ScheduleOpen,
	}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("seed schedule: %v", err)
	}
	return s
}
