package services

import (
	"errors"
	"testing"
	"time"

	"github.com/diewo77/timesheet-app/internal/models"
)

func TestDiaryCreateRequiresAnchor(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "anna", models.RoleUser)

	svc := NewDiaryService(db)
	_, err := svc.Create(u.ID, DiaryInput{Content: "floating note"})
	if !errors.Is(err, ErrDiaryUnanchored) {
		t.Fatalf("expected ErrDiaryUnanchored, got %v", err)
	}

	c, _, _ := seedHierarchy(t, db, 50, 0, 0)
	entry, err := svc.Create(u.ID, DiaryInput{ClientID: &c.ID, Content: "  call referent  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if entry.Content != "call referent" {
		t.Fatalf("content = %q, want trimmed", entry.Content)
	}
}

func TestDiaryListOrdering(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "anna", models.RoleUser)
	c, _, _ := seedHierarchy(t, db, 50, 0, 0)
	svc := NewDiaryService(db)

	reminder := "2025-06-12"
	low, err := svc.Create(u.ID, DiaryInput{ClientID: &c.ID, Content: "low", Priority: 0})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	withReminder, err := svc.Create(u.ID, DiaryInput{ClientID: &c.ID, Content: "reminded", Priority: 0, ReminderDate: &reminder})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	high, err := svc.Create(u.ID, DiaryInput{ClientID: &c.ID, Content: "urgent", Priority: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, err := svc.List(DiaryFilter{}, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	// Priority first, then entries with a reminder before those without.
	if rows[0].ID != high.ID || rows[1].ID != withReminder.ID || rows[2].ID != low.ID {
		t.Fatalf("order: %d %d %d", rows[0].ID, rows[1].ID, rows[2].ID)
	}
	if rows[0].ClientName != c.Name || rows[0].UserName == "" {
		t.Fatalf("joined names: %+v", rows[0])
	}
}

func TestDiaryToggleAndHideCompleted(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "anna", models.RoleUser)
	c, _, _ := seedHierarchy(t, db, 50, 0, 0)
	svc := NewDiaryService(db)

	entry, err := svc.Create(u.ID, DiaryInput{ClientID: &c.ID, Content: "todo"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.ToggleCompleted(entry.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	hidden, err := svc.List(DiaryFilter{}, today)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(hidden) != 0 {
		t.Fatalf("completed entry should be hidden: %+v", hidden)
	}
	shown, err := svc.List(DiaryFilter{ShowCompleted: true}, today)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(shown) != 1 || !shown[0].Completed {
		t.Fatalf("show completed: %+v", shown)
	}

	// Toggling again reopens it.
	if err := svc.ToggleCompleted(entry.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	reopened, err := svc.Get(entry.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reopened == nil || reopened.Completed {
		t.Fatalf("expected reopened entry, got %+v", reopened)
	}
}

func TestCountPendingReminders(t *testing.T) {
	db := setupTestDB(t)
	u1 := seedUser(t, db, "anna", models.RoleUser)
	u2 := seedUser(t, db, "luca", models.RoleUser)
	c, _, _ := seedHierarchy(t, db, 50, 0, 0)
	svc := NewDiaryService(db)

	due := "2025-06-10"
	future := "2025-07-01"
	if _, err := svc.Create(u1.ID, DiaryInput{ClientID: &c.ID, Content: "due", ReminderDate: &due}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(u1.ID, DiaryInput{ClientID: &c.ID, Content: "later", ReminderDate: &future}); err != nil {
		t.Fatalf("create: %v", err)
	}
	doneEntry, err := svc.Create(u2.ID, DiaryInput{ClientID: &c.ID, Content: "done", ReminderDate: &due})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.ToggleCompleted(doneEntry.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	count, err := svc.CountPendingReminders(u1.ID, today)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("pending for u1 = %d, want 1", count)
	}
	all, err := svc.CountPendingReminders(0, today)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if all != 1 {
		t.Fatalf("pending for all = %d, want 1 (completed excluded)", all)
	}
}

func TestDiaryGetMissing(t *testing.T) {
	db := setupTestDB(t)
	row, err := NewDiaryService(db).Get(999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row != nil {
		t.Fatalf("expected nil, got %+v", row)
	}
}
