package handlers

import (
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/timesheet-app/httpx"
	"github.com/diewo77/timesheet-app/internal/services"
	"github.com/diewo77/timesheet-app/validation"
)

type DiaryHandler struct {
	DB    *gorm.DB
	Diary *services.DiaryService
}

func NewDiaryHandler(db *gorm.DB, diary *services.DiaryService) *DiaryHandler {
	return &DiaryHandler{DB: db, Diary: diary}
}

func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	f := services.DiaryFilter{
		ClientID:             queryID(r, "client_id"),
		ProjectID:            queryID(r, "project_id"),
		ActivityID:           queryID(r, "activity_id"),
		UserID:               queryID(r, "user_id"),
		ShowCompleted:        !queryBool(r, "hide_completed"),
		OnlyPendingReminders: queryBool(r, "only_pending"),
	}
	rows, err := h.Diary.List(f, time.Now())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_diary", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *DiaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	row, err := h.Diary.Get(id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_get_diary", nil)
		return
	}
	if row == nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, row)
}

func validateDiaryInput(in services.DiaryInput) validation.Violations {
	v := validation.Violations{}
	validation.Required("content", in.Content, v)
	if in.ReminderDate != nil && *in.ReminderDate != "" {
		validation.Date("reminder_date", *in.ReminderDate, v)
	}
	return v
}

func (h *DiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	var input services.DiaryInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validateDiaryInput(input); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	entry, err := h.Diary.Create(user.ID, input)
	if errors.Is(err, services.ErrDiaryUnanchored) {
		httpx.JSONError(w, http.StatusBadRequest, "missing_anchor", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "diary_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *DiaryHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input services.DiaryInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validateDiaryInput(input); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	err := h.Diary.Update(id, input)
	if errors.Is(err, services.ErrDiaryUnanchored) {
		httpx.JSONError(w, http.StatusBadRequest, "missing_anchor", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "diary_update_failed", nil)
		return
	}
	httpx.NoContent(w)
}

func (h *DiaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Diary.Delete(id); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "diary_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *DiaryHandler) ToggleCompleted(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Diary.ToggleCompleted(id); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "diary_update_failed", nil)
		return
	}
	httpx.NoContent(w)
}

// PendingReminders counts the caller's due reminders for the badge in the
// client UI.
func (h *DiaryHandler) PendingReminders(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	count, err := h.Diary.CountPendingReminders(user.ID, time.Now())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_count_reminders", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"pending": count})
}
