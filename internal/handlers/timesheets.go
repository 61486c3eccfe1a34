package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/timesheet-app/httpx"
	"github.com/diewo77/timesheet-app/internal/services"
	"github.com/diewo77/timesheet-app/validation"
)

type TimesheetHandler struct {
	DB         *gorm.DB
	Timesheets *services.TimesheetService
	Users      *services.UserService
}

func NewTimesheetHandler(db *gorm.DB, timesheets *services.TimesheetService, users *services.UserService) *TimesheetHandler {
	return &TimesheetHandler{DB: db, Timesheets: timesheets, Users: users}
}

// Create logs hours for the calling user. Non-admins must be assigned to the
// project and the activity must belong to it.
func (h *TimesheetHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	var input services.TimesheetInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Date("work_date", input.WorkDate, v)
	validation.PositiveFloat("hours", input.Hours, v)
	validation.RangeFloat("hours", input.Hours, 0, 24, v)
	if input.ClientID == 0 {
		v["client_id"] = "required"
	}
	if input.ProjectID == 0 {
		v["project_id"] = "required"
	}
	if input.ActivityID == 0 {
		v["activity_id"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if !user.IsAdmin() {
		allowed, err := h.Users.CanAccessActivity(user.ID, input.ProjectID, input.ActivityID)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "timesheet_create_failed", nil)
			return
		}
		if !allowed {
			httpx.JSONError(w, http.StatusForbidden, "not_assigned_to_project", nil)
			return
		}
	}
	entry, err := h.Timesheets.Add(user.ID, input)
	switch {
	case errors.Is(err, services.ErrProjectClosed):
		httpx.JSONError(w, http.StatusConflict, "project_closed", nil)
		return
	case errors.Is(err, services.ErrInvalidChain):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_hierarchy", nil)
		return
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "timesheet_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *TimesheetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	err := h.Timesheets.Delete(id, user.ID, user.IsAdmin())
	switch {
	case errors.Is(err, services.ErrEntryNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	case errors.Is(err, services.ErrNotOwner):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "timesheet_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Day lists entries for one date. Non-admins only see their own.
func (h *TimesheetHandler) Day(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	workDate := r.URL.Query().Get("date")
	v := validation.Violations{}
	validation.Date("date", workDate, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	userFilter := user.ID
	if user.IsAdmin() && queryBool(r, "all") {
		userFilter = 0
	}
	entries, err := h.Timesheets.DayEntries(workDate, userFilter)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_timesheets", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

// Month returns the per-day hour totals for the calendar view; month is
// "YYYY-MM".
func (h *TimesheetHandler) Month(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	month := r.URL.Query().Get("month")
	if len(month) != 7 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_month", nil)
		return
	}
	userFilter := user.ID
	if user.IsAdmin() && queryBool(r, "all") {
		userFilter = 0
	}
	hours, err := h.Timesheets.MonthHours(month, userFilter)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_timesheets", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, hours)
}
