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

type ScheduleHandler struct {
	DB        *gorm.DB
	Schedules *services.ScheduleService
}

func NewScheduleHandler(db *gorm.DB, schedules *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{DB: db, Schedules: schedules}
}

func validateScheduleInput(in services.ScheduleInput) validation.Violations {
	v := validation.Violations{}
	if in.ProjectID == 0 {
		v["project_id"] = "required"
	}
	validation.Date("start_date", in.StartDate, v)
	validation.Date("end_date", in.EndDate, v)
	validation.DateOrder("start_date", "end_date", in.StartDate, in.EndDate, v)
	validation.NonNegativeFloat("planned_hours", in.PlannedHours, v)
	validation.NonNegativeFloat("budget", in.Budget, v)
	return v
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Schedules.List(queryBool(r, "only_open"))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_schedules", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	var input services.ScheduleInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validateScheduleInput(input); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	sched, err := h.Schedules.Create(input)
	if errors.Is(err, services.ErrActivityMismatch) {
		httpx.JSONError(w, http.StatusBadRequest, "activity_project_mismatch", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "schedule_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, sched)
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input services.ScheduleInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validateScheduleInput(input); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	err := h.Schedules.Update(id, input)
	if errors.Is(err, services.ErrActivityMismatch) {
		httpx.JSONError(w, http.StatusBadRequest, "activity_project_mismatch", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "schedule_update_failed", nil)
		return
	}
	httpx.NoContent(w)
}

// SetStatus flips a schedule between aperta and chiusa.
func (h *ScheduleHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input struct {
		Status string `json:"status"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	err := h.Schedules.SetStatus(id, input.Status)
	if errors.Is(err, services.ErrInvalidStatus) {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "schedule_update_failed", nil)
		return
	}
	httpx.NoContent(w)
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Schedules.Delete(id); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "schedule_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Control returns the planned-versus-actual snapshot for every schedule.
func (h *ScheduleHandler) Control(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Schedules.ControlData(time.Now())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "control_data_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
