package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/timesheet-app/httpx"
	"github.com/diewo77/timesheet-app/internal/services"
	"github.com/diewo77/timesheet-app/validation"
)

type ActivityHandler struct {
	DB      *gorm.DB
	Catalog *services.CatalogService
}

func NewActivityHandler(db *gorm.DB, catalog *services.CatalogService) *ActivityHandler {
	return &ActivityHandler{DB: db, Catalog: catalog}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	activities, err := h.Catalog.ListActivities(queryID(r, "project_id"), queryBool(r, "only_open"))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_activities", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, activities)
}

func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	var input services.ActivityInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.NonNegativeFloat("hourly_rate", input.HourlyRate, v)
	if input.ProjectID == 0 {
		v["project_id"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	activity, err := h.Catalog.CreateActivity(input)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusConflict, "name_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "activity_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, activity)
}

func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input services.ActivityInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.NonNegativeFloat("hourly_rate", input.HourlyRate, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.Catalog.UpdateActivity(id, input); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "activity_update_failed", nil)
		return
	}
	httpx.NoContent(w)
}

func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Catalog.DeleteActivity(id); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "activity_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
