package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/timesheet-app/httpx"
	"github.com/diewo77/timesheet-app/internal/services"
	"github.com/diewo77/timesheet-app/validation"
)

type ProjectHandler struct {
	DB      *gorm.DB
	Catalog *services.CatalogService
}

func NewProjectHandler(db *gorm.DB, catalog *services.CatalogService) *ProjectHandler {
	return &ProjectHandler{DB: db, Catalog: catalog}
}

// List filters by client_id, only_open and mine (restrict to the caller's
// assigned projects).
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	userFilter := uint(0)
	if queryBool(r, "mine") || !user.IsAdmin() {
		userFilter = user.ID
	}
	projects, err := h.Catalog.ListProjects(queryID(r, "client_id"), queryBool(r, "only_open"), userFilter)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_projects", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, projects)
}

func validateProjectInput(in services.ProjectInput, requireClient bool) validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.NonNegativeFloat("hourly_rate", in.HourlyRate, v)
	if requireClient && in.ClientID == 0 {
		v["client_id"] = "required"
	}
	return v
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	var input services.ProjectInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validateProjectInput(input, true); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	project, err := h.Catalog.CreateProject(input)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusConflict, "name_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "project_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input services.ProjectInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validateProjectInput(input, false); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.Catalog.UpdateProject(id, input); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "project_update_failed", nil)
		return
	}
	httpx.NoContent(w)
}

// SetClosed toggles the closed flag that blocks new timesheet entries.
func (h *ProjectHandler) SetClosed(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input struct {
		Closed bool `json:"closed"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := h.Catalog.SetProjectClosed(id, input.Closed); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "project_update_failed", nil)
		return
	}
	httpx.NoContent(w)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Catalog.DeleteProject(id); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "project_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
