package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/timesheet-app/httpx"
	"github.com/diewo77/timesheet-app/internal/services"
	"github.com/diewo77/timesheet-app/validation"
)

// UserHandler exposes account administration and project assignments.
// Everything here except listing one's own projects is admin-only.
type UserHandler struct {
	DB    *gorm.DB
	Users *services.UserService
}

func NewUserHandler(db *gorm.DB, users *services.UserService) *UserHandler {
	return &UserHandler{DB: db, Users: users}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	users, err := h.Users.List(queryBool(r, "include_inactive"))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_users", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func validateUserInput(in services.UserInput, withPassword bool) validation.Violations {
	v := validation.Violations{}
	validation.Required("username", in.Username, v)
	validation.Required("full_name", in.FullName, v)
	validation.OneOf("role", in.Role, []string{"admin", "user"}, v)
	if withPassword {
		validation.Required("password", in.Password, v)
	}
	return v
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	var input services.UserInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validateUserInput(input, true); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	user, err := h.Users.Create(input)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusConflict, "username_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "user_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input services.UserInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validateUserInput(input, false); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.Users.Update(id, input); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "user_update_failed", nil)
		return
	}
	httpx.NoContent(w)
}

func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input struct {
		Active bool `json:"active"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := h.Users.SetActive(id, input.Active); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "user_update_failed", nil)
		return
	}
	httpx.NoContent(w)
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input struct {
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("password", input.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.Users.ResetPassword(id, input.Password); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "password_reset_failed", nil)
		return
	}
	httpx.NoContent(w)
}

func (h *UserHandler) UpdateTabs(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	id := queryID(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input struct {
		TabCalendar bool `json:"tab_calendar"`
		TabMaster   bool `json:"tab_master"`
		TabPlan     bool `json:"tab_plan"`
		TabControl  bool `json:"tab_control"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := h.Users.UpdateTabs(id, input.TabCalendar, input.TabMaster, input.TabPlan, input.TabControl); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "user_update_failed", nil)
		return
	}
	httpx.NoContent(w)
}

func (h *UserHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	var input struct {
		UserID    uint `json:"user_id"`
		ProjectID uint `json:"project_id"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.UserID == 0 || input.ProjectID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var err error
	if r.Method == http.MethodDelete {
		err = h.Users.Unassign(input.UserID, input.ProjectID)
	} else {
		err = h.Users.Assign(input.UserID, input.ProjectID)
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "assignment_failed", nil)
		return
	}
	httpx.NoContent(w)
}

func (h *UserHandler) ProjectUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.DB, w, r); !ok {
		return
	}
	projectID := queryID(r, "project_id")
	if projectID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	users, err := h.Users.UsersForProject(projectID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_assignments", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

// MyProjects lists the calling user's assigned projects. Admins may pass
// user_id to inspect someone else's.
func (h *UserHandler) MyProjects(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, w, r)
	if !ok {
		return
	}
	target := user.ID
	if uid := queryID(r, "user_id"); uid != 0 && user.IsAdmin() {
		target = uid
	}
	projects, err := h.Users.ProjectsForUser(target, queryBool(r, "only_open"))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_assignments", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, projects)
}
