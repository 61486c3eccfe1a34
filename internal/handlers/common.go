package handlers

import (
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/diewo77/timesheet-app/auth"
	"github.com/diewo77/timesheet-app/httpx"
	"github.com/diewo77/timesheet-app/internal/models"
)

// queryID reads a uint id from the named query parameter, 0 when absent or
// malformed.
func queryID(r *http.Request, name string) uint {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}

func queryBool(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// currentUser loads the session user, writing 401 on failure.
func currentUser(db *gorm.DB, w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok || uid == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	return &user, true
}

// requireAdmin loads the session user and writes 403 unless it is an admin.
func requireAdmin(db *gorm.DB, w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := currentUser(db, w, r)
	if !ok {
		return nil, false
	}
	if !user.IsAdmin() {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return nil, false
	}
	return user, true
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}
