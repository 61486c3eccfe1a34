package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/timesheet-app/httpx"
	"github.com/diewo77/timesheet-app/internal/services"
)

type RollupHandler struct {
	DB     *gorm.DB
	Rollup *services.RollupService
}

func NewRollupHandler(db *gorm.DB, rollup *services.RollupService) *RollupHandler {
	return &RollupHandler{DB: db, Rollup: rollup}
}

// Hierarchy returns the full client > project > activity tree with planned
// and actual figures merged at every level.
func (h *RollupHandler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	tree, err := h.Rollup.Hierarchy()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "rollup_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, tree)
}
