package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/timesheet-app/auth"
	"github.com/diewo77/timesheet-app/httpx"
	"github.com/diewo77/timesheet-app/internal/handlers"
	"github.com/diewo77/timesheet-app/internal/models"
	"github.com/diewo77/timesheet-app/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth verifies the session still points at an active account.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ? AND active = ?", uid, true).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	rates := services.NewRateService(db)
	users := services.NewUserService(db)
	catalog := services.NewCatalogService(db)
	schedules := services.NewScheduleService(db)
	timesheets := services.NewTimesheetService(db, rates)
	rollup := services.NewRollupService(db)
	reports := services.NewReportService(db, schedules)
	diary := services.NewDiaryService(db)

	authHandler := handlers.NewAuthHandler(db, users)
	authHandler.Register(mux)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}
	// Restrict a route to a subset of methods before dispatching.
	methods := func(allow string, get, post http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && get != nil:
				get(w, r)
			case r.Method == http.MethodPost && post != nil:
				post(w, r)
			default:
				w.Header().Set("Allow", allow)
				httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			}
		}
	}

	uh := handlers.NewUserHandler(db, users)
	mux.Handle("/users", protected(methods("GET,POST", uh.List, uh.Create)))
	mux.Handle("/users/update", protected(uh.Update))
	mux.Handle("/users/active", protected(uh.SetActive))
	mux.Handle("/users/password", protected(uh.ResetPassword))
	mux.Handle("/users/tabs", protected(uh.UpdateTabs))
	mux.Handle("/assignments", protected(uh.Assign))
	mux.Handle("/assignments/users", protected(uh.ProjectUsers))
	mux.Handle("/assignments/projects", protected(uh.MyProjects))

	ch := handlers.NewClientHandler(db, catalog)
	mux.Handle("/clients", protected(methods("GET,POST", ch.List, ch.Create)))
	mux.Handle("/clients/update", protected(ch.Update))
	mux.Handle("/clients/delete", protected(ch.Delete))

	ph := handlers.NewProjectHandler(db, catalog)
	mux.Handle("/projects", protected(methods("GET,POST", ph.List, ph.Create)))
	mux.Handle("/projects/update", protected(ph.Update))
	mux.Handle("/projects/closed", protected(ph.SetClosed))
	mux.Handle("/projects/delete", protected(ph.Delete))

	ah := handlers.NewActivityHandler(db, catalog)
	mux.Handle("/activities", protected(methods("GET,POST", ah.List, ah.Create)))
	mux.Handle("/activities/update", protected(ah.Update))
	mux.Handle("/activities/delete", protected(ah.Delete))

	th := handlers.NewTimesheetHandler(db, timesheets, users)
	mux.Handle("/timesheets", protected(methods("GET,POST", th.Day, th.Create)))
	mux.Handle("/timesheets/delete", protected(th.Delete))
	mux.Handle("/timesheets/month", protected(th.Month))

	sh := handlers.NewScheduleHandler(db, schedules)
	mux.Handle("/schedules", protected(methods("GET,POST", sh.List, sh.Create)))
	mux.Handle("/schedules/update", protected(sh.Update))
	mux.Handle("/schedules/status", protected(sh.SetStatus))
	mux.Handle("/schedules/delete", protected(sh.Delete))
	mux.Handle("/schedules/control", protected(sh.Control))

	rl := handlers.NewRollupHandler(db, rollup)
	mux.Handle("/rollup", protected(rl.Hierarchy))

	rh := handlers.NewReportHandler(db, reports, schedules)
	mux.Handle("/reports/client", protected(rh.Client))
	mux.Handle("/reports/client/pdf", protected(rh.ClientPDF))
	mux.Handle("/reports/project", protected(rh.Project))
	mux.Handle("/reports/project/pdf", protected(rh.ProjectPDF))
	mux.Handle("/reports/period", protected(rh.Period))
	mux.Handle("/reports/period/pdf", protected(rh.PeriodPDF))
	mux.Handle("/reports/user", protected(rh.User))
	mux.Handle("/reports/user/pdf", protected(rh.UserPDF))
	mux.Handle("/reports/general", protected(rh.General))
	mux.Handle("/reports/general/pdf", protected(rh.GeneralPDF))
	mux.Handle("/reports/schedule", protected(rh.Schedule))
	mux.Handle("/reports/schedule/pdf", protected(rh.SchedulePDF))
	mux.Handle("/reports/filtered", protected(rh.Filtered))
	mux.Handle("/reports/filtered/csv", protected(rh.FilteredCSV))

	dh := handlers.NewDiaryHandler(db, diary)
	mux.Handle("/diary", protected(methods("GET,POST", dh.List, dh.Create)))
	mux.Handle("/diary/entry", protected(dh.Get))
	mux.Handle("/diary/update", protected(dh.Update))
	mux.Handle("/diary/delete", protected(dh.Delete))
	mux.Handle("/diary/toggle", protected(dh.ToggleCompleted))
	mux.Handle("/diary/reminders", protected(dh.PendingReminders))

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Time Planning API"))
	})

	return withRecover(withLogging(mux))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
