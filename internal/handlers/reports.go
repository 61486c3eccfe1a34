package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/timesheet-app/httpx"
	"github.com/diewo77/timesheet-app/internal/export"
	"github.com/diewo77/timesheet-app/internal/services"
	"github.com/diewo77/timesheet-app/pdf"
	"github.com/diewo77/timesheet-app/validation"
)

type ReportHandler struct {
	DB        *gorm.DB
	Reports   *services.ReportService
	Schedules *services.ScheduleService
}

func NewReportHandler(db *gorm.DB, reports *services.ReportService, schedules *services.ScheduleService) *ReportHandler {
	return &ReportHandler{DB: db, Reports: reports, Schedules: schedules}
}

func sendPDF(w http.ResponseWriter, filename string, data []byte, err error) {
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func requirePeriod(r *http.Request, w http.ResponseWriter) (string, string, bool) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")
	v := validation.Violations{}
	validation.Date("start_date", start, v)
	validation.Date("end_date", end, v)
	validation.DateOrder("start_date", "end_date", start, end, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return "", "", false
	}
	return start, end, true
}

func (h *ReportHandler) clientReport(w http.ResponseWriter, r *http.Request) (*services.ClientReport, bool) {
	id := queryID(r, "client_id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	report, err := h.Reports.ByClient(id, r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "report_failed", nil)
		return nil, false
	}
	if report == nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return nil, false
	}
	return report, true
}

func (h *ReportHandler) Client(w http.ResponseWriter, r *http.Request) {
	if report, ok := h.clientReport(w, r); ok {
		httpx.JSON(w, http.StatusOK, report)
	}
}

func (h *ReportHandler) ClientPDF(w http.ResponseWriter, r *http.Request) {
	report, ok := h.clientReport(w, r)
	if !ok {
		return
	}
	data, err := pdf.ClientReport(report)
	sendPDF(w, "report_cliente.pdf", data, err)
}

func (h *ReportHandler) projectReport(w http.ResponseWriter, r *http.Request) (*services.ProjectReport, bool) {
	id := queryID(r, "project_id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	report, err := h.Reports.ByProject(id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "report_failed", nil)
		return nil, false
	}
	if report == nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return nil, false
	}
	return report, true
}

func (h *ReportHandler) Project(w http.ResponseWriter, r *http.Request) {
	if report, ok := h.projectReport(w, r); ok {
		httpx.JSON(w, http.StatusOK, report)
	}
}

func (h *ReportHandler) ProjectPDF(w http.ResponseWriter, r *http.Request) {
	report, ok := h.projectReport(w, r)
	if !ok {
		return
	}
	data, err := pdf.ProjectReport(report)
	sendPDF(w, "report_commessa.pdf", data, err)
}

func (h *ReportHandler) periodReport(w http.ResponseWriter, r *http.Request) (*services.PeriodReport, bool) {
	start, end, ok := requirePeriod(r, w)
	if !ok {
		return nil, false
	}
	report, err := h.Reports.ByPeriod(start, end, queryID(r, "client_id"), queryID(r, "project_id"))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "report_failed", nil)
		return nil, false
	}
	return report, true
}

func (h *ReportHandler) Period(w http.ResponseWriter, r *http.Request) {
	if report, ok := h.periodReport(w, r); ok {
		httpx.JSON(w, http.StatusOK, report)
	}
}

func (h *ReportHandler) PeriodPDF(w http.ResponseWriter, r *http.Request) {
	report, ok := h.periodReport(w, r)
	if !ok {
		return
	}
	data, err := pdf.PeriodReport(report)
	sendPDF(w, "report_periodo.pdf", data, err)
}

func (h *ReportHandler) userReport(w http.ResponseWriter, r *http.Request) (*services.UserReport, bool) {
	id := queryID(r, "user_id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	start, end, ok := requirePeriod(r, w)
	if !ok {
		return nil, false
	}
	report, err := h.Reports.ByUser(id, start, end)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "report_failed", nil)
		return nil, false
	}
	if report == nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return nil, false
	}
	return report, true
}

func (h *ReportHandler) User(w http.ResponseWriter, r *http.Request) {
	if report, ok := h.userReport(w, r); ok {
		httpx.JSON(w, http.StatusOK, report)
	}
}

func (h *ReportHandler) UserPDF(w http.ResponseWriter, r *http.Request) {
	report, ok := h.userReport(w, r)
	if !ok {
		return
	}
	data, err := pdf.UserReport(report)
	sendPDF(w, "report_utente.pdf", data, err)
}

func (h *ReportHandler) generalReport(w http.ResponseWriter, r *http.Request) (*services.GeneralReport, bool) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")
	if start != "" || end != "" {
		var ok bool
		if start, end, ok = requirePeriod(r, w); !ok {
			return nil, false
		}
	}
	report, err := h.Reports.General(start, end, time.Now())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "report_failed", nil)
		return nil, false
	}
	return report, true
}

func (h *ReportHandler) General(w http.ResponseWriter, r *http.Request) {
	if report, ok := h.generalReport(w, r); ok {
		httpx.JSON(w, http.StatusOK, report)
	}
}

func (h *ReportHandler) GeneralPDF(w http.ResponseWriter, r *http.Request) {
	report, ok := h.generalReport(w, r)
	if !ok {
		return
	}
	data, err := pdf.GeneralReport(report)
	sendPDF(w, "report_generale.pdf", data, err)
}

func (h *ReportHandler) scheduleReport(w http.ResponseWriter, r *http.Request) (*services.ScheduleReport, bool) {
	id := queryID(r, "schedule_id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	report, err := h.Schedules.Report(id, time.Now())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "report_failed", nil)
		return nil, false
	}
	if report == nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return nil, false
	}
	return report, true
}

func (h *ReportHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if report, ok := h.scheduleReport(w, r); ok {
		httpx.JSON(w, http.StatusOK, report)
	}
}

func (h *ReportHandler) SchedulePDF(w http.ResponseWriter, r *http.Request) {
	report, ok := h.scheduleReport(w, r)
	if !ok {
		return
	}
	data, err := pdf.ScheduleReport(report)
	sendPDF(w, "report_pianificazione.pdf", data, err)
}

func (h *ReportHandler) filteredReport(w http.ResponseWriter, r *http.Request) (*services.FilteredReport, bool) {
	f := services.ReportFilter{
		ClientID:   queryID(r, "client_id"),
		ProjectID:  queryID(r, "project_id"),
		ActivityID: queryID(r, "activity_id"),
		UserID:     queryID(r, "user_id"),
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
	}
	v := validation.Violations{}
	if f.StartDate != "" {
		validation.Date("start_date", f.StartDate, v)
	}
	if f.EndDate != "" {
		validation.Date("end_date", f.EndDate, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return nil, false
	}
	report, err := h.Reports.Filtered(f)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "report_failed", nil)
		return nil, false
	}
	return report, true
}

func (h *ReportHandler) Filtered(w http.ResponseWriter, r *http.Request) {
	if report, ok := h.filteredReport(w, r); ok {
		httpx.JSON(w, http.StatusOK, report)
	}
}

// FilteredCSV streams the filtered report's entries as a CSV download.
func (h *ReportHandler) FilteredCSV(w http.ResponseWriter, r *http.Request) {
	report, ok := h.filteredReport(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="report.csv"`)
	if err := export.EntriesCSV(w, report.Timesheets); err != nil {
		// headers already sent; nothing more to do
		_ = err
	}
}
