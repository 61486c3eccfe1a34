// Package pdf renders the report payloads as landscape A4 documents for the
// download endpoints.
package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/diewo77/timesheet-app/internal/format"
	"github.com/diewo77/timesheet-app/internal/services"
)

const companyName = "TIME-PLANNING"

func newDoc() core.Maroto {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()
	return maroto.New(cfg)
}

func addTitle(m core.Maroto, title, subtitle string) {
	m.AddRow(10, text.NewCol(12, companyName, props.Text{
		Size: 9, Align: align.Center, Color: &props.Color{Red: 84, Green: 110, Blue: 122},
	}))
	m.AddRow(12, text.NewCol(12, title, props.Text{
		Size: 18, Style: fontstyle.Bold, Align: align.Center,
		Color: &props.Color{Red: 21, Green: 101, Blue: 192},
	}))
	if subtitle != "" {
		m.AddRow(8, text.NewCol(12, subtitle, props.Text{
			Size: 10, Align: align.Center, Color: &props.Color{Red: 84, Green: 110, Blue: 122},
		}))
	}
	m.AddRow(4)
}

func addHeading(m core.Maroto, heading string) {
	m.AddRow(10, text.NewCol(12, heading, props.Text{
		Size: 12, Style: fontstyle.Bold, Top: 2,
		Color: &props.Color{Red: 21, Green: 101, Blue: 192},
	}))
}

func headerCols(labels []string, widths []int) []core.Col {
	cols := make([]core.Col, 0, len(labels))
	for i, l := range labels {
		cols = append(cols, text.NewCol(widths[i], l, props.Text{
			Size: 9, Style: fontstyle.Bold, Align: align.Center,
		}))
	}
	return cols
}

func dataCols(values []string, widths []int) []core.Col {
	cols := make([]core.Col, 0, len(values))
	for i, v := range values {
		cols = append(cols, text.NewCol(widths[i], v, props.Text{
			Size: 8, Align: align.Center,
		}))
	}
	return cols
}

func addTable(m core.Maroto, labels []string, widths []int, rows [][]string) {
	m.AddRow(8, headerCols(labels, widths)...)
	for _, r := range rows {
		m.AddRow(6, dataCols(r, widths)...)
	}
}

func addSummaryTable(m core.Maroto, heading, label, label2 string, rows []services.SummaryRow) {
	addHeading(m, heading)
	labels := []string{label, "Ore", "Costo"}
	widths := []int{6, 3, 3}
	if label2 != "" {
		labels = []string{label, label2, "Ore", "Costo"}
		widths = []int{4, 4, 2, 2}
	}
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := []string{r.Name}
		if label2 != "" {
			row = append(row, r.Name2)
		}
		row = append(row, fmt.Sprintf("%.2f", r.TotalHours), fmt.Sprintf("%.2f", r.TotalCost))
		data = append(data, row)
	}
	addTable(m, labels, widths, data)
}

func addEntriesTable(m core.Maroto, entries []services.ReportEntry) {
	addHeading(m, "Dettaglio ore")
	labels := []string{"Data", "Cliente", "Commessa", "Attività", "Utente", "Ore", "Costo"}
	widths := []int{1, 2, 2, 2, 2, 1, 2}
	data := make([][]string, 0, len(entries))
	for _, e := range entries {
		data = append(data, []string{
			format.DisplayDate(e.WorkDate),
			e.ClientName, e.ProjectName, e.ActivityName, e.FullName,
			fmt.Sprintf("%.1f", e.Hours), fmt.Sprintf("%.2f", e.Cost),
		})
	}
	addTable(m, labels, widths, data)
}

func addTotals(m core.Maroto, pairs [][2]string) {
	m.AddRow(4)
	for _, p := range pairs {
		m.AddRow(7,
			text.NewCol(6, p[0], props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
			text.NewCol(6, p[1], props.Text{Size: 10, Align: align.Left, Left: 2}),
		)
	}
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

// ClientReport renders the per-client schedule report.
func ClientReport(r *services.ClientReport) ([]byte, error) {
	m := newDoc()
	addTitle(m, "Report Cliente: "+r.Client.Name, "")

	addHeading(m, "Pianificazioni")
	labels := []string{"Commessa", "Attività", "Inizio", "Fine", "Ore pian.", "Ore eff.", "Budget", "Costo eff."}
	widths := []int{2, 2, 1, 1, 2, 2, 1, 1}
	data := make([][]string, 0, len(r.Schedules))
	for _, s := range r.Schedules {
		data = append(data, []string{
			s.ProjectName, s.ActivityName,
			format.DisplayDate(s.StartDate), format.DisplayDate(s.EndDate),
			fmt.Sprintf("%.1f", s.PlannedHours), fmt.Sprintf("%.1f", s.ActualHours),
			fmt.Sprintf("%.2f", s.Budget), fmt.Sprintf("%.2f", s.ActualCost),
		})
	}
	addTable(m, labels, widths, data)

	addTotals(m, [][2]string{
		{"Ore pianificate:", fmt.Sprintf("%.1f", r.TotalPlannedHours)},
		{"Ore effettive:", fmt.Sprintf("%.1f", r.TotalActualHours)},
		{"Budget:", fmt.Sprintf("%.2f", r.TotalBudget)},
		{"Costo effettivo:", fmt.Sprintf("%.2f", r.TotalActualCost)},
	})
	return generate(m)
}

// ProjectReport renders the per-project report.
func ProjectReport(r *services.ProjectReport) ([]byte, error) {
	m := newDoc()
	addTitle(m, "Report Commessa: "+r.Project.Name, "Cliente: "+r.ClientName)

	addSummaryTable(m, "Riepilogo attività", "Attività", "", r.ActivitiesSummary)
	addSummaryTable(m, "Riepilogo utenti", "Utente", "Username", r.UsersSummary)
	addEntriesTable(m, r.Timesheets)

	addTotals(m, [][2]string{
		{"Ore pianificate:", fmt.Sprintf("%.1f", r.TotalPlannedHours)},
		{"Ore effettive:", fmt.Sprintf("%.1f", r.TotalActualHours)},
		{"Budget:", fmt.Sprintf("%.2f", r.TotalBudget)},
		{"Costo effettivo:", fmt.Sprintf("%.2f", r.TotalActualCost)},
	})
	return generate(m)
}

// PeriodReport renders the period report.
func PeriodReport(r *services.PeriodReport) ([]byte, error) {
	m := newDoc()
	subtitle := fmt.Sprintf("Periodo: %s - %s",
		format.DisplayDate(r.StartDate), format.DisplayDate(r.EndDate))
	addTitle(m, "Report Periodo", subtitle)

	addSummaryTable(m, "Riepilogo clienti", "Cliente", "", r.ClientsSummary)
	addSummaryTable(m, "Riepilogo commesse", "Cliente", "Commessa", r.ProjectsSummary)
	addSummaryTable(m, "Riepilogo utenti", "Utente", "Username", r.UsersSummary)
	addEntriesTable(m, r.Timesheets)

	addTotals(m, [][2]string{
		{"Ore totali:", fmt.Sprintf("%.1f", r.TotalHours)},
		{"Costo totale:", fmt.Sprintf("%.2f", r.TotalCost)},
	})
	return generate(m)
}

// UserReport renders the per-user report.
func UserReport(r *services.UserReport) ([]byte, error) {
	m := newDoc()
	subtitle := fmt.Sprintf("Periodo: %s - %s",
		format.DisplayDate(r.StartDate), format.DisplayDate(r.EndDate))
	addTitle(m, "Report Utente: "+r.User.FullName, subtitle)

	addSummaryTable(m, "Riepilogo clienti", "Cliente", "", r.ClientsSummary)
	addSummaryTable(m, "Riepilogo commesse", "Cliente", "Commessa", r.ProjectsSummary)
	addSummaryTable(m, "Riepilogo attività", "Attività", "", r.ActivitiesSummary)
	addEntriesTable(m, r.Timesheets)

	addTotals(m, [][2]string{
		{"Ore totali:", fmt.Sprintf("%.1f", r.TotalHours)},
		{"Costo totale:", fmt.Sprintf("%.2f", r.TotalCost)},
		{"Giorni lavorati:", fmt.Sprintf("%d", r.WorkDays)},
		{"Media ore/giorno:", fmt.Sprintf("%.1f", r.AvgHoursPerDay)},
	})
	return generate(m)
}

func addControlTable(m core.Maroto, heading string, rows []services.ScheduleControl) {
	addHeading(m, heading)
	labels := []string{"Cliente", "Commessa", "Attività", "Fine", "Ore pian.", "Ore eff.", "Ore rim.", "Gg rim.", "Budget rim."}
	widths := []int{2, 2, 2, 1, 1, 1, 1, 1, 1}
	data := make([][]string, 0, len(rows))
	for _, s := range rows {
		data = append(data, []string{
			s.ClientName, s.ProjectName, s.ActivityName,
			format.DateShort(s.EndDate),
			fmt.Sprintf("%.1f", s.PlannedHours),
			fmt.Sprintf("%.1f", s.ActualHours),
			format.HoursDiff(s.RemainingHours, s.PlannedHours),
			format.RemainingDays(s.RemainingDays, s.StartDate, s.EndDate),
			format.BudgetRemaining(s.RemainingBudget, s.Budget),
		})
	}
	addTable(m, labels, widths, data)
}

// GeneralReport renders the dashboard report with the at-risk section.
func GeneralReport(r *services.GeneralReport) ([]byte, error) {
	m := newDoc()
	subtitle := ""
	if r.StartDate != "" && r.EndDate != "" {
		subtitle = fmt.Sprintf("Periodo: %s - %s",
			format.DisplayDate(r.StartDate), format.DisplayDate(r.EndDate))
	}
	addTitle(m, "Report Generale", subtitle)

	addTotals(m, [][2]string{
		{"Ore totali:", fmt.Sprintf("%.1f", r.TotalHours)},
		{"Costo totale:", fmt.Sprintf("%.2f", r.TotalCost)},
		{"Pianificazioni attive:", fmt.Sprintf("%d", r.NumActiveSchedules)},
		{"Pianificazioni a rischio:", fmt.Sprintf("%d", r.NumAtRisk)},
	})

	if len(r.SchedulesAtRisk) > 0 {
		addControlTable(m, "Pianificazioni a rischio", r.SchedulesAtRisk)
	}
	addControlTable(m, "Tutte le pianificazioni", r.Schedules)
	addSummaryTable(m, "Riepilogo clienti", "Cliente", "", r.ClientsSummary)
	addSummaryTable(m, "Commesse principali", "Cliente", "Commessa", r.ProjectsSummary)
	addSummaryTable(m, "Riepilogo utenti", "Utente", "Username", r.UsersSummary)
	return generate(m)
}

// ScheduleReport renders the per-schedule report.
func ScheduleReport(r *services.ScheduleReport) ([]byte, error) {
	m := newDoc()
	subtitle := fmt.Sprintf("%s / %s / %s", r.ClientName, r.ProjectName, r.ActivityName)
	addTitle(m, "Report Pianificazione", subtitle)

	addTotals(m, [][2]string{
		{"Periodo:", fmt.Sprintf("%s - %s", format.DisplayDate(r.StartDate), format.DisplayDate(r.EndDate))},
		{"Ore pianificate:", fmt.Sprintf("%.1f", r.PlannedHours)},
		{"Ore effettive:", fmt.Sprintf("%.1f", r.ActualHours)},
		{"Ore rimanenti:", fmt.Sprintf("%.1f", r.RemainingHours)},
		{"Giorni totali:", fmt.Sprintf("%d", r.TotalDays)},
		{"Giorni trascorsi:", fmt.Sprintf("%d", r.ElapsedDays)},
		{"Giorni rimanenti:", fmt.Sprintf("%d", r.RemainingDays)},
		{"Budget:", fmt.Sprintf("%.2f", r.Budget)},
		{"Costo effettivo:", fmt.Sprintf("%.2f", r.ActualCost)},
		{"Budget rimanente:", fmt.Sprintf("%.2f", r.RemainingBudget)},
	})

	addHeading(m, "Ore per utente")
	labels := []string{"Utente", "Username", "Ore", "Costo"}
	widths := []int{4, 4, 2, 2}
	data := make([][]string, 0, len(r.UserHours))
	for _, u := range r.UserHours {
		data = append(data, []string{
			u.FullName, u.Username,
			fmt.Sprintf("%.1f", u.Hours), fmt.Sprintf("%.2f", u.Cost),
		})
	}
	addTable(m, labels, widths, data)

	addHeading(m, "Dettaglio ore")
	labels = []string{"Data", "Utente", "Ore", "Costo", "Nota"}
	widths = []int{2, 3, 1, 2, 4}
	data = data[:0]
	for _, t := range r.Timesheets {
		data = append(data, []string{
			format.DisplayDate(t.WorkDate), t.FullName,
			fmt.Sprintf("%.1f", t.Hours), fmt.Sprintf("%.2f", t.Cost), t.Note,
		})
	}
	addTable(m, labels, widths, data)
	return generate(m)
}
