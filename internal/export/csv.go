// Package export renders report data to CSV for download endpoints.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/diewo77/timesheet-app/internal/services"
)

// EntriesCSV writes report entries as CSV, header first.
func EntriesCSV(w io.Writer, entries []services.ReportEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"Date", "Client", "Project", "Activity", "User", "Hours", "Cost", "Note"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, e := range entries {
		row := []string{
			e.WorkDate,
			e.ClientName,
			e.ProjectName,
			e.ActivityName,
			e.FullName,
			fmt.Sprintf("%.2f", e.Hours),
			fmt.Sprintf("%.2f", e.Cost),
			e.Note,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// SummaryCSV writes one aggregate table. label and label2 name the grouping
// columns; label2 empty drops the second column.
func SummaryCSV(w io.Writer, label, label2 string, rows []services.SummaryRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{label}
	if label2 != "" {
		header = append(header, label2)
	}
	header = append(header, "Hours", "Cost")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		row := []string{r.Name}
		if label2 != "" {
			row = append(row, r.Name2)
		}
		row = append(row, fmt.Sprintf("%.2f", r.TotalHours), fmt.Sprintf("%.2f", r.TotalCost))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}
