// Package format renders rollup figures for display: short dates and the
// warning-flagged remaining-days/hours/budget strings shown in reports.
package format

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateShort renders YYYY-MM-DD as DD/MM. Malformed input passes through
// unchanged, empty stays empty.
func DateShort(dateStr string) string {
	if dateStr == "" {
		return ""
	}
	t, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return dateStr
	}
	return t.Format("02/01")
}

// DisplayDate renders YYYY-MM-DD as DD/MM/YYYY, same pass-through rules.
func DisplayDate(dateStr string) string {
	if dateStr == "" {
		return ""
	}
	t, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return dateStr
	}
	return t.Format("02/01/2006")
}

// RemainingDays flags overrun with a cross and the last tenth of the period
// with a warning sign. Missing dates render empty.
func RemainingDays(days int, startDate, endDate string) string {
	if startDate == "" || endDate == "" {
		return ""
	}
	totalDays := 0
	threshold := 0.0
	start, errS := time.Parse(dateLayout, startDate)
	end, errE := time.Parse(dateLayout, endDate)
	if errS == nil && errE == nil {
		totalDays = int(end.Sub(start).Hours() / 24)
		threshold = float64(totalDays) * 0.1
	}
	if days < 0 {
		return fmt.Sprintf("❌ %d", days)
	}
	if float64(days) <= threshold && totalDays > 0 {
		return fmt.Sprintf("⚠️ %d", days)
	}
	return fmt.Sprintf("%d", days)
}

// HoursDiff flags negative differences and those within a tenth of the
// planned hours. Zero planned hours render empty.
func HoursDiff(diff, planned float64) string {
	if planned == 0 {
		return ""
	}
	if diff < 0 {
		return fmt.Sprintf("❌ %.1f", diff)
	}
	if diff <= planned*0.1 {
		return fmt.Sprintf("⚠️ %.1f", diff)
	}
	return fmt.Sprintf("%.1f", diff)
}

// BudgetRemaining applies the same flagging to money, two decimals.
func BudgetRemaining(remaining, budget float64) string {
	if budget == 0 {
		return ""
	}
	if remaining < 0 {
		return fmt.Sprintf("❌ %.2f", remaining)
	}
	if remaining <= budget*0.1 {
		return fmt.Sprintf("⚠️ %.2f", remaining)
	}
	return fmt.Sprintf("%.2f", remaining)
}
