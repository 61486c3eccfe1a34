package services

import "time"

const dateLayout = "2006-01-02"

// parseDateOrZero is the single silent-failure boundary for date handling:
// the desktop client historically degraded missing or malformed dates to
// zero derived values instead of erroring, and callers rely on that.
func parseDateOrZero(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// WorkingDays counts Monday-Friday dates in the inclusive range [start, end].
// Missing or malformed dates, or start after end, yield 0.
func WorkingDays(startDate, endDate string) int {
	start, ok := parseDateOrZero(startDate)
	if !ok {
		return 0
	}
	end, ok := parseDateOrZero(endDate)
	if !ok {
		return 0
	}
	if start.After(end) {
		return 0
	}
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

// remainingDays is the plain calendar-day difference between endDate and
// today; negative values signal overrun. Unparseable dates yield 0.
func remainingDays(endDate string, today time.Time) int {
	end, ok := parseDateOrZero(endDate)
	if !ok {
		return 0
	}
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(t).Hours() / 24)
}
