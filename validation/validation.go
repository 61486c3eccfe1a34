// Package validation accumulates per-field violations with stable codes that
// handlers return in error details.
package validation

import (
	"strings"
	"time"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// Date checks the YYYY-MM-DD layout used across the API.
func Date(field, value string, v Violations) {
	if value == "" {
		v[field] = "required"
		return
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		v[field] = "invalid_date"
	}
}

// DateOrder flags endField when both dates parse and end precedes start.
func DateOrder(startField, endField, start, end string, v Violations) {
	s, errS := time.Parse("2006-01-02", start)
	e, errE := time.Parse("2006-01-02", end)
	if errS != nil || errE != nil {
		return
	}
	if e.Before(s) {
		v[endField] = "before_start_date"
	}
}

// OneOf flags the field when the value is not among the allowed set.
func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_value"
}
