package validation

import "testing"

func TestRequired(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	Required("other", "ok", v)
	if v["name"] != "required" {
		t.Errorf("blank field not flagged: %v", v)
	}
	if _, ok := v["other"]; ok {
		t.Errorf("valid field flagged: %v", v)
	}
}

func TestFloatChecks(t *testing.T) {
	v := Violations{}
	PositiveFloat("hours", 0, v)
	NonNegativeFloat("rate", -1, v)
	RangeFloat("hours2", 25, 0, 24, v)
	if v["hours"] != "must_be_positive" || v["rate"] != "must_not_be_negative" || v["hours2"] != "out_of_range" {
		t.Errorf("violations: %v", v)
	}

	v = Violations{}
	PositiveFloat("hours", 0.5, v)
	NonNegativeFloat("rate", 0, v)
	RangeFloat("hours2", 24, 0, 24, v)
	if !v.Empty() {
		t.Errorf("valid values flagged: %v", v)
	}
}

func TestDate(t *testing.T) {
	v := Violations{}
	Date("d1", "2025-06-03", v)
	Date("d2", "03/06/2025", v)
	Date("d3", "", v)
	if _, ok := v["d1"]; ok {
		t.Errorf("valid date flagged: %v", v)
	}
	if v["d2"] != "invalid_date" || v["d3"] != "required" {
		t.Errorf("violations: %v", v)
	}
}

func TestDateOrder(t *testing.T) {
	v := Violations{}
	DateOrder("start", "end", "2025-06-10", "2025-06-01", v)
	if v["end"] != "before_start_date" {
		t.Errorf("reversed range not flagged: %v", v)
	}

	v = Violations{}
	DateOrder("start", "end", "2025-06-01", "2025-06-01", v)
	DateOrder("start", "end2", "garbage", "2025-06-01", v)
	if !v.Empty() {
		t.Errorf("same-day or unparseable flagged: %v", v)
	}
}

func TestOneOf(t *testing.T) {
	v := Violations{}
	OneOf("status", "aperta", []string{"aperta", "chiusa"}, v)
	OneOf("status2", "archiviata", []string{"aperta", "chiusa"}, v)
	if _, ok := v["status"]; ok {
		t.Errorf("allowed value flagged: %v", v)
	}
	if v["status2"] != "invalid_value" {
		t.Errorf("violations: %v", v)
	}
}
