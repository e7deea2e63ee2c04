package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2026-08-30")
	if err != nil {
		t.Fatalf("ParseDate() failed: %v", err)
	}
	if date.String() != "2026-08-30" {
		t.Errorf("String() = %s, want 2026-08-30", date.String())
	}

	if _, err := ParseDate("30/08/2026"); err == nil {
		t.Error("ParseDate() accepted a non ISO date")
	}
	if _, err := ParseDate("2026-08"); err == nil {
		t.Error("ParseDate() accepted a month without a day")
	}
}

func TestDate_AddDays(t *testing.T) {
	date, _ := ParseDate("2026-03-01")

	if got := date.AddDays(-1).String(); got != "2026-02-28" {
		t.Errorf("AddDays(-1) = %s, want 2026-02-28", got)
	}
	if got := date.AddDays(31).String(); got != "2026-04-01" {
		t.Errorf("AddDays(31) = %s, want 2026-04-01", got)
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	date, _ := ParseDate("2026-08-30")

	raw, err := json.Marshal(date)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	if string(raw) != `"2026-08-30"` {
		t.Errorf("Marshal() = %s, want \"2026-08-30\"", raw)
	}

	var parsed Date
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if !parsed.Equal(date.Time) {
		t.Errorf("round trip changed the date: %s", parsed)
	}

	var zero Date
	if err := json.Unmarshal([]byte("null"), &zero); err != nil {
		t.Fatalf("Unmarshal(null) failed: %v", err)
	}
	if !zero.IsZero() {
		t.Errorf("null should scan to the zero date, got %s", zero)
	}
}

func TestDate_ScanDropsTimeOfDay(t *testing.T) {
	var date Date
	if err := date.Scan(time.Date(2026, time.August, 30, 17, 45, 3, 0, time.UTC)); err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if date.String() != "2026-08-30" {
		t.Errorf("Scan() = %s, want 2026-08-30", date)
	}
	if date.Hour() != 0 {
		t.Errorf("time of day survived the scan: %s", date.Time)
	}
}
