package pipeline

import (
	"testing"
	"time"

	"flightdelay/ml"
)

func testRecord(opera string, scheduled time.Time) ml.FlightRecord {
	return ml.FlightRecord{
		Opera:       opera,
		TipoVuelo:   "N",
		Mes:         int(scheduled.Month()),
		ScheduledAt: scheduled,
	}
}

func TestNewDataCleaner(t *testing.T) {
	cleaner := NewDataCleaner()
	if cleaner == nil {
		t.Fatal("NewDataCleaner returned nil")
	}
	if len(cleaner.rules) == 0 {
		t.Error("No default rules added")
	}
}

func TestMonthRule(t *testing.T) {
	rule := NewMonthRule()
	scheduled := time.Date(2023, 5, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		record  ml.FlightRecord
		wantErr bool
	}{
		{
			name:    "valid record",
			record:  ml.FlightRecord{Opera: "Grupo LATAM", TipoVuelo: "N", Mes: 5, ScheduledAt: scheduled},
			wantErr: false,
		},
		{
			name:    "month out of range",
			record:  ml.FlightRecord{Opera: "Grupo LATAM", TipoVuelo: "N", Mes: 13, ScheduledAt: scheduled},
			wantErr: true,
		},
		{
			name:    "month mismatch",
			record:  ml.FlightRecord{Opera: "Grupo LATAM", TipoVuelo: "N", Mes: 6, ScheduledAt: scheduled},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		err := rule.Apply(tt.record)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: got err=%v, wantErr=%v", tt.name, err, tt.wantErr)
		}
	}
}

func TestScheduleRule(t *testing.T) {
	rule := NewScheduleRule()
	scheduled := time.Date(2023, 5, 10, 9, 0, 0, 0, time.UTC)

	if err := rule.Apply(ml.FlightRecord{}); err == nil {
		t.Error("expected error for missing schedule")
	}

	ok := ml.FlightRecord{ScheduledAt: scheduled, ActualAt: scheduled.Add(20 * time.Minute)}
	if err := rule.Apply(ok); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := ml.FlightRecord{ScheduledAt: scheduled, ActualAt: scheduled.Add(80 * time.Hour)}
	if err := rule.Apply(bad); err == nil {
		t.Error("expected error for implausible slippage")
	}
}

func TestFlightTypeRule(t *testing.T) {
	rule := NewFlightTypeRule()

	if err := rule.Apply(ml.FlightRecord{Opera: "Sky Airline", TipoVuelo: "I"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := rule.Apply(ml.FlightRecord{Opera: "Sky Airline", TipoVuelo: "X"}); err == nil {
		t.Error("expected error for unknown type")
	}
	if err := rule.Apply(ml.FlightRecord{TipoVuelo: "N"}); err == nil {
		t.Error("expected error for missing airline")
	}
}

func TestCleanRejectsAndCounts(t *testing.T) {
	cleaner := NewDataCleaner()
	scheduled := time.Date(2023, 5, 10, 9, 0, 0, 0, time.UTC)

	records := []ml.FlightRecord{
		testRecord("Grupo LATAM", scheduled),
		testRecord("Grupo LATAM", scheduled), // duplicate
		{Opera: "Sky Airline", TipoVuelo: "N", Mes: 13, ScheduledAt: scheduled},
	}

	cleaned, issues := cleaner.Clean(records)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 clean record, got %d", len(cleaned))
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}

	stats := cleaner.Stats()
	if stats.TotalProcessed != 3 || stats.Passed != 1 || stats.Rejected != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Issues["duplicate_detection"] != 1 {
		t.Fatalf("expected duplicate issue, got %+v", stats.Issues)
	}
}
