package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"flightdelay/ml"
)

func initTestDB(t *testing.T) {
	t.Helper()
	if err := InitDB(filepath.Join(t.TempDir(), "flights.db")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { Close() })
}

func TestSaveFlightsKeepsUnlabeledColumnsNull(t *testing.T) {
	initTestDB(t)

	scheduled := time.Date(2017, 3, 10, 9, 0, 0, 0, time.UTC)
	records := []ml.FlightRecord{
		{
			Opera:       "Grupo LATAM",
			TipoVuelo:   "N",
			Mes:         3,
			ScheduledAt: scheduled,
			ActualAt:    scheduled.Add(20 * time.Minute),
		},
		{
			Opera:       "Sky Airline",
			TipoVuelo:   "I",
			Mes:         3,
			ScheduledAt: scheduled.Add(time.Hour),
		},
	}
	if err := SaveFlights(records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var minDiff sql.NullFloat64
	var delayed sql.NullInt64
	err := database.QueryRow(`
        SELECT min_diff, delayed FROM flights WHERE actual_at IS NULL`).Scan(&minDiff, &delayed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if minDiff.Valid || delayed.Valid {
		t.Fatalf("expected NULL min_diff and delayed for a flight without an actual departure, got %v / %v", minDiff, delayed)
	}

	err = database.QueryRow(`
        SELECT min_diff, delayed FROM flights WHERE actual_at IS NOT NULL`).Scan(&minDiff, &delayed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !minDiff.Valid || minDiff.Float64 != 20 {
		t.Fatalf("expected min_diff 20, got %v", minDiff)
	}
	if !delayed.Valid || delayed.Int64 != 1 {
		t.Fatalf("expected delayed 1, got %v", delayed)
	}
}

func TestQueryFlightsRoundTrip(t *testing.T) {
	initTestDB(t)

	scheduled := time.Date(2017, 7, 2, 23, 30, 0, 0, time.UTC)
	records := []ml.FlightRecord{
		{
			Opera:       "Copa Air",
			TipoVuelo:   "I",
			Mes:         7,
			ScheduledAt: scheduled,
		},
	}
	if err := SaveFlights(records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := QueryFlights(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 record, got %d", len(loaded))
	}
	if loaded[0].Opera != "Copa Air" || !loaded[0].ScheduledAt.Equal(scheduled) {
		t.Fatalf("unexpected record: %+v", loaded[0])
	}
	if !loaded[0].ActualAt.IsZero() {
		t.Fatalf("expected zero actual time, got %v", loaded[0].ActualAt)
	}
}
