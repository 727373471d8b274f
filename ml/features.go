package ml

import (
	"errors"
	"strconv"
	"time"
)

const TimeLayout = "2006-01-02 15:04:05"

const ThresholdMinutes = 15.0

const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
	PeriodNight     = "night"
)

type FlightRecord struct {
	Opera     string `json:"OPERA"`
	TipoVuelo string `json:"TIPOVUELO"`
	Mes       int    `json:"MES"`

	ScheduledAt time.Time `json:"-"`
	ActualAt    time.Time `json:"-"`
}

type EngineeredRow struct {
	FlightRecord

	PeriodOfDay string
	HighSeason  int
	MinuteDiff  float64
	Delayed     int
}

// morning 05:00-11:59, afternoon 12:00-18:59, night otherwise; bounds are
// inclusive so boundary minutes always land in a bucket
func PeriodOfDay(t time.Time) string {
	minute := t.Hour()*60 + t.Minute()
	switch {
	case minute >= 5*60 && minute < 12*60:
		return PeriodMorning
	case minute >= 12*60 && minute < 19*60:
		return PeriodAfternoon
	default:
		return PeriodNight
	}
}

func HighSeason(t time.Time) int {
	month, day := t.Month(), t.Day()
	switch {
	case month == time.December && day >= 15:
		return 1
	case month == time.January || month == time.February:
		return 1
	case month == time.March && day <= 3:
		return 1
	case month == time.July && day >= 15:
		return 1
	case month == time.September && day >= 11:
		return 1
	}
	return 0
}

func MinuteDiff(scheduled, actual time.Time) float64 {
	return actual.Sub(scheduled).Minutes()
}

func DelayLabel(minuteDiff float64) int {
	if minuteDiff > ThresholdMinutes {
		return 1
	}
	return 0
}

func Engineer(record FlightRecord) (EngineeredRow, error) {
	if record.ScheduledAt.IsZero() {
		return EngineeredRow{}, errors.New("scheduled timestamp is required")
	}
	row := EngineeredRow{
		FlightRecord: record,
		PeriodOfDay:  PeriodOfDay(record.ScheduledAt),
		HighSeason:   HighSeason(record.ScheduledAt),
	}
	if !record.ActualAt.IsZero() {
		row.MinuteDiff = MinuteDiff(record.ScheduledAt, record.ActualAt)
		row.Delayed = DelayLabel(row.MinuteDiff)
	}
	return row, nil
}

func DummyColumns(record FlightRecord) []string {
	return []string{
		"OPERA_" + record.Opera,
		"TIPOVUELO_" + record.TipoVuelo,
		"MES_" + strconv.Itoa(record.Mes),
	}
}

func Encode(records []FlightRecord, vocab *Vocabulary) ([][]float64, error) {
	if vocab == nil || vocab.Size() == 0 {
		return nil, errors.New("vocabulary is empty")
	}
	vectors := make([][]float64, len(records))
	for i, record := range records {
		vector := make([]float64, vocab.Size())
		for _, column := range DummyColumns(record) {
			if idx, ok := vocab.Index(column); ok {
				vector[idx] = 1
			}
		}
		vectors[i] = vector
	}
	return vectors, nil
}
