package db

import (
	"database/sql"
	"errors"
	"time"

	"flightdelay/ml"
	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InitDB initializes the SQLite database
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS flights (
        id INTEGER PRIMARY KEY,
        opera VARCHAR(50),
        tipovuelo VARCHAR(1),
        mes INTEGER,
        scheduled_at DATETIME,
        actual_at DATETIME,
        min_diff REAL,
        delayed INTEGER,
        UNIQUE(opera, tipovuelo, scheduled_at)
    );
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        opera VARCHAR(50),
        tipovuelo VARCHAR(1),
        mes INTEGER,
        predicted_label INTEGER,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY,
        model_name VARCHAR(50),
        accuracy REAL,
        precision REAL,
        recall REAL,
        trained_at DATETIME,
        data_points INTEGER
    );
    `

	_, err = database.Exec(query)
	return err
}

// Close closes the database handle
func Close() error {
	if database == nil {
		return nil
	}
	return database.Close()
}

// SaveFlights stores ingested flight records with their engineered fields
func SaveFlights(records []ml.FlightRecord) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := database.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
        INSERT OR REPLACE INTO flights (opera, tipovuelo, mes, scheduled_at, actual_at, min_diff, delayed)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, record := range records {
		row, err := ml.Engineer(record)
		if err != nil {
			tx.Rollback()
			return err
		}
		// records without an actual departure carry no label; their
		// min_diff and delayed columns stay NULL rather than a fake zero
		var actual, minDiff, delayed interface{}
		if !record.ActualAt.IsZero() {
			actual = record.ActualAt.Format(ml.TimeLayout)
			minDiff = row.MinuteDiff
			delayed = row.Delayed
		}
		_, err = stmt.Exec(
			record.Opera,
			record.TipoVuelo,
			record.Mes,
			record.ScheduledAt.Format(ml.TimeLayout),
			actual,
			minDiff,
			delayed,
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// QueryFlights returns stored flight records, newest first
func QueryFlights(limit int) ([]ml.FlightRecord, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT opera, tipovuelo, mes, scheduled_at, actual_at
        FROM flights
        ORDER BY scheduled_at DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ml.FlightRecord
	for rows.Next() {
		var record ml.FlightRecord
		var scheduled string
		var actual sql.NullString
		if err := rows.Scan(&record.Opera, &record.TipoVuelo, &record.Mes, &scheduled, &actual); err != nil {
			return nil, err
		}
		if record.ScheduledAt, err = time.Parse(ml.TimeLayout, scheduled); err != nil {
			return nil, err
		}
		if actual.Valid && actual.String != "" {
			if record.ActualAt, err = time.Parse(ml.TimeLayout, actual.String); err != nil {
				return nil, err
			}
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// SavePredictions logs served predictions alongside their inputs
func SavePredictions(records []ml.FlightRecord, labels []int) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if len(records) != len(labels) {
		return errors.New("records/labels length mismatch")
	}
	if len(records) == 0 {
		return nil
	}

	stmt, err := database.Prepare(`
        INSERT INTO predictions (opera, tipovuelo, mes, predicted_label)
        VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, record := range records {
		if _, err := stmt.Exec(record.Opera, record.TipoVuelo, record.Mes, labels[i]); err != nil {
			return err
		}
	}
	return nil
}

type TrainingRun struct {
	ModelName  string    `json:"model_name"`
	Accuracy   float64   `json:"accuracy"`
	Precision  float64   `json:"precision"`
	Recall     float64   `json:"recall"`
	TrainedAt  time.Time `json:"trained_at"`
	DataPoints int       `json:"data_points"`
}

// SaveTrainingRun records a completed training run
func SaveTrainingRun(run TrainingRun) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO training_log (model_name, accuracy, precision, recall, trained_at, data_points)
        VALUES (?, ?, ?, ?, ?, ?)`,
		run.ModelName, run.Accuracy, run.Precision, run.Recall, run.TrainedAt, run.DataPoints)
	return err
}

// LoadTrainingRuns returns past training runs, newest first
func LoadTrainingRuns() ([]TrainingRun, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT model_name, accuracy, precision, recall, trained_at, data_points
        FROM training_log
        ORDER BY trained_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]TrainingRun, 0)
	for rows.Next() {
		var run TrainingRun
		if err := rows.Scan(&run.ModelName, &run.Accuracy, &run.Precision, &run.Recall, &run.TrainedAt, &run.DataPoints); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
