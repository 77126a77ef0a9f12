// Package db persists the inference audit log in SQLite.
package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InferenceRecord is one served (or failed) inference request.
type InferenceRecord struct {
	DatasetType string    `json:"dataset_type"`
	Samples     int       `json:"num_samples"`
	DurationMS  float64   `json:"duration_ms"`
	Status      string    `json:"status"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// InitDB opens the SQLite database and creates the schema.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS inference_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        dataset_type VARCHAR(20) NOT NULL,
        num_samples INTEGER NOT NULL,
        duration_ms REAL NOT NULL,
        status VARCHAR(10) NOT NULL,
        error_kind VARCHAR(30) DEFAULT '',
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_inference_log_created_at
        ON inference_log(created_at);
    `

	_, err = database.Exec(query)
	return err
}

// Close closes the database.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SaveInference appends one record to the audit log.
func SaveInference(rec InferenceRecord) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := database.Exec(`
        INSERT INTO inference_log (dataset_type, num_samples, duration_ms, status, error_kind, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		rec.DatasetType, rec.Samples, rec.DurationMS, rec.Status, rec.ErrorKind, rec.CreatedAt)
	return err
}

// RecentInferences returns the newest audit records, most recent first.
func RecentInferences(limit int) ([]InferenceRecord, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := database.Query(`
        SELECT dataset_type, num_samples, duration_ms, status, error_kind, created_at
        FROM inference_log
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]InferenceRecord, 0)
	for rows.Next() {
		var rec InferenceRecord
		if err := rows.Scan(&rec.DatasetType, &rec.Samples, &rec.DurationMS, &rec.Status, &rec.ErrorKind, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
