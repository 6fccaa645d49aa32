// Package db stores labeled training samples for the offline trainer.
// The serving path never opens the database.
package db

import (
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"
)

// Sample is one labeled training observation.
type Sample struct {
	Topic    string
	Accuracy float64
	AvgTime  float64
	Attempts int
	Level    string
}

var database *sql.DB

// InitDB opens the SQLite database and creates the schema if needed.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS samples (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        topic TEXT NOT NULL,
        accuracy_percent REAL NOT NULL,
        avg_time_seconds REAL NOT NULL,
        attempts INTEGER NOT NULL,
        level TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_samples_topic ON samples(topic);
    `

	_, err = database.Exec(query)
	return err
}

func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SaveSamples inserts a batch of samples in one transaction.
func SaveSamples(samples []Sample) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	tx, err := database.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
        INSERT INTO samples (topic, accuracy_percent, avg_time_seconds, attempts, level)
        VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, sample := range samples {
		if _, err := stmt.Exec(sample.Topic, sample.Accuracy, sample.AvgTime, sample.Attempts, sample.Level); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// QuerySamples returns all stored samples in insertion order.
func QuerySamples() ([]Sample, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT topic, accuracy_percent, avg_time_seconds, attempts, level
        FROM samples ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var sample Sample
		if err := rows.Scan(&sample.Topic, &sample.Accuracy, &sample.AvgTime, &sample.Attempts, &sample.Level); err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

func CountSamples() (int, error) {
	if database == nil {
		return 0, errors.New("database not initialized")
	}
	var count int
	err := database.QueryRow(`SELECT COUNT(*) FROM samples`).Scan(&count)
	return count, err
}
