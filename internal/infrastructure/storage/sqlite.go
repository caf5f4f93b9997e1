// Package storage persists the audit trail of export runs in SQLite.
package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for export records.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository.
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with a SQLite database at dbPath.
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveRecord saves or updates an export record, keyed by job ID.
func (s *Storage) SaveRecord(record *ExportRecord) error {
	query := `
	INSERT OR REPLACE INTO export_records
	(job_id, account_id, year, status, error_message,
	 fetched_count, filtered_count, full_matches, partial_matches, anomalies,
	 unmatched_count, final_count, removed_count, final_filename,
	 removed_filename, dry_run, started_at, completed_at, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		record.JobID,
		record.AccountID,
		record.Year,
		record.Status,
		record.ErrorMessage,
		record.FetchedCount,
		record.FilteredCount,
		record.FullMatches,
		record.PartialMatches,
		record.Anomalies,
		record.UnmatchedCount,
		record.FinalCount,
		record.RemovedCount,
		record.FinalFilename,
		record.RemovedFilename,
		record.DryRun,
		record.StartedAt,
		record.CompletedAt,
		record.DurationMs,
	)

	return err
}

const recordColumns = `id, job_id, account_id, year, status, error_message,
	fetched_count, filtered_count, full_matches, partial_matches, anomalies,
	unmatched_count, final_count, removed_count, final_filename,
	removed_filename, dry_run, started_at, completed_at, duration_ms`

func scanRecord(row interface{ Scan(...any) error }) (*ExportRecord, error) {
	record := &ExportRecord{}
	err := row.Scan(
		&record.ID,
		&record.JobID,
		&record.AccountID,
		&record.Year,
		&record.Status,
		&record.ErrorMessage,
		&record.FetchedCount,
		&record.FilteredCount,
		&record.FullMatches,
		&record.PartialMatches,
		&record.Anomalies,
		&record.UnmatchedCount,
		&record.FinalCount,
		&record.RemovedCount,
		&record.FinalFilename,
		&record.RemovedFilename,
		&record.DryRun,
		&record.StartedAt,
		&record.CompletedAt,
		&record.DurationMs,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetRecord retrieves a record by job ID.
func (s *Storage) GetRecord(jobID string) (*ExportRecord, error) {
	row := s.db.QueryRow(`SELECT `+recordColumns+` FROM export_records WHERE job_id = ?`, jobID)
	return scanRecord(row)
}

// GetRecentRecords returns the most recent records, newest first.
func (s *Storage) GetRecentRecords(limit int) ([]*ExportRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`SELECT `+recordColumns+` FROM export_records ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*ExportRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetStats returns aggregate statistics over all runs.
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{}

	query := `
	SELECT
		COUNT(*) as total,
		COUNT(CASE WHEN status = 'success' THEN 1 END) as success,
		COUNT(CASE WHEN status = 'failed' THEN 1 END) as failed,
		COUNT(CASE WHEN status = 'dry-run' THEN 1 END) as dry_run,
		COALESCE(SUM(final_count), 0) as total_exported,
		COALESCE(SUM(removed_count), 0) as total_removed,
		COALESCE(AVG(duration_ms), 0) as avg_duration
	FROM export_records
	`

	var avgDuration float64
	err := s.db.QueryRow(query).Scan(
		&stats.TotalRuns,
		&stats.SuccessCount,
		&stats.FailedCount,
		&stats.DryRunCount,
		&stats.TotalExported,
		&stats.TotalRemoved,
		&avgDuration,
	)
	if err != nil {
		return nil, err
	}
	stats.AvgDurationMs = int64(avgDuration)

	return stats, nil
}
