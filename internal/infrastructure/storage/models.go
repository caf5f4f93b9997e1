package storage

import "time"

// ExportRecord is the persisted audit entry for one export run.
type ExportRecord struct {
	ID              int64     `json:"id"`
	JobID           string    `json:"job_id"`
	AccountID       string    `json:"account_id"`
	Year            int       `json:"year"`
	Status          string    `json:"status"` // "success", "failed", "dry-run"
	ErrorMessage    string    `json:"error_message,omitempty"`
	FetchedCount    int       `json:"fetched_count"`
	FilteredCount   int       `json:"filtered_count"`
	FullMatches     int       `json:"full_matches"`
	PartialMatches  int       `json:"partial_matches"`
	Anomalies       int       `json:"anomalies"`
	UnmatchedCount  int       `json:"unmatched_count"`
	FinalCount      int       `json:"final_count"`
	RemovedCount    int       `json:"removed_count"`
	FinalFilename   string    `json:"final_filename"`
	RemovedFilename string    `json:"removed_filename,omitempty"`
	DryRun          bool      `json:"dry_run"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	DurationMs      int64     `json:"duration_ms"`
}

// Stats contains aggregate export statistics.
type Stats struct {
	TotalRuns     int   `json:"total_runs"`
	SuccessCount  int   `json:"success_count"`
	FailedCount   int   `json:"failed_count"`
	DryRunCount   int   `json:"dry_run_count"`
	TotalExported int   `json:"total_exported"`
	TotalRemoved  int   `json:"total_removed"`
	AvgDurationMs int64 `json:"avg_duration_ms"`
}
