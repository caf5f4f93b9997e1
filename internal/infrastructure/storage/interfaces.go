package storage

// Repository defines the storage interface for export-run records.
// An interface here keeps the orchestrator and API testable with mocks and
// leaves room for a different backing store later.
type Repository interface {
	// SaveRecord saves or updates an export record.
	SaveRecord(record *ExportRecord) error

	// GetRecord retrieves a record by job ID.
	GetRecord(jobID string) (*ExportRecord, error)

	// GetRecentRecords returns the most recent records, newest first.
	GetRecentRecords(limit int) ([]*ExportRecord, error)

	// GetStats returns aggregate statistics over all runs.
	GetStats() (*Stats, error)

	Close() error
}
