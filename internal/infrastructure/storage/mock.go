package storage

import (
	"fmt"
	"sort"
	"sync"
)

// MockRepository is an in-memory Repository for tests.
type MockRepository struct {
	mu      sync.Mutex
	records map[string]*ExportRecord
}

var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates an empty in-memory repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{records: make(map[string]*ExportRecord)}
}

// SaveRecord stores a copy of the record keyed by job ID.
func (m *MockRepository) SaveRecord(record *ExportRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *record
	if cp.ID == 0 {
		cp.ID = int64(len(m.records) + 1)
	}
	m.records[cp.JobID] = &cp
	return nil
}

// GetRecord retrieves a record by job ID.
func (m *MockRepository) GetRecord(jobID string) (*ExportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[jobID]
	if !ok {
		return nil, fmt.Errorf("record not found: %s", jobID)
	}
	cp := *record
	return &cp, nil
}

// GetRecentRecords returns records newest first.
func (m *MockRepository) GetRecentRecords(limit int) ([]*ExportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]*ExportRecord, 0, len(m.records))
	for _, r := range m.records {
		cp := *r
		records = append(records, &cp)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// GetStats aggregates over stored records.
func (m *MockRepository) GetStats() (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &Stats{}
	var totalDuration int64
	for _, r := range m.records {
		stats.TotalRuns++
		switch r.Status {
		case "success":
			stats.SuccessCount++
		case "failed":
			stats.FailedCount++
		case "dry-run":
			stats.DryRunCount++
		}
		stats.TotalExported += r.FinalCount
		stats.TotalRemoved += r.RemovedCount
		totalDuration += r.DurationMs
	}
	if stats.TotalRuns > 0 {
		stats.AvgDurationMs = totalDuration / int64(stats.TotalRuns)
	}
	return stats, nil
}

// Close is a no-op.
func (m *MockRepository) Close() error {
	return nil
}
