package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(jobID string, startedAt time.Time) *ExportRecord {
	return &ExportRecord{
		JobID:          jobID,
		AccountID:      "acct-1",
		Year:           2024,
		Status:         "success",
		FetchedCount:   120,
		FilteredCount:  80,
		FullMatches:    5,
		PartialMatches: 2,
		FinalCount:     70,
		RemovedCount:   12,
		FinalFilename:  "Neo_Transactions_2024_Filtered_2025-01-01.csv",
		StartedAt:      startedAt,
		CompletedAt:    startedAt.Add(3 * time.Second),
		DurationMs:     3000,
	}
}

func TestStorage_SaveAndGetRecord(t *testing.T) {
	s := newTestStorage(t)

	record := testRecord("job-1", time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveRecord(record))

	got, err := s.GetRecord("job-1")
	require.NoError(t, err)
	assert.Equal(t, "acct-1", got.AccountID)
	assert.Equal(t, 2024, got.Year)
	assert.Equal(t, 70, got.FinalCount)
	assert.Equal(t, 12, got.RemovedCount)
	assert.Equal(t, "success", got.Status)
}

func TestStorage_SaveRecordUpsertsByJobID(t *testing.T) {
	s := newTestStorage(t)

	record := testRecord("job-1", time.Now().UTC())
	require.NoError(t, s.SaveRecord(record))

	record.Status = "failed"
	record.ErrorMessage = "fetch failed"
	require.NoError(t, s.SaveRecord(record))

	got, err := s.GetRecord("job-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Equal(t, "fetch failed", got.ErrorMessage)
}

func TestStorage_GetRecord_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetRecord("missing")
	assert.Error(t, err)
}

func TestStorage_GetRecentRecords(t *testing.T) {
	s := newTestStorage(t)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRecord(testRecord("job-old", base)))
	require.NoError(t, s.SaveRecord(testRecord("job-new", base.Add(time.Hour))))

	records, err := s.GetRecentRecords(10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "job-new", records[0].JobID)
	assert.Equal(t, "job-old", records[1].JobID)

	limited, err := s.GetRecentRecords(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStorage_GetStats(t *testing.T) {
	s := newTestStorage(t)

	now := time.Now().UTC()
	require.NoError(t, s.SaveRecord(testRecord("job-1", now)))

	failed := testRecord("job-2", now.Add(time.Minute))
	failed.Status = "failed"
	require.NoError(t, s.SaveRecord(failed))

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 1, stats.FailedCount)
	assert.Equal(t, 140, stats.TotalExported)
	assert.Equal(t, 24, stats.TotalRemoved)
}

func TestStorage_MigrationsAreIdempotent(t *testing.T) {
	s := newTestStorage(t)
	// A second run over the same connection must be a no-op.
	require.NoError(t, s.runMigrations())
}
