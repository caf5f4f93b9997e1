package export

import (
	"time"

	"github.com/neoledger/neo-export-backend/internal/export"
)

// Options holds parameters for one export run.
type Options struct {
	AccountID string
	Year      int
	DryRun    bool

	// JobID tags the run in storage. Optional; the CLI lets the
	// orchestrator generate one.
	JobID string

	// Now anchors output filenames. Zero value means time.Now().
	Now time.Time
}

// Result summarizes one export run.
type Result struct {
	JobID          string
	Artifacts      []export.Artifact
	SavedPaths     []string
	FetchedCount   int
	FilteredCount  int
	FullMatches    int
	PartialMatches int
	Anomalies      int
	UnmatchedCount int
	FinalCount     int
	RemovedCount   int
}
