// Package export orchestrates the export pipeline: fetch the full
// transaction sequence, filter the ledger, reconcile refunds, render the two
// CSV payloads, and hand them to the output sink. Each run is recorded in
// storage for the audit API.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/neoledger/neo-export-backend/internal/domain/ledger"
	"github.com/neoledger/neo-export-backend/internal/domain/matcher"
	"github.com/neoledger/neo-export-backend/internal/domain/transaction"
	csvexport "github.com/neoledger/neo-export-backend/internal/export"
	"github.com/neoledger/neo-export-backend/internal/infrastructure/storage"
	"github.com/neoledger/neo-export-backend/internal/sink"
)

// TransactionSource supplies the full transaction sequence for an account.
// The Neo API client implements this; tests use a stub.
type TransactionSource interface {
	CreditTransactions(ctx context.Context, accountID string) ([]transaction.Transaction, error)
}

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	source   TransactionSource
	matcher  *matcher.Matcher
	sink     sink.Sink
	storage  storage.Repository
	excluded []transaction.Category
	logger   *slog.Logger
}

// New creates an orchestrator. storage may be nil to skip run recording; a
// nil excluded set means the default category exclusions; a nil logger falls
// back to slog.Default().
func New(source TransactionSource, m *matcher.Matcher, out sink.Sink, store storage.Repository, excluded []transaction.Category, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		source:   source,
		matcher:  m,
		sink:     out,
		storage:  store,
		excluded: excluded,
		logger:   logger,
	}
}

// Run executes one export. The fetch stage honors ctx cancellation; once the
// sequence is materialized the reconciliation and render stages run to
// completion.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	startedAt := time.Now()
	now := opts.Now
	if now.IsZero() {
		now = startedAt
	}
	jobID := opts.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}

	o.logger.Info("starting export",
		"job_id", jobID,
		"account_id", opts.AccountID,
		"year", opts.Year,
		"dry_run", opts.DryRun,
	)

	txs, err := o.source.CreditTransactions(ctx, opts.AccountID)
	if err != nil {
		o.recordFailure(jobID, opts, startedAt, err)
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	filterCfg := ledger.YearConfig(opts.Year)
	if len(o.excluded) > 0 {
		filterCfg.ExcludedCategories = o.excluded
	}
	filtered := ledger.Filter(txs, filterCfg)
	o.logger.Debug("filtered transactions", "fetched", len(txs), "kept", len(filtered))

	matchResult := o.matcher.Reconcile(filtered)
	o.logger.Info("reconciliation complete",
		"final", len(matchResult.Final),
		"removed", len(matchResult.Removed),
		"full_matches", matchResult.FullMatches,
		"partial_matches", matchResult.PartialMatches,
		"anomalies", matchResult.Anomalies,
		"unmatched", matchResult.Unmatched,
	)

	result := &Result{
		JobID:          jobID,
		FetchedCount:   len(txs),
		FilteredCount:  len(filtered),
		FullMatches:    matchResult.FullMatches,
		PartialMatches: matchResult.PartialMatches,
		Anomalies:      matchResult.Anomalies,
		UnmatchedCount: matchResult.Unmatched,
		FinalCount:     len(matchResult.Final),
		RemovedCount:   len(matchResult.Removed),
	}

	result.Artifacts = append(result.Artifacts, csvexport.Artifact{
		Filename: csvexport.FinalFilename(opts.Year, now),
		Payload:  csvexport.RenderFinal(matchResult.Final),
	})

	// The disposition log yields an artifact only when non-empty.
	if payload := csvexport.RenderRemoved(matchResult.Removed); payload != nil {
		result.Artifacts = append(result.Artifacts, csvexport.Artifact{
			Filename: csvexport.RemovedFilename(now),
			Payload:  payload,
		})
	}

	out := o.sink
	if opts.DryRun {
		out = sink.Discard{}
	}
	for _, artifact := range result.Artifacts {
		path, err := out.Save(artifact)
		if err != nil {
			o.recordFailure(jobID, opts, startedAt, err)
			return nil, fmt.Errorf("failed to save %s: %w", artifact.Filename, err)
		}
		result.SavedPaths = append(result.SavedPaths, path)
		o.logger.Info("saved export artifact", "path", path, "bytes", len(artifact.Payload))
	}

	o.recordSuccess(jobID, opts, startedAt, result)

	return result, nil
}

func (o *Orchestrator) recordSuccess(jobID string, opts Options, startedAt time.Time, result *Result) {
	if o.storage == nil {
		return
	}

	status := "success"
	if opts.DryRun {
		status = "dry-run"
	}

	record := &storage.ExportRecord{
		JobID:          jobID,
		AccountID:      opts.AccountID,
		Year:           opts.Year,
		Status:         status,
		FetchedCount:   result.FetchedCount,
		FilteredCount:  result.FilteredCount,
		FullMatches:    result.FullMatches,
		PartialMatches: result.PartialMatches,
		Anomalies:      result.Anomalies,
		UnmatchedCount: result.UnmatchedCount,
		FinalCount:     result.FinalCount,
		RemovedCount:   result.RemovedCount,
		DryRun:         opts.DryRun,
		StartedAt:      startedAt,
		CompletedAt:    time.Now(),
	}
	record.DurationMs = record.CompletedAt.Sub(startedAt).Milliseconds()
	record.FinalFilename = result.Artifacts[0].Filename
	if len(result.Artifacts) > 1 {
		record.RemovedFilename = result.Artifacts[1].Filename
	}

	if err := o.storage.SaveRecord(record); err != nil {
		// Recording failure should not fail the export.
		o.logger.Warn("failed to record export run", "job_id", jobID, "error", err)
	}
}

func (o *Orchestrator) recordFailure(jobID string, opts Options, startedAt time.Time, runErr error) {
	if o.storage == nil {
		return
	}

	record := &storage.ExportRecord{
		JobID:        jobID,
		AccountID:    opts.AccountID,
		Year:         opts.Year,
		Status:       "failed",
		ErrorMessage: runErr.Error(),
		DryRun:       opts.DryRun,
		StartedAt:    startedAt,
		CompletedAt:  time.Now(),
	}
	record.DurationMs = record.CompletedAt.Sub(startedAt).Milliseconds()

	if err := o.storage.SaveRecord(record); err != nil {
		o.logger.Warn("failed to record export run", "job_id", jobID, "error", err)
	}
}
