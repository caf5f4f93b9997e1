// Package service manages asynchronous export jobs for the HTTP API.
//
// Jobs run on a background context so an HTTP request ending does not cancel
// the export; CancelJob cancels explicitly. Only one export may run per
// account at a time.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	appexport "github.com/neoledger/neo-export-backend/internal/application/export"
)

// JobStatus represents the current state of an export job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// ExportRequest holds parameters for starting an export.
type ExportRequest struct {
	AccountID string
	Year      int
	DryRun    bool
}

// ExportJob represents a running or finished export job.
type ExportJob struct {
	ID          string
	AccountID   string
	Year        int
	Status      JobStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Result      *appexport.Result
	Error       error

	cancelFunc context.CancelFunc
}

// ExportService starts and tracks export jobs.
type ExportService struct {
	orchestrator *appexport.Orchestrator
	logger       *slog.Logger

	jobs    map[string]*ExportJob
	jobsMu  sync.RWMutex
	running map[string]bool // accountID -> export in flight
	runMu   sync.Mutex
}

// NewExportService creates an export service around the given orchestrator.
func NewExportService(orchestrator *appexport.Orchestrator, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		orchestrator: orchestrator,
		logger:       logger,
		jobs:         make(map[string]*ExportJob),
		running:      make(map[string]bool),
	}
}

// StartExport starts a new export job asynchronously and returns its ID.
// The request context is deliberately not the job's parent: jobs outlive the
// HTTP request and are cancelled only via CancelJob.
func (s *ExportService) StartExport(_ context.Context, req ExportRequest) (string, error) {
	if req.AccountID == "" {
		return "", fmt.Errorf("account ID is required")
	}
	if req.Year <= 0 {
		return "", fmt.Errorf("year is required")
	}

	s.runMu.Lock()
	if s.running[req.AccountID] {
		s.runMu.Unlock()
		return "", fmt.Errorf("export already running for account: %s", req.AccountID)
	}
	s.running[req.AccountID] = true
	s.runMu.Unlock()

	jobID := uuid.NewString()
	jobCtx, cancel := context.WithCancel(context.Background())

	job := &ExportJob{
		ID:         jobID,
		AccountID:  req.AccountID,
		Year:       req.Year,
		Status:     StatusPending,
		StartedAt:  time.Now(),
		cancelFunc: cancel,
	}

	s.jobsMu.Lock()
	s.jobs[jobID] = job
	s.jobsMu.Unlock()

	go s.runJob(jobCtx, job, req)

	return jobID, nil
}

func (s *ExportService) runJob(ctx context.Context, job *ExportJob, req ExportRequest) {
	defer func() {
		s.runMu.Lock()
		delete(s.running, req.AccountID)
		s.runMu.Unlock()
	}()

	s.setStatus(job.ID, StatusRunning, nil, nil)

	result, err := s.orchestrator.Run(ctx, appexport.Options{
		AccountID: req.AccountID,
		Year:      req.Year,
		DryRun:    req.DryRun,
		JobID:     job.ID,
	})

	switch {
	case ctx.Err() != nil:
		s.logger.Info("export job cancelled", "job_id", job.ID)
		s.setStatus(job.ID, StatusCancelled, nil, ctx.Err())
	case err != nil:
		s.logger.Error("export job failed", "job_id", job.ID, "error", err)
		s.setStatus(job.ID, StatusFailed, nil, err)
	default:
		s.logger.Info("export job completed", "job_id", job.ID, "final_count", result.FinalCount)
		s.setStatus(job.ID, StatusCompleted, result, nil)
	}
}

func (s *ExportService) setStatus(jobID string, status JobStatus, result *appexport.Result, err error) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return
	}
	job.Status = status
	if result != nil {
		job.Result = result
	}
	if err != nil {
		job.Error = err
	}
	if status == StatusCompleted || status == StatusFailed || status == StatusCancelled {
		now := time.Now()
		job.CompletedAt = &now
	}
}

// GetJob returns a snapshot of the job with the given ID.
func (s *ExportService) GetJob(jobID string) (*ExportJob, error) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	cp := *job
	return &cp, nil
}

// ListJobs returns snapshots of all jobs, newest first.
func (s *ExportService) ListJobs() []*ExportJob {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	jobs := make([]*ExportJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		cp := *job
		jobs = append(jobs, &cp)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartedAt.After(jobs[j].StartedAt)
	})
	return jobs
}

// CancelJob cancels a pending or running job.
func (s *ExportService) CancelJob(jobID string) error {
	s.jobsMu.RLock()
	job, ok := s.jobs[jobID]
	s.jobsMu.RUnlock()

	if !ok {
		return fmt.Errorf("job not found: %s", jobID)
	}
	if job.Status != StatusPending && job.Status != StatusRunning {
		return fmt.Errorf("job %s is not running", jobID)
	}

	job.cancelFunc()
	return nil
}
