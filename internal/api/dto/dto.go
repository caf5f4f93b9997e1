// Package dto defines the request and response shapes of the HTTP API.
package dto

// APIError represents a structured error response.
// All error responses from the API use this format for consistency.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes
const (
	ErrCodeNotFound      = "not_found"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeConflict      = "conflict"
	ErrCodeInternalError = "internal_error"
)

// NotFoundError creates a not found error response.
func NotFoundError(resource string) APIError {
	return APIError{Code: ErrCodeNotFound, Message: resource + " not found"}
}

// BadRequestError creates a bad request error response.
func BadRequestError(message string) APIError {
	return APIError{Code: ErrCodeBadRequest, Message: message}
}

// ConflictError creates a conflict error response.
func ConflictError(message string) APIError {
	return APIError{Code: ErrCodeConflict, Message: message}
}

// InternalError creates an internal server error response.
func InternalError() APIError {
	return APIError{Code: ErrCodeInternalError, Message: "an internal error occurred"}
}

// StartExportRequest starts a new export job.
type StartExportRequest struct {
	AccountID string `json:"account_id"`
	Year      int    `json:"year"`
	DryRun    bool   `json:"dry_run"`
}

// StartExportResponse acknowledges a started job.
type StartExportResponse struct {
	JobID     string `json:"job_id"`
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}

// ExportJobResponse describes one export job.
type ExportJobResponse struct {
	JobID       string         `json:"job_id"`
	AccountID   string         `json:"account_id"`
	Year        int            `json:"year"`
	Status      string         `json:"status"`
	StartedAt   string         `json:"started_at"`
	CompletedAt string         `json:"completed_at,omitempty"`
	Error       string         `json:"error,omitempty"`
	Summary     *ExportSummary `json:"summary,omitempty"`
	Artifacts   []string       `json:"artifacts,omitempty"`
}

// ExportSummary carries pipeline counters for a finished job.
type ExportSummary struct {
	FetchedCount   int `json:"fetched_count"`
	FilteredCount  int `json:"filtered_count"`
	FullMatches    int `json:"full_matches"`
	PartialMatches int `json:"partial_matches"`
	Anomalies      int `json:"anomalies"`
	UnmatchedCount int `json:"unmatched_count"`
	FinalCount     int `json:"final_count"`
	RemovedCount   int `json:"removed_count"`
}

// JobListResponse lists jobs.
type JobListResponse struct {
	Jobs  []ExportJobResponse `json:"jobs"`
	Count int                 `json:"count"`
}
