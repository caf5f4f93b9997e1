package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoledger/neo-export-backend/internal/api/dto"
	appexport "github.com/neoledger/neo-export-backend/internal/application/export"
	"github.com/neoledger/neo-export-backend/internal/application/service"
	"github.com/neoledger/neo-export-backend/internal/domain/matcher"
	"github.com/neoledger/neo-export-backend/internal/domain/transaction"
	csvexport "github.com/neoledger/neo-export-backend/internal/export"
	"github.com/neoledger/neo-export-backend/internal/infrastructure/storage"
)

type stubSource struct {
	txs []transaction.Transaction
}

func (s *stubSource) CreditTransactions(_ context.Context, _ string) ([]transaction.Transaction, error) {
	return s.txs, nil
}

type nopSink struct{}

func (nopSink) Save(a csvexport.Artifact) (string, error) { return a.Filename, nil }

func newTestServer(t *testing.T, txs []transaction.Transaction) (*Server, storage.Repository) {
	t.Helper()
	repo := storage.NewMockRepository()
	orch := appexport.New(&stubSource{txs: txs}, matcher.New(matcher.DefaultConfig(), nil), nopSink{}, repo, nil, nil)
	svc := service.NewExportService(orch, nil)
	return NewServer(DefaultConfig(), repo, svc, nil), repo
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func waitForJobStatus(t *testing.T, srv *Server, jobID, want string) dto.ExportJobResponse {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		w := doJSON(t, srv, http.MethodGet, "/api/exports/"+jobID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var job dto.ExportJobResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
		if job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", jobID, want)
	return dto.ExportJobResponse{}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestStartExport_Validation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doJSON(t, srv, http.MethodPost, "/api/exports", map[string]interface{}{"year": 2024})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/exports", map[string]interface{}{"account_id": "acct-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartExport_RunsToCompletion(t *testing.T) {
	txs := []transaction.Transaction{
		{
			Description:              "ACME",
			Category:                 transaction.CategoryPurchase,
			AmountCents:              -5000,
			AuthorizationProcessedAt: "2024-03-01T10:00:00Z",
			Status:                   transaction.StatusApproved,
		},
		{
			Description:              "ACME",
			Category:                 transaction.CategoryRefund,
			AmountCents:              5000,
			AuthorizationProcessedAt: "2024-03-03T10:00:00Z",
			Status:                   transaction.StatusApproved,
		},
	}
	srv, repo := newTestServer(t, txs)

	w := doJSON(t, srv, http.MethodPost, "/api/exports", dto.StartExportRequest{AccountID: "acct-1", Year: 2024})
	require.Equal(t, http.StatusAccepted, w.Code)

	var started dto.StartExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	require.NotEmpty(t, started.JobID)

	job := waitForJobStatus(t, srv, started.JobID, "completed")
	require.NotNil(t, job.Summary)
	assert.Equal(t, 2, job.Summary.FetchedCount)
	assert.Equal(t, 0, job.Summary.FinalCount)
	assert.Equal(t, 2, job.Summary.RemovedCount)
	assert.Len(t, job.Artifacts, 2)

	// Run recorded in storage.
	record, err := repo.GetRecord(started.JobID)
	require.NoError(t, err)
	assert.Equal(t, "success", record.Status)
}

func TestDownloadArtifact(t *testing.T) {
	txs := []transaction.Transaction{
		{
			Description:              "SHELL",
			Category:                 transaction.CategoryPurchase,
			AmountCents:              -2500,
			AuthorizationProcessedAt: "2024-05-01T10:00:00Z",
			Status:                   transaction.StatusApproved,
		},
	}
	srv, _ := newTestServer(t, txs)

	w := doJSON(t, srv, http.MethodPost, "/api/exports", dto.StartExportRequest{AccountID: "acct-1", Year: 2024})
	require.Equal(t, http.StatusAccepted, w.Code)

	var started dto.StartExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))

	job := waitForJobStatus(t, srv, started.JobID, "completed")
	require.Len(t, job.Artifacts, 1)

	w = doJSON(t, srv, http.MethodGet, "/api/exports/"+started.JobID+"/files/"+job.Artifacts[0], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), job.Artifacts[0])
	assert.Contains(t, w.Body.String(), "SHELL")
}

func TestDownloadArtifact_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doJSON(t, srv, http.MethodGet, "/api/exports/missing/files/whatever.csv", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetExport_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doJSON(t, srv, http.MethodGet, "/api/exports/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListExports(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doJSON(t, srv, http.MethodPost, "/api/exports", dto.StartExportRequest{AccountID: "acct-1", Year: 2024})
	require.Equal(t, http.StatusAccepted, w.Code)

	var started dto.StartExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	waitForJobStatus(t, srv, started.JobID, "completed")

	w = doJSON(t, srv, http.MethodGet, "/api/exports", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list dto.JobListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}

func TestRunsAndStatsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doJSON(t, srv, http.MethodPost, "/api/exports", dto.StartExportRequest{AccountID: "acct-1", Year: 2024})
	require.Equal(t, http.StatusAccepted, w.Code)

	var started dto.StartExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	waitForJobStatus(t, srv, started.JobID, "completed")

	w = doJSON(t, srv, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), started.JobID)

	// A malformed limit falls back to the default instead of failing.
	w = doJSON(t, srv, http.MethodGet, "/api/runs?limit=10abc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), started.JobID)

	w = doJSON(t, srv, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "total_runs")
}
