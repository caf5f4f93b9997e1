// Package api exposes the export pipeline over HTTP: start and track export
// jobs, download the produced CSV artifacts, and inspect past runs.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/neoledger/neo-export-backend/internal/api/dto"
	"github.com/neoledger/neo-export-backend/internal/application/service"
	"github.com/neoledger/neo-export-backend/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository
	exports    *service.ExportService
}

// NewServer creates a new API server. repo may be nil to disable the
// run-history endpoints.
func NewServer(cfg Config, repo storage.Repository, exports *service.ExportService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		config:  cfg,
		router:  router,
		logger:  logger,
		repo:    repo,
		exports: exports,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Health check without the /api prefix, for load balancers.
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := s.router.Group("/api")
	{
		api.POST("/exports", s.startExport)
		api.GET("/exports", s.listExports)
		api.GET("/exports/:jobId", s.getExport)
		api.DELETE("/exports/:jobId", s.cancelExport)
		api.GET("/exports/:jobId/files/:filename", s.downloadArtifact)

		if s.repo != nil {
			api.GET("/runs", s.listRuns)
			api.GET("/stats", s.getStats)
		}
	}
}

func (s *Server) startExport(c *gin.Context) {
	var req dto.StartExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	if req.AccountID == "" {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("account_id is required"))
		return
	}
	if req.Year <= 0 {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("year is required"))
		return
	}

	jobID, err := s.exports.StartExport(c.Request.Context(), service.ExportRequest{
		AccountID: req.AccountID,
		Year:      req.Year,
		DryRun:    req.DryRun,
	})
	if err != nil {
		c.JSON(http.StatusConflict, dto.ConflictError(err.Error()))
		return
	}

	c.JSON(http.StatusAccepted, dto.StartExportResponse{
		JobID:     jobID,
		AccountID: req.AccountID,
		Status:    string(service.StatusPending),
	})
}

func (s *Server) listExports(c *gin.Context) {
	jobs := s.exports.ListJobs()

	response := dto.JobListResponse{
		Jobs:  make([]dto.ExportJobResponse, 0, len(jobs)),
		Count: len(jobs),
	}
	for _, job := range jobs {
		response.Jobs = append(response.Jobs, toJobResponse(job))
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) getExport(c *gin.Context) {
	job, err := s.exports.GetJob(c.Param("jobId"))
	if err != nil {
		c.JSON(http.StatusNotFound, dto.NotFoundError("export job"))
		return
	}

	c.JSON(http.StatusOK, toJobResponse(job))
}

func (s *Server) cancelExport(c *gin.Context) {
	if err := s.exports.CancelJob(c.Param("jobId")); err != nil {
		c.JSON(http.StatusNotFound, dto.NotFoundError("export job"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// downloadArtifact serves a produced CSV payload under its suggested
// filename. Payloads are held on the completed job, not re-read from disk.
func (s *Server) downloadArtifact(c *gin.Context) {
	job, err := s.exports.GetJob(c.Param("jobId"))
	if err != nil || job.Result == nil {
		c.JSON(http.StatusNotFound, dto.NotFoundError("export artifact"))
		return
	}

	filename := c.Param("filename")
	for _, artifact := range job.Result.Artifacts {
		if artifact.Filename == filename {
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
			c.Data(http.StatusOK, "text/csv; charset=utf-8", artifact.Payload)
			return
		}
	}

	c.JSON(http.StatusNotFound, dto.NotFoundError("export artifact"))
}

func (s *Server) listRuns(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.repo.GetRecentRecords(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": records, "count": len(records)})
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.repo.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, stats)
}

func toJobResponse(job *service.ExportJob) dto.ExportJobResponse {
	response := dto.ExportJobResponse{
		JobID:     job.ID,
		AccountID: job.AccountID,
		Year:      job.Year,
		Status:    string(job.Status),
		StartedAt: job.StartedAt.Format(time.RFC3339),
	}
	if job.CompletedAt != nil {
		response.CompletedAt = job.CompletedAt.Format(time.RFC3339)
	}
	if job.Error != nil {
		response.Error = job.Error.Error()
	}
	if job.Result != nil {
		response.Summary = &dto.ExportSummary{
			FetchedCount:   job.Result.FetchedCount,
			FilteredCount:  job.Result.FilteredCount,
			FullMatches:    job.Result.FullMatches,
			PartialMatches: job.Result.PartialMatches,
			Anomalies:      job.Result.Anomalies,
			UnmatchedCount: job.Result.UnmatchedCount,
			FinalCount:     job.Result.FinalCount,
			RemovedCount:   job.Result.RemovedCount,
		}
		for _, artifact := range job.Result.Artifacts {
			response.Artifacts = append(response.Artifacts, artifact.Filename)
		}
	}
	return response
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the gin engine for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}
