package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dance-class-api/internal/dto"
	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/repository"
	appErrors "github.com/noah-isme/dance-class-api/pkg/errors"
	"github.com/noah-isme/dance-class-api/pkg/jobs"
)

// ExportJobType tags schedule export jobs on the queue.
const ExportJobType = "schedule_export"

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, update models.ExportJobUpdate) error
	List(ctx context.Context) ([]models.ExportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error)
}

type exportFiles interface {
	ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
	Cleanup(ttl time.Duration) ([]string, error)
}

type exportMetrics interface {
	RecordExportJob(format, status string)
}

// ExportServiceConfig governs queue recovery and cleanup.
type ExportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ExportFormat
	ExpiresAt time.Time
}

// ExportService orchestrates the schedule export job lifecycle.
type ExportService struct {
	repo    exportJobStore
	queue   jobDispatcher
	files   exportFiles
	metrics exportMetrics
	logger  *zap.Logger
	cfg     ExportServiceConfig
	now     func() time.Time
}

// NewExportService constructs the export job service.
func NewExportService(repo exportJobStore, queue jobDispatcher, files exportFiles, metrics exportMetrics, logger *zap.Logger, cfg ExportServiceConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		repo:    repo,
		queue:   queue,
		files:   files,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// CreateJob validates req, freezes the query into a job and enqueues it.
func (s *ExportService) CreateJob(ctx context.Context, session *models.Session, req dto.ExportRequest, loc *time.Location) (*dto.ExportJobResponse, error) {
	format := models.ExportFormat(strings.ToLower(strings.TrimSpace(string(req.Format))))
	if !format.Valid() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "unsupported export format", map[string]string{"format": "must be csv or pdf"})
	}
	if req.Timezone != "" {
		tz, err := time.LoadLocation(req.Timezone)
		if err != nil {
			return nil, appErrors.WithDetails(appErrors.ErrValidation, "invalid timezone", map[string]string{"tz": "Unknown timezone " + req.Timezone})
		}
		loc = tz
	}
	filter, err := BuildFilter(req.Filters, loc)
	if err != nil {
		return nil, err
	}

	job := &models.ExportJob{
		SessionID: session.ID,
		UserID:    session.User.ID,
		Params: models.ExportJobParams{
			Format:       format,
			Query:        strings.TrimSpace(req.Query),
			Filter:       filter,
			Timezone:     req.Timezone,
			UpcomingOnly: req.UpcomingOnly,
		},
		Status: models.ExportStatusQueued,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType, Owner: job.UserID}); err != nil {
		status := models.ExportStatusFailed
		msg := "failed to enqueue job"
		now := s.now().UTC()
		progress := 100
		_ = s.repo.Update(ctx, job.ID, models.ExportJobUpdate{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		s.record(format, status)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}

	s.record(format, job.Status)
	s.logger.Info("export job queued", zap.String("job_id", job.ID), zap.String("format", string(format)), zap.String("session_id", session.ID))
	return &dto.ExportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus exposes job metadata to the session that created it.
func (s *ExportService) GetStatus(ctx context.Context, session *models.Session, id string) (*dto.ExportStatusResponse, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.SessionID != session.ID {
		return nil, appErrors.ErrForbidden
	}
	resp := &dto.ExportStatusResponse{
		ID:       job.ID,
		Format:   job.Params.Format,
		Status:   job.Status,
		Progress: job.Progress,
	}
	if job.ResultURL != nil {
		resp.ResultURL = job.ResultURL
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload validates token and opens the stored export file.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.files.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    job.Params.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// RecoverPendingJobs replays queued jobs left behind by a restart.
func (s *ExportService) RecoverPendingJobs(ctx context.Context) {
	all, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover queued export jobs", "error", err)
		return
	}
	for _, job := range all {
		if job.Status != models.ExportStatusQueued && job.Status != models.ExportStatusProcessing {
			continue
		}
		err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType, Owner: job.UserID})
		switch {
		case errors.Is(err, jobs.ErrDuplicateJob):
			continue
		case err != nil:
			s.logger.Sugar().Warnw("failed to requeue pending job", "job_id", job.ID, "error", err)
		}
	}
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ExportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired(ctx)
			}
		}
	}()
}

// CleanupExpired deletes files of jobs finished before the result TTL, then
// sweeps any orphaned files older than the TTL.
func (s *ExportService) CleanupExpired(ctx context.Context) int {
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	expired, err := s.repo.ListFinishedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Sugar().Warnw("cleanup list failed", "error", err)
		return 0
	}
	removed := 0
	for _, job := range expired {
		if job.ResultURL == nil {
			continue
		}
		token := extractToken(*job.ResultURL)
		if token == "" {
			continue
		}
		_, relPath, _, err := s.files.ParseToken(token, true)
		if err != nil {
			continue
		}
		if err := s.files.Delete(relPath); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "error", err)
			}
			continue
		}
		removed++
	}
	if _, err := s.files.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
	return removed
}

func (s *ExportService) load(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return job, nil
}

func (s *ExportService) record(format models.ExportFormat, status models.ExportStatus) {
	if s.metrics != nil {
		s.metrics.RecordExportJob(string(format), string(status))
	}
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// ExportWorker bridges queue jobs to the schedule renderer.
type ExportWorker struct {
	repo       exportJobStore
	exporter   exportGenerator
	metrics    exportMetrics
	logger     *zap.Logger
	maxRetries int
}

// NewExportWorker constructs a worker.
func NewExportWorker(repo exportJobStore, exporter exportGenerator, metrics exportMetrics, maxRetries int, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ExportWorker{
		repo:       repo,
		exporter:   exporter,
		metrics:    metrics,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Handle processes a queue job. Failures are requeued until the final attempt marks the job failed.
func (w *ExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ExportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, models.ExportJobUpdate{
		Status:   &processing,
		Progress: &progress,
	}); err != nil {
		return err
	}

	result, err := w.exporter.Generate(ctx, record)
	if err != nil {
		msg := err.Error()
		if job.Attempt >= w.maxRetries {
			failed := models.ExportStatusFailed
			progress = 100
			now := time.Now().UTC()
			if updateErr := w.repo.Update(ctx, job.ID, models.ExportJobUpdate{
				Status:       &failed,
				Progress:     &progress,
				ErrorMessage: &msg,
				FinishedAt:   &now,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark job failed", "job_id", job.ID, "error", updateErr)
			}
			w.record(record.Params.Format, failed)
		} else {
			queued := models.ExportStatusQueued
			reset := 0
			if updateErr := w.repo.Update(ctx, job.ID, models.ExportJobUpdate{
				Status:       &queued,
				Progress:     &reset,
				ErrorMessage: &msg,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark job queued", "job_id", job.ID, "error", updateErr)
			}
		}
		return err
	}

	finished := models.ExportStatusFinished
	progress = 100
	now := time.Now().UTC()
	url := result.URL
	clear := ""
	if err := w.repo.Update(ctx, job.ID, models.ExportJobUpdate{
		Status:       &finished,
		Progress:     &progress,
		ResultURL:    &url,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark job finished", "job_id", job.ID, "error", err)
		return err
	}
	w.record(record.Params.Format, finished)
	return nil
}

func (w *ExportWorker) record(format models.ExportFormat, status models.ExportStatus) {
	if w.metrics != nil {
		w.metrics.RecordExportJob(string(format), string(status))
	}
}
