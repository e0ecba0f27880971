package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-class-api/internal/dto"
	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/repository"
	appErrors "github.com/noah-isme/dance-class-api/pkg/errors"
	"github.com/noah-isme/dance-class-api/pkg/jobs"
	"github.com/noah-isme/dance-class-api/pkg/storage"
)

type recordingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type exportRecorder struct {
	events []string
}

func (r *exportRecorder) RecordExportJob(format, status string) {
	r.events = append(r.events, format+":"+status)
}

type exportFixture struct {
	service  *ExportService
	worker   *ExportWorker
	renderer *ScheduleExportService
	repo     *repository.ExportJobRepository
	queue    *recordingQueue
	metrics  *exportRecorder
	session  *models.Session
}

func newExportFixture(t *testing.T) *exportFixture {
	t.Helper()
	catalog := loadedCatalogService(t)
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("export-secret", time.Hour)
	schedule := NewScheduleService(time.UTC, zap.NewNop())

	renderer := NewScheduleExportService(catalog, schedule, files, signer, ExportConfig{APIPrefix: "/api/v1"}, zap.NewNop(), nil, nil)
	repo := repository.NewExportJobRepository(repository.NewMemoryStore(), "test")
	queue := &recordingQueue{}
	metrics := &exportRecorder{}
	svc := NewExportService(repo, queue, renderer, metrics, zap.NewNop(), ExportServiceConfig{ResultTTL: time.Hour})
	worker := NewExportWorker(repo, renderer, metrics, 2, zap.NewNop())

	return &exportFixture{
		service:  svc,
		worker:   worker,
		renderer: renderer,
		repo:     repo,
		queue:    queue,
		metrics:  metrics,
		session:  &models.Session{ID: "s1", User: models.User{ID: "dancer-1", Role: models.RoleDancer}},
	}
}

func TestExportCSVEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t)

	created, err := f.service.CreateJob(ctx, f.session, dto.ExportRequest{Format: "CSV", Filters: dto.FilterRequest{Styles: []string{"Hip Hop"}}}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, created.Status)
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, ExportJobType, f.queue.jobs[0].Type)

	require.NoError(t, f.worker.Handle(ctx, f.queue.jobs[0]))

	status, err := f.service.GetStatus(ctx, f.session, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, status.Status)
	assert.Equal(t, 100, status.Progress)
	require.NotNil(t, status.ResultURL)
	assert.True(t, strings.HasPrefix(*status.ResultURL, "/api/v1/exports/download/"))

	download, err := f.service.ResolveDownload(ctx, extractToken(*status.ResultURL))
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, models.ExportFormatCSV, download.Format)

	records, err := csv.NewReader(download.File).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Day", records[0][0])
	assert.Equal(t, "Hip Hop Foundations", records[1][2])
	assert.Equal(t, []string{"csv:QUEUED", "csv:FINISHED"}, f.metrics.events)
}

func TestExportPDFRenders(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t)

	job := &models.ExportJob{ID: "job-pdf", SessionID: "s1", UserID: "dancer-1", Params: models.ExportJobParams{Format: models.ExportFormatPDF}}
	result, err := f.renderer.Generate(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)

	file, err := f.renderer.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()
	head := make([]byte, 4)
	_, err = io.ReadFull(file, head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(head))
}

func TestExportCreateJobValidation(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t)

	_, err := f.service.CreateJob(ctx, f.session, dto.ExportRequest{Format: "xlsx"}, time.UTC)
	requireAppError(t, err, appErrors.ErrValidation.Code)

	_, err = f.service.CreateJob(ctx, f.session, dto.ExportRequest{Format: "csv", Timezone: "Mars/Base"}, time.UTC)
	requireAppError(t, err, appErrors.ErrValidation.Code)

	_, err = f.service.CreateJob(ctx, f.session, dto.ExportRequest{Format: "csv", Filters: dto.FilterRequest{Start: "2030-06-02", End: "2030-06-01"}}, time.UTC)
	requireAppError(t, err, appErrors.ErrValidation.Code)
	assert.Empty(t, f.queue.jobs)
}

func TestExportEnqueueFailureMarksJobFailed(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t)
	f.queue.err = errors.New("queue stopped")

	_, err := f.service.CreateJob(ctx, f.session, dto.ExportRequest{Format: "pdf"}, time.UTC)
	requireAppError(t, err, appErrors.ErrInternal.Code)

	all, err := f.repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.ExportStatusFailed, all[0].Status)
}

func TestExportStatusOwnership(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t)
	created, err := f.service.CreateJob(ctx, f.session, dto.ExportRequest{Format: "csv"}, time.UTC)
	require.NoError(t, err)

	_, err = f.service.GetStatus(ctx, &models.Session{ID: "someone-else"}, created.ID)
	requireAppError(t, err, appErrors.ErrForbidden.Code)

	_, err = f.service.GetStatus(ctx, f.session, "missing")
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func TestExportDownloadRequiresFinishedJob(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t)

	_, err := f.service.ResolveDownload(ctx, "garbage")
	requireAppError(t, err, appErrors.ErrForbidden.Code)

	created, err := f.service.CreateJob(ctx, f.session, dto.ExportRequest{Format: "csv"}, time.UTC)
	require.NoError(t, err)
	record, err := f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	result, err := f.renderer.Generate(ctx, record)
	require.NoError(t, err)

	_, err = f.service.ResolveDownload(ctx, result.Token)
	requireAppError(t, err, appErrors.ErrForbidden.Code)
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, *models.ExportJob) (*ExportResult, error) {
	return nil, errors.New("disk full")
}

func TestExportWorkerRetriesThenFails(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t)
	worker := NewExportWorker(f.repo, failingGenerator{}, f.metrics, 2, zap.NewNop())
	created, err := f.service.CreateJob(ctx, f.session, dto.ExportRequest{Format: "csv"}, time.UTC)
	require.NoError(t, err)

	err = worker.Handle(ctx, jobs.Job{ID: created.ID, Attempt: 0})
	require.Error(t, err)
	job, err := f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, job.Status)
	require.NotNil(t, job.ErrorMessage)

	require.Error(t, worker.Handle(ctx, jobs.Job{ID: created.ID, Attempt: 2}))
	job, err = f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFailed, job.Status)
	assert.NotNil(t, job.FinishedAt)
}

func TestExportCleanupRemovesExpiredFiles(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t)
	created, err := f.service.CreateJob(ctx, f.session, dto.ExportRequest{Format: "csv"}, time.UTC)
	require.NoError(t, err)
	require.NoError(t, f.worker.Handle(ctx, f.queue.jobs[0]))

	assert.Zero(t, f.service.CleanupExpired(ctx))

	f.service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, f.service.CleanupExpired(ctx))

	status, err := f.service.GetStatus(ctx, f.session, created.ID)
	require.NoError(t, err)
	_, err = f.service.ResolveDownload(ctx, extractToken(*status.ResultURL))
	require.Error(t, err)
}

func TestExportRecoverPendingJobs(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t)
	_, err := f.service.CreateJob(ctx, f.session, dto.ExportRequest{Format: "csv"}, time.UTC)
	require.NoError(t, err)

	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, ExportJobType, f.queue.jobs[0].Type)
	assert.Equal(t, f.session.User.ID, f.queue.jobs[0].Owner)

	f.queue.jobs = nil
	f.service.RecoverPendingJobs(ctx)
	assert.Len(t, f.queue.jobs, 1)

	f.queue.jobs = nil
	f.queue.err = jobs.ErrDuplicateJob
	f.service.RecoverPendingJobs(ctx)
	assert.Empty(t, f.queue.jobs)
}
