package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/pkg/export"
	"github.com/noah-isme/dance-class-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type catalogSnapshotter interface {
	Snapshot() *models.Catalog
}

type scheduleBuilder interface {
	Schedule(session *models.Session, catalog *models.Catalog, query models.ScheduleQuery) (*models.ScheduleView, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	Rows         int
	ExpiresAt    time.Time
}

var exportHeaders = []string{"Time", "Title", "Choreographer", "Style", "Location", "Price", "Status", "RSVP"}

// ScheduleExportService renders the grouped schedule of an export job and
// persists the file behind a signed download token.
type ScheduleExportService struct {
	catalog  catalogSnapshotter
	schedule scheduleBuilder
	storage  fileStorage
	csv      datasetRenderer
	pdf      datasetRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

// NewScheduleExportService constructs the renderer. Nil renderers fall back to the pkg/export defaults.
func NewScheduleExportService(catalog catalogSnapshotter, schedule scheduleBuilder, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv, pdf datasetRenderer) *ScheduleExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ScheduleExportService{
		catalog:  catalog,
		schedule: schedule,
		storage:  storage,
		csv:      csv,
		pdf:      pdf,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Generate renders job against the current catalog snapshot and stores the result.
func (s *ScheduleExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session := &models.Session{ID: job.SessionID, User: models.User{ID: job.UserID}}
	view, err := s.schedule.Schedule(session, s.catalog.Snapshot(), models.ScheduleQuery{
		Query:        job.Params.Query,
		Filter:       job.Params.Filter,
		UpcomingOnly: job.Params.UpcomingOnly,
		Timezone:     job.Params.Timezone,
	})
	if err != nil {
		return nil, err
	}
	dataset := BuildScheduleDataset(view)

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Info("schedule export rendered",
		zap.String("job_id", job.ID),
		zap.String("format", string(job.Params.Format)),
		zap.Int("rows", dataset.RowCount()),
	)
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:       job.Params.Format,
		Rows:         dataset.RowCount(),
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ScheduleExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ScheduleExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ScheduleExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ScheduleExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// BuildScheduleDataset lays out one section per day group, rows in start order.
func BuildScheduleDataset(view *models.ScheduleView) export.Dataset {
	dataset := export.Dataset{
		Title:         "Class Schedule",
		SectionHeader: "Day",
		Headers:       exportHeaders,
		Sections:      make([]export.Section, 0, len(view.Groups)),
	}
	if view.Timezone != "" {
		dataset.Title = fmt.Sprintf("Class Schedule (%s)", view.Timezone)
	}
	loc := time.UTC
	if l, err := time.LoadLocation(view.Timezone); err == nil {
		loc = l
	}
	for _, group := range view.Groups {
		section := export.Section{Title: group.Label, Rows: make([]map[string]string, 0, len(group.Items))}
		for _, item := range group.Items {
			section.Rows = append(section.Rows, map[string]string{
				"Time":          item.DateTime.In(loc).Format("15:04"),
				"Title":         item.Title,
				"Choreographer": item.ChoreographerName,
				"Style":         strings.Join(item.Style, ", "),
				"Location":      item.Location,
				"Price":         formatPrice(item.Price),
				"Status":        string(item.Status),
				"RSVP":          deref(item.RSVPLink),
			})
		}
		dataset.Sections = append(dataset.Sections, section)
	}
	return dataset
}

func (s *ScheduleExportService) buildFilename(job *models.ExportJob) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("schedule_%s_%s.%s", sanitizeFilename(job.ID), timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func formatPrice(price *float64) string {
	if price == nil {
		return ""
	}
	if *price == 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", *price)
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
