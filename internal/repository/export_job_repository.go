package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/pkg/cache"
)

// ExportJobRepository persists export job metadata in the KV store.
type ExportJobRepository struct {
	store  KVStore
	prefix string
	mu     sync.Mutex
}

// NewExportJobRepository constructs the repository.
func NewExportJobRepository(store KVStore, prefix string) *ExportJobRepository {
	if prefix == "" {
		prefix = "dance-app"
	}
	return &ExportJobRepository{store: store, prefix: prefix}
}

func (r *ExportJobRepository) key(id string) string {
	return cache.Key(r.prefix, "export-job", id)
}

// Create stores a new job with generated defaults.
func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if err := r.put(ctx, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// GetByID returns a job by its identifier.
func (r *ExportJobRepository) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	raw, err := r.store.Get(ctx, r.key(id))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get export job: %w", err)
	}
	var job models.ExportJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("%w: export job %s: %v", ErrCorruptValue, id, err)
	}
	return &job, nil
}

// Update applies the provided changes to a stored job.
func (r *ExportJobRepository) Update(ctx context.Context, id string, update models.ExportJobUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	update.Apply(job)
	if err := r.put(ctx, job); err != nil {
		return fmt.Errorf("update export job: %w", err)
	}
	return nil
}

// Delete removes a job record.
func (r *ExportJobRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.key(id))
}

// List returns every stored job ordered by creation time. Unreadable records are skipped.
func (r *ExportJobRepository) List(ctx context.Context) ([]models.ExportJob, error) {
	keys, err := r.store.Keys(ctx, r.key("")+":")
	if err != nil {
		return nil, fmt.Errorf("list export jobs: %w", err)
	}
	jobs := make([]models.ExportJob, 0, len(keys))
	for _, key := range keys {
		raw, err := r.store.Get(ctx, key)
		if err != nil {
			continue
		}
		var job models.ExportJob
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs, nil
}

// ListFinishedBefore returns completed or failed jobs that finished before cutoff.
func (r *ExportJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error) {
	jobs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ExportJob, 0)
	for _, job := range jobs {
		if job.FinishedAt == nil || !job.FinishedAt.Before(cutoff) {
			continue
		}
		if job.Status == models.ExportStatusFinished || job.Status == models.ExportStatusFailed {
			out = append(out, job)
		}
	}
	return out, nil
}

func (r *ExportJobRepository) put(ctx context.Context, job *models.ExportJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, r.key(job.ID), string(payload))
}
