package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/noah-isme/dance-class-api/pkg/storage"
)

// Catalog document names shared by every source.
const (
	DocumentClasses        = "classes.json"
	DocumentUsers          = "users.json"
	DocumentChoreographers = "choreographers.json"
)

// maxDocumentSize bounds a single fixture document.
const maxDocumentSize = 16 << 20

// CatalogSource fetches raw catalog documents by name.
type CatalogSource interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	Describe() string
}

// FileSource reads catalog documents from a local data directory.
type FileSource struct {
	storage *storage.LocalStorage
}

// NewFileSource roots a source at dataDir.
func NewFileSource(dataDir string) (*FileSource, error) {
	store, err := storage.NewLocalStorage(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open catalog data dir: %w", err)
	}
	return &FileSource{storage: store}, nil
}

// Fetch reads the named document.
func (s *FileSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.storage.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return data, nil
}

// Dir returns the absolute data directory.
func (s *FileSource) Dir() string {
	return s.storage.BaseDir()
}

// Describe names the source for logs.
func (s *FileSource) Describe() string {
	return "file:" + s.storage.BaseDir()
}

// HTTPSource fetches catalog documents from a static base URL.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource builds a source for baseURL. A nil client gets a default with timeout.
func NewHTTPSource(baseURL string, client *http.Client, timeout time.Duration) *HTTPSource {
	if client == nil {
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPSource{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Fetch GETs <baseURL>/<name>.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("load %s: catalog base url not configured", name)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+name, nil)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load %s: %s", name, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return data, nil
}

// Describe names the source for logs.
func (s *HTTPSource) Describe() string {
	return "http:" + s.baseURL
}
