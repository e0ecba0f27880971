package service

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-class-api/internal/repository"
)

type catalogLoader interface {
	Load(ctx context.Context) (*CatalogLoadReport, error)
}

// CatalogWatcher reloads the catalog when fixture files in the data dir change.
// Bursts of events inside the debounce window trigger a single reload.
type CatalogWatcher struct {
	dir      string
	loader   catalogLoader
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
	reloads int
}

// NewCatalogWatcher constructs a watcher for dir.
func NewCatalogWatcher(dir string, loader catalogLoader, debounce time.Duration, logger *zap.Logger) *CatalogWatcher {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogWatcher{dir: dir, loader: loader, debounce: debounce, logger: logger}
}

// Start begins watching. It is a no-op when already running.
func (w *CatalogWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.watcher = watcher
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(runCtx, watcher, w.done)

	w.logger.Info("catalog watcher started", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))
	return nil
}

// Stop terminates the watch loop and waits for it to exit.
func (w *CatalogWatcher) Stop() {
	w.mu.Lock()
	watcher, cancel, done := w.watcher, w.cancel, w.done
	w.watcher, w.cancel, w.done = nil, nil, nil
	w.mu.Unlock()

	if watcher == nil {
		return
	}
	cancel()
	<-done
	if err := watcher.Close(); err != nil {
		w.logger.Warn("catalog watcher close failed", zap.Error(err))
	}
	w.logger.Info("catalog watcher stopped")
}

// Reloads returns how many reloads the watcher has triggered.
func (w *CatalogWatcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *CatalogWatcher) run(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isCatalogDocument(event) {
				continue
			}
			w.logger.Debug("catalog fixture changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", zap.Error(err))
		case <-timer.C:
			pending = false
			w.reload(ctx)
		}
	}
}

func (w *CatalogWatcher) reload(ctx context.Context) {
	report, err := w.loader.Load(ctx)
	if err != nil {
		w.logger.Warn("catalog reload aborted", zap.Error(err))
		return
	}
	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
	w.logger.Info("catalog reloaded from fixtures",
		zap.Int("classes", report.Classes),
		zap.Int("users", report.Users),
		zap.Strings("errors", report.Errors))
}

func isCatalogDocument(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	switch strings.ToLower(filepath.Base(event.Name)) {
	case repository.DocumentClasses, repository.DocumentUsers, repository.DocumentChoreographers:
		return true
	default:
		return false
	}
}
