package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/repository"
	appErrors "github.com/noah-isme/dance-class-api/pkg/errors"
)

type preferenceStore interface {
	GetPreferences(ctx context.Context, userID string) (*models.PreferenceSet, error)
	SavePreferences(ctx context.Context, prefs models.PreferenceSet) error
	GetSettings(ctx context.Context, sessionID string) (*models.AppSettings, error)
	SaveSettings(ctx context.Context, sessionID string, settings models.AppSettings) error
}

type preferenceMetrics interface {
	RecordToggle(kind string, state bool)
	RecordStoreError(op string)
}

// PreferenceService keeps each user's preference set in memory and writes
// every change through to the store. Store failures never reach callers:
// reads fall back to defaults and failed writes are logged and dropped.
type PreferenceService struct {
	store   preferenceStore
	metrics preferenceMetrics
	logger  *zap.Logger

	mu       sync.Mutex
	sets     map[string]*models.PreferenceSet
	unsynced map[string]bool
	locks    map[string]*sync.Mutex
}

// NewPreferenceService constructs the service.
func NewPreferenceService(store preferenceStore, metrics preferenceMetrics, logger *zap.Logger) *PreferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{
		store:    store,
		metrics:  metrics,
		logger:   logger,
		sets:     make(map[string]*models.PreferenceSet),
		unsynced: make(map[string]bool),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Preferences returns a copy of the user's preference set.
func (s *PreferenceService) Preferences(ctx context.Context, userID string) models.PreferenceSet {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	prefs, _ := s.load(ctx, userID)
	return prefs.Clone()
}

// ToggleInterested flips interest in classID and returns the new state.
func (s *PreferenceService) ToggleInterested(ctx context.Context, userID, classID string) (bool, error) {
	return s.Toggle(ctx, userID, models.PreferenceInterested, classID)
}

// ToggleAttending flips attendance for classID and returns the new state.
func (s *PreferenceService) ToggleAttending(ctx context.Context, userID, classID string) (bool, error) {
	return s.Toggle(ctx, userID, models.PreferenceAttending, classID)
}

// ToggleFavorite flips the favorite flag for choreographerID and returns the new state.
func (s *PreferenceService) ToggleFavorite(ctx context.Context, userID, choreographerID string) (bool, error) {
	return s.Toggle(ctx, userID, models.PreferenceFavorite, choreographerID)
}

// Toggle flips membership of id in the kind's set. Only malformed input is an error.
func (s *PreferenceService) Toggle(ctx context.Context, userID string, kind models.PreferenceKind, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if userID == "" || id == "" {
		return false, appErrors.Clone(appErrors.ErrValidation, "user and target id are required")
	}
	switch kind {
	case models.PreferenceInterested, models.PreferenceAttending, models.PreferenceFavorite:
	default:
		return false, appErrors.Clone(appErrors.ErrValidation, "unknown preference kind")
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	prefs, synced := s.load(ctx, userID)
	state := prefs.Toggle(kind, id)
	if synced {
		s.persist(ctx, *prefs)
	} else {
		s.logger.Warn("preference store unreadable, toggle kept in memory",
			zap.String("user_id", userID),
			zap.String("kind", string(kind)))
	}

	if s.metrics != nil {
		s.metrics.RecordToggle(string(kind), state)
	}
	s.logger.Debug("preference toggled",
		zap.String("user_id", userID),
		zap.String("kind", string(kind)),
		zap.String("target_id", id),
		zap.Bool("state", state))
	return state, nil
}

// IsInterested reports whether the user marked classID as interested.
func (s *PreferenceService) IsInterested(ctx context.Context, userID, classID string) bool {
	return s.Preferences(ctx, userID).Has(models.PreferenceInterested, classID)
}

// IsAttending reports whether the user marked classID as attending.
func (s *PreferenceService) IsAttending(ctx context.Context, userID, classID string) bool {
	return s.Preferences(ctx, userID).Has(models.PreferenceAttending, classID)
}

// IsFavorited reports whether the user favorited choreographerID.
func (s *PreferenceService) IsFavorited(ctx context.Context, userID, choreographerID string) bool {
	return s.Preferences(ctx, userID).Has(models.PreferenceFavorite, choreographerID)
}

// Forget drops the in-memory copy for userID so the next read hits the store.
func (s *PreferenceService) Forget(userID string) {
	s.mu.Lock()
	delete(s.sets, userID)
	delete(s.unsynced, userID)
	s.mu.Unlock()
}

// Settings returns the session's app settings, or defaults when absent or unreadable.
func (s *PreferenceService) Settings(ctx context.Context, sessionID string) models.AppSettings {
	settings, err := s.store.GetSettings(ctx, sessionID)
	if err != nil {
		s.readFailed("settings", sessionID, err)
		return models.DefaultSettings()
	}
	return normalizeSettings(*settings)
}

// SaveSettings validates and stores the session's app settings.
func (s *PreferenceService) SaveSettings(ctx context.Context, sessionID string, settings models.AppSettings) (models.AppSettings, error) {
	if details := validateSettings(settings); len(details) > 0 {
		return models.AppSettings{}, appErrors.WithDetails(appErrors.ErrValidation, "invalid settings", details)
	}
	settings = normalizeSettings(settings)
	if err := s.store.SaveSettings(ctx, sessionID, settings); err != nil {
		s.writeFailed("settings", sessionID, err)
	}
	return settings, nil
}

// load returns the user's set and whether it mirrors the store. A set built
// after a transient read failure is kept in memory only and re-read on the
// next access, so it never overwrites what the store holds.
func (s *PreferenceService) load(ctx context.Context, userID string) (*models.PreferenceSet, bool) {
	s.mu.Lock()
	cached, ok := s.sets[userID]
	unsynced := s.unsynced[userID]
	s.mu.Unlock()
	if ok && !unsynced {
		return cached, true
	}

	prefs, err := s.store.GetPreferences(ctx, userID)
	synced := true
	if err != nil {
		s.readFailed("preferences", userID, err)
		if !errors.Is(err, repository.ErrKeyNotFound) && !errors.Is(err, repository.ErrCorruptValue) {
			if ok {
				return cached, false
			}
			synced = false
		}
		empty := models.NewPreferenceSet(userID)
		prefs = &empty
	}

	s.mu.Lock()
	s.sets[userID] = prefs
	if synced {
		delete(s.unsynced, userID)
	} else {
		s.unsynced[userID] = true
	}
	s.mu.Unlock()
	return prefs, synced
}

func (s *PreferenceService) persist(ctx context.Context, prefs models.PreferenceSet) {
	if err := s.store.SavePreferences(ctx, prefs); err != nil {
		s.writeFailed("preferences", prefs.UserID, err)
	}
}

func (s *PreferenceService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

func (s *PreferenceService) readFailed(what, key string, err error) {
	if errors.Is(err, repository.ErrKeyNotFound) {
		return
	}
	if s.metrics != nil {
		s.metrics.RecordStoreError("read_" + what)
	}
	s.logger.Warn("preference store read failed, using defaults",
		zap.String("what", what),
		zap.String("key", key),
		zap.Error(err))
}

func (s *PreferenceService) writeFailed(what, key string, err error) {
	if s.metrics != nil {
		s.metrics.RecordStoreError("write_" + what)
	}
	s.logger.Warn("preference store write dropped",
		zap.String("what", what),
		zap.String("key", key),
		zap.Error(err))
}

func validateSettings(settings models.AppSettings) map[string]string {
	details := make(map[string]string)
	switch settings.PreferredView {
	case "", models.ViewList, models.ViewCalendar:
	default:
		details["preferred_view"] = "Preferred view must be list or calendar"
	}
	if r := settings.Filters.DateRange; r != nil && r.End.Before(r.Start) {
		details["filters.date_range"] = "Date range end must not be before start"
	}
	return details
}

func normalizeSettings(settings models.AppSettings) models.AppSettings {
	if settings.PreferredView != models.ViewCalendar {
		settings.PreferredView = models.ViewList
	}
	settings.Filters.Styles = nonNilStrings(settings.Filters.Styles)
	settings.Filters.Choreographers = nonNilStrings(settings.Filters.Choreographers)
	settings.Filters.Studios = nonNilStrings(settings.Filters.Studios)
	return settings
}

func nonNilStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// CheckToggleTarget verifies that id names something the kind can hold:
// an existing, non-cancelled class or a known choreographer. Choreographers
// referenced only by classes count, so favorites survive a failed users load.
func CheckToggleTarget(catalog *models.Catalog, kind models.PreferenceKind, id string) error {
	switch kind {
	case models.PreferenceInterested, models.PreferenceAttending:
		class, ok := catalog.ClassByID(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		if class.IsCancelled() {
			return appErrors.Clone(appErrors.ErrClassCancelled, "class "+id+" is cancelled")
		}
	case models.PreferenceFavorite:
		if user, ok := catalog.UserByID(id); ok && user.Role.CanTeach() {
			return nil
		}
		for _, class := range catalog.Classes {
			if class.ChoreographerID == id {
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, "choreographer not found")
	default:
		return appErrors.WithDetails(appErrors.ErrValidation, "unknown preference kind", map[string]string{"kind": string(kind)})
	}
	return nil
}
