package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/pkg/cache"
)

// ErrCorruptValue marks a stored value that no longer decodes.
var ErrCorruptValue = errors.New("stored value is corrupt")

// PreferenceRepository maps the logical per-user and per-session keys onto a KVStore.
type PreferenceRepository struct {
	store  KVStore
	prefix string
}

// NewPreferenceRepository constructs the repository. prefix namespaces every key.
func NewPreferenceRepository(store KVStore, prefix string) *PreferenceRepository {
	if prefix == "" {
		prefix = "dance-app"
	}
	return &PreferenceRepository{store: store, prefix: prefix}
}

// PreferencesKey addresses a user's preference set.
func (r *PreferenceRepository) PreferencesKey(userID string) string {
	return cache.Key(r.prefix, "user-preferences", userID)
}

// SettingsKey addresses a session's app settings.
func (r *PreferenceRepository) SettingsKey(sessionID string) string {
	return cache.Key(r.prefix, "settings", sessionID)
}

// CurrentUserKey addresses a session's current-user pointer.
func (r *PreferenceRepository) CurrentUserKey(sessionID string) string {
	return cache.Key(r.prefix, "current-user-id", sessionID)
}

// ProfileKey addresses a user's saved profile override.
func (r *PreferenceRepository) ProfileKey(userID string) string {
	return cache.Key(r.prefix, "user-"+userID)
}

// GetPreferences loads the preference set for userID.
func (r *PreferenceRepository) GetPreferences(ctx context.Context, userID string) (*models.PreferenceSet, error) {
	var prefs models.PreferenceSet
	if err := r.getJSON(ctx, r.PreferencesKey(userID), &prefs); err != nil {
		return nil, err
	}
	prefs.UserID = userID
	prefs.Normalize()
	return &prefs, nil
}

// SavePreferences persists prefs under its user id.
func (r *PreferenceRepository) SavePreferences(ctx context.Context, prefs models.PreferenceSet) error {
	if prefs.UserID == "" {
		return fmt.Errorf("preference set has no user id")
	}
	return r.setJSON(ctx, r.PreferencesKey(prefs.UserID), prefs)
}

// GetSettings loads the app settings of a session.
func (r *PreferenceRepository) GetSettings(ctx context.Context, sessionID string) (*models.AppSettings, error) {
	var settings models.AppSettings
	if err := r.getJSON(ctx, r.SettingsKey(sessionID), &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings persists the app settings of a session.
func (r *PreferenceRepository) SaveSettings(ctx context.Context, sessionID string, settings models.AppSettings) error {
	return r.setJSON(ctx, r.SettingsKey(sessionID), settings)
}

// GetCurrentUserID returns the user a session points at.
func (r *PreferenceRepository) GetCurrentUserID(ctx context.Context, sessionID string) (string, error) {
	var userID string
	if err := r.getJSON(ctx, r.CurrentUserKey(sessionID), &userID); err != nil {
		return "", err
	}
	if userID == "" {
		return "", ErrCorruptValue
	}
	return userID, nil
}

// SetCurrentUserID points a session at userID.
func (r *PreferenceRepository) SetCurrentUserID(ctx context.Context, sessionID, userID string) error {
	return r.setJSON(ctx, r.CurrentUserKey(sessionID), userID)
}

// GetProfileOverride loads the saved profile edits for userID.
func (r *PreferenceRepository) GetProfileOverride(ctx context.Context, userID string) (*models.ProfileOverride, error) {
	var override models.ProfileOverride
	if err := r.getJSON(ctx, r.ProfileKey(userID), &override); err != nil {
		return nil, err
	}
	return &override, nil
}

// SaveProfileOverride persists profile edits for userID.
func (r *PreferenceRepository) SaveProfileOverride(ctx context.Context, userID string, override models.ProfileOverride) error {
	return r.setJSON(ctx, r.ProfileKey(userID), override)
}

// Clear removes every key owned by the session and its user.
func (r *PreferenceRepository) Clear(ctx context.Context, sessionID, userID string) error {
	keys := []string{r.SettingsKey(sessionID), r.CurrentUserKey(sessionID)}
	if userID != "" {
		keys = append(keys, r.PreferencesKey(userID), r.ProfileKey(userID))
	}
	return r.store.Delete(ctx, keys...)
}

func (r *PreferenceRepository) getJSON(ctx context.Context, key string, dest interface{}) error {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptValue, key, err)
	}
	return nil
}

func (r *PreferenceRepository) setJSON(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return r.store.Set(ctx, key, string(payload))
}
