package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/repository"
	"github.com/noah-isme/dance-class-api/pkg/config"
	appErrors "github.com/noah-isme/dance-class-api/pkg/errors"
)

type sessionFixture struct {
	sessions *SessionService
	prefs    *PreferenceService
	users    *UserService
	repo     *repository.PreferenceRepository
	kv       *flakyKVStore
	metrics  *recordingMetrics
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	catalog := loadedCatalogService(t)
	kv := &flakyKVStore{MemoryStore: repository.NewMemoryStore()}
	repo := repository.NewPreferenceRepository(kv, "test")
	metrics := &recordingMetrics{}
	prefs := NewPreferenceService(repo, metrics, zap.NewNop())
	users := NewUserService(repo, validator.New(), metrics, zap.NewNop(), "")
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "dance-class-api-test", Expiration: time.Hour}
	sessions := NewSessionService(repo, catalog, prefs, users, metrics, cfg, zap.NewNop())
	return &sessionFixture{sessions: sessions, prefs: prefs, users: users, repo: repo, kv: kv, metrics: metrics}
}

func (f *sessionFixture) resolve(t *testing.T, token string) *models.Session {
	t.Helper()
	claims, err := f.sessions.ParseToken(token)
	require.NoError(t, err)
	return f.sessions.Resolve(context.Background(), claims)
}

func TestSessionStartBindsDefaultUser(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	token, err := f.sessions.Start(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)
	assert.Equal(t, "choreo-1", token.Session.User.ID)
	assert.Equal(t, models.DefaultSettings(), token.Session.Settings)

	stored, err := f.repo.GetCurrentUserID(ctx, token.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "choreo-1", stored)

	session := f.resolve(t, token.Token)
	assert.Equal(t, token.Session.ID, session.ID)
	assert.Equal(t, "Alex Kim", session.User.Name)
}

func TestSessionParseTokenRejectsForeignTokens(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.sessions.ParseToken("not-a-token")
	requireAppError(t, err, appErrors.ErrUnauthorized.Code)

	claims := &models.SessionClaims{SessionID: "s1", UserID: "choreo-1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = f.sessions.ParseToken(forged)
	requireAppError(t, err, appErrors.ErrUnauthorized.Code)

	expired := &models.SessionClaims{SessionID: "s1", UserID: "choreo-1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}}
	stale, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = f.sessions.ParseToken(stale)
	requireAppError(t, err, appErrors.ErrUnauthorized.Code)
}

func TestSessionSwitchUser(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	token, err := f.sessions.Start(ctx)
	require.NoError(t, err)
	session := f.resolve(t, token.Token)

	_, err = f.sessions.SwitchUser(ctx, session, "ghost")
	requireAppError(t, err, appErrors.ErrNotFound.Code)

	_, err = f.sessions.SwitchUser(ctx, session, "  ")
	requireAppError(t, err, appErrors.ErrValidation.Code)

	switched, err := f.sessions.SwitchUser(ctx, session, "dancer-1")
	require.NoError(t, err)
	assert.Equal(t, "dancer-1", switched.Session.User.ID)
	assert.Equal(t, session.ID, switched.Session.ID)

	// the stored pointer wins even for the old token
	again := f.resolve(t, token.Token)
	assert.Equal(t, "dancer-1", again.User.ID)
}

func TestSessionSwitchRole(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	token, err := f.sessions.Start(ctx)
	require.NoError(t, err)
	session := f.resolve(t, token.Token)

	_, err = f.sessions.SwitchRole(ctx, session, "admin")
	requireAppError(t, err, appErrors.ErrValidation.Code)

	updated, err := f.sessions.SwitchRole(ctx, session, " Dancer ")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDancer, updated.User.Role)
	assert.Equal(t, models.RoleChoreographer, session.User.Role)
	assert.Equal(t, models.RoleDancer, f.resolve(t, token.Token).User.Role)

	_, err = f.sessions.SwitchUser(ctx, session, "choreo-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleChoreographer, f.resolve(t, token.Token).User.Role)
}

func TestSessionClearRemovesStoredState(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	token, err := f.sessions.Start(ctx)
	require.NoError(t, err)
	session := f.resolve(t, token.Token)

	_, err = f.prefs.ToggleInterested(ctx, session.User.ID, "c1")
	require.NoError(t, err)
	_, err = f.prefs.SaveSettings(ctx, session.ID, models.AppSettings{PreferredView: models.ViewCalendar})
	require.NoError(t, err)

	fresh, err := f.sessions.Clear(ctx, session)
	require.NoError(t, err)
	assert.NotEqual(t, session.ID, fresh.Session.ID)
	assert.Empty(t, fresh.Session.Preferences.InterestedClasses)

	_, err = f.repo.GetPreferences(ctx, session.User.ID)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	_, err = f.repo.GetSettings(ctx, session.ID)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	assert.False(t, f.prefs.IsInterested(ctx, session.User.ID, "c1"))
}

func TestSessionResolveFailsSoft(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	token, err := f.sessions.Start(ctx)
	require.NoError(t, err)

	f.kv.failGet = true
	session := f.resolve(t, token.Token)
	assert.Equal(t, "choreo-1", session.User.ID)
	assert.Equal(t, models.DefaultSettings(), session.Settings)
	assert.Contains(t, f.metrics.storeErrors, "read_current_user")
}

func TestSessionAnonymous(t *testing.T) {
	f := newSessionFixture(t)
	session := f.sessions.Anonymous(context.Background())
	assert.Empty(t, session.ID)
	assert.Equal(t, "choreo-1", session.User.ID)
	assert.Empty(t, session.Preferences.InterestedClasses)
	assert.Equal(t, models.DefaultSettings(), session.Settings)
}
