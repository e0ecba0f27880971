package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/repository"
	"github.com/noah-isme/dance-class-api/pkg/config"
	appErrors "github.com/noah-isme/dance-class-api/pkg/errors"
)

type sessionStore interface {
	GetCurrentUserID(ctx context.Context, sessionID string) (string, error)
	SetCurrentUserID(ctx context.Context, sessionID, userID string) error
	Clear(ctx context.Context, sessionID, userID string) error
}

type sessionUsers interface {
	DefaultUser() models.User
	ResolveUser(id string) (models.User, bool)
}

type sessionPreferences interface {
	Preferences(ctx context.Context, userID string) models.PreferenceSet
	Settings(ctx context.Context, sessionID string) models.AppSettings
	Forget(userID string)
}

type profileApplier interface {
	ApplyProfile(ctx context.Context, user models.User) models.User
	Forget(userID string)
}

// SessionService issues session tokens and assembles the Session aggregate
// each request operates on.
type SessionService struct {
	store    sessionStore
	users    sessionUsers
	prefs    sessionPreferences
	profiles profileApplier
	metrics  storeErrorMetrics
	config   config.JWTConfig
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.RWMutex
	roles map[string]models.UserRole
}

// NewSessionService constructs the service.
func NewSessionService(store sessionStore, users sessionUsers, prefs sessionPreferences, profiles profileApplier, metrics storeErrorMetrics, cfg config.JWTConfig, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = 24 * time.Hour
	}
	return &SessionService{
		store:    store,
		users:    users,
		prefs:    prefs,
		profiles: profiles,
		metrics:  metrics,
		config:   cfg,
		logger:   logger,
		now:      time.Now,
		roles:    make(map[string]models.UserRole),
	}
}

// Start opens a new session bound to the default user.
func (s *SessionService) Start(ctx context.Context) (*models.SessionToken, error) {
	sessionID := uuid.NewString()
	user := s.users.DefaultUser()
	s.bind(ctx, sessionID, user.ID)

	token, err := s.issue(ctx, sessionID, user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("session started", zap.String("session_id", sessionID), zap.String("user_id", user.ID))
	return token, nil
}

// ParseToken validates a session token and returns its claims.
func (s *SessionService) ParseToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Resolve assembles the session for validated claims. The stored
// current-user pointer wins over the token's uid so user switches survive
// without reissuing.
func (s *SessionService) Resolve(ctx context.Context, claims *models.SessionClaims) *models.Session {
	userID := claims.UserID
	stored, err := s.store.GetCurrentUserID(ctx, claims.SessionID)
	switch {
	case err == nil:
		userID = stored
	case !errors.Is(err, repository.ErrKeyNotFound):
		s.readFailed("current_user", claims.SessionID, err)
	}

	user, ok := s.users.ResolveUser(userID)
	if !ok {
		user = s.users.DefaultUser()
	}
	return s.assemble(ctx, claims.SessionID, user)
}

// Anonymous returns an ephemeral session bound to the default user with
// empty preferences and default settings. Nothing is persisted.
func (s *SessionService) Anonymous(ctx context.Context) *models.Session {
	user := s.users.DefaultUser()
	if s.profiles != nil {
		user = s.profiles.ApplyProfile(ctx, user)
	}
	return &models.Session{
		User:        user,
		Preferences: models.NewPreferenceSet(user.ID),
		Settings:    models.DefaultSettings(),
	}
}

// SwitchUser rebinds the session to userID and reissues its token.
func (s *SessionService) SwitchUser(ctx context.Context, session *models.Session, userID string) (*models.SessionToken, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "user_id is required", map[string]string{"user_id": "required"})
	}
	if _, ok := s.users.ResolveUser(userID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}

	s.bind(ctx, session.ID, userID)
	s.mu.Lock()
	delete(s.roles, session.ID)
	s.mu.Unlock()

	token, err := s.issue(ctx, session.ID, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("session user switched", zap.String("session_id", session.ID), zap.String("user_id", userID))
	return token, nil
}

// SwitchRole overrides the session user's role until the session switches
// user or is cleared.
func (s *SessionService) SwitchRole(ctx context.Context, session *models.Session, role models.UserRole) (*models.Session, error) {
	role = models.UserRole(strings.ToLower(strings.TrimSpace(string(role))))
	if !role.Valid() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "invalid role", map[string]string{"role": "must be dancer, choreographer or both"})
	}

	s.mu.Lock()
	s.roles[session.ID] = role
	s.mu.Unlock()

	updated := *session
	updated.User = session.User.Clone()
	updated.User.Role = role
	s.logger.Info("session role switched", zap.String("session_id", session.ID), zap.String("role", string(role)))
	return &updated, nil
}

// Clear deletes every stored key for the session and its user, then opens
// a fresh session bound to the default user.
func (s *SessionService) Clear(ctx context.Context, session *models.Session) (*models.SessionToken, error) {
	if err := s.store.Clear(ctx, session.ID, session.User.ID); err != nil {
		if s.metrics != nil {
			s.metrics.RecordStoreError("clear")
		}
		s.logger.Warn("session clear incomplete", zap.String("session_id", session.ID), zap.Error(err))
	}
	s.prefs.Forget(session.User.ID)
	if s.profiles != nil {
		s.profiles.Forget(session.User.ID)
	}
	s.mu.Lock()
	delete(s.roles, session.ID)
	s.mu.Unlock()

	s.logger.Info("session cleared", zap.String("session_id", session.ID), zap.String("user_id", session.User.ID))
	return s.Start(ctx)
}

func (s *SessionService) assemble(ctx context.Context, sessionID string, user models.User) *models.Session {
	if s.profiles != nil {
		user = s.profiles.ApplyProfile(ctx, user)
	}
	s.mu.RLock()
	role, ok := s.roles[sessionID]
	s.mu.RUnlock()
	if ok {
		user.Role = role
	}
	return &models.Session{
		ID:          sessionID,
		User:        user,
		Preferences: s.prefs.Preferences(ctx, user.ID),
		Settings:    s.prefs.Settings(ctx, sessionID),
	}
}

func (s *SessionService) bind(ctx context.Context, sessionID, userID string) {
	if err := s.store.SetCurrentUserID(ctx, sessionID, userID); err != nil {
		if s.metrics != nil {
			s.metrics.RecordStoreError("write_current_user")
		}
		s.logger.Warn("current user write dropped", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *SessionService) issue(ctx context.Context, sessionID, userID string) (*models.SessionToken, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiration)
	claims := &models.SessionClaims{
		SessionID: sessionID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session token")
	}

	user, ok := s.users.ResolveUser(userID)
	if !ok {
		user = s.users.DefaultUser()
	}
	return &models.SessionToken{
		Token:     signed,
		ExpiresAt: expiresAt.Unix(),
		Session:   *s.assemble(ctx, sessionID, user),
	}, nil
}

func (s *SessionService) readFailed(what, sessionID string, err error) {
	if s.metrics != nil {
		s.metrics.RecordStoreError("read_" + what)
	}
	s.logger.Warn("session read failed, using token user", zap.String("what", what), zap.String("session_id", sessionID), zap.Error(err))
}
