package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-class-api/internal/dto"
	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/repository"
	appErrors "github.com/noah-isme/dance-class-api/pkg/errors"
	"github.com/noah-isme/dance-class-api/pkg/youtube"
)

type profileStore interface {
	GetProfileOverride(ctx context.Context, userID string) (*models.ProfileOverride, error)
	SaveProfileOverride(ctx context.Context, userID string, override models.ProfileOverride) error
}

type storeErrorMetrics interface {
	RecordStoreError(op string)
}

var profileFieldMessages = map[string]string{
	"name":           "Name must be between 1 and 120 characters",
	"pronouns":       "Pronouns are too long",
	"bio":            "Bio is too long",
	"profile_photo":  "Profile photo must be a valid URL",
	"website":        "Website must be a valid URL",
	"achievements":   "Achievements are limited to 50 entries of 200 characters",
	"teaching_style": "Teaching style is too long",
}

// UserService serves own-profile edits and public choreographer pages.
// Profile overrides are cached in memory and written through to the store.
type UserService struct {
	store     profileStore
	validator *validator.Validate
	metrics   storeErrorMetrics
	logger    *zap.Logger
	origin    string
	now       func() time.Time

	mu        sync.Mutex
	overrides map[string]*models.ProfileOverride
}

// NewUserService constructs the service. origin is forwarded to video embed URLs.
func NewUserService(store profileStore, validate *validator.Validate, metrics storeErrorMetrics, logger *zap.Logger, origin string) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		store:     store,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		origin:    origin,
		now:       time.Now,
		overrides: make(map[string]*models.ProfileOverride),
	}
}

// ApplyProfile returns user with any saved profile edits applied.
func (s *UserService) ApplyProfile(ctx context.Context, user models.User) models.User {
	override := s.override(ctx, user.ID)
	if override == nil {
		return user
	}
	return override.Apply(user)
}

// UpdateProfile validates req, merges it into the saved edits and returns the updated user.
func (s *UserService) UpdateProfile(ctx context.Context, session *models.Session, req dto.UpdateProfileRequest) (*models.User, error) {
	details := make(map[string]string)
	if err := s.validator.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
		}
		for _, fe := range fieldErrs {
			field := profileFieldName(fe.StructField())
			details[field] = profileFieldMessages[field]
		}
	}
	if req.FeaturedVideo != nil && strings.TrimSpace(*req.FeaturedVideo) != "" {
		if info := youtube.Validate(*req.FeaturedVideo, s.origin); !info.Valid {
			details["featured_video"] = info.Error
		}
	}
	if len(details) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "invalid profile payload", details)
	}

	userID := session.User.ID
	current := models.ProfileOverride{}
	if stored := s.override(ctx, userID); stored != nil {
		current = *stored
	}

	merged := mergeOverride(current, req)
	s.mu.Lock()
	s.overrides[userID] = &merged
	s.mu.Unlock()

	if err := s.store.SaveProfileOverride(ctx, userID, merged); err != nil {
		if s.metrics != nil {
			s.metrics.RecordStoreError("write_profile")
		}
		s.logger.Warn("profile write dropped", zap.String("user_id", userID), zap.Error(err))
	}

	user := merged.Apply(session.User)
	s.logger.Info("profile updated", zap.String("user_id", userID))
	return &user, nil
}

// PublicProfile returns the page for username with its upcoming active or featured classes.
func (s *UserService) PublicProfile(ctx context.Context, session *models.Session, catalog *models.Catalog, username string) (*models.ChoreographerProfile, error) {
	user, ok := catalog.UserByUsername(strings.TrimPrefix(strings.TrimSpace(username), "@"))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "choreographer profile \""+username+"\" could not be found")
	}
	user = s.ApplyProfile(ctx, user)
	now := s.now()

	upcoming := make([]models.DanceClass, 0)
	for _, class := range catalog.Classes {
		if class.ChoreographerID != user.ID || !class.DateTime.After(now) {
			continue
		}
		if class.Status == models.ClassStatusActive || class.Status == models.ClassStatusFeatured {
			upcoming = append(upcoming, class)
		}
	}

	profile := &models.ChoreographerProfile{
		User:            user,
		UpcomingClasses: projectAll(session, SortByDateTime(upcoming), now),
		IsFavorited:     session != nil && session.Preferences.Has(models.PreferenceFavorite, user.ID),
	}
	if user.FeaturedVideo != nil {
		if id := youtube.ExtractID(*user.FeaturedVideo); id != "" {
			profile.Video = &models.VideoEmbed{
				VideoID:      id,
				EmbedURL:     youtube.EmbedURL(id, s.origin),
				ThumbnailURL: youtube.Thumbnail(id, youtube.QualityHigh),
			}
		}
	}
	return profile, nil
}

// ValidateVideo checks a YouTube link.
func (s *UserService) ValidateVideo(raw, origin string) youtube.VideoInfo {
	if origin == "" {
		origin = s.origin
	}
	return youtube.Validate(raw, origin)
}

// Forget drops the cached edits for userID.
func (s *UserService) Forget(userID string) {
	s.mu.Lock()
	delete(s.overrides, userID)
	s.mu.Unlock()
}

func (s *UserService) override(ctx context.Context, userID string) *models.ProfileOverride {
	s.mu.Lock()
	cached, ok := s.overrides[userID]
	s.mu.Unlock()
	if ok {
		return cached
	}

	override, err := s.store.GetProfileOverride(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrKeyNotFound) {
			if s.metrics != nil {
				s.metrics.RecordStoreError("read_profile")
			}
			s.logger.Warn("profile read failed, using catalog profile", zap.String("user_id", userID), zap.Error(err))
		}
		override = nil
	}

	s.mu.Lock()
	s.overrides[userID] = override
	s.mu.Unlock()
	return override
}

func mergeOverride(current models.ProfileOverride, req dto.UpdateProfileRequest) models.ProfileOverride {
	set := func(dst **string, src *string) {
		if src == nil {
			return
		}
		value := strings.TrimSpace(*src)
		*dst = &value
	}
	set(&current.Name, req.Name)
	set(&current.Pronouns, req.Pronouns)
	set(&current.Bio, req.Bio)
	set(&current.ProfilePhoto, req.ProfilePhoto)
	set(&current.Website, req.Website)
	set(&current.FeaturedVideo, req.FeaturedVideo)
	set(&current.TeachingStyle, req.TeachingStyle)
	if req.SocialLinks != nil {
		links := *req.SocialLinks
		current.SocialLinks = &links
	}
	if req.Achievements != nil {
		kept := make([]string, 0, len(req.Achievements))
		for _, a := range req.Achievements {
			if a = strings.TrimSpace(a); a != "" {
				kept = append(kept, a)
			}
		}
		current.Achievements = kept
	}
	return current
}

func profileFieldName(structField string) string {
	if i := strings.IndexByte(structField, '['); i >= 0 {
		structField = structField[:i]
	}
	switch structField {
	case "ProfilePhoto":
		return "profile_photo"
	case "FeaturedVideo":
		return "featured_video"
	case "TeachingStyle":
		return "teaching_style"
	default:
		return strings.ToLower(structField)
	}
}
