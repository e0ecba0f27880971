package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dance-class-api/internal/models"
)

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	FeaturedLimit int
}

// DashboardService composes the personal overview for a session.
type DashboardService struct {
	cfg    DashboardServiceConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(cfg DashboardServiceConfig, logger *zap.Logger) *DashboardService {
	if cfg.FeaturedLimit <= 0 {
		cfg.FeaturedLimit = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{cfg: cfg, logger: logger, now: time.Now}
}

// Dashboard builds counts and annotated lists for the session user.
// Teaching is only populated for roles that can own classes.
func (s *DashboardService) Dashboard(session *models.Session, catalog *models.Catalog) *models.Dashboard {
	now := s.now()
	prefs := session.Preferences

	interested := make([]models.DanceClass, 0)
	attending := make([]models.DanceClass, 0)
	teaching := make([]models.DanceClass, 0)
	for _, class := range catalog.Classes {
		if prefs.Has(models.PreferenceInterested, class.ID) {
			interested = append(interested, class)
		}
		if prefs.Has(models.PreferenceAttending, class.ID) {
			attending = append(attending, class)
		}
		if session.User.Role.CanTeach() && class.ChoreographerID == session.User.ID && class.IsUpcoming(now) {
			teaching = append(teaching, class)
		}
	}

	featured := FeaturedClasses(UpcomingClasses(catalog.Classes, now), s.cfg.FeaturedLimit)

	dashboard := &models.Dashboard{
		User: session.User,
		Stats: models.DashboardStats{
			Interested: len(interested),
			Attending:  len(attending),
			Favorites:  len(prefs.FavoritedChoreographers),
			Teaching:   len(teaching),
		},
		Interested: projectAll(session, SortByDateTime(interested), now),
		Attending:  projectAll(session, SortByDateTime(attending), now),
		Featured:   projectAll(session, featured, now),
	}
	if session.User.Role.CanTeach() {
		dashboard.Teaching = projectAll(session, SortByDateTime(teaching), now)
	}

	s.logger.Debug("dashboard composed",
		zap.String("user_id", session.User.ID),
		zap.Int("interested", dashboard.Stats.Interested),
		zap.Int("attending", dashboard.Stats.Attending),
	)
	return dashboard
}
