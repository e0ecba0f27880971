package service

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dance-class-api/internal/models"
	appErrors "github.com/noah-isme/dance-class-api/pkg/errors"
)

// ScheduleService projects catalog snapshots into annotated, grouped views
// for one session. It holds no catalog state of its own.
type ScheduleService struct {
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduleService constructs the service. loc is the fallback viewer timezone.
func NewScheduleService(loc *time.Location, logger *zap.Logger) *ScheduleService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{loc: loc, logger: logger, now: time.Now}
}

// Location resolves a viewer timezone name, falling back to the default zone.
func (s *ScheduleService) Location(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return s.loc, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "invalid timezone", map[string]string{"tz": "Unknown timezone " + tz})
	}
	return loc, nil
}

// Schedule filters, groups and annotates the catalog for session.
func (s *ScheduleService) Schedule(session *models.Session, catalog *models.Catalog, query models.ScheduleQuery) (*models.ScheduleView, error) {
	loc, err := s.Location(query.Timezone)
	if err != nil {
		return nil, err
	}
	now := s.now()
	matched := s.match(catalog, query, now)
	groups := GroupByDay(matched, now, loc)

	view := &models.ScheduleView{Groups: make([]models.DayGroupView, 0, len(groups)), Timezone: loc.String()}
	for _, group := range groups {
		items := make([]models.ClassView, 0, len(group.Items))
		for _, class := range group.Items {
			items = append(items, ProjectClass(session, class, now))
		}
		view.Groups = append(view.Groups, models.DayGroupView{Key: group.Key, Label: group.Label, Items: items})
		view.Total += len(items)
	}
	return view, nil
}

// List returns the matching classes as a flat annotated list ordered by start time.
func (s *ScheduleService) List(session *models.Session, catalog *models.Catalog, query models.ScheduleQuery) ([]models.ClassView, error) {
	if _, err := s.Location(query.Timezone); err != nil {
		return nil, err
	}
	now := s.now()
	return projectAll(session, SortByDateTime(s.match(catalog, query, now)), now), nil
}

// Class returns one annotated class.
func (s *ScheduleService) Class(session *models.Session, catalog *models.Catalog, id string) (*models.ClassView, error) {
	class, ok := catalog.ClassByID(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	view := ProjectClass(session, class, s.now())
	return &view, nil
}

// Upcoming returns future, non-cancelled classes in start order, capped at limit when limit > 0.
func (s *ScheduleService) Upcoming(session *models.Session, catalog *models.Catalog, limit int) []models.ClassView {
	now := s.now()
	classes := UpcomingClasses(catalog.Classes, now)
	return projectAll(session, capClasses(classes, limit), now)
}

// Featured returns featured classes in start order, capped at limit when limit > 0.
func (s *ScheduleService) Featured(session *models.Session, catalog *models.Catalog, limit int) []models.ClassView {
	now := s.now()
	return projectAll(session, FeaturedClasses(catalog.Classes, limit), now)
}

// Owned returns every class owned by the session user in start order, whatever its status.
func (s *ScheduleService) Owned(session *models.Session, catalog *models.Catalog) []models.ClassView {
	owned := make([]models.DanceClass, 0)
	for _, class := range catalog.Classes {
		if class.ChoreographerID == session.User.ID {
			owned = append(owned, class)
		}
	}
	return projectAll(session, SortByDateTime(owned), s.now())
}

// FilterOptions lists the distinct styles, choreographers and studios in the catalog.
func (s *ScheduleService) FilterOptions(catalog *models.Catalog) models.FilterOptions {
	styles := make(map[string]struct{})
	studios := make(map[string]struct{})
	choreographers := make(map[string]string)
	for _, class := range catalog.Classes {
		for _, style := range class.Style {
			styles[style] = struct{}{}
		}
		if studio := class.Studio(); studio != "" {
			studios[studio] = struct{}{}
		}
		if class.ChoreographerID != "" {
			if _, ok := choreographers[class.ChoreographerID]; !ok {
				choreographers[class.ChoreographerID] = class.ChoreographerName
			}
		}
	}

	options := models.FilterOptions{
		Styles:         sortedKeys(styles),
		Studios:        sortedKeys(studios),
		Choreographers: make([]models.ChoreographerOption, 0, len(choreographers)),
	}
	for id, name := range choreographers {
		options.Choreographers = append(options.Choreographers, models.ChoreographerOption{ID: id, Name: name})
	}
	sort.Slice(options.Choreographers, func(i, j int) bool {
		a, b := options.Choreographers[i], options.Choreographers[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return options
}

func (s *ScheduleService) match(catalog *models.Catalog, query models.ScheduleQuery, now time.Time) []models.DanceClass {
	matched := FilterClasses(catalog.Classes, query.Query, query.Filter)
	if query.UpcomingOnly {
		matched = UpcomingClasses(matched, now)
	}
	return matched
}

// ProjectClass annotates class with the session's flags.
func ProjectClass(session *models.Session, class models.DanceClass, now time.Time) models.ClassView {
	view := models.ClassView{DanceClass: class.Clone()}
	if session != nil {
		view.IsOwner = session.User.ID != "" && session.User.ID == class.ChoreographerID
		view.IsInterested = session.Preferences.Has(models.PreferenceInterested, class.ID)
		view.IsAttending = session.Preferences.Has(models.PreferenceAttending, class.ID)
		view.IsFavoritedChoreographer = session.Preferences.Has(models.PreferenceFavorite, class.ChoreographerID)
	}
	if class.Status == models.ClassStatusSubmitted && !view.IsOwner {
		view.Status = models.ClassStatusActive
	}
	view.ActionsDisabled = class.IsCancelled()
	view.IsPast = !class.DateTime.After(now)
	return view
}

// UpcomingClasses keeps classes starting after now that are not cancelled, in start order.
func UpcomingClasses(classes []models.DanceClass, now time.Time) []models.DanceClass {
	out := make([]models.DanceClass, 0, len(classes))
	for _, class := range classes {
		if class.IsUpcoming(now) {
			out = append(out, class)
		}
	}
	return SortByDateTime(out)
}

// FeaturedClasses keeps featured classes in start order, capped at limit when limit > 0.
func FeaturedClasses(classes []models.DanceClass, limit int) []models.DanceClass {
	out := make([]models.DanceClass, 0)
	for _, class := range classes {
		if class.Status == models.ClassStatusFeatured {
			out = append(out, class)
		}
	}
	return capClasses(SortByDateTime(out), limit)
}

func projectAll(session *models.Session, classes []models.DanceClass, now time.Time) []models.ClassView {
	out := make([]models.ClassView, 0, len(classes))
	for _, class := range classes {
		out = append(out, ProjectClass(session, class, now))
	}
	return out
}

func capClasses(classes []models.DanceClass, limit int) []models.DanceClass {
	if limit > 0 && len(classes) > limit {
		return classes[:limit]
	}
	return classes
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
