package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/repository"
)

type catalogMetrics interface {
	RecordCatalogLoad(classes, users, rejected int, failedDocuments int)
	RecordCatalogSize(classes int)
}

// ErrClassNotInCatalog is returned by catalog mutations for unknown class ids.
var ErrClassNotInCatalog = errors.New("class not in catalog")

// CatalogLoadReport summarises one load.
type CatalogLoadReport struct {
	Classes  int                      `json:"classes"`
	Users    int                      `json:"users"`
	Rejected []repository.RecordError `json:"-"`
	Errors   []string                 `json:"errors,omitempty"`
	Duration time.Duration            `json:"duration"`
}

// CatalogService owns the in-memory class and user collections. Snapshots
// are replaced wholesale on every load or mutation and never modified in place.
type CatalogService struct {
	source  repository.CatalogSource
	loc     *time.Location
	logger  *zap.Logger
	metrics catalogMetrics

	mu            sync.RWMutex
	catalog       *models.Catalog
	defaultUserID string
	now           func() time.Time
}

// NewCatalogService constructs the service with an empty catalog.
func NewCatalogService(source repository.CatalogSource, loc *time.Location, metrics catalogMetrics, logger *zap.Logger) *CatalogService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		source:  source,
		loc:     loc,
		logger:  logger,
		metrics: metrics,
		catalog: &models.Catalog{Classes: []models.DanceClass{}, Users: []models.User{}},
		now:     time.Now,
	}
}

// Location returns the timezone naive fixture times are read in.
func (s *CatalogService) Location() *time.Location {
	return s.loc
}

type fetchedDocument struct {
	data []byte
	err  error
}

// Load fetches every document, decodes it and swaps in the new catalog. A
// failing document yields an empty collection and a load error; Load itself
// only fails when ctx is cancelled.
func (s *CatalogService) Load(ctx context.Context) (*CatalogLoadReport, error) {
	started := s.now()
	names := []string{repository.DocumentClasses, repository.DocumentUsers, repository.DocumentChoreographers}
	docs := make([]fetchedDocument, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			data, err := s.source.Fetch(gctx, name)
			docs[i] = fetchedDocument{data: data, err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &CatalogLoadReport{}
	loadErrors := make([]string, 0)
	fail := func(name string, err error) {
		msg := fmt.Sprintf("failed to load %s", strings.TrimSuffix(name, ".json"))
		loadErrors = append(loadErrors, msg)
		s.logger.Warn("catalog document failed to load",
			zap.String("document", name),
			zap.String("source", s.source.Describe()),
			zap.Error(err))
	}

	classes := []models.DanceClass{}
	if docs[0].err != nil {
		fail(names[0], docs[0].err)
	} else if decoded, rejected, err := repository.DecodeClasses(docs[0].data, s.loc); err != nil {
		fail(names[0], err)
	} else {
		classes = decoded
		report.Rejected = append(report.Rejected, rejected...)
	}

	users := []models.User{}
	if docs[1].err != nil {
		fail(names[1], docs[1].err)
	} else if decoded, rejected, err := repository.DecodeUsers(docs[1].data, names[1], "users"); err != nil {
		fail(names[1], err)
	} else {
		users = decoded
		report.Rejected = append(report.Rejected, rejected...)
	}

	choreographers := []models.User{}
	if docs[2].err != nil {
		fail(names[2], docs[2].err)
	} else if decoded, rejected, err := repository.DecodeUsers(docs[2].data, names[2], "choreographers"); err != nil {
		fail(names[2], err)
	} else {
		choreographers = decoded
		report.Rejected = append(report.Rejected, rejected...)
	}

	for _, rec := range report.Rejected {
		s.logger.Warn("catalog record rejected",
			zap.String("document", rec.Document),
			zap.Int("index", rec.Index),
			zap.String("id", rec.ID),
			zap.String("reason", rec.Reason))
	}

	merged := MergeUsers(users, choreographers)
	AssignUsernames(merged)
	classes = linkChoreographers(classes, merged)

	defaultUserID := pickDefaultUser(choreographers, merged)

	next := &models.Catalog{
		Classes:    classes,
		Users:      merged,
		LoadedAt:   s.now().UTC(),
		LoadErrors: loadErrors,
	}

	s.mu.Lock()
	s.catalog = next
	s.defaultUserID = defaultUserID
	s.mu.Unlock()

	report.Classes = len(classes)
	report.Users = len(merged)
	report.Errors = loadErrors
	report.Duration = s.now().Sub(started)

	if s.metrics != nil {
		s.metrics.RecordCatalogLoad(report.Classes, report.Users, len(report.Rejected), len(loadErrors))
	}
	s.logger.Info("catalog loaded",
		zap.String("source", s.source.Describe()),
		zap.Int("classes", report.Classes),
		zap.Int("users", report.Users),
		zap.Int("rejected", len(report.Rejected)),
		zap.Int("failed_documents", len(loadErrors)),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// Snapshot returns the current catalog. Callers must treat it as read-only.
func (s *CatalogService) Snapshot() *models.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// DefaultUser is the first choreographer of the fixtures, else the first
// teaching user, else the demo user.
func (s *CatalogService) DefaultUser() models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.catalog.UserByID(s.defaultUserID); ok {
		return user
	}
	return models.DemoUser()
}

// ResolveUser finds a user by id, including the demo fallback account.
func (s *CatalogService) ResolveUser(id string) (models.User, bool) {
	if user, ok := s.Snapshot().UserByID(id); ok {
		return user, true
	}
	if id == models.DefaultUserID {
		return models.DemoUser(), true
	}
	return models.User{}, false
}

// ChoreographerClasses returns the classes owned by choreographerID in catalog order.
func (s *CatalogService) ChoreographerClasses(choreographerID string) []models.DanceClass {
	snapshot := s.Snapshot()
	out := make([]models.DanceClass, 0)
	for _, class := range snapshot.Classes {
		if class.ChoreographerID == choreographerID {
			out = append(out, class)
		}
	}
	return out
}

// AddClass appends class to the catalog.
func (s *CatalogService) AddClass(class models.DanceClass) {
	_ = s.mutate(func(classes []models.DanceClass) ([]models.DanceClass, error) {
		return append(classes, class.Clone()), nil
	})
}

// UpdateClass applies fn to the class with id under the catalog lock. If fn
// returns an error nothing is changed.
func (s *CatalogService) UpdateClass(id string, fn func(*models.DanceClass) error) (models.DanceClass, error) {
	var updated models.DanceClass
	err := s.mutate(func(classes []models.DanceClass) ([]models.DanceClass, error) {
		for i := range classes {
			if classes[i].ID != id {
				continue
			}
			candidate := classes[i].Clone()
			if err := fn(&candidate); err != nil {
				return nil, err
			}
			classes[i] = candidate
			updated = candidate.Clone()
			return classes, nil
		}
		return nil, ErrClassNotInCatalog
	})
	return updated, err
}

// RemoveClass deletes the class with id.
func (s *CatalogService) RemoveClass(id string) error {
	return s.mutate(func(classes []models.DanceClass) ([]models.DanceClass, error) {
		for i := range classes {
			if classes[i].ID == id {
				return append(classes[:i], classes[i+1:]...), nil
			}
		}
		return nil, ErrClassNotInCatalog
	})
}

func (s *CatalogService) mutate(fn func([]models.DanceClass) ([]models.DanceClass, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := append([]models.DanceClass(nil), s.catalog.Classes...)
	next, err := fn(working)
	if err != nil {
		return err
	}
	clone := *s.catalog
	clone.Classes = next
	s.catalog = &clone
	if s.metrics != nil {
		s.metrics.RecordCatalogSize(len(next))
	}
	return nil
}

// MergeUsers combines users and choreographers by id; choreographer records win
// and keep the position of the user they replace.
func MergeUsers(users, choreographers []models.User) []models.User {
	merged := make([]models.User, 0, len(users)+len(choreographers))
	index := make(map[string]int, len(users)+len(choreographers))
	for _, user := range users {
		if i, ok := index[user.ID]; ok {
			merged[i] = user
			continue
		}
		index[user.ID] = len(merged)
		merged = append(merged, user)
	}
	for _, choreo := range choreographers {
		if i, ok := index[choreo.ID]; ok {
			merged[i] = choreo
			continue
		}
		index[choreo.ID] = len(merged)
		merged = append(merged, choreo)
	}
	return merged
}

// pickDefaultUser prefers the first choreographer record, then the first
// merged user who can teach.
func pickDefaultUser(choreographers, merged []models.User) string {
	if len(choreographers) > 0 {
		return choreographers[0].ID
	}
	for _, user := range merged {
		if user.Role.CanTeach() {
			return user.ID
		}
	}
	return ""
}

// AssignUsernames fills missing usernames from display names and makes them unique.
func AssignUsernames(users []models.User) {
	taken := make(map[string]struct{}, len(users))
	for _, user := range users {
		if user.Username != "" {
			taken[strings.ToLower(user.Username)] = struct{}{}
		}
	}
	for i := range users {
		if users[i].Username != "" {
			continue
		}
		base := Slugify(users[i].Name)
		if base == "" {
			base = Slugify(users[i].ID)
		}
		candidate := base
		for n := 2; ; n++ {
			if _, ok := taken[candidate]; !ok {
				break
			}
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		taken[candidate] = struct{}{}
		users[i].Username = candidate
	}
}

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}

func linkChoreographers(classes []models.DanceClass, users []models.User) []models.DanceClass {
	byID := make(map[string]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	for i := range classes {
		user, ok := byID[classes[i].ChoreographerID]
		if !ok {
			continue
		}
		if classes[i].ChoreographerUsername == "" {
			classes[i].ChoreographerUsername = user.Username
		}
		if classes[i].ChoreographerName == "" {
			classes[i].ChoreographerName = user.Name
		}
	}
	return classes
}
