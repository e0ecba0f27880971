package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/repository"
)

type stubCatalogSource struct {
	docs map[string]string
	errs map[string]error
}

func (s *stubCatalogSource) Fetch(_ context.Context, name string) ([]byte, error) {
	if err := s.errs[name]; err != nil {
		return nil, err
	}
	doc, ok := s.docs[name]
	if !ok {
		return nil, errors.New("missing")
	}
	return []byte(doc), nil
}

func (s *stubCatalogSource) Describe() string { return "stub" }

const (
	fixtureClasses = `{"classes":[
		{"id":"c1","title":"Hip Hop Foundations","choreographerId":"choreo-1","choreographerName":"Alex Kim","style":["Hip Hop"],"dateTime":"2030-06-01T18:00:00Z","location":"Millennium Dance Complex - Studio A","description":"Grooves","status":"active"},
		{"id":"c2","title":"Contemporary Flow","choreographerId":"choreo-2","choreographerName":"Jordan Lee","style":["Contemporary"],"dateTime":"2030-06-02T10:00:00Z","location":"Movement Lifestyle - Studio B","description":"Floorwork","status":"featured"},
		{"id":"bad","title":"Broken","choreographerId":"choreo-1","style":[],"dateTime":"2030-06-02T10:00:00Z","status":"active"}
	]}`
	fixtureUsers = `{"users":[
		{"id":"dancer-1","name":"Sam Rivera","role":"dancer"},
		{"id":"choreo-1","name":"Alex (old)","role":"dancer"}
	]}`
	fixtureChoreographers = `{"choreographers":[
		{"id":"choreo-1","name":"Alex Kim","role":"choreographer","featuredVideo":"https://youtu.be/dQw4w9WgXcQ"},
		{"id":"choreo-2","name":"Jordan Lee","username":"jordanlee","role":"both"}
	]}`
)

func fixtureSource() *stubCatalogSource {
	return &stubCatalogSource{docs: map[string]string{
		repository.DocumentClasses:        fixtureClasses,
		repository.DocumentUsers:          fixtureUsers,
		repository.DocumentChoreographers: fixtureChoreographers,
	}}
}

func loadedCatalogService(t *testing.T) *CatalogService {
	t.Helper()
	svc := NewCatalogService(fixtureSource(), time.UTC, nil, zap.NewNop())
	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	return svc
}

func TestCatalogServiceLoadMergesAndRejects(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCatalogService(fixtureSource(), time.UTC, metrics, zap.NewNop())

	report, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Classes)
	assert.Equal(t, 3, report.Users)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, "bad", report.Rejected[0].ID)
	assert.Empty(t, report.Errors)

	snapshot := svc.Snapshot()
	assert.False(t, snapshot.HasLoadErrors())
	alex, ok := snapshot.UserByID("choreo-1")
	require.True(t, ok)
	assert.Equal(t, "Alex Kim", alex.Name)
	assert.Equal(t, "alex-kim", alex.Username)
	assert.Equal(t, "choreo-1", snapshot.Users[1].ID, "choreographer replaces the user in place")

	c1, ok := snapshot.ClassByID("c1")
	require.True(t, ok)
	assert.Equal(t, "alex-kim", c1.ChoreographerUsername)

	assert.Equal(t, "choreo-1", svc.DefaultUser().ID)
	assert.Len(t, svc.ChoreographerClasses("choreo-2"), 1)
}

func TestCatalogServiceDocumentFailureIsNonFatal(t *testing.T) {
	src := fixtureSource()
	src.errs = map[string]error{repository.DocumentChoreographers: errors.New("boom")}
	src.docs[repository.DocumentClasses] = `{"classes": 42}`

	svc := NewCatalogService(src, time.UTC, nil, zap.NewNop())
	report, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"failed to load classes", "failed to load choreographers"}, report.Errors)

	snapshot := svc.Snapshot()
	assert.True(t, snapshot.HasLoadErrors())
	assert.Empty(t, snapshot.Classes)
	assert.Len(t, snapshot.Users, 2)
	assert.Equal(t, models.DefaultUserID, svc.DefaultUser().ID)

	demo, ok := svc.ResolveUser(models.DefaultUserID)
	require.True(t, ok)
	assert.Equal(t, "Demo User", demo.Name)
	_, ok = svc.ResolveUser("nobody")
	assert.False(t, ok)
}

func TestCatalogServiceDefaultUserFallsBackToTeachingUser(t *testing.T) {
	src := fixtureSource()
	src.errs = map[string]error{repository.DocumentChoreographers: errors.New("boom")}
	src.docs[repository.DocumentUsers] = `{"users":[
		{"id":"dancer-1","name":"Sam Rivera","role":"dancer"},
		{"id":"choreo-9","name":"Maya Chen","role":"both"},
		{"id":"choreo-10","name":"Lee Park","role":"choreographer"}
	]}`

	svc := NewCatalogService(src, time.UTC, nil, zap.NewNop())
	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "choreo-9", svc.DefaultUser().ID)
}

func TestCatalogServiceMutationsAreCopyOnWrite(t *testing.T) {
	svc := loadedCatalogService(t)
	before := svc.Snapshot()

	svc.AddClass(newClass("c9", time.Now().Add(time.Hour)))
	_, err := svc.UpdateClass("c1", func(c *models.DanceClass) error {
		c.Title = "Renamed"
		return nil
	})
	require.NoError(t, err)

	_, err = svc.UpdateClass("c2", func(c *models.DanceClass) error {
		c.Title = "never applied"
		return errors.New("rejected")
	})
	require.Error(t, err)
	require.NoError(t, svc.RemoveClass("c2"))
	require.ErrorIs(t, svc.RemoveClass("c2"), ErrClassNotInCatalog)
	_, err = svc.UpdateClass("missing", func(*models.DanceClass) error { return nil })
	require.ErrorIs(t, err, ErrClassNotInCatalog)

	after := svc.Snapshot()
	assert.Len(t, before.Classes, 2)
	original, _ := before.ClassByID("c1")
	assert.Equal(t, "Hip Hop Foundations", original.Title)
	renamed, _ := after.ClassByID("c1")
	assert.Equal(t, "Renamed", renamed.Title)
	assert.Equal(t, []string{"c1", "c9"}, ids(after.Classes))

	_, err = svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids(svc.Snapshot().Classes), "reload discards in-memory mutations")
}

func TestCatalogServiceLoadCancelled(t *testing.T) {
	svc := NewCatalogService(fixtureSource(), time.UTC, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAssignUsernamesAndSlugify(t *testing.T) {
	users := []models.User{
		{ID: "1", Name: "Jo Park"},
		{ID: "2", Name: "Jo Park"},
		{ID: "3", Name: "Taken", Username: "jo-park-3"},
		{ID: "4", Name: "Jo  Park!"},
		{ID: "u-5", Name: "!!!"},
	}
	AssignUsernames(users)
	assert.Equal(t, "jo-park", users[0].Username)
	assert.Equal(t, "jo-park-2", users[1].Username)
	assert.Equal(t, "jo-park-3", users[2].Username)
	assert.Equal(t, "jo-park-4", users[3].Username)
	assert.Equal(t, "u-5", users[4].Username)
	assert.Equal(t, "k-pop-heels", Slugify(" K-Pop / Heels "))
}

func TestCatalogWatcherReloadsOnFixtureChange(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fsnotify backend goroutines are not tracked reliably on windows")
	}
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write(repository.DocumentClasses, fixtureClasses)
	write(repository.DocumentUsers, fixtureUsers)
	write(repository.DocumentChoreographers, fixtureChoreographers)

	source, err := repository.NewFileSource(dir)
	require.NoError(t, err)
	svc := NewCatalogService(source, time.UTC, nil, zap.NewNop())
	_, err = svc.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, svc.Snapshot().Classes, 2)

	watcher := NewCatalogWatcher(dir, svc, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, watcher.Start(context.Background()))
	require.NoError(t, watcher.Start(context.Background()))

	write("notes.txt", "ignored")
	write(repository.DocumentClasses, `{"classes":[{"id":"solo","title":"Solo","style":["Jazz"],"dateTime":"2030-01-01T10:00:00Z"}]}`)

	require.Eventually(t, func() bool {
		classes := svc.Snapshot().Classes
		return len(classes) == 1 && classes[0].ID == "solo"
	}, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, watcher.Reloads(), 1)

	watcher.Stop()
	watcher.Stop()
}
