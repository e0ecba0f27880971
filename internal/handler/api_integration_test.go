package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/repository"
	"github.com/noah-isme/dance-class-api/internal/service"
	"github.com/noah-isme/dance-class-api/pkg/config"
	"github.com/noah-isme/dance-class-api/pkg/jobs"
	"github.com/noah-isme/dance-class-api/pkg/storage"
)

const (
	apiClasses = `{"classes":[
		{"id":"c1","title":"Hip Hop Foundations","choreographerId":"choreo-1","choreographerName":"Alex Kim","style":["Hip Hop"],"dateTime":"2030-06-01T18:00:00Z","location":"Millennium Dance Complex - Studio A","description":"Grooves","status":"active"},
		{"id":"c2","title":"Contemporary Flow","choreographerId":"choreo-2","choreographerName":"Jordan Lee","style":["Contemporary"],"dateTime":"2030-06-02T10:00:00Z","location":"Movement Lifestyle - Studio B","description":"Floorwork","status":"featured","price":30},
		{"id":"c3","title":"Heels Basics","choreographerId":"choreo-1","choreographerName":"Alex Kim","style":["Heels"],"dateTime":"2030-06-03T19:00:00Z","location":"Playground LA","description":"Bring heels","status":"cancelled"}
	]}`
	apiUsers          = `{"users":[{"id":"dancer-1","name":"Sam Rivera","role":"dancer"}]}`
	apiChoreographers = `{"choreographers":[
		{"id":"choreo-1","name":"Alex Kim","role":"choreographer","featuredVideo":"https://youtu.be/dQw4w9WgXcQ"},
		{"id":"choreo-2","name":"Jordan Lee","username":"jordanlee","role":"both"}
	]}`
)

type memorySource struct {
	docs map[string]string
}

func (s memorySource) Fetch(_ context.Context, name string) ([]byte, error) {
	doc, ok := s.docs[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(doc), nil
}

func (memorySource) Describe() string { return "memory" }

// inlineQueue runs export jobs synchronously.
type inlineQueue struct {
	worker *service.ExportWorker
}

func (q *inlineQueue) Enqueue(job jobs.Job) error {
	return q.worker.Handle(context.Background(), job)
}

type testAPI struct {
	router *gin.Engine
	t      *testing.T
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *apiError              `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type apiError struct {
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

func newTestAPI(t *testing.T, docs map[string]string) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	if docs == nil {
		docs = map[string]string{
			repository.DocumentClasses:        apiClasses,
			repository.DocumentUsers:          apiUsers,
			repository.DocumentChoreographers: apiChoreographers,
		}
	}
	metrics := service.NewMetricsService()
	catalog := service.NewCatalogService(memorySource{docs: docs}, time.UTC, metrics, zap.NewNop())
	_, err := catalog.Load(ctx)
	require.NoError(t, err)

	validate := validator.New()
	repo := repository.NewPreferenceRepository(repository.NewMemoryStore(), "test")
	prefs := service.NewPreferenceService(repo, metrics, zap.NewNop())
	users := service.NewUserService(repo, validate, metrics, zap.NewNop(), "")
	sessions := service.NewSessionService(repo, catalog, prefs, users, metrics,
		config.JWTConfig{Secret: "handler-secret", Issuer: "test", Expiration: time.Hour}, zap.NewNop())
	schedule := service.NewScheduleService(time.UTC, zap.NewNop())
	classes := service.NewClassService(catalog, validate, metrics, zap.NewNop())
	dashboard := service.NewDashboardService(service.DashboardServiceConfig{FeaturedLimit: 4}, zap.NewNop())

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	renderer := service.NewScheduleExportService(catalog, schedule, files, storage.NewSignedURLSigner("sign", time.Hour),
		service.ExportConfig{APIPrefix: "/api/v1"}, zap.NewNop(), nil, nil)
	jobRepo := repository.NewExportJobRepository(repository.NewMemoryStore(), "test")
	queue := &inlineQueue{worker: service.NewExportWorker(jobRepo, renderer, metrics, 1, zap.NewNop())}
	exports := service.NewExportService(jobRepo, queue, renderer, metrics, zap.NewNop(), service.ExportServiceConfig{})

	router := gin.New()
	api := router.Group("/api/v1")
	RegisterRoutes(api, Handlers{
		Session:    NewSessionHandler(sessions),
		Schedule:   NewScheduleHandler(catalog, schedule),
		Class:      NewClassHandler(classes),
		Preference: NewPreferenceHandler(catalog, prefs),
		Profile:    NewProfileHandler(catalog, users),
		Dashboard:  NewDashboardHandler(catalog, dashboard),
		Export:     NewExportHandler(catalog, exports),
	}, sessions)
	return &testAPI{router: router, t: t}
}

func (a *testAPI) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (a *testAPI) startSession() string {
	a.t.Helper()
	rec, env := a.do(http.MethodPost, "/sessions", "", nil)
	require.Equal(a.t, http.StatusCreated, rec.Code)
	var token models.SessionToken
	require.NoError(a.t, json.Unmarshal(env.Data, &token))
	require.NotEmpty(a.t, token.Token)
	return token.Token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestAPISessionLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)

	rec, _ := api.do(http.MethodGet, "/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := api.startSession()
	rec, env := api.do(http.MethodGet, "/session", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[models.Session](t, env.Data)
	assert.Equal(t, "choreo-1", session.User.ID)

	rec, env = api.do(http.MethodPut, "/session/user", token, map[string]string{"user_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rec, _ = api.do(http.MethodPut, "/session/user", token, map[string]string{"user_id": "dancer-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	_, env = api.do(http.MethodGet, "/session", token, nil)
	assert.Equal(t, "dancer-1", decode[models.Session](t, env.Data).User.ID)

	rec, env = api.do(http.MethodDelete, "/session", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fresh := decode[models.SessionToken](t, env.Data)
	assert.NotEqual(t, session.ID, fresh.Session.ID)
	assert.Equal(t, "choreo-1", fresh.Session.User.ID)
}

func TestAPIClassSearchAndSchedule(t *testing.T) {
	api := newTestAPI(t, nil)

	rec, env := api.do(http.MethodGet, "/classes", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.ClassView](t, env.Data), 3)
	assert.Nil(t, env.Meta["catalog_errors"])

	_, env = api.do(http.MethodGet, "/classes?styles=Hip%20Hop,Contemporary&studios=studio%20b", "", nil)
	views := decode[[]models.ClassView](t, env.Data)
	require.Len(t, views, 1)
	assert.Equal(t, "c2", views[0].ID)

	_, env = api.do(http.MethodGet, "/classes?page=2&page_size=2", "", nil)
	assert.Len(t, decode[[]models.ClassView](t, env.Data), 1)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 3, env.Pagination.TotalCount)

	rec, env = api.do(http.MethodGet, "/classes?tz=Nowhere/Zone", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Details, "tz")

	_, env = api.do(http.MethodGet, "/schedule?tz=America/Los_Angeles&start=2030-06-01&end=2030-06-02", "", nil)
	view := decode[models.ScheduleView](t, env.Data)
	assert.Equal(t, "America/Los_Angeles", view.Timezone)
	assert.Equal(t, 2, view.Total)
	require.Len(t, view.Groups, 2)
	assert.Equal(t, "2030-06-01", view.Groups[0].Key)

	_, env = api.do(http.MethodGet, "/classes/upcoming", "", nil)
	assert.Len(t, decode[[]models.ClassView](t, env.Data), 2)

	_, env = api.do(http.MethodGet, "/classes/featured", "", nil)
	assert.Len(t, decode[[]models.ClassView](t, env.Data), 1)

	rec, _ = api.do(http.MethodGet, "/classes/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, env = api.do(http.MethodGet, "/filters/options", "", nil)
	options := decode[models.FilterOptions](t, env.Data)
	assert.Equal(t, []string{"Contemporary", "Heels", "Hip Hop"}, options.Styles)

	rec, _ = api.do(http.MethodGet, "/styles", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIToggles(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.startSession()

	rec, _ := api.do(http.MethodPost, "/classes/c1/interest", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := api.do(http.MethodPost, "/classes/c1/interest", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[map[string]interface{}](t, env.Data)["active"].(bool))

	rec, env = api.do(http.MethodPost, "/classes/c3/attendance", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CLASS_CANCELLED", env.Error.Code)

	rec, _ = api.do(http.MethodPost, "/classes/nope/attendance", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = api.do(http.MethodPost, "/choreographers/choreo-2/favorite", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, env = api.do(http.MethodGet, "/preferences", token, nil)
	prefs := decode[models.PreferenceSet](t, env.Data)
	assert.Equal(t, []string{"c1"}, prefs.InterestedClasses)
	assert.Equal(t, []string{"choreo-2"}, prefs.FavoritedChoreographers)

	_, env = api.do(http.MethodGet, "/classes/c1", token, nil)
	assert.True(t, decode[models.ClassView](t, env.Data).IsInterested)

	_, env = api.do(http.MethodGet, "/dashboard", token, nil)
	dashboard := decode[models.Dashboard](t, env.Data)
	assert.Equal(t, 1, dashboard.Stats.Interested)
	assert.Equal(t, 1, dashboard.Stats.Favorites)
}

func TestAPISettingsAndSavedFilters(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.startSession()

	rec, env := api.do(http.MethodPut, "/settings", token, map[string]interface{}{
		"preferred_view": "calendar",
		"filters":        map[string]interface{}{"styles": []string{"Contemporary"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"calendar"`)

	rec, _ = api.do(http.MethodPut, "/settings", token, map[string]interface{}{"preferred_view": "grid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, env = api.do(http.MethodGet, "/classes?use_saved=true", token, nil)
	views := decode[[]models.ClassView](t, env.Data)
	require.Len(t, views, 1)
	assert.Equal(t, "c2", views[0].ID)

	_, env = api.do(http.MethodGet, "/classes?use_saved=true&styles=Heels", token, nil)
	assert.Equal(t, "c3", decode[[]models.ClassView](t, env.Data)[0].ID)
}

func TestAPIClassManagement(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.startSession()

	payload := map[string]interface{}{
		"title":       "Waacking Intro",
		"style":       []string{"waacking"},
		"date_time":   "2031-01-10T19:00",
		"location":    "Millennium Dance Complex - Studio C",
		"description": "Arms for days",
	}
	rec, env := api.do(http.MethodPost, "/classes", token, payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.DanceClass](t, env.Data)
	assert.Equal(t, []string{"Waacking"}, created.Style)
	assert.Equal(t, models.ClassStatusActive, created.Status)

	rec, env = api.do(http.MethodPost, "/classes", token, map[string]interface{}{"title": "", "style": []string{}, "date_time": "2001-01-01T10:00", "location": "x", "description": "y"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Details, "title")

	rec, env = api.do(http.MethodPatch, "/classes/"+created.ID+"/status", token, map[string]string{"status": "featured"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = api.do(http.MethodPatch, "/classes/c2/status", token, map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = api.do(http.MethodPatch, "/classes/"+created.ID+"/status", token, map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = api.do(http.MethodPatch, "/classes/"+created.ID+"/status", token, map[string]string{"status": "active"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", env.Error.Code)

	_, env = api.do(http.MethodGet, "/me/classes", token, nil)
	assert.Len(t, decode[[]models.ClassView](t, env.Data), 3)

	rec, _ = api.do(http.MethodDelete, "/classes/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = api.do(http.MethodPut, "/session/role", token, map[string]string{"role": "dancer"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = api.do(http.MethodPost, "/classes", token, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPIProfiles(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.startSession()

	rec, env := api.do(http.MethodPut, "/profile", token, map[string]string{"bio": "Teaching since 2012", "featured_video": "https://example.com/video"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Details, "featured_video")

	rec, _ = api.do(http.MethodPut, "/profile", token, map[string]string{"bio": "Teaching since 2012"})
	require.Equal(t, http.StatusOK, rec.Code)

	_, env = api.do(http.MethodGet, "/choreographers/alex-kim", "", nil)
	profile := decode[models.ChoreographerProfile](t, env.Data)
	require.NotNil(t, profile.User.Bio)
	assert.Equal(t, "Teaching since 2012", *profile.User.Bio)
	assert.Len(t, profile.UpcomingClasses, 1)
	require.NotNil(t, profile.Video)

	rec, _ = api.do(http.MethodGet, "/choreographers/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, env = api.do(http.MethodPost, "/videos/validate", "", map[string]string{"url": "https://vimeo.com/1"})
	assert.Contains(t, string(env.Data), "Not a valid YouTube URL")
}

func TestAPIExports(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.startSession()

	rec, env := api.do(http.MethodPost, "/exports", token, map[string]interface{}{"format": "csv", "upcoming": true})
	require.Equal(t, http.StatusAccepted, rec.Code)
	job := decode[map[string]interface{}](t, env.Data)
	id := job["id"].(string)

	rec, env = api.do(http.MethodGet, "/exports/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "FINISHED", status["status"])
	url := status["result_url"].(string)

	other := api.startSession()
	rec, _ = api.do(http.MethodGet, "/exports/"+id, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, url, nil)
	download := httptest.NewRecorder()
	api.router.ServeHTTP(download, req)
	require.Equal(t, http.StatusOK, download.Code)
	assert.Equal(t, "text/csv", download.Header().Get("Content-Type"))
	assert.Contains(t, download.Body.String(), "Hip Hop Foundations")
	assert.NotContains(t, download.Body.String(), "Heels Basics")

	rec, _ = api.do(http.MethodGet, "/exports/download/not-a-token", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPISurfacesCatalogErrors(t *testing.T) {
	api := newTestAPI(t, map[string]string{
		repository.DocumentClasses:        apiClasses,
		repository.DocumentChoreographers: apiChoreographers,
	})

	rec, env := api.do(http.MethodGet, "/classes", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"failed to load users"}, env.Meta["catalog_errors"])
}
