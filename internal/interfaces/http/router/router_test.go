package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apptask "github.com/taskboard/taskboard/internal/application/task"
	"github.com/taskboard/taskboard/internal/domain/task"
	"github.com/taskboard/taskboard/internal/infrastructure/cache"
	"github.com/taskboard/taskboard/internal/infrastructure/config"
	"github.com/taskboard/taskboard/internal/infrastructure/event"
	"github.com/taskboard/taskboard/internal/infrastructure/persistence"
	"github.com/taskboard/taskboard/internal/interfaces/http/handler"
	"github.com/taskboard/taskboard/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingRegistrar struct{}

func (pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

func TestRouter_Setup(t *testing.T) {
	engine := NewRouter(gin.New()).Register(pingRegistrar{}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestNewEngine_RecoversPanics(t *testing.T) {
	engine := NewEngine(DefaultConfig(zap.NewNop()))
	engine.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

// taskAPI wires the full server stack over an in-memory sqlite store
type taskAPI struct {
	engine *gin.Engine
	cache  *cache.InMemoryTaskListCache
}

func newTaskAPI(t *testing.T, now time.Time) *taskAPI {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         ":memory:",
		MaxIdleConns: 1,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	listCache := cache.NewInMemoryTaskListCache(time.Minute)
	bus := event.NewInMemoryEventBus(zap.NewNop())

	svc := apptask.NewService(
		persistence.NewGormTaskRepository(db.DB),
		apptask.WithEventPublisher(bus),
		apptask.WithListCache(listCache),
		apptask.WithClock(func() time.Time { return now }),
	)

	engine := NewRouter(NewEngine(DefaultConfig(zap.NewNop()))).
		Register(handler.NewTaskHandler(svc), handler.NewHealthHandler(db, nil)).
		Setup()

	return &taskAPI{engine: engine, cache: listCache}
}

func (a *taskAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *taskAPI) list(t *testing.T) []apptask.TaskResponse {
	t.Helper()
	w := a.do(t, http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []apptask.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	return tasks
}

func TestTaskAPI_EndToEnd(t *testing.T) {
	now := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)
	api := newTaskAPI(t, now)

	assert.Empty(t, api.list(t))

	// create
	w := api.do(t, http.MethodPost, "/tasks", `{"title":"  Write report  ","description":"Q2 numbers","dueDate":"2024-06-03T18:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created apptask.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "/tasks/1", w.Header().Get("Location"))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Write report", created.Title)
	assert.Equal(t, task.StatusNotStarted, created.Status)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), created.DueDate.UTC())
	assert.True(t, created.CreatedAt.Equal(now))

	w = api.do(t, http.MethodPost, "/tasks", `{"title":"Second","status":"InProgress"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// list is newest first and served from cache afterwards
	tasks := api.list(t)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Second", tasks[0].Title)
	assert.Equal(t, "Write report", tasks[1].Title)
	api.list(t)
	hits, _ := api.cache.Stats()
	assert.Equal(t, int64(1), hits)

	// patch: status only, other fields untouched
	w = api.do(t, http.MethodPatch, "/tasks/1", `{"status":"Completed"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var patched apptask.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patched))
	assert.Equal(t, task.StatusCompleted, patched.Status)
	assert.Equal(t, "Write report", patched.Title)
	require.NotNil(t, patched.Description)
	assert.Equal(t, "Q2 numbers", *patched.Description)

	// mutation invalidated the cache
	tasks = api.list(t)
	assert.Equal(t, task.StatusCompleted, tasks[1].Status)

	// null clears
	w = api.do(t, http.MethodPut, "/tasks/1", `{"description":null,"dueDate":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patched))
	assert.Nil(t, patched.Description)
	assert.Nil(t, patched.DueDate)

	// validation failures leave the store untouched
	w = api.do(t, http.MethodPut, "/tasks/1", `{"title":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(t, http.MethodPost, "/tasks", `{"title":"this title is far too long"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, api.list(t), 2)

	// summary
	w = api.do(t, http.MethodGet, "/tasks/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var summary apptask.SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 50, summary.CompletionRate)

	// delete twice
	w = api.do(t, http.MethodDelete, "/tasks/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(t, http.MethodDelete, "/tasks/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = api.do(t, http.MethodGet, "/tasks/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// ids are never reused
	w = api.do(t, http.MethodPost, "/tasks", `{"title":"Third"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/tasks/3", w.Header().Get("Location"))

	// health
	w = api.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}
