package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apptask "github.com/taskboard/taskboard/internal/application/task"
	"github.com/taskboard/taskboard/internal/domain/shared"
	"github.com/taskboard/taskboard/internal/domain/task"
	"github.com/taskboard/taskboard/internal/infrastructure/config"
	"go.uber.org/zap"
)

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        string
}

func newTestServer(t *testing.T, status int, body string) (*Client, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		*rec = recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(data),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c, rec
}

const taskJSON = `{"id":7,"title":"Buy groceries","description":"Milk","status":"InProgress","dueDate":"2024-06-03T00:00:00Z","createdAt":"2024-06-01T09:00:00Z"}`

func TestNew(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New("ftp://example.com")
	assert.Error(t, err)

	c, err := New("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.BaseURL())
}

func TestNewFromConfig(t *testing.T) {
	c, err := NewFromConfig(config.ClientConfig{BaseURL: "http://localhost:9000", Timeout: 3 * time.Second}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}

func TestClient_List(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `[`+taskJSON+`,{"id":3,"title":"Old","description":null,"status":"NotStarted","dueDate":null,"createdAt":"2024-05-01T09:00:00Z"}]`)

	tasks, err := c.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.Method)
	assert.Equal(t, "/tasks", rec.Path)
	require.Len(t, tasks, 2)
	assert.Equal(t, int64(7), tasks[0].ID)
	assert.Equal(t, task.StatusInProgress, tasks[0].Status)
	require.NotNil(t, tasks[0].Description)
	assert.Equal(t, "Milk", *tasks[0].Description)
	assert.Nil(t, tasks[1].Description)
	assert.Nil(t, tasks[1].DueDate)
}

func TestClient_Create(t *testing.T) {
	c, rec := newTestServer(t, http.StatusCreated, taskJSON)

	due := "2024-06-03"
	created, err := c.Create(context.Background(), apptask.CreateTaskRequest{Title: "Buy groceries", DueDate: &due})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "application/json", rec.ContentType)
	assert.JSONEq(t, `{"title":"Buy groceries","description":null,"status":null,"dueDate":"2024-06-03"}`, rec.Body)
	assert.Equal(t, int64(7), created.ID)
}

func TestClient_Update_EncodesOnlyPresentMembers(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, taskJSON)

	_, err := c.Update(context.Background(), 7, apptask.UpdateTaskRequest{
		Status:  shared.Some("Completed"),
		DueDate: shared.Null[string](),
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, rec.Method)
	assert.Equal(t, "/tasks/7", rec.Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.Body), &body))
	assert.Equal(t, map[string]any{"status": "Completed", "dueDate": nil}, body)
}

func TestClient_Delete(t *testing.T) {
	c, rec := newTestServer(t, http.StatusNoContent, "")

	require.NoError(t, c.Delete(context.Background(), 4))
	assert.Equal(t, http.MethodDelete, rec.Method)
	assert.Equal(t, "/tasks/4", rec.Path)
}

func TestClient_Summary(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `{"total":3,"byStatus":{"Completed":2,"NotStarted":1},"overdue":0,"completionRate":67}`)

	s, err := c.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 67, s.CompletionRate)
	assert.Equal(t, 2, s.ByStatus[task.StatusCompleted])
}

func TestClient_APIErrors(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		c, _ := newTestServer(t, http.StatusBadRequest,
			`{"success":false,"error":{"code":"VALIDATION_ERROR","message":"Title is required.","request_id":"r1"}}`)

		created, err := c.Create(context.Background(), apptask.CreateTaskRequest{})
		assert.Nil(t, created)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
		assert.NotErrorIs(t, err, ErrNotFound)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
		assert.Equal(t, "Title is required.", apiErr.Message)
		assert.Equal(t, "r1", apiErr.RequestID)
	})

	t.Run("not found", func(t *testing.T) {
		c, _ := newTestServer(t, http.StatusNotFound,
			`{"success":false,"error":{"code":"NOT_FOUND","message":"Resource not found"}}`)

		err := c.Delete(context.Background(), 99)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non-envelope body", func(t *testing.T) {
		c, _ := newTestServer(t, http.StatusBadGateway, "upstream down")

		tasks, err := c.List(context.Background())
		assert.Nil(t, tasks)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.Equal(t, "upstream down", apiErr.Message)
		assert.Contains(t, apiErr.Error(), "502")
	})
}

func TestClient_TransportErrors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := New(url)
		require.NoError(t, err)

		tasks, err := c.List(context.Background())
		assert.Nil(t, tasks)

		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "GET /tasks", te.Op)
	})

	t.Run("malformed success body", func(t *testing.T) {
		c, _ := newTestServer(t, http.StatusOK, `[{"id":`)

		tasks, err := c.List(context.Background())
		assert.Nil(t, tasks)

		var te *TransportError
		assert.ErrorAs(t, err, &te)
	})

	t.Run("context cancelled", func(t *testing.T) {
		c, _ := newTestServer(t, http.StatusOK, `[]`)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.List(ctx)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
