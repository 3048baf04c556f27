package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apptask "github.com/taskboard/taskboard/internal/application/task"
	"github.com/taskboard/taskboard/internal/domain/shared"
	"github.com/taskboard/taskboard/internal/domain/task"
	"github.com/taskboard/taskboard/internal/interfaces/http/dto"
	"github.com/taskboard/taskboard/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockTaskService is a mock implementation of TaskService
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) List(ctx context.Context) ([]apptask.TaskResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]apptask.TaskResponse), args.Error(1)
}

func (m *MockTaskService) GetByID(ctx context.Context, id int64) (*apptask.TaskResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptask.TaskResponse), args.Error(1)
}

func (m *MockTaskService) Create(ctx context.Context, req apptask.CreateTaskRequest) (*apptask.TaskResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptask.TaskResponse), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, id int64, req apptask.UpdateTaskRequest) (*apptask.TaskResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptask.TaskResponse), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskService) Summary(ctx context.Context) (*apptask.SummaryResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptask.SummaryResponse), args.Error(1)
}

func setupTaskRouter(svc TaskService) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	NewTaskHandler(svc).RegisterRoutes(&router.RouterGroup)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func sampleTask(id int64) *apptask.TaskResponse {
	return &apptask.TaskResponse{
		ID:        id,
		Title:     "Buy groceries",
		Status:    task.StatusNotStarted,
		CreatedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestTaskHandler_List(t *testing.T) {
	t.Run("returns a bare array", func(t *testing.T) {
		svc := new(MockTaskService)
		svc.On("List", mock.Anything).Return([]apptask.TaskResponse{*sampleTask(2), *sampleTask(1)}, nil)

		w := doRequest(setupTaskRouter(svc), http.MethodGet, "/tasks", "")

		require.Equal(t, http.StatusOK, w.Code)
		var got []apptask.TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, int64(2), got[0].ID)
		assert.Contains(t, w.Body.String(), `"description":null`)
		assert.Contains(t, w.Body.String(), `"dueDate":null`)
		svc.AssertExpectations(t)
	})

	t.Run("empty store is an empty array", func(t *testing.T) {
		svc := new(MockTaskService)
		svc.On("List", mock.Anything).Return([]apptask.TaskResponse{}, nil)

		w := doRequest(setupTaskRouter(svc), http.MethodGet, "/tasks", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		svc := new(MockTaskService)
		svc.On("List", mock.Anything).Return(nil, errors.New("disk on fire"))

		w := doRequest(setupTaskRouter(svc), http.MethodGet, "/tasks", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		info := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeInternal, info.Code)
		assert.NotContains(t, info.Message, "disk on fire")
	})
}

func TestTaskHandler_Create(t *testing.T) {
	t.Run("201 with location", func(t *testing.T) {
		svc := new(MockTaskService)
		status := "InProgress"
		svc.On("Create", mock.Anything, apptask.CreateTaskRequest{Title: "Write docs", Status: &status}).
			Return(sampleTask(7), nil)

		w := doRequest(setupTaskRouter(svc), http.MethodPost, "/tasks", `{"title":"Write docs","status":"InProgress","createdAt":"1999-01-01T00:00:00Z","id":99}`)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "/tasks/7", w.Header().Get("Location"))
		var got apptask.TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, int64(7), got.ID)
		svc.AssertExpectations(t)
	})

	t.Run("service validation error is a 400", func(t *testing.T) {
		svc := new(MockTaskService)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, shared.NewValidationError("Title is required."))

		w := doRequest(setupTaskRouter(svc), http.MethodPost, "/tasks", `{"title":"   "}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		info := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeValidation, info.Code)
		assert.Equal(t, "Title is required.", info.Message)
		assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), info.RequestID)
	})

	t.Run("unknown status rejected at binding", func(t *testing.T) {
		svc := new(MockTaskService)

		w := doRequest(setupTaskRouter(svc), http.MethodPost, "/tasks", `{"title":"x","status":"Overdue"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		info := decodeError(t, w)
		require.Len(t, info.Details, 1)
		assert.Equal(t, "status", info.Details[0].Field)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := new(MockTaskService)

		w := doRequest(setupTaskRouter(svc), http.MethodPost, "/tasks", `{"title":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeError(t, w).Code)
	})
}

func TestTaskHandler_Get(t *testing.T) {
	svc := new(MockTaskService)
	svc.On("GetByID", mock.Anything, int64(3)).Return(sampleTask(3), nil)
	svc.On("GetByID", mock.Anything, int64(4)).Return(nil, shared.ErrNotFound)
	router := setupTaskRouter(svc)

	w := doRequest(router, http.MethodGet, "/tasks/3", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/tasks/4", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decodeError(t, w).Code)

	for _, bad := range []string{"abc", "0", "-5"} {
		w = doRequest(router, http.MethodGet, "/tasks/"+bad, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestTaskHandler_Update(t *testing.T) {
	t.Run("patch keeps absent and null apart", func(t *testing.T) {
		svc := new(MockTaskService)
		expected := apptask.UpdateTaskRequest{
			Status:      shared.Some("Completed"),
			Description: shared.Null[string](),
		}
		svc.On("Update", mock.Anything, int64(5), expected).Return(sampleTask(5), nil)

		w := doRequest(setupTaskRouter(svc), http.MethodPatch, "/tasks/5", `{"status":"Completed","description":null}`)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("put uses the same semantics", func(t *testing.T) {
		svc := new(MockTaskService)
		svc.On("Update", mock.Anything, int64(5), apptask.UpdateTaskRequest{}).Return(sampleTask(5), nil)

		w := doRequest(setupTaskRouter(svc), http.MethodPut, "/tasks/5", `{}`)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := new(MockTaskService)
		svc.On("Update", mock.Anything, int64(9), mock.Anything).Return(nil, shared.ErrNotFound)

		w := doRequest(setupTaskRouter(svc), http.MethodPut, "/tasks/9", `{"title":"x"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("blank title", func(t *testing.T) {
		svc := new(MockTaskService)
		svc.On("Update", mock.Anything, int64(1), mock.Anything).
			Return(nil, shared.NewValidationError("Title cannot be empty."))

		w := doRequest(setupTaskRouter(svc), http.MethodPut, "/tasks/1", `{"title":""}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Title cannot be empty.", decodeError(t, w).Message)
	})
}

func TestTaskHandler_Delete(t *testing.T) {
	svc := new(MockTaskService)
	svc.On("Delete", mock.Anything, int64(1)).Return(nil).Once()
	svc.On("Delete", mock.Anything, int64(1)).Return(shared.ErrNotFound).Once()
	router := setupTaskRouter(svc)

	w := doRequest(router, http.MethodDelete, "/tasks/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = doRequest(router, http.MethodDelete, "/tasks/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertExpectations(t)
}

func TestTaskHandler_Summary(t *testing.T) {
	svc := new(MockTaskService)
	svc.On("Summary", mock.Anything).Return(&apptask.SummaryResponse{
		Total:          3,
		ByStatus:       map[task.Status]int{task.StatusCompleted: 2, task.StatusNotStarted: 1},
		CompletionRate: 67,
	}, nil)

	w := doRequest(setupTaskRouter(svc), http.MethodGet, "/tasks/summary", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got apptask.SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 67, got.CompletionRate)
	assert.Equal(t, 2, got.ByStatus[task.StatusCompleted])
	svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}
