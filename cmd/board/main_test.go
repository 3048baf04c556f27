package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskboard/taskboard/internal/client"
)

func newServer(t *testing.T, routes map[string]string) *client.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"success":false,"error":{"code":"NOT_FOUND","message":"Task not found"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	api, err := client.New(srv.URL)
	require.NoError(t, err)
	return api
}

func TestRunShow(t *testing.T) {
	api := newServer(t, map[string]string{
		"GET /tasks/4": `{"id":4,"title":"Buy groceries","description":"Milk","status":"InProgress","dueDate":"2024-06-03T00:00:00Z","createdAt":"2024-06-01T09:00:00Z"}`,
	})

	var out bytes.Buffer
	require.NoError(t, runShow(context.Background(), api, 4, &out))
	assert.Contains(t, out.String(), "title: Buy groceries")
	assert.Contains(t, out.String(), "InProgress")
	assert.Contains(t, out.String(), "2024-06-03")

	err := runShow(context.Background(), api, 5, &out)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestRunSummary(t *testing.T) {
	api := newServer(t, map[string]string{
		"GET /tasks/summary": `{"total":3,"byStatus":{"NotStarted":1,"InProgress":0,"Completed":2,"Cancelled":0},"overdue":1,"completionRate":67}`,
	})

	var out bytes.Buffer
	require.NoError(t, runSummary(context.Background(), api, &out))
	assert.Equal(t,
		"Total 3 | Not Started 1 | In Progress 0 | Completed 2 | Cancelled 0 | Overdue 1 | 67% complete\n",
		out.String())
}
