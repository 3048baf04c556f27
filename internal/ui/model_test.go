package ui

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apptask "github.com/taskboard/taskboard/internal/application/task"
	"github.com/taskboard/taskboard/internal/board"
	"github.com/taskboard/taskboard/internal/domain/shared"
	"github.com/taskboard/taskboard/internal/domain/task"
)

// fakeAPI is an in-memory board.API recording the patches it receives
type fakeAPI struct {
	mu      sync.Mutex
	nextID  int64
	tasks   []task.Task
	patches []apptask.UpdateTaskRequest
	listErr error
}

func newFakeAPI(tasks ...task.Task) *fakeAPI {
	api := &fakeAPI{tasks: tasks, nextID: 1}
	for _, t := range tasks {
		api.nextID = max(api.nextID, t.ID+1)
	}
	return api
}

func (f *fakeAPI) List(context.Context) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.tasks), nil
}

func (f *fakeAPI) Create(_ context.Context, req apptask.CreateTaskRequest) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status := task.StatusNotStarted
	if req.Status != nil {
		status = task.Status(*req.Status)
	}
	t, err := task.NewTask(req.Title, req.Description, status, nil, uiNow)
	if err != nil {
		return nil, err
	}
	t.ID = f.nextID
	f.nextID++
	f.tasks = append([]task.Task{*t}, f.tasks...)
	return t, nil
}

func (f *fakeAPI) Update(_ context.Context, id int64, patch apptask.UpdateTaskRequest) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patch)
	i := slices.IndexFunc(f.tasks, func(t task.Task) bool { return t.ID == id })
	if i < 0 {
		return nil, shared.ErrNotFound
	}
	if patch.Title.HasValue() {
		f.tasks[i].Title = patch.Title.Value
	}
	if patch.Status.HasValue() {
		f.tasks[i].Status = task.Status(patch.Status.Value)
	}
	updated := f.tasks[i]
	return &updated, nil
}

func (f *fakeAPI) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.tasks)
	f.tasks = slices.DeleteFunc(f.tasks, func(t task.Task) bool { return t.ID == id })
	if len(f.tasks) == n {
		return shared.ErrNotFound
	}
	return nil
}

func newTestModel(t *testing.T, api *fakeAPI, opts ...Option) Model {
	t.Helper()
	ctrl := board.NewController(api, board.WithClock(func() time.Time { return uiNow }))
	m := New(ctrl, opts...)
	m = step(t, m, m.Init())
	return m
}

// step runs cmd and feeds its message back into the model
func step(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func seedTasks() []task.Task {
	return []task.Task{
		{ID: 3, Title: "Deploy", Status: task.StatusInProgress, CreatedAt: uiNow},
		{ID: 2, Title: "Review", Status: task.StatusNotStarted, CreatedAt: uiNow},
		{ID: 1, Title: "Spec", Status: task.StatusNotStarted, CreatedAt: uiNow},
	}
}

func TestModel_InitialLoad(t *testing.T) {
	m := newTestModel(t, newFakeAPI(seedTasks()...))

	view := m.View()
	assert.Contains(t, view, "Deploy")
	assert.Contains(t, view, "Not Started (2)")
	assert.Contains(t, view, "Total 3")

	focused, ok := m.focused()
	require.True(t, ok)
	assert.Equal(t, "Review", focused.Title)
}

func TestModel_LoadErrorIsNotFatal(t *testing.T) {
	api := newFakeAPI(seedTasks()...)
	m := newTestModel(t, api)

	api.listErr = errors.New("connection refused")
	m, cmd := press(m, runes("r"))
	m = step(t, m, cmd)

	assert.Error(t, m.Err())
	assert.Contains(t, m.View(), "Error: connection refused")
	assert.Contains(t, m.View(), "Deploy", "previous snapshot stays visible")

	m, _ = press(m, runes("l"))
	focused, ok := m.focused()
	require.True(t, ok)
	assert.Equal(t, "Deploy", focused.Title)
}

func TestModel_CreateThroughDialog(t *testing.T) {
	api := newFakeAPI(seedTasks()...)
	m := newTestModel(t, api)

	m, _ = press(m, runes("n"))
	require.Equal(t, DialogOpen, m.Dialog().State())

	t.Run("empty title blocks save", func(t *testing.T) {
		m, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
		assert.Nil(t, cmd)
		assert.Equal(t, DialogOpen, m.Dialog().State())
		assert.Len(t, api.tasks, 3)
	})

	m, _ = press(m, runes("Write tests"))
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, DialogSaving, m.Dialog().State())
	m = step(t, m, cmd)

	assert.Equal(t, DialogClosed, m.Dialog().State())
	assert.NoError(t, m.Err())
	assert.Len(t, m.ctrl.Tasks(), 4)
	assert.Contains(t, m.View(), "Write tests")
}

func TestModel_EscCancelsDialog(t *testing.T) {
	api := newFakeAPI(seedTasks()...)
	m := newTestModel(t, api)

	m, _ = press(m, runes("e"))
	require.True(t, m.Dialog().Editing())
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, DialogClosed, m.Dialog().State())
	assert.Empty(t, api.patches)
}

func TestModel_EditWithoutChangesSendsNothing(t *testing.T) {
	api := newFakeAPI(seedTasks()...)
	m := newTestModel(t, api)

	m, _ = press(m, runes("e"))
	require.True(t, m.Dialog().Editing())
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, cmd)
	assert.Equal(t, DialogClosed, m.Dialog().State())
	assert.Empty(t, api.patches)
	assert.Contains(t, m.View(), "No changes")
}

func TestModel_MoveCard(t *testing.T) {
	api := newFakeAPI(seedTasks()...)
	m := newTestModel(t, api)

	t.Run("left edge does nothing", func(t *testing.T) {
		_, cmd := press(m, runes("<"))
		assert.Nil(t, cmd)
	})

	m, cmd := press(m, runes(">"))
	m = step(t, m, cmd)

	require.Len(t, api.patches, 1)
	assert.Equal(t, apptask.UpdateTaskRequest{Status: shared.Some("InProgress")}, api.patches[0])

	focused, ok := m.focused()
	require.True(t, ok)
	assert.Equal(t, "Review", focused.Title, "cursor follows the moved card")
	assert.Equal(t, 1, m.col)
}

func TestModel_DeleteNeedsConfirmation(t *testing.T) {
	api := newFakeAPI(seedTasks()...)
	m := newTestModel(t, api)

	m, _ = press(m, runes("d"))
	assert.Contains(t, m.View(), `Delete "Review"?`)

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Len(t, api.tasks, 3)

	m, _ = press(m, runes("d"))
	m, cmd = press(m, runes("y"))
	m = step(t, m, cmd)

	assert.Len(t, api.tasks, 2)
	_, found := m.ctrl.Find(2)
	assert.False(t, found)
	assert.Contains(t, m.View(), `Deleted "Review"`)
}

func TestModel_FilterCycle(t *testing.T) {
	due := uiNow.AddDate(0, 0, -3)
	tasks := seedTasks()
	tasks[0].DueDate = &due
	m := newTestModel(t, newFakeAPI(tasks...))

	var labels []string
	for range 6 {
		m, _ = press(m, runes("f"))
		labels = append(labels, m.Filter().Label())
	}
	assert.Equal(t, []string{"Not Started", "In Progress", "Completed", "Cancelled", "Overdue", "All"}, labels)

	for m.Filter().Kind != board.FilterOverdue {
		m, _ = press(m, runes("f"))
	}
	view := m.View()
	assert.Contains(t, view, "Overdue (1)")
	assert.Contains(t, view, "OVERDUE")
	assert.False(t, strings.Contains(view, "Review"))
}

func TestModel_CopyFocusedTask(t *testing.T) {
	var copied string
	m := newTestModel(t, newFakeAPI(seedTasks()...), WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	m, cmd := press(m, runes("y"))
	m = step(t, m, cmd)

	assert.Contains(t, copied, "title: Review")
	assert.Contains(t, copied, "status: NotStarted")
	assert.Contains(t, m.View(), `Copied "Review"`)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, newFakeAPI())

	_, cmd := press(m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
