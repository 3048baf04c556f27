package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskboard/taskboard/internal/domain/shared"
	"github.com/taskboard/taskboard/internal/domain/task"
)

func newTestDialog() Dialog {
	return NewDialog(func() time.Time { return uiNow })
}

func tab() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyTab} }

func TestDialog_CreateFlow(t *testing.T) {
	d := newTestDialog()
	assert.Equal(t, DialogClosed, d.State())

	d.OpenCreate()
	assert.Equal(t, DialogOpen, d.State())
	assert.False(t, d.Editing())

	d, _ = d.Update(runes("  Write docs  "))
	d, _ = d.Update(tab())
	d, _ = d.Update(runes("first draft"))

	sub, ok := d.Submit()
	require.True(t, ok)
	assert.Equal(t, DialogSaving, d.State())
	assert.Zero(t, sub.TaskID)
	assert.Equal(t, "Write docs", sub.Create.Title)
	require.NotNil(t, sub.Create.Description)
	assert.Equal(t, "first draft", *sub.Create.Description)
	require.NotNil(t, sub.Create.Status)
	assert.Equal(t, "NotStarted", *sub.Create.Status)
	assert.Nil(t, sub.Create.DueDate)

	d.Done()
	assert.Equal(t, DialogClosed, d.State())
}

func TestDialog_InvalidTitleBlocksSave(t *testing.T) {
	d := newTestDialog()
	d.OpenCreate()
	d, _ = d.Update(runes("   "))

	_, ok := d.Submit()
	assert.False(t, ok)
	assert.Equal(t, DialogOpen, d.State())
	assert.Equal(t, "Title is required.", d.Err())
}

func TestDialog_TitleLimitedTo20(t *testing.T) {
	d := newTestDialog()
	d.OpenCreate()
	d, _ = d.Update(runes("abcdefghijklmnopqrstuvwxyz"))

	sub, ok := d.Submit()
	require.True(t, ok)
	assert.Equal(t, "abcdefghijklmnopqrst", sub.Create.Title)
}

func TestDialog_InvalidDueDateBlocksSave(t *testing.T) {
	d := newTestDialog()
	d.OpenCreate()
	d, _ = d.Update(runes("Plan"))
	d.due.SetValue("2024-13-01")

	_, ok := d.Submit()
	assert.False(t, ok)
	assert.Contains(t, d.Err(), "invalid date")
}

func TestDialog_StatusSelector(t *testing.T) {
	d := newTestDialog()
	d.OpenCreate()
	d, _ = d.Update(runes("Plan"))
	d, _ = d.Update(tab())
	d, _ = d.Update(tab())
	require.Equal(t, fieldStatus, d.focus)

	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyRight})
	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyRight})
	sub, ok := d.Submit()
	require.True(t, ok)
	assert.Equal(t, "Completed", *sub.Create.Status)

	d = newTestDialog()
	d.OpenCreate()
	d.focusField(fieldStatus)
	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, task.StatusCancelled, task.Statuses[d.status])
}

func TestDialog_EditFlow(t *testing.T) {
	desc := "old notes"
	due := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	existing := task.Task{ID: 7, Title: "Ship", Description: &desc, Status: task.StatusInProgress, DueDate: &due}

	d := newTestDialog()
	d.OpenEdit(existing)
	assert.True(t, d.Editing())
	assert.Equal(t, "Ship", d.title.Value())
	assert.Equal(t, "old notes", d.description.Value())

	t.Run("unchanged form sends an empty patch", func(t *testing.T) {
		d := d
		sub, ok := d.Submit()
		require.True(t, ok)
		assert.Equal(t, int64(7), sub.TaskID)
		assert.True(t, sub.Update.IsEmpty())
	})

	t.Run("only edited fields are sent", func(t *testing.T) {
		d := newTestDialog()
		d.OpenEdit(existing)
		d.title.SetValue("Ship v2")
		d.focusField(fieldStatus)
		d, _ = d.Update(tea.KeyMsg{Type: tea.KeyRight})

		sub, ok := d.Submit()
		require.True(t, ok)
		assert.Equal(t, shared.Some("Ship v2"), sub.Update.Title)
		assert.Equal(t, shared.Some("Completed"), sub.Update.Status)
		assert.False(t, sub.Update.Description.Set)
		assert.False(t, sub.Update.DueDate.Set)
	})

	t.Run("cleared fields become null", func(t *testing.T) {
		d := newTestDialog()
		d.OpenEdit(existing)
		d.description.Reset()
		d.due.SetDate(nil)

		sub, ok := d.Submit()
		require.True(t, ok)
		assert.Equal(t, shared.Null[string](), sub.Update.Description)
		assert.Equal(t, shared.Null[string](), sub.Update.DueDate)
	})
}

func TestDialog_EditKeepsStatusOutsideTable(t *testing.T) {
	existing := task.Task{ID: 9, Title: "Legacy", Status: task.Status("Overdue")}

	d := newTestDialog()
	d.OpenEdit(existing)
	d.title.SetValue("Legacy task")

	sub, ok := d.Submit()
	require.True(t, ok)
	assert.Equal(t, shared.Some("Legacy task"), sub.Update.Title)
	assert.False(t, sub.Update.Status.Set, "status the form cannot show is left alone")

	d.OpenEdit(existing)
	d.focusField(fieldStatus)
	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyRight})
	sub, ok = d.Submit()
	require.True(t, ok)
	assert.Equal(t, shared.Some("InProgress"), sub.Update.Status)
}

func TestDialog_SavingState(t *testing.T) {
	d := newTestDialog()
	d.OpenCreate()
	d, _ = d.Update(runes("Plan"))
	_, ok := d.Submit()
	require.True(t, ok)

	_, again := d.Submit()
	assert.False(t, again, "submit is disabled while saving")

	d.Cancel()
	assert.Equal(t, DialogSaving, d.State())

	d, _ = d.Update(runes("x"))
	assert.Equal(t, "Plan", d.title.Value())

	d.Fail(errors.New("Title cannot be empty."))
	assert.Equal(t, DialogOpen, d.State())
	assert.Equal(t, "Title cannot be empty.", d.Err())
}

func TestDialog_CancelAndReopenResets(t *testing.T) {
	d := newTestDialog()
	d.OpenCreate()
	d, _ = d.Update(runes("Draft"))
	d.status = 2
	d.due.SetValue("2024-07-01")

	d.Cancel()
	assert.Equal(t, DialogClosed, d.State())

	d.OpenCreate()
	assert.Empty(t, d.title.Value())
	assert.Equal(t, 0, d.status)
	assert.True(t, d.due.IsEmpty())
	assert.Empty(t, d.Err())
}
