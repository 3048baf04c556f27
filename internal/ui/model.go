// Package ui is the terminal kanban board built on bubbletea.
package ui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/taskboard/taskboard/internal/board"
	"github.com/taskboard/taskboard/internal/domain/task"
	"github.com/taskboard/taskboard/internal/transfer"
)

type loadedMsg struct{ err error }

// savedMsg reports a dialog save. stored is true once the service accepted
// the mutation, even if the reload that followed failed.
type savedMsg struct {
	stored bool
	err    error
}

type movedMsg struct {
	id    int64
	to    task.Status
	moved bool
	err   error
}

type deletedMsg struct {
	title string
	err   error
}

type copiedMsg struct {
	title string
	err   error
}

// Model is the top-level BubbleTea model of the board
type Model struct {
	ctrl    *board.Controller
	keys    keyMap
	help    help.Model
	dialog  Dialog
	filter  board.Filter
	col     int
	row     int
	confirm *task.Task
	notice  string
	err     error
	width   int
	height  int
	copy    func(string) error
}

// Option configures a Model
type Option func(*Model)

// WithClipboard replaces the system clipboard writer
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		m.copy = write
	}
}

// New creates the board model over ctrl
func New(ctrl *board.Controller, opts ...Option) Model {
	m := Model{
		ctrl:   ctrl,
		keys:   newKeyMap(),
		help:   help.New(),
		dialog: NewDialog(ctrl.Now),
		filter: board.AllFilter(),
		copy:   clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

// Filter returns the active board view
func (m Model) Filter() board.Filter { return m.filter }

// Dialog returns the form state
func (m Model) Dialog() Dialog { return m.dialog }

// Err returns the error currently shown on the status line
func (m Model) Err() error { return m.err }

func (m Model) load() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return loadedMsg{err: ctrl.Load(context.Background())}
	}
}

func (m Model) save(sub Submission) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx := context.Background()
		var (
			t   *task.Task
			err error
		)
		if sub.TaskID == 0 {
			t, err = ctrl.Create(ctx, sub.Create)
		} else {
			t, err = ctrl.Update(ctx, sub.TaskID, sub.Update)
		}
		return savedMsg{stored: t != nil, err: err}
	}
}

func (m Model) move(id int64, to task.Status) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		moved, err := ctrl.Move(context.Background(), id, to)
		return movedMsg{id: id, to: to, moved: moved, err: err}
	}
}

func (m Model) remove(t task.Task) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return deletedMsg{title: t.Title, err: ctrl.Delete(context.Background(), t.ID)}
	}
}

func (m Model) copyTask(t task.Task) tea.Cmd {
	write := m.copy
	return func() tea.Msg {
		var buf bytes.Buffer
		if err := transfer.Encode(&buf, []task.Task{t}); err != nil {
			return copiedMsg{err: err}
		}
		return copiedMsg{title: t.Title, err: write(buf.String())}
	}
}

func (m Model) columns() []board.Column {
	return m.ctrl.Columns(m.filter)
}

// focused returns the task under the cursor
func (m Model) focused() (task.Task, bool) {
	cols := m.columns()
	if m.col < 0 || m.col >= len(cols) {
		return task.Task{}, false
	}
	tasks := cols[m.col].Tasks
	if m.row < 0 || m.row >= len(tasks) {
		return task.Task{}, false
	}
	return tasks[m.row], true
}

func (m *Model) clampFocus() {
	cols := m.columns()
	if len(cols) == 0 {
		m.col, m.row = 0, 0
		return
	}
	m.col = min(max(m.col, 0), len(cols)-1)
	m.row = min(max(m.row, 0), max(len(cols[m.col].Tasks)-1, 0))
}

// focusTask moves the cursor onto id if it is visible
func (m *Model) focusTask(id int64) {
	for c, col := range m.columns() {
		for r, t := range col.Tasks {
			if t.ID == id {
				m.col, m.row = c, r
				return
			}
		}
	}
	m.clampFocus()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		m.err = msg.err
		m.clampFocus()
		return m, nil

	case savedMsg:
		if !msg.stored {
			m.dialog.Fail(msg.err)
			m.err = msg.err
			return m, nil
		}
		m.dialog.Done()
		m.err = msg.err
		m.notice = "Saved"
		m.clampFocus()
		return m, nil

	case movedMsg:
		m.err = msg.err
		if msg.moved {
			m.notice = "Moved to " + msg.to.Label()
			m.focusTask(msg.id)
		}
		return m, nil

	case deletedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.notice = fmt.Sprintf("Deleted %q", msg.title)
		}
		m.clampFocus()
		return m, nil

	case copiedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.notice = fmt.Sprintf("Copied %q", msg.title)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.dialog.State() != DialogClosed:
			return m.updateDialog(msg)
		case m.confirm != nil:
			return m.updateConfirm(msg)
		default:
			return m.updateBoard(msg)
		}
	}

	if m.dialog.State() == DialogOpen {
		var cmd tea.Cmd
		m.dialog, cmd = m.dialog.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.dialog.Cancel()
		return m, nil
	case key.Matches(msg, m.keys.Save):
		sub, ok := m.dialog.Submit()
		if !ok {
			return m, nil
		}
		if sub.TaskID != 0 && sub.Update.IsEmpty() {
			m.dialog.Done()
			m.notice = "No changes"
			return m, nil
		}
		return m, m.save(sub)
	}

	var cmd tea.Cmd
	m.dialog, cmd = m.dialog.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	target := *m.confirm
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.confirm = nil
		return m, m.remove(target)
	case msg.String() == "n", key.Matches(msg, m.keys.Cancel):
		m.confirm = nil
	}
	return m, nil
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	cols := m.columns()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
			m.clampFocus()
		}
	case key.Matches(msg, m.keys.Right):
		if m.col < len(cols)-1 {
			m.col++
			m.clampFocus()
		}
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(msg, m.keys.Down):
		if m.col < len(cols) && m.row < len(cols[m.col].Tasks)-1 {
			m.row++
		}
	case key.Matches(msg, m.keys.MoveLeft), key.Matches(msg, m.keys.MoveRight):
		t, ok := m.focused()
		if !ok {
			return m, nil
		}
		delta := 1
		if key.Matches(msg, m.keys.MoveLeft) {
			delta = -1
		}
		to, ok := board.Neighbour(t.Status, delta)
		if !ok {
			return m, nil
		}
		return m, m.move(t.ID, to)
	case key.Matches(msg, m.keys.New):
		return m, m.dialog.OpenCreate()
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.focused(); ok {
			return m, m.dialog.OpenEdit(t)
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.focused(); ok {
			m.confirm = &t
		}
	case key.Matches(msg, m.keys.Filter):
		m.filter = m.filter.Next()
		m.col, m.row = 0, 0
	case key.Matches(msg, m.keys.Reload):
		return m, m.load()
	case key.Matches(msg, m.keys.Copy):
		if t, ok := m.focused(); ok {
			return m, m.copyTask(t)
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) renderHeader() string {
	s := m.ctrl.Metrics()
	parts := []string{fmt.Sprintf("Total %d", s.Total)}
	for _, status := range task.Statuses {
		parts = append(parts, fmt.Sprintf("%s %d", status.Label(), s.Count(status)))
	}
	parts = append(parts, fmt.Sprintf("Overdue %d", s.Overdue), fmt.Sprintf("%d%% complete", s.CompletionRate))

	return titleStyle.Render("taskboard") + "  " + statusStyle.Render("view: "+m.filter.Label()) + "\n" +
		statusStyle.Render(strings.Join(parts, " | "))
}

func (m Model) columnWidth(n int) int {
	if m.width == 0 || n == 0 {
		return 28
	}
	h, _ := appStyle.GetFrameSize()
	w := (m.width-h)/n - columnStyle.GetHorizontalFrameSize()
	return max(w, 16)
}

func (m Model) renderColumns() string {
	cols := m.columns()
	if len(cols) == 0 {
		return statusStyle.Render("(no columns)")
	}

	now := m.ctrl.Now()
	width := m.columnWidth(len(cols))
	rendered := make([]string, len(cols))
	for c, col := range cols {
		header := columnHeaderStyle.Render(fmt.Sprintf("%s (%d)", col.Title, len(col.Tasks)))
		if col.Status != "" {
			header = columnHeaderStyle.Foreground(statusColors[col.Status]).
				Render(fmt.Sprintf("%s (%d)", col.Title, len(col.Tasks)))
		}
		cards := []string{header}
		if len(col.Tasks) == 0 {
			cards = append(cards, statusStyle.Render("(empty)"))
		}
		for r, t := range col.Tasks {
			focused := c == m.col && r == m.row
			cards = append(cards, renderCard(t, now, width-cardStyle.GetHorizontalFrameSize(), focused))
		}
		rendered[c] = columnStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, cards...))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderStatusLine() string {
	switch {
	case m.confirm != nil:
		return confirmStyle.Render(fmt.Sprintf("Delete %q? y: delete • n/esc: cancel", m.confirm.Title))
	case m.err != nil:
		return errorStyle.Render("Error: " + m.err.Error())
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	}
	return ""
}

func (m Model) View() string {
	if m.dialog.State() != DialogClosed {
		return appStyle.Render(m.dialog.View())
	}

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		m.renderColumns(),
		m.renderStatusLine(),
		m.help.View(m.keys),
	))
}
