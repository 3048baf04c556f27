package ui

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	apptask "github.com/taskboard/taskboard/internal/application/task"
	"github.com/taskboard/taskboard/internal/domain/shared"
	"github.com/taskboard/taskboard/internal/domain/task"
)

// DialogState is the lifecycle of the create/edit form
type DialogState int

const (
	DialogClosed DialogState = iota
	DialogOpen
	DialogSaving
)

func (s DialogState) String() string {
	switch s {
	case DialogOpen:
		return "open"
	case DialogSaving:
		return "saving"
	default:
		return "closed"
	}
}

type dialogField int

const (
	fieldTitle dialogField = iota
	fieldDescription
	fieldStatus
	fieldDueDate
	fieldCount
)

// Submission is a validated form ready to be sent. TaskID is 0 for a new task.
type Submission struct {
	TaskID int64
	Create apptask.CreateTaskRequest
	Update apptask.UpdateTaskRequest
}

// Dialog is the create/edit form. Transitions: Closed -> Open on OpenCreate
// or OpenEdit, Open -> Saving on a valid Submit, Saving -> Closed on Done and
// Saving -> Open on Fail. Cancel discards an open form.
type Dialog struct {
	state       DialogState
	taskID      int64
	original    task.Task
	title       textinput.Model
	description textarea.Model
	status      int
	touched     bool // status selector used since opening
	due         dateInput
	focus       dialogField
	err         string
	now         func() time.Time
}

// NewDialog returns a closed dialog
func NewDialog(now func() time.Time) Dialog {
	ti := textinput.New()
	ti.Placeholder = "Task title..."
	ti.CharLimit = task.MaxTitleLength
	ti.Width = task.MaxTitleLength + 2

	ta := textarea.New()
	ta.Placeholder = "Description..."
	ta.CharLimit = 4096
	ta.ShowLineNumbers = false
	ta.SetWidth(40)
	ta.SetHeight(4)

	return Dialog{
		title:       ti,
		description: ta,
		due:         newDateInput(),
		now:         now,
	}
}

func (d Dialog) State() DialogState { return d.state }

// Editing reports whether the form edits an existing task
func (d Dialog) Editing() bool { return d.taskID != 0 }

// Err returns the message blocking the last submit
func (d Dialog) Err() string { return d.err }

// OpenCreate opens a blank form: status NotStarted and no due date
func (d *Dialog) OpenCreate() tea.Cmd {
	d.reset()
	d.state = DialogOpen
	return d.focusField(fieldTitle)
}

// OpenEdit opens the form filled with t. A status outside the board's table
// shows as the first column and is only sent when the selector is used.
func (d *Dialog) OpenEdit(t task.Task) tea.Cmd {
	d.reset()
	d.taskID = t.ID
	d.original = t
	d.title.SetValue(t.Title)
	if t.Description != nil {
		d.description.SetValue(*t.Description)
	}
	if i, ok := t.Status.Index(); ok {
		d.status = i
	}
	d.due.SetDate(t.DueDate)
	d.state = DialogOpen
	return d.focusField(fieldTitle)
}

// Cancel discards an open form. A form that is saving cannot be cancelled.
func (d *Dialog) Cancel() {
	if d.state != DialogOpen {
		return
	}
	d.blurAll()
	d.state = DialogClosed
}

// Submit validates the form. On success the dialog enters Saving and the
// request to send is returned; otherwise the form stays open with an error.
// An edit carries only the fields that differ from the task as opened.
func (d *Dialog) Submit() (Submission, bool) {
	if d.state != DialogOpen {
		return Submission{}, false
	}

	title := strings.TrimSpace(d.title.Value())
	if title == "" {
		d.err = "Title is required."
		return Submission{}, false
	}
	if utf8.RuneCountInString(title) > task.MaxTitleLength {
		d.err = "Title cannot exceed 20 characters."
		return Submission{}, false
	}
	due, err := d.due.Value(d.now())
	if err != nil {
		d.err = err.Error()
		return Submission{}, false
	}

	description := strings.TrimSpace(d.description.Value())
	status := string(task.Statuses[d.status])

	sub := Submission{TaskID: d.taskID}
	if d.Editing() {
		sub.Update = d.changes(title, description, due)
	} else {
		sub.Create = apptask.CreateTaskRequest{
			Title:       title,
			Description: textPtr(description),
			Status:      &status,
			DueDate:     textPtr(due),
		}
	}

	d.err = ""
	d.blurAll()
	d.state = DialogSaving
	return sub, true
}

// Done closes the dialog after a successful save
func (d *Dialog) Done() {
	if d.state == DialogSaving {
		d.state = DialogClosed
	}
}

// Fail reopens the form after a rejected save
func (d *Dialog) Fail(err error) {
	if d.state != DialogSaving {
		return
	}
	d.state = DialogOpen
	if err != nil {
		d.err = err.Error()
	}
	d.focusField(d.focus)
}

func (d *Dialog) changes(title, description, due string) apptask.UpdateTaskRequest {
	var req apptask.UpdateTaskRequest
	o := d.original

	if title != o.Title {
		req.Title = shared.Some(title)
	}
	var before string
	if o.Description != nil {
		before = strings.TrimSpace(*o.Description)
	}
	if description != before {
		req.Description = optionalText(description)
	}
	if status := task.Statuses[d.status]; d.touched && status != o.Status {
		req.Status = shared.Some(string(status))
	}
	before = ""
	if o.DueDate != nil {
		before = o.DueDate.Format(dateLayout)
	}
	if due != before {
		req.DueDate = optionalText(due)
	}
	return req
}

func optionalText(s string) shared.Optional[string] {
	if s == "" {
		return shared.Null[string]()
	}
	return shared.Some(s)
}

func textPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (d *Dialog) reset() {
	d.taskID = 0
	d.original = task.Task{}
	d.title.Reset()
	d.description.Reset()
	d.status = 0
	d.touched = false
	d.due.Reset()
	d.focus = fieldTitle
	d.err = ""
}

func (d *Dialog) blurAll() {
	d.title.Blur()
	d.description.Blur()
	d.due.Blur()
}

func (d *Dialog) focusField(f dialogField) tea.Cmd {
	d.blurAll()
	d.focus = f
	switch f {
	case fieldTitle:
		return d.title.Focus()
	case fieldDescription:
		return d.description.Focus()
	case fieldDueDate:
		return d.due.Focus()
	}
	return nil
}

func (d *Dialog) cycleStatus(delta int) {
	d.status = (d.status + delta + task.StatusCount) % task.StatusCount
	d.touched = true
}

// Update edits the focused field. Only an open form accepts input.
func (d Dialog) Update(msg tea.Msg) (Dialog, tea.Cmd) {
	if d.state != DialogOpen {
		return d, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "tab":
			return d, d.focusField((d.focus + 1) % fieldCount)
		case "shift+tab":
			return d, d.focusField((d.focus + fieldCount - 1) % fieldCount)
		case "enter":
			if d.focus == fieldTitle {
				return d, d.focusField(fieldDescription)
			}
		}
		if d.focus == fieldStatus {
			switch keyMsg.String() {
			case "left", "h":
				d.cycleStatus(-1)
			case "right", "l", " ":
				d.cycleStatus(1)
			}
			return d, nil
		}
	}

	var cmd tea.Cmd
	switch d.focus {
	case fieldTitle:
		d.title, cmd = d.title.Update(msg)
	case fieldDescription:
		d.description, cmd = d.description.Update(msg)
	case fieldDueDate:
		d.due, cmd = d.due.Update(msg)
	}
	return d, cmd
}

func (d Dialog) label(f dialogField, text string) string {
	if d.focus == f && d.state == DialogOpen {
		return activeLabel.Render(text)
	}
	return labelStyle.Render(text)
}

func (d Dialog) View() string {
	header := "New Task"
	if d.Editing() {
		header = "Edit Task"
	}

	s := task.Statuses[d.status]
	statusView := lipgloss.NewStyle().Foreground(statusColors[s]).Render("‹ " + s.Label() + " ›")

	rows := []string{
		titleStyle.Render(header),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, d.label(fieldTitle, "Title"), d.title.View()),
		lipgloss.JoinHorizontal(lipgloss.Top, d.label(fieldDescription, "Description"), d.description.View()),
		lipgloss.JoinHorizontal(lipgloss.Top, d.label(fieldStatus, "Status"), statusView),
		lipgloss.JoinHorizontal(lipgloss.Top, d.label(fieldDueDate, "Due date"), d.due.View()),
		"",
	}
	if d.err != "" {
		rows = append(rows, errorStyle.Render(d.err))
	}
	if d.state == DialogSaving {
		rows = append(rows, statusStyle.Render("Saving..."))
	} else {
		rows = append(rows, statusStyle.Render("tab: next field • ctrl+s: save • esc: cancel"))
	}
	return dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
