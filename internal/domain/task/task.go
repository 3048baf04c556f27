package task

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taskboard/taskboard/internal/domain/shared"
	"golang.org/x/text/unicode/norm"
)

// MaxTitleLength is the maximum number of characters in a title
const MaxTitleLength = 20

// Task is the single aggregate of the board
type Task struct {
	ID          int64
	Title       string
	Description *string
	Status      Status
	DueDate     *time.Time
	CreatedAt   time.Time
}

// NewTask creates a task ready to be stored. The store assigns the ID.
// An empty status defaults to NotStarted; createdAt is taken from now.
func NewTask(title string, description *string, status Status, dueDate *time.Time, now time.Time) (*Task, error) {
	normalized, err := normalizeTitle(title, "Title is required.")
	if err != nil {
		return nil, err
	}
	if status == "" {
		status = StatusNotStarted
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError("Invalid status: " + string(status))
	}

	return &Task{
		Title:       normalized,
		Description: NormalizeDescription(description),
		Status:      status,
		DueDate:     NormalizeDueDate(dueDate),
		CreatedAt:   now.UTC(),
	}, nil
}

// Rename replaces the title
func (t *Task) Rename(title string) error {
	normalized, err := normalizeTitle(title, "Title cannot be empty.")
	if err != nil {
		return err
	}
	t.Title = normalized
	return nil
}

// Describe replaces the description; nil or blank clears it
func (t *Task) Describe(description *string) {
	t.Description = NormalizeDescription(description)
}

// ChangeStatus moves the task to another persistable status
func (t *Task) ChangeStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewValidationError("Invalid status: " + string(status))
	}
	t.Status = status
	return nil
}

// Reschedule replaces the due date; nil clears it
func (t *Task) Reschedule(dueDate *time.Time) {
	t.DueDate = NormalizeDueDate(dueDate)
}

// NormalizeDescription trims d and maps blank to nil
func NormalizeDescription(d *string) *string {
	if d == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*d)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// NormalizeDueDate truncates d to midnight UTC of its calendar date
func NormalizeDueDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return &midnight
}

func normalizeTitle(raw, emptyMessage string) (string, error) {
	title := norm.NFC.String(strings.TrimSpace(raw))
	if title == "" {
		return "", shared.NewValidationError(emptyMessage)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", shared.NewValidationError("Title cannot exceed 20 characters.")
	}
	return title, nil
}
