package task

import (
	"strings"

	"github.com/taskboard/taskboard/internal/domain/shared"
)

// Status represents the workflow state of a task
type Status string

const (
	StatusNotStarted Status = "NotStarted"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"

	// StatusOverdue is a display state derived from the due date. It is never
	// stored and ParseStatus rejects it; it is only recognised when a peer
	// reports it.
	StatusOverdue Status = "Overdue"
)

// StatusCount is the number of persistable statuses
const StatusCount = 4

// Statuses lists the persistable statuses in board column order
var Statuses = [StatusCount]Status{
	StatusNotStarted,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

var statusLabels = [StatusCount]string{
	"Not Started",
	"In Progress",
	"Completed",
	"Cancelled",
}

// ParseStatus converts a wire token into a Status. Matching ignores case.
func ParseStatus(raw string) (Status, error) {
	token := strings.TrimSpace(raw)
	for _, s := range Statuses {
		if strings.EqualFold(token, string(s)) {
			return s, nil
		}
	}
	if strings.EqualFold(token, string(StatusOverdue)) {
		return "", shared.NewValidationError("Overdue is derived from the due date and cannot be set")
	}
	return "", shared.NewValidationError("Invalid status: " + raw)
}

// IsValid reports whether s is one of the persistable statuses
func (s Status) IsValid() bool {
	_, ok := s.Index()
	return ok
}

// Index returns the column position of s in Statuses
func (s Status) Index() (int, bool) {
	for i, known := range Statuses {
		if s == known {
			return i, true
		}
	}
	return -1, false
}

// Label returns the human readable column heading
func (s Status) Label() string {
	if i, ok := s.Index(); ok {
		return statusLabels[i]
	}
	return string(s)
}

// IsClosed reports whether the task no longer counts toward open work
func (s Status) IsClosed() bool {
	return s == StatusCompleted || s == StatusCancelled
}
