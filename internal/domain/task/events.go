package task

import (
	"time"

	"github.com/taskboard/taskboard/internal/domain/shared"
)

// AggregateTypeTask is the aggregate type carried by task events
const AggregateTypeTask = "Task"

// Event type constants for Task
const (
	EventTypeTaskCreated = "TaskCreated"
	EventTypeTaskUpdated = "TaskUpdated"
	EventTypeTaskDeleted = "TaskDeleted"
)

// EventTypes lists every task event type
var EventTypes = []string{EventTypeTaskCreated, EventTypeTaskUpdated, EventTypeTaskDeleted}

// CreatedEvent is published when a task is created
type CreatedEvent struct {
	shared.BaseDomainEvent
	Title  string `json:"title"`
	Status Status `json:"status"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(t *Task, at time.Time) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskCreated, AggregateTypeTask, t.ID, at),
		Title:           t.Title,
		Status:          t.Status,
	}
}

// UpdatedEvent is published when a patch changed at least one field
type UpdatedEvent struct {
	shared.BaseDomainEvent
	Changed        []string `json:"changed"`
	PreviousStatus Status   `json:"previous_status"`
	Status         Status   `json:"status"`
}

// NewUpdatedEvent creates a new UpdatedEvent
func NewUpdatedEvent(t *Task, previous Status, changed []string, at time.Time) *UpdatedEvent {
	return &UpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskUpdated, AggregateTypeTask, t.ID, at),
		Changed:         changed,
		PreviousStatus:  previous,
		Status:          t.Status,
	}
}

// DeletedEvent is published when a task is removed
type DeletedEvent struct {
	shared.BaseDomainEvent
}

// NewDeletedEvent creates a new DeletedEvent
func NewDeletedEvent(id int64, at time.Time) *DeletedEvent {
	return &DeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaskDeleted, AggregateTypeTask, id, at),
	}
}
