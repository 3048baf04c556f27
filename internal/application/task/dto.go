package task

import (
	"strings"
	"time"

	"github.com/taskboard/taskboard/internal/domain/shared"
	"github.com/taskboard/taskboard/internal/domain/task"
)

// CreateTaskRequest represents a request to create a task.
// There is deliberately no id or createdAt member: both are assigned server side.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	DueDate     *string `json:"dueDate"`
}

// UpdateTaskRequest represents a partial update. Omitted members leave the
// stored value unchanged; null clears description and dueDate.
type UpdateTaskRequest struct {
	Title       shared.Optional[string] `json:"title,omitzero"`
	Description shared.Optional[string] `json:"description,omitzero"`
	Status      shared.Optional[string] `json:"status,omitzero"`
	DueDate     shared.Optional[string] `json:"dueDate,omitzero"`
}

// IsEmpty reports whether the patch carries no members at all
func (r UpdateTaskRequest) IsEmpty() bool {
	return !r.Title.Set && !r.Description.Set && !r.Status.Set && !r.DueDate.Set
}

// TaskResponse is the wire representation of a task
type TaskResponse struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	Status      task.Status `json:"status"`
	DueDate     *time.Time  `json:"dueDate"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// SummaryResponse carries the board metrics
type SummaryResponse struct {
	Total          int                 `json:"total"`
	ByStatus       map[task.Status]int `json:"byStatus"`
	Overdue        int                 `json:"overdue"`
	CompletionRate int                 `json:"completionRate"`
}

// ToTaskResponse converts a domain task to its response
func ToTaskResponse(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
	}
}

// ToTaskResponses converts a slice of domain tasks
func ToTaskResponses(tasks []task.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = ToTaskResponse(&tasks[i])
	}
	return out
}

// ToSummaryResponse converts domain metrics to the response shape
func ToSummaryResponse(s task.Summary) SummaryResponse {
	byStatus := make(map[task.Status]int, task.StatusCount)
	for i, status := range task.Statuses {
		byStatus[status] = s.Counts[i]
	}
	return SummaryResponse{
		Total:          s.Total,
		ByStatus:       byStatus,
		Overdue:        s.Overdue,
		CompletionRate: s.CompletionRate,
	}
}

var dueDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDueDate accepts an ISO-8601 date-time or a plain calendar date
func ParseDueDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, shared.NewValidationError("Invalid dueDate: " + raw)
}

// ToDomain converts a wire task back into the domain entity
func (r TaskResponse) ToDomain() task.Task {
	return task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		DueDate:     r.DueDate,
		CreatedAt:   r.CreatedAt,
	}
}
