package task

import (
	"time"

	"github.com/taskboard/taskboard/internal/domain/shared"
	"github.com/taskboard/taskboard/internal/domain/task"
)

// applyPatch applies req to t and returns the names of the fields whose
// value changed. t may be partially modified when an error is returned; the
// caller must not persist it in that case.
func applyPatch(t *task.Task, req UpdateTaskRequest) ([]string, error) {
	var changed []string

	if req.Title.Set {
		if req.Title.Null {
			return nil, shared.NewValidationError("Title cannot be empty.")
		}
		before := t.Title
		if err := t.Rename(req.Title.Value); err != nil {
			return nil, err
		}
		if t.Title != before {
			changed = append(changed, "title")
		}
	}

	if req.Description.Set {
		before := t.Description
		if req.Description.Null {
			t.Describe(nil)
		} else {
			value := req.Description.Value
			t.Describe(&value)
		}
		if !equalStrings(before, t.Description) {
			changed = append(changed, "description")
		}
	}

	if req.Status.Set {
		if req.Status.Null {
			return nil, shared.NewValidationError("Status cannot be null.")
		}
		status, err := task.ParseStatus(req.Status.Value)
		if err != nil {
			return nil, err
		}
		before := t.Status
		if err := t.ChangeStatus(status); err != nil {
			return nil, err
		}
		if t.Status != before {
			changed = append(changed, "status")
		}
	}

	if req.DueDate.Set {
		before := t.DueDate
		if req.DueDate.Null || req.DueDate.Value == "" {
			t.Reschedule(nil)
		} else {
			due, err := ParseDueDate(req.DueDate.Value)
			if err != nil {
				return nil, err
			}
			t.Reschedule(&due)
		}
		if !equalTimes(before, t.DueDate) {
			changed = append(changed, "dueDate")
		}
	}

	return changed, nil
}

func equalStrings(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimes(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
