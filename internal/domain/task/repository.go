package task

import "context"

// Repository defines the interface for task persistence
type Repository interface {
	// Create inserts t and assigns its ID
	Create(ctx context.Context, t *Task) error

	// FindByID finds a task by its ID
	FindByID(ctx context.Context, id int64) (*Task, error)

	// FindAll returns every task, newest (highest ID) first
	FindAll(ctx context.Context) ([]Task, error)

	// Save overwrites an existing task
	Save(ctx context.Context, t *Task) error

	// Delete removes a task by ID
	Delete(ctx context.Context, id int64) error

	// Count returns the number of stored tasks
	Count(ctx context.Context) (int64, error)

	// CountByStatus returns the number of tasks per status
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
