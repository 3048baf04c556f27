package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/taskboard/taskboard/internal/domain/task"
	"go.uber.org/zap"
)

// SeedIfEmpty inserts the sample task when the store holds no tasks.
// It reports whether a task was inserted.
func SeedIfEmpty(ctx context.Context, repo task.Repository, now time.Time, log *zap.Logger) (bool, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count tasks: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	desc := "Milk, Bread, Eggs, Butter"
	due := now.AddDate(0, 0, 2)
	t, err := task.NewTask("Buy groceries", &desc, task.StatusNotStarted, &due, now)
	if err != nil {
		return false, err
	}
	if err := repo.Create(ctx, t); err != nil {
		return false, fmt.Errorf("insert seed task: %w", err)
	}

	log.Info("Seeded sample task", zap.Int64("task_id", t.ID))
	return true, nil
}
