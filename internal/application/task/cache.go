package task

import (
	"context"

	"github.com/taskboard/taskboard/internal/domain/task"
)

// ListCache caches the full, ordered task list.
//
// Every Invalidate advances the cache generation. A list loaded from the store
// is stored with the generation read before the load, and Set drops it when an
// Invalidate happened in between.
type ListCache interface {
	// Get returns the cached list and whether it was present
	Get(ctx context.Context) ([]task.Task, bool, error)
	// Generation returns the current generation
	Generation(ctx context.Context) (uint64, error)
	// Set stores tasks unless the generation moved past generation.
	// It reports whether the list was stored.
	Set(ctx context.Context, generation uint64, tasks []task.Task) (bool, error)
	// Invalidate drops the cached list and advances the generation
	Invalidate(ctx context.Context) error
}

type noopListCache struct{}

func (noopListCache) Get(context.Context) ([]task.Task, bool, error)         { return nil, false, nil }
func (noopListCache) Generation(context.Context) (uint64, error)             { return 0, nil }
func (noopListCache) Set(context.Context, uint64, []task.Task) (bool, error) { return false, nil }
func (noopListCache) Invalidate(context.Context) error                       { return nil }
