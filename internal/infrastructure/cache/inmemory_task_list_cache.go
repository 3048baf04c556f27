package cache

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taskboard/taskboard/internal/domain/task"
)

// InMemoryTaskListCache keeps the task list in process memory.
// Suitable for a single server instance.
type InMemoryTaskListCache struct {
	mu         sync.RWMutex
	tasks      []task.Task
	present    bool
	generation uint64
	expiresAt  time.Time
	ttl        time.Duration
	now        func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewInMemoryTaskListCache creates a cache whose entry expires after ttl; zero never expires
func NewInMemoryTaskListCache(ttl time.Duration) *InMemoryTaskListCache {
	return &InMemoryTaskListCache{ttl: ttl, now: time.Now}
}

// Get returns a copy of the cached list
func (c *InMemoryTaskListCache) Get(context.Context) ([]task.Task, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.present || (c.ttl > 0 && c.now().After(c.expiresAt)) {
		c.misses.Add(1)
		return nil, false, nil
	}
	c.hits.Add(1)
	return slices.Clone(c.tasks), true, nil
}

// Generation returns the number of invalidations so far
func (c *InMemoryTaskListCache) Generation(context.Context) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation, nil
}

// Set stores a copy of tasks if no invalidation happened since generation
func (c *InMemoryTaskListCache) Set(_ context.Context, generation uint64, tasks []task.Task) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return false, nil
	}
	c.tasks = slices.Clone(tasks)
	c.present = true
	c.expiresAt = c.now().Add(c.ttl)
	return true, nil
}

// Invalidate drops the cached list and advances the generation
func (c *InMemoryTaskListCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tasks = nil
	c.present = false
	c.generation++
	return nil
}

// Stats returns hit and miss counts
func (c *InMemoryTaskListCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
