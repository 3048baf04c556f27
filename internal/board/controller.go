// Package board holds the client side state of the kanban view: the task
// snapshot, grouping, filtering, metrics and the mutations that keep the
// snapshot in step with the service.
package board

import (
	"context"
	"slices"
	"sync"
	"time"

	apptask "github.com/taskboard/taskboard/internal/application/task"
	"github.com/taskboard/taskboard/internal/domain/shared"
	"github.com/taskboard/taskboard/internal/domain/task"
	"go.uber.org/zap"
)

// API is the task service surface the board depends on
type API interface {
	List(ctx context.Context) ([]task.Task, error)
	Create(ctx context.Context, req apptask.CreateTaskRequest) (*task.Task, error)
	Update(ctx context.Context, id int64, patch apptask.UpdateTaskRequest) (*task.Task, error)
	Delete(ctx context.Context, id int64) error
}

// ReloadPolicy decides how the snapshot follows a successful mutation
type ReloadPolicy int

const (
	// ReloadFull refetches the whole list
	ReloadFull ReloadPolicy = iota
	// ReloadLocal patches the snapshot with the mutation result
	ReloadLocal
)

// PolicyFromConfig maps the client.reload_after_mutation setting
func PolicyFromConfig(reloadAfterMutation bool) ReloadPolicy {
	if reloadAfterMutation {
		return ReloadFull
	}
	return ReloadLocal
}

// Controller owns the authoritative task list of the view. Mutations are not
// coordinated with each other: the last completed reload wins.
type Controller struct {
	api    API
	policy ReloadPolicy
	now    func() time.Time
	logger *zap.Logger

	mu    sync.RWMutex
	tasks []task.Task
	err   error
}

// Option configures a Controller
type Option func(*Controller)

// WithReloadPolicy sets the post-mutation reload policy
func WithReloadPolicy(p ReloadPolicy) Option {
	return func(c *Controller) {
		c.policy = p
	}
}

// WithClock overrides the time source used for overdue checks
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithLogger sets the controller logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController creates a controller over api with an empty snapshot
func NewController(api API, opts ...Option) *Controller {
	c := &Controller{
		api:    api,
		policy: ReloadFull,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tasks returns a copy of the snapshot
func (c *Controller) Tasks() []task.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tasks)
}

// Err returns the error of the last operation, nil after a success
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Now returns the controller's current instant
func (c *Controller) Now() time.Time {
	return c.now()
}

// Find returns the snapshot entry for id
func (c *Controller) Find(id int64) (task.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := slices.IndexFunc(c.tasks, func(t task.Task) bool { return t.ID == id })
	if i < 0 {
		return task.Task{}, false
	}
	return c.tasks[i], true
}

// Columns lays out the snapshot for filter f
func (c *Controller) Columns(f Filter) []Column {
	return Columns(c.Tasks(), f, c.now())
}

// Metrics computes header metrics over the snapshot
func (c *Controller) Metrics() task.Summary {
	return Metrics(c.Tasks(), c.now())
}

// Load replaces the snapshot with the service's list. On failure the
// previous snapshot is kept.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.api.List(ctx)
	if err != nil {
		c.fail("load", err)
		return err
	}

	c.mu.Lock()
	c.tasks = tasks
	c.err = nil
	c.mu.Unlock()
	return nil
}

// Create stores a new task then applies the reload policy. A failed reload
// is returned together with the created task.
func (c *Controller) Create(ctx context.Context, req apptask.CreateTaskRequest) (*task.Task, error) {
	created, err := c.api.Create(ctx, req)
	if err != nil {
		c.fail("create", err)
		return nil, err
	}

	return created, c.afterMutation(ctx, func(tasks []task.Task) []task.Task {
		return append([]task.Task{*created}, tasks...)
	})
}

// Update sends patch for id then applies the reload policy
func (c *Controller) Update(ctx context.Context, id int64, patch apptask.UpdateTaskRequest) (*task.Task, error) {
	updated, err := c.api.Update(ctx, id, patch)
	if err != nil {
		c.fail("update", err)
		return nil, err
	}

	return updated, c.afterMutation(ctx, func(tasks []task.Task) []task.Task {
		i := slices.IndexFunc(tasks, func(t task.Task) bool { return t.ID == id })
		if i < 0 {
			return append([]task.Task{*updated}, tasks...)
		}
		tasks[i] = *updated
		return tasks
	})
}

// Delete removes id then applies the reload policy
func (c *Controller) Delete(ctx context.Context, id int64) error {
	if err := c.api.Delete(ctx, id); err != nil {
		c.fail("delete", err)
		return err
	}

	return c.afterMutation(ctx, func(tasks []task.Task) []task.Task {
		return slices.DeleteFunc(tasks, func(t task.Task) bool { return t.ID == id })
	})
}

// Move changes the status of id. Dropping a card on its own column is a
// no-op that reports false without a network call; otherwise a patch
// carrying only the status is sent.
func (c *Controller) Move(ctx context.Context, id int64, to task.Status) (bool, error) {
	current, ok := c.Find(id)
	if !ok {
		return false, shared.ErrNotFound
	}
	if current.Status == to {
		return false, nil
	}
	if !to.IsValid() {
		return false, shared.NewValidationError("Invalid status: " + string(to))
	}

	if _, err := c.Update(ctx, id, apptask.UpdateTaskRequest{Status: shared.Some(string(to))}); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Controller) afterMutation(ctx context.Context, local func([]task.Task) []task.Task) error {
	if c.policy == ReloadFull {
		return c.Load(ctx)
	}

	c.mu.Lock()
	c.tasks = local(slices.Clone(c.tasks))
	c.err = nil
	c.mu.Unlock()
	return nil
}

func (c *Controller) fail(op string, err error) {
	c.logger.Warn("Board operation failed", zap.String("op", op), zap.Error(err))
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}
