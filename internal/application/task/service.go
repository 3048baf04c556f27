// Package task implements the task use cases: validation, normalisation and
// patch semantics between the transport and the store.
package task

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/taskboard/taskboard/internal/domain/shared"
	"github.com/taskboard/taskboard/internal/domain/task"
	"github.com/taskboard/taskboard/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service handles task business operations
type Service struct {
	repo      task.Repository
	publisher shared.EventPublisher
	cache     ListCache
	now       func() time.Time
	logger    *zap.Logger

	// set when an invalidation failed; List bypasses the cache until one succeeds
	cacheStale atomic.Bool
}

// Option configures a Service
type Option func(*Service)

// WithEventPublisher publishes task events after each successful mutation
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithListCache serves List from c
func WithListCache(c ListCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a new task Service
func NewService(repo task.Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		cache:  noopListCache{},
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new task
func (s *Service) Create(ctx context.Context, req CreateTaskRequest) (_ *TaskResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "task", "create")
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	var status task.Status
	if req.Status != nil {
		parsed, err := task.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		parsed, err := ParseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		dueDate = &parsed
	}

	now := s.now()
	t, err := task.NewTask(req.Title, req.Description, status, dueDate, now)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	span.SetAttributes(telemetry.AttrTaskID.Int64(t.ID), telemetry.AttrTaskStatus.String(string(t.Status)))

	s.invalidateList(ctx)
	s.publish(ctx, task.NewCreatedEvent(t, now))

	resp := ToTaskResponse(t)
	return &resp, nil
}

// List returns every task, newest first
func (s *Service) List(ctx context.Context) ([]TaskResponse, error) {
	tasks, err := s.listTasks(ctx)
	if err != nil {
		return nil, err
	}
	return ToTaskResponses(tasks), nil
}

// GetByID returns a single task
func (s *Service) GetByID(ctx context.Context, id int64) (*TaskResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTaskResponse(t)
	return &resp, nil
}

// Update applies a partial update. Nothing is written when the patch is
// invalid or changes nothing.
func (s *Service) Update(ctx context.Context, id int64, req UpdateTaskRequest) (_ *TaskResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "task", "update", telemetry.AttrTaskID.Int64(id))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := t.Status
	changed, err := applyPatch(t, req)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(telemetry.AttrChanged.StringSlice(changed))
	if len(changed) > 0 {
		if err := s.repo.Save(ctx, t); err != nil {
			return nil, err
		}
		s.invalidateList(ctx)
		s.publish(ctx, task.NewUpdatedEvent(t, previous, changed, s.now()))
	}

	resp := ToTaskResponse(t)
	return &resp, nil
}

// Delete removes a task. Deleting an unknown id reports not found.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "task", "delete", telemetry.AttrTaskID.Int64(id))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateList(ctx)
	s.publish(ctx, task.NewDeletedEvent(id, s.now()))
	return nil
}

// Summary computes the board metrics over the current task list
func (s *Service) Summary(ctx context.Context) (*SummaryResponse, error) {
	tasks, err := s.listTasks(ctx)
	if err != nil {
		return nil, err
	}
	resp := ToSummaryResponse(task.Summarize(tasks, s.now()))
	return &resp, nil
}

func (s *Service) listTasks(ctx context.Context) ([]task.Task, error) {
	if s.cacheStale.Swap(false) {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.cacheStale.Store(true)
			s.logger.Warn("task list cache still stale, reading from store", zap.Error(err))
			return s.repo.FindAll(ctx)
		}
	}

	if cached, ok, err := s.cache.Get(ctx); err != nil {
		s.logger.Warn("task list cache read failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	generation, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("task list cache generation unavailable", zap.Error(err))
		return s.repo.FindAll(ctx)
	}

	tasks, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := s.cache.Set(ctx, generation, tasks)
	switch {
	case err != nil:
		s.logger.Warn("task list cache write failed", zap.Error(err))
	case !stored:
		s.logger.Debug("task list changed while loading, not cached")
	}
	return tasks, nil
}

// invalidateList runs after every committed write, before the write is
// reported to the caller.
func (s *Service) invalidateList(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.cacheStale.Store(true)
		s.logger.Warn("task list cache invalidation failed, bypassing cache", zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish task events", zap.Error(err))
	}
}
