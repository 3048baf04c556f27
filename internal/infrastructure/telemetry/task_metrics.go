package telemetry

import (
	"context"

	"github.com/taskboard/taskboard/internal/domain/shared"
	"github.com/taskboard/taskboard/internal/domain/task"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// StatusCounter reports how many tasks are in each status
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[task.Status]int64, error)
}

// TaskMetrics counts task lifecycle events and observes the board composition.
// Subscribe it to the event bus.
type TaskMetrics struct {
	created      *Counter
	updated      *Counter
	deleted      *Counter
	transitions  *Counter
	registration metric.Registration
	logger       *zap.Logger
}

// NewTaskMetrics registers the task instruments on meter
func NewTaskMetrics(meter metric.Meter, counts StatusCounter, logger *zap.Logger) (*TaskMetrics, error) {
	m := &TaskMetrics{logger: logger}

	var err error
	if m.created, err = NewCounter(meter, "taskboard.tasks.created", "Tasks created", "{task}"); err != nil {
		return nil, err
	}
	if m.updated, err = NewCounter(meter, "taskboard.tasks.updated", "Task updates that changed a field", "{task}"); err != nil {
		return nil, err
	}
	if m.deleted, err = NewCounter(meter, "taskboard.tasks.deleted", "Tasks deleted", "{task}"); err != nil {
		return nil, err
	}
	if m.transitions, err = NewCounter(meter, "taskboard.tasks.status_transitions", "Status changes by source and target", "{transition}"); err != nil {
		return nil, err
	}

	byStatus, err := meter.Int64ObservableGauge("taskboard.tasks.current",
		metric.WithDescription("Tasks currently stored, by status"),
		metric.WithUnit("{task}"))
	if err != nil {
		return nil, err
	}
	completion, err := meter.Int64ObservableGauge("taskboard.tasks.completion_rate",
		metric.WithDescription("Share of tasks that are completed"),
		metric.WithUnit("%"))
	if err != nil {
		return nil, err
	}

	m.registration, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		current, err := counts.CountByStatus(ctx)
		if err != nil {
			m.logger.Warn("failed to observe task counts", zap.Error(err))
			return nil
		}
		var total int64
		for _, status := range task.Statuses {
			o.ObserveInt64(byStatus, current[status], metric.WithAttributes(AttrTaskStatus.String(string(status))))
			total += current[status]
		}
		rate := task.CompletionRate(int(current[task.StatusCompleted]), int(total))
		o.ObserveInt64(completion, int64(rate))
		return nil
	}, byStatus, completion)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Handle implements shared.EventHandler
func (m *TaskMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *task.CreatedEvent:
		m.created.Inc(ctx, AttrTaskStatus.String(string(e.Status)))
	case *task.UpdatedEvent:
		m.updated.Inc(ctx, attribute.StringSlice(string(AttrChanged), e.Changed))
		if e.PreviousStatus != e.Status {
			m.transitions.Inc(ctx,
				attribute.String("from", string(e.PreviousStatus)),
				attribute.String("to", string(e.Status)),
			)
		}
	case *task.DeletedEvent:
		m.deleted.Inc(ctx)
	}
	return nil
}

// EventTypes implements shared.EventHandler
func (m *TaskMetrics) EventTypes() []string {
	return task.EventTypes
}

// Close unregisters the gauge callback
func (m *TaskMetrics) Close() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}

var _ shared.EventHandler = (*TaskMetrics)(nil)
