package telemetry

import (
	"context"

	"github.com/taskboard/taskboard/internal/infrastructure/persistence"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// PoolStatsSource exposes connection pool statistics
type PoolStatsSource interface {
	Stats() (persistence.ConnectionStats, error)
}

// DBPoolMetrics observes the database connection pool on every collection.
type DBPoolMetrics struct {
	registration metric.Registration
	logger       *zap.Logger
}

// NewDBPoolMetrics registers the pool gauges on meter
func NewDBPoolMetrics(meter metric.Meter, source PoolStatsSource, logger *zap.Logger) (*DBPoolMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &DBPoolMetrics{logger: logger}

	connections, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Number of connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	maxOpen, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum number of open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return nil, err
	}

	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats, err := source.Stats()
		if err != nil {
			m.logger.Warn("failed to observe connection pool", zap.Error(err))
			return nil
		}
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(attribute.String("state", "in_use")))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(attribute.String("state", "idle")))
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, connections, maxOpen, waits)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Close unregisters the gauge callback
func (m *DBPoolMetrics) Close() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}
