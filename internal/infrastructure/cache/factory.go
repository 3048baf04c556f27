package cache

import (
	"context"
	"io"

	apptask "github.com/taskboard/taskboard/internal/application/task"
	"github.com/taskboard/taskboard/internal/infrastructure/config"
	"go.uber.org/zap"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewTaskListCache builds the cache selected by cfg. When Redis is enabled but
// unreachable the process-local cache is used instead and a warning is logged.
func NewTaskListCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (apptask.ListCache, io.Closer) {
	if !cfg.Enabled {
		logger.Info("using in-memory task list cache", zap.Duration("ttl", cfg.ListTTL))
		return NewInMemoryTaskListCache(cfg.ListTTL), nopCloser{}
	}

	redisCache, err := NewRedisTaskListCache(ctx, RedisConfig{
		Addr:      cfg.Addr(),
		Password:  cfg.Password,
		DB:        cfg.DB,
		KeyPrefix: cfg.KeyPrefix,
		TTL:       cfg.ListTTL,
	})
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory task list cache", zap.Error(err))
		return NewInMemoryTaskListCache(cfg.ListTTL), nopCloser{}
	}

	logger.Info("using Redis task list cache", zap.String("addr", cfg.Addr()))
	return redisCache, redisCache
}
