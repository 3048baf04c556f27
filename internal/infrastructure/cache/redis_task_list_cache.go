// Package cache holds the task list caches and their event-driven invalidation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/taskboard/taskboard/internal/domain/task"
)

const (
	defaultKeyPrefix = "taskboard:"
	listKey          = "tasks:list"
	generationKey    = "tasks:generation"
)

var errGenerationMoved = errors.New("task list generation moved")

// RedisTaskListCache stores the ordered task list as one JSON value in Redis.
// The generation lives in its own key so every server instance sees the same one.
type RedisTaskListCache struct {
	client     *redis.Client
	ownsClient bool
	key        string
	genKey     string
	ttl        time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// NewRedisTaskListCache connects to Redis and verifies the connection
func NewRedisTaskListCache(ctx context.Context, cfg RedisConfig) (*RedisTaskListCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisTaskListCacheWithClient(client, cfg.KeyPrefix, cfg.TTL)
	c.ownsClient = true
	return c, nil
}

// NewRedisTaskListCacheWithClient wraps an existing client, which the cache will not close
func NewRedisTaskListCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisTaskListCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisTaskListCache{
		client: client,
		key:    keyPrefix + listKey,
		genKey: keyPrefix + generationKey,
		ttl:    ttl,
	}
}

// Get returns the cached list; a missing key is a miss, not an error
func (c *RedisTaskListCache) Get(ctx context.Context) ([]task.Task, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", c.key, err)
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		// a corrupt entry is dropped and reported as a miss
		_ = c.client.Del(ctx, c.key).Err()
		return nil, false, nil
	}
	return tasks, true, nil
}

// Generation reads the generation key; a missing key is generation zero
func (c *RedisTaskListCache) Generation(ctx context.Context) (uint64, error) {
	gen, err := c.client.Get(ctx, c.genKey).Uint64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("redis get %s: %w", c.genKey, err)
	}
	return gen, nil
}

// Set writes the list in a transaction that watches the generation key, so a
// concurrent Invalidate from any instance aborts it
func (c *RedisTaskListCache) Set(ctx context.Context, generation uint64, tasks []task.Task) (bool, error) {
	data, err := json.Marshal(tasks)
	if err != nil {
		return false, fmt.Errorf("encode task list: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, c.genKey).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errGenerationMoved
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key, data, c.ttl)
			return nil
		})
		return err
	}, c.genKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errGenerationMoved), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("redis set %s: %w", c.key, err)
	}
}

// Invalidate advances the generation and deletes the cached list atomically
func (c *RedisTaskListCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey)
		pipe.Del(ctx, c.key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate %s: %w", c.key, err)
	}
	return nil
}

// Ping checks the Redis connection
func (c *RedisTaskListCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client if the cache created it
func (c *RedisTaskListCache) Close() error {
	if !c.ownsClient {
		return nil
	}
	return c.client.Close()
}
