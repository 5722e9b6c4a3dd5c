// Package cache puts a redis read-through cache in front of a store.Client.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tgienger/kanban/internal/logger"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
)

// Cache wraps a store.Client with Redis-backed caching of the task list.
type Cache struct {
	base  store.Client
	redis *redis.Client
	ttl   time.Duration
	key   string
	log   *logger.Logger

	// dirty is set when an eviction failed; the cached list may be stale
	// and is not served until a later Del or Set succeeds.
	dirty atomic.Bool
}

// Ensure Cache implements store.Client interface
var _ store.Client = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for redis failures.
func WithLogger(log *logger.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// New creates a caching wrapper around base. The namespace separates boards
// that share a redis instance.
func New(base store.Client, client *redis.Client, ttl time.Duration, namespace string, opts ...Option) *Cache {
	if base == nil {
		panic("cache.New: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if namespace == "" {
		namespace = "default"
	}
	c := &Cache{
		base:  base,
		redis: client,
		ttl:   ttl,
		key:   "kanban:tasks:" + namespace,
		log:   logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect parses a redis URL and returns a client with retries disabled.
func Connect(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	opts.MaxRetries = -1
	return redis.NewClient(opts), nil
}

// ListTasks serves the list from redis when present and not stale,
// otherwise from the base store.
func (c *Cache) ListTasks(ctx context.Context) ([]models.Task, error) {
	if !c.dirty.Load() {
		if tasks, ok := c.load(ctx); ok {
			return tasks, nil
		}
	}

	tasks, err := c.base.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	c.save(ctx, tasks)
	return tasks, nil
}

func (c *Cache) InsertTask(ctx context.Context, task store.NewTask) (models.Task, error) {
	t, err := c.base.InsertTask(ctx, task)
	c.evict(ctx)
	return t, err
}

func (c *Cache) UpdateTaskStatus(ctx context.Context, id string, status models.Status, updatedAt time.Time) error {
	err := c.base.UpdateTaskStatus(ctx, id, status, updatedAt)
	c.evict(ctx)
	return err
}

func (c *Cache) DeleteTask(ctx context.Context, id string) error {
	err := c.base.DeleteTask(ctx, id)
	c.evict(ctx)
	return err
}

// Close closes the base store and the redis client.
func (c *Cache) Close() error {
	err := c.base.Close()
	if c.redis != nil {
		if rerr := c.redis.Close(); err == nil {
			err = rerr
		}
	}
	return err
}

func (c *Cache) load(ctx context.Context) ([]models.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// Fall back to the backing store without failing.
			c.log.WithError(err).Warn("Failed to read cached tasks", zap.String("key", c.key))
		}
		return nil, false
	}
	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		c.log.WithError(err).Warn("Dropping corrupt cached tasks", zap.String("key", c.key))
		c.evict(ctx)
		return nil, false
	}
	return tasks, true
}

func (c *Cache) save(ctx context.Context, tasks []models.Task) {
	if c.redis == nil {
		return
	}
	if c.ttl == 0 {
		if c.dirty.Load() {
			c.evict(ctx)
		}
		return
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("Failed to cache tasks", zap.String("key", c.key))
		return
	}
	c.dirty.Store(false)
}

// evict drops the cached list after any write attempt. A failed call may
// still have reached the store. When the Del fails the cache is marked
// dirty so the stale list is not served.
func (c *Cache) evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, c.key).Err(); err != nil {
		c.dirty.Store(true)
		c.log.WithError(err).Warn("Failed to evict cached tasks", zap.String("key", c.key))
		return
	}
	c.dirty.Store(false)
}
