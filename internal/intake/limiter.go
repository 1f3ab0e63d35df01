package intake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/enrollflow/enrollflow/internal/common/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLimit  = 10
	defaultWindow = time.Minute
	defaultPrefix = "intake:rl:"
)

// Limiter counts public submissions per source address within a window.
// Allow reports whether the submission may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

// NewLimiter creates a limiter based on configuration. Memory is the
// default; redis is required when running multiple apiserver replicas.
func NewLimiter(cfg *config.IntakeRateLimitConfig) (Limiter, error) {
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	window := cfg.Window
	if window <= 0 {
		window = defaultWindow
	}

	switch cfg.Type {
	case "", "memory":
		return NewMemoryLimiter(limit, window), nil
	case "redis":
		return NewRedisLimiter(&cfg.Redis, limit, window)
	default:
		return nil, fmt.Errorf("unsupported rate limiter type: %s", cfg.Type)
	}
}

// MemoryLimiter implements Limiter with an in-process counter map.
// Counters reset when their window expires; stale entries are pruned lazily.
type MemoryLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	seen   map[string]*counterWindow
}

type counterWindow struct {
	count   int
	resetAt time.Time
}

// NewMemoryLimiter creates a new in-process limiter
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		seen:   make(map[string]*counterWindow),
	}
}

// Allow counts one submission for the key
func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.seen[key]
	if !ok || now.After(entry.resetAt) {
		l.seen[key] = &counterWindow{count: 1, resetAt: now.Add(l.window)}
		l.prune(now)
		return true, nil
	}

	entry.count++
	return entry.count <= l.limit, nil
}

// Close releases the counter map
func (l *MemoryLimiter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = make(map[string]*counterWindow)
	return nil
}

// prune drops expired windows; called with the lock held
func (l *MemoryLimiter) prune(now time.Time) {
	for key, entry := range l.seen {
		if now.After(entry.resetAt) {
			delete(l.seen, key)
		}
	}
}

// RedisLimiter implements Limiter with a shared keyed counter with TTL so
// the limit holds across replicas.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisLimiter creates a new redis-backed limiter
func NewRedisLimiter(cfg *config.IntakeRedisConfig, limit int, window time.Duration) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}, nil
}

// Allow counts one submission for the key
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.prefix + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.limit), nil
}

// Close closes the redis connection
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
