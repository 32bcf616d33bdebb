// Package redis implements the Redis cache for computed achievement
// statistics. The statistics view (points, progress, next achievement) is
// recomputed on every evaluation; the cache keeps the read path off the
// domain store for the stats panel and API.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmt697/EcoTracker-Project/internal/domain/achievement"
)

// ══════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		DB:           0,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewClient creates a go-redis client from the config and verifies it with
// a ping.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: failed to ping: %w", err)
	}

	return client, nil
}

// ══════════════════════════════════════════════════════════════════════════
// STATS CACHE
// ══════════════════════════════════════════════════════════════════════════

var (
	// ErrCacheMiss is returned when no statistics are cached for the user.
	ErrCacheMiss = errors.New("stats_cache: key not found")
)

const (
	// prefixStats namespaces the statistics keys.
	prefixStats = "stats:"

	// DefaultStatsTTL bounds staleness when invalidation is missed.
	DefaultStatsTTL = 15 * time.Minute
)

// cachedStatistics is the wire form of achievement.Statistics. The Next
// pointer is flattened to its id; the catalog resolves it on read.
type cachedStatistics struct {
	Total      int            `json:"total"`
	Unlocked   int            `json:"unlocked"`
	Points     int            `json:"points"`
	MaxPoints  int            `json:"max_points"`
	ByCategory map[string]int `json:"by_category"`
	NextID     string         `json:"next_id,omitempty"`
	CachedAt   time.Time      `json:"cached_at"`
}

// StatsCache caches computed achievement statistics per user.
type StatsCache struct {
	client  *redis.Client
	catalog *achievement.Catalog
	ttl     time.Duration
}

// NewStatsCache creates a stats cache. A zero ttl falls back to the
// default.
func NewStatsCache(client *redis.Client, catalog *achievement.Catalog, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}

	return &StatsCache{
		client:  client,
		catalog: catalog,
		ttl:     ttl,
	}
}

func (c *StatsCache) key(userID string) string {
	return prefixStats + userID
}

// Set stores the user's statistics.
func (c *StatsCache) Set(ctx context.Context, userID string, stats achievement.Statistics) error {
	byCategory := make(map[string]int, len(stats.ByCategory))
	for cat, n := range stats.ByCategory {
		byCategory[string(cat)] = n
	}

	cached := cachedStatistics{
		Total:      stats.Total,
		Unlocked:   stats.Unlocked,
		Points:     stats.Points,
		MaxPoints:  stats.MaxPoints,
		ByCategory: byCategory,
		CachedAt:   time.Now().UTC(),
	}
	if stats.Next != nil {
		cached.NextID = stats.Next.ID
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("stats_cache: failed to marshal: %w", err)
	}

	if err := c.client.Set(ctx, c.key(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("stats_cache: failed to set: %w", err)
	}

	return nil
}

// Get returns the user's cached statistics, ErrCacheMiss when absent.
func (c *StatsCache) Get(ctx context.Context, userID string) (achievement.Statistics, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return achievement.Statistics{}, ErrCacheMiss
		}
		return achievement.Statistics{}, fmt.Errorf("stats_cache: failed to get: %w", err)
	}

	var cached cachedStatistics
	if err := json.Unmarshal(data, &cached); err != nil {
		return achievement.Statistics{}, fmt.Errorf("stats_cache: failed to unmarshal: %w", err)
	}

	byCategory := make(map[achievement.Category]int, len(cached.ByCategory))
	for cat, n := range cached.ByCategory {
		byCategory[achievement.Category(cat)] = n
	}

	stats := achievement.Statistics{
		Total:      cached.Total,
		Unlocked:   cached.Unlocked,
		Points:     cached.Points,
		MaxPoints:  cached.MaxPoints,
		ByCategory: byCategory,
	}
	if cached.NextID != "" && c.catalog != nil {
		if def, ok := c.catalog.ByID(cached.NextID); ok {
			stats.Next = &def
		}
	}

	return stats, nil
}

// Invalidate drops the user's cached statistics.
func (c *StatsCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("stats_cache: failed to invalidate: %w", err)
	}

	return nil
}
