// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"log/slog"

	"github.com/mmt697/EcoTracker-Project/internal/domain/achievement"
)

// StatsCache caches computed statistics per user. The redis
// implementation lives in infrastructure; a nil cache disables caching.
type StatsCache interface {
	Get(ctx context.Context, userID string) (achievement.Statistics, error)
	Set(ctx context.Context, userID string, stats achievement.Statistics) error
	Invalidate(ctx context.Context, userID string) error
}

// ══════════════════════════════════════════════════════════════════════════
// GET STATISTICS QUERY
// ══════════════════════════════════════════════════════════════════════════

// GetStatisticsQuery asks for a user's achievement statistics.
type GetStatisticsQuery struct {
	// UserID is the internal id of the user.
	UserID string

	// BypassCache forces a fresh computation.
	BypassCache bool
}

// GetStatisticsHandler serves achievement statistics, cache-first.
type GetStatisticsHandler struct {
	store  *achievement.Store
	cache  StatsCache
	logger *slog.Logger
}

// NewGetStatisticsHandler creates a new GetStatisticsHandler.
func NewGetStatisticsHandler(store *achievement.Store, cache StatsCache, logger *slog.Logger) *GetStatisticsHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &GetStatisticsHandler{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Handle returns the statistics, consulting the cache first. Cache
// failures degrade to a fresh computation, never to an error.
func (h *GetStatisticsHandler) Handle(ctx context.Context, q GetStatisticsQuery) (achievement.Statistics, error) {
	if h.cache != nil && !q.BypassCache {
		if stats, err := h.cache.Get(ctx, q.UserID); err == nil {
			return stats, nil
		}
	}

	stats := h.store.Statistics()

	if h.cache != nil {
		if err := h.cache.Set(ctx, q.UserID, stats); err != nil {
			h.logger.Debug("failed to cache statistics", "user_id", q.UserID, "error", err)
		}
	}

	return stats, nil
}

// InvalidateFor drops the cached statistics after an unlock.
func (h *GetStatisticsHandler) InvalidateFor(ctx context.Context, userID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, userID); err != nil {
		h.logger.Debug("failed to invalidate statistics cache", "user_id", userID, "error", err)
	}
}
