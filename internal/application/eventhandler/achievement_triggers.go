// Package eventhandler subscribes application reactions to domain events:
// activity events trigger debounced achievement evaluation, unlock events
// invalidate the cached statistics view.
package eventhandler

import (
	"context"
	"log/slog"

	"github.com/mmt697/EcoTracker-Project/internal/application/query"
	"github.com/mmt697/EcoTracker-Project/internal/application/saga"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT TRIGGERS
// ══════════════════════════════════════════════════════════════════════════

// triggerEvents are the event types that request an evaluation pass.
var triggerEvents = []shared.EventType{
	shared.EventUserAuthenticated,
	shared.EventUsageLogged,
	shared.EventSettingsSaved,
	shared.EventPageVisited,
	shared.EventTipTried,
}

// FlowResolver maps a user id to the unlock flows of their active
// sessions. The session manager implements it.
type FlowResolver interface {
	FlowsForUser(userID string) []*saga.UnlockFlow
}

// AchievementTriggers routes activity events into the owning user's
// unlock flow. Every trigger goes through the flow's debounce, so a burst
// of activity produces one evaluation pass.
type AchievementTriggers struct {
	flows  FlowResolver
	logger *slog.Logger
}

// NewAchievementTriggers creates the trigger router.
func NewAchievementTriggers(flows FlowResolver, logger *slog.Logger) *AchievementTriggers {
	if logger == nil {
		logger = slog.Default()
	}

	return &AchievementTriggers{
		flows:  flows,
		logger: logger,
	}
}

// Register subscribes the router to every trigger event type.
func (t *AchievementTriggers) Register(bus shared.EventSubscriber) error {
	for _, eventType := range triggerEvents {
		err := bus.Subscribe(eventType, func(event shared.Event) error {
			for _, flow := range t.flows.FlowsForUser(event.AggregateID()) {
				flow.Trigger(string(event.EventType()))
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════
// STATISTICS INVALIDATION
// ══════════════════════════════════════════════════════════════════════════

// StatsInvalidator drops the cached statistics whenever an achievement
// unlocks, so the next read recomputes.
type StatsInvalidator struct {
	cache  query.StatsCache
	logger *slog.Logger
}

// NewStatsInvalidator creates the invalidation handler. A nil cache makes
// Register a no-op.
func NewStatsInvalidator(cache query.StatsCache, logger *slog.Logger) *StatsInvalidator {
	if logger == nil {
		logger = slog.Default()
	}

	return &StatsInvalidator{
		cache:  cache,
		logger: logger,
	}
}

// Register subscribes the handler to unlock events.
func (s *StatsInvalidator) Register(bus shared.EventSubscriber) error {
	if s.cache == nil {
		return nil
	}

	return bus.Subscribe(shared.EventAchievementUnlocked, func(event shared.Event) error {
		if err := s.cache.Invalidate(context.Background(), event.AggregateID()); err != nil {
			s.logger.Debug("failed to invalidate statistics cache",
				"user_id", event.AggregateID(),
				"error", err,
			)
		}
		return nil
	})
}
