package eventhandler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmt697/EcoTracker-Project/internal/application/saga"
	"github.com/mmt697/EcoTracker-Project/internal/domain/achievement"
	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
	"github.com/mmt697/EcoTracker-Project/internal/infrastructure/messaging"
)

// fixedResolver serves one flow per known user id.
type fixedResolver struct {
	flows map[string]*saga.UnlockFlow
}

func (r *fixedResolver) FlowsForUser(userID string) []*saga.UnlockFlow {
	if f, ok := r.flows[userID]; ok {
		return []*saga.UnlockFlow{f}
	}
	return nil
}

func newTriggerFlow(t *testing.T, userID string) (*saga.UnlockFlow, *achievement.Store) {
	t.Helper()
	catalog, err := achievement.NewCatalog([]achievement.Definition{
		{ID: "any-activity", Priority: 1, Points: 5, Predicate: func(*activity.Snapshot) (bool, error) {
			return true, nil
		}},
	})
	require.NoError(t, err)

	store := achievement.NewStore(catalog)
	guard := achievement.NewGuard(time.Millisecond)
	engine := achievement.NewEngine(catalog, store, guard, nil)
	flow := saga.NewUnlockFlow(userID, store, guard, engine, nil, nil, nil, nil,
		saga.Config{Debounce: time.Millisecond}, nil)
	return flow, store
}

func TestAchievementTriggers_RoutesByAggregateID(t *testing.T) {
	flow1, store1 := newTriggerFlow(t, "user-1")
	flow2, store2 := newTriggerFlow(t, "user-2")
	resolver := &fixedResolver{flows: map[string]*saga.UnlockFlow{
		"user-1": flow1,
		"user-2": flow2,
	}}

	cfg := messaging.DefaultConfig()
	cfg.AsyncMode = false
	bus := messaging.NewEventBus(cfg)
	defer bus.Close()

	require.NoError(t, NewAchievementTriggers(resolver, nil).Register(bus))

	require.NoError(t, bus.Publish(shared.NewUsageLoggedEvent("user-1", "water", 100, time.Now())))

	// Only user-1's flow is triggered.
	assert.Eventually(t, func() bool {
		return store1.IsUnlocked("any-activity")
	}, time.Second, 5*time.Millisecond)
	assert.False(t, store2.IsUnlocked("any-activity"))
}

func TestAchievementTriggers_IgnoresUsersWithoutSessions(t *testing.T) {
	resolver := &fixedResolver{flows: map[string]*saga.UnlockFlow{}}

	cfg := messaging.DefaultConfig()
	cfg.AsyncMode = false
	bus := messaging.NewEventBus(cfg)
	defer bus.Close()

	require.NoError(t, NewAchievementTriggers(resolver, nil).Register(bus))

	// No session for this user: the event is absorbed without error.
	assert.NoError(t, bus.Publish(shared.NewTipTriedEvent("ghost", "tip-1", "water")))
}

type countingCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *countingCache) Get(context.Context, string) (achievement.Statistics, error) {
	return achievement.Statistics{}, nil
}

func (c *countingCache) Set(context.Context, string, achievement.Statistics) error {
	return nil
}

func (c *countingCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func TestStatsInvalidator_DropsCacheOnUnlock(t *testing.T) {
	cache := &countingCache{}

	cfg := messaging.DefaultConfig()
	cfg.AsyncMode = false
	bus := messaging.NewEventBus(cfg)
	defer bus.Close()

	require.NoError(t, NewStatsInvalidator(cache, nil).Register(bus))

	event := shared.NewAchievementUnlockedEvent(
		"user-1", "first-login", "Welcome Aboard!", "special", 10, time.Now().UTC(),
	)
	require.NoError(t, bus.Publish(event))

	assert.Equal(t, []string{"user-1"}, cache.invalidated)
}

func TestStatsInvalidator_NilCacheIsNoOp(t *testing.T) {
	cfg := messaging.DefaultConfig()
	cfg.AsyncMode = false
	bus := messaging.NewEventBus(cfg)
	defer bus.Close()

	require.NoError(t, NewStatsInvalidator(nil, nil).Register(bus))
	assert.NoError(t, bus.Publish(shared.NewAchievementUnlockedEvent(
		"user-1", "first-login", "Welcome Aboard!", "special", 10, time.Now().UTC(),
	)))
}