package achievement

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
)

func waterCountPredicate(n int) Predicate {
	return func(snap *activity.Snapshot) (bool, error) {
		return len(snap.WaterLogs) >= n, nil
	}
}

func newTestEngine(t *testing.T, defs []Definition) (*Engine, *Store, *Guard) {
	t.Helper()
	catalog, err := NewCatalog(defs)
	require.NoError(t, err)

	store := NewStore(catalog)
	guard := NewGuard(time.Hour)
	return NewEngine(catalog, store, guard, nil), store, guard
}

func snapshotWithWaterLogs(n int) *activity.Snapshot {
	snap := &activity.Snapshot{TakenAt: time.Now().UTC()}
	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		snap.WaterLogs = append(snap.WaterLogs, activity.UsageLog{
			Kind:   activity.KindWater,
			Date:   day.AddDate(0, 0, i),
			Amount: 100,
		})
	}
	return snap
}

func TestEngine_UnlocksInPriorityOrder(t *testing.T) {
	engine, store, _ := newTestEngine(t, []Definition{
		{ID: "third", Priority: 30, Points: 3, Predicate: waterCountPredicate(1)},
		{ID: "first", Priority: 10, Points: 1, Predicate: waterCountPredicate(1)},
		{ID: "second", Priority: 20, Points: 2, Predicate: waterCountPredicate(1)},
		{ID: "locked", Priority: 40, Points: 4, Predicate: waterCountPredicate(5)},
	})

	result := engine.Evaluate(snapshotWithWaterLogs(1))

	require.Len(t, result.NewlyUnlocked, 3)
	assert.Equal(t, "first", result.NewlyUnlocked[0].Definition.ID)
	assert.Equal(t, "second", result.NewlyUnlocked[1].Definition.ID)
	assert.Equal(t, "third", result.NewlyUnlocked[2].Definition.ID)
	assert.Equal(t, 4, result.Checked)
	assert.Equal(t, 0, result.Failed)

	assert.True(t, store.IsUnlocked("first"))
	assert.False(t, store.IsUnlocked("locked"))
}

func TestEngine_SecondPassIsEmpty(t *testing.T) {
	engine, _, _ := newTestEngine(t, []Definition{
		{ID: "once", Priority: 1, Predicate: waterCountPredicate(1)},
	})
	snap := snapshotWithWaterLogs(1)

	first := engine.Evaluate(snap)
	require.Len(t, first.NewlyUnlocked, 1)

	// Same snapshot again: the unlock is already committed, nothing to do.
	second := engine.Evaluate(snap)
	assert.Empty(t, second.NewlyUnlocked)
	assert.Equal(t, 0, second.Checked)
}

func TestEngine_PredicateErrorStaysLockedAndRetries(t *testing.T) {
	var failing = true
	engine, store, _ := newTestEngine(t, []Definition{
		{ID: "flaky", Priority: 1, Predicate: func(*activity.Snapshot) (bool, error) {
			if failing {
				return false, errors.New("source unavailable")
			}
			return true, nil
		}},
		{ID: "steady", Priority: 2, Predicate: waterCountPredicate(1)},
	})
	snap := snapshotWithWaterLogs(1)

	result := engine.Evaluate(snap)
	assert.Equal(t, 1, result.Failed)
	// One predicate failing never aborts the rest of the pass.
	require.Len(t, result.NewlyUnlocked, 1)
	assert.Equal(t, "steady", result.NewlyUnlocked[0].Definition.ID)
	assert.False(t, store.IsUnlocked("flaky"))

	failing = false
	result = engine.Evaluate(snap)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.NewlyUnlocked, 1)
	assert.Equal(t, "flaky", result.NewlyUnlocked[0].Definition.ID)
}

func TestEngine_PredicatePanicIsContained(t *testing.T) {
	engine, store, _ := newTestEngine(t, []Definition{
		{ID: "panicky", Priority: 1, Predicate: func(*activity.Snapshot) (bool, error) {
			panic("boom")
		}},
		{ID: "survivor", Priority: 2, Predicate: waterCountPredicate(1)},
	})

	result := engine.Evaluate(snapshotWithWaterLogs(1))

	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.NewlyUnlocked, 1)
	assert.Equal(t, "survivor", result.NewlyUnlocked[0].Definition.ID)
	assert.False(t, store.IsUnlocked("panicky"))
}

func TestEngine_SkipsInFlightAchievements(t *testing.T) {
	engine, store, guard := newTestEngine(t, []Definition{
		{ID: "held", Priority: 1, Predicate: waterCountPredicate(1)},
	})

	guard.MarkInFlight("held")
	result := engine.Evaluate(snapshotWithWaterLogs(1))

	assert.Empty(t, result.NewlyUnlocked)
	assert.Equal(t, 0, result.Checked)
	assert.False(t, store.IsUnlocked("held"))

	// Once the marker is released the achievement unlocks normally.
	guard.ClearInFlight("held")
	result = engine.Evaluate(snapshotWithWaterLogs(1))
	assert.Len(t, result.NewlyUnlocked, 1)
}

func TestEngine_MarksUnlocksInFlight(t *testing.T) {
	engine, _, guard := newTestEngine(t, []Definition{
		{ID: "fresh", Priority: 1, Predicate: waterCountPredicate(1)},
	})

	engine.Evaluate(snapshotWithWaterLogs(1))

	// The marker holds until the notification display window closes.
	assert.True(t, guard.IsInFlight("fresh"))
}

func TestEngine_SharedTimestampPerPass(t *testing.T) {
	engine, _, _ := newTestEngine(t, []Definition{
		{ID: "a", Priority: 1, Predicate: waterCountPredicate(1)},
		{ID: "b", Priority: 2, Predicate: waterCountPredicate(1)},
	})

	result := engine.Evaluate(snapshotWithWaterLogs(1))

	require.Len(t, result.NewlyUnlocked, 2)
	assert.Equal(t, result.NewlyUnlocked[0].UnlockedAt, result.NewlyUnlocked[1].UnlockedAt)
}
