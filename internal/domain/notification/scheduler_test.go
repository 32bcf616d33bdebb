package notification

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmt697/EcoTracker-Project/internal/domain/achievement"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

// deliveryRecorder collects notifications as they are displayed.
type deliveryRecorder struct {
	mu        sync.Mutex
	delivered []Notification
}

func (r *deliveryRecorder) deliver(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, n)
}

func (r *deliveryRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.delivered)
}

func (r *deliveryRecorder) first() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delivered[0]
}

func (r *deliveryRecorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.delivered))
	for _, n := range r.delivered {
		out = append(out, n.AchievementID)
	}
	return out
}

// stubUnlocks reports unlock state per achievement id.
type stubUnlocks struct {
	mu       sync.Mutex
	unlocked map[string]bool
}

func (s *stubUnlocks) IsUnlocked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked[id]
}

// stubMarkers records released in-flight markers.
type stubMarkers struct {
	mu      sync.Mutex
	cleared []string
}

func (s *stubMarkers) ClearInFlight(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared = append(s.cleared, id)
}

func (s *stubMarkers) clearedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cleared)
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) GenerateID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("notif-%d", s.n)
}

func unlockedBatch(ids ...string) []achievement.Unlocked {
	batch := make([]achievement.Unlocked, 0, len(ids))
	for _, id := range ids {
		batch = append(batch, achievement.Unlocked{
			Definition: achievement.Definition{ID: id, Title: "Title " + id, Points: 10},
			UnlockedAt: time.Now().UTC(),
		})
	}
	return batch
}

func fastConfig() Config {
	return Config{
		Stagger:           20 * time.Millisecond,
		DisplayDuration:   40 * time.Millisecond,
		SuppressionWindow: 200 * time.Millisecond,
	}
}

func newTestScheduler(rec *deliveryRecorder, unlocks *stubUnlocks, markers *stubMarkers) *Scheduler {
	return NewScheduler(fastConfig(), rec.deliver, &seqIDs{}, unlocks, markers, nil)
}

func TestScheduler_FirstDeliveryIsImmediate(t *testing.T) {
	rec := &deliveryRecorder{}
	unlocks := &stubUnlocks{unlocked: map[string]bool{"a": true}}
	markers := &stubMarkers{}
	s := newTestScheduler(rec, unlocks, markers)
	defer s.Shutdown()

	require.NoError(t, s.Announce(unlockedBatch("a")))

	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 2*time.Millisecond)
	assert.True(t, s.IsActive("a"))
	assert.True(t, s.WasRecentlyShown("a"))

	n := rec.first()
	assert.Equal(t, "a", n.AchievementID)
	assert.Equal(t, "Title a", n.Title)
	assert.Equal(t, StateDisplayed, n.State)
	assert.NotEmpty(t, n.ID)
}

func TestScheduler_DisplayWindowReleasesMarker(t *testing.T) {
	rec := &deliveryRecorder{}
	unlocks := &stubUnlocks{unlocked: map[string]bool{"a": true}}
	markers := &stubMarkers{}
	s := newTestScheduler(rec, unlocks, markers)
	defer s.Shutdown()

	require.NoError(t, s.Announce(unlockedBatch("a")))

	// After the display window the notification clears and the
	// in-flight marker is released.
	assert.Eventually(t, func() bool {
		return !s.IsActive("a") && markers.clearedCount() == 1
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestScheduler_StaggerPreservesBatchOrder(t *testing.T) {
	rec := &deliveryRecorder{}
	unlocks := &stubUnlocks{unlocked: map[string]bool{"a": true, "b": true, "c": true}}
	s := newTestScheduler(rec, unlocks, &stubMarkers{})
	defer s.Shutdown()

	require.NoError(t, s.Announce(unlockedBatch("a", "b", "c")))

	assert.Eventually(t, func() bool { return rec.count() == 3 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, rec.ids())
}

func TestScheduler_SkipsWhenNoLongerUnlocked(t *testing.T) {
	rec := &deliveryRecorder{}
	unlocks := &stubUnlocks{unlocked: map[string]bool{}}
	markers := &stubMarkers{}
	s := newTestScheduler(rec, unlocks, markers)
	defer s.Shutdown()

	require.NoError(t, s.Announce(unlockedBatch("gone")))

	// The skip still releases the marker: nothing will display, so
	// nothing would clear it later.
	assert.Eventually(t, func() bool { return markers.clearedCount() == 1 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, 0, rec.count())
	assert.False(t, s.IsActive("gone"))
}

func TestScheduler_SuppressesRepeatWithinWindow(t *testing.T) {
	rec := &deliveryRecorder{}
	unlocks := &stubUnlocks{unlocked: map[string]bool{"a": true}}
	markers := &stubMarkers{}
	s := newTestScheduler(rec, unlocks, markers)
	defer s.Shutdown()

	require.NoError(t, s.Announce(unlockedBatch("a")))
	assert.Eventually(t, func() bool { return !s.IsActive("a") }, time.Second, 2*time.Millisecond)

	// Display window closed but the suppression window is still open.
	require.NoError(t, s.Announce(unlockedBatch("a")))
	assert.Eventually(t, func() bool { return markers.clearedCount() == 2 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestScheduler_SkipsAlreadyActive(t *testing.T) {
	rec := &deliveryRecorder{}
	unlocks := &stubUnlocks{unlocked: map[string]bool{"a": true}}
	markers := &stubMarkers{}
	s := newTestScheduler(rec, unlocks, markers)
	defer s.Shutdown()

	require.NoError(t, s.Announce(unlockedBatch("a")))
	assert.Eventually(t, func() bool { return s.IsActive("a") }, time.Second, 2*time.Millisecond)

	require.NoError(t, s.Announce(unlockedBatch("a")))
	assert.Eventually(t, func() bool { return markers.clearedCount() >= 1 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestScheduler_ResetCancelsPendingDeliveries(t *testing.T) {
	rec := &deliveryRecorder{}
	unlocks := &stubUnlocks{unlocked: map[string]bool{"a": true, "b": true, "c": true}}
	s := NewScheduler(Config{
		Stagger:           time.Hour, // later entries never fire in this test
		DisplayDuration:   40 * time.Millisecond,
		SuppressionWindow: 200 * time.Millisecond,
	}, rec.deliver, &seqIDs{}, unlocks, &stubMarkers{}, nil)
	defer s.Shutdown()

	require.NoError(t, s.Announce(unlockedBatch("a", "b", "c")))
	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 2*time.Millisecond)
	assert.NotZero(t, s.PendingCount())

	s.Reset()

	assert.Equal(t, 0, s.PendingCount())
	assert.Equal(t, 0, s.ActiveCount())
	assert.False(t, s.WasRecentlyShown("a"))

	// The scheduler stays usable after a reset.
	require.NoError(t, s.Announce(unlockedBatch("a")))
	assert.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 2*time.Millisecond)
}

func TestScheduler_BatchWallTimeAndCleanup(t *testing.T) {
	rec := &deliveryRecorder{}
	unlocks := &stubUnlocks{unlocked: map[string]bool{"a": true, "b": true, "c": true}}
	markers := &stubMarkers{}
	s := newTestScheduler(rec, unlocks, markers)
	defer s.Shutdown()

	cfg := fastConfig()
	start := time.Now()
	require.NoError(t, s.Announce(unlockedBatch("a", "b", "c")))

	// The batch occupies stagger*(n-1) + display duration of wall time:
	// the last delivery fires two staggers in, its display window closes
	// one display duration later, releasing the final marker.
	require.Eventually(t, func() bool { return markers.clearedCount() == 3 }, 2*time.Second, 2*time.Millisecond)
	elapsed := time.Since(start)

	minWallTime := 2*cfg.Stagger + cfg.DisplayDuration
	assert.GreaterOrEqual(t, elapsed, minWallTime)
	assert.Less(t, elapsed, time.Second)

	assert.Equal(t, 3, rec.count())
	assert.Equal(t, 0, s.ActiveCount())
	assert.Equal(t, 0, s.PendingCount())
}

func TestScheduler_ResetInvalidatesInFlightDeliveries(t *testing.T) {
	rec := &deliveryRecorder{}
	unlocks := &stubUnlocks{unlocked: map[string]bool{"a": true}}
	markers := &stubMarkers{}
	s := newTestScheduler(rec, unlocks, markers)
	defer s.Shutdown()

	// A delivery scheduled before the reset carries the old generation;
	// when it reaches fire after the wipe it must not deliver or
	// repopulate the active and recently-shown sets.
	stale := s.generation
	s.Reset()
	s.fire(unlockedBatch("a")[0], stale)

	assert.Equal(t, 0, rec.count())
	assert.Equal(t, 0, s.ActiveCount())
	assert.False(t, s.WasRecentlyShown("a"))

	// The current generation still delivers.
	require.NoError(t, s.Announce(unlockedBatch("a")))
	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 2*time.Millisecond)
}

func TestScheduler_ShutdownRejectsAnnounce(t *testing.T) {
	rec := &deliveryRecorder{}
	s := newTestScheduler(rec, &stubUnlocks{unlocked: map[string]bool{"a": true}}, &stubMarkers{})

	s.Shutdown()

	err := s.Announce(unlockedBatch("a"))
	assert.ErrorIs(t, err, shared.ErrSchedulerClosed)
	assert.Equal(t, 0, rec.count())
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	assert.Equal(t, DefaultStagger, cfg.Stagger)
	assert.Equal(t, DefaultDisplayDuration, cfg.DisplayDuration)
	assert.Equal(t, DefaultSuppressionWindow, cfg.SuppressionWindow)
}
