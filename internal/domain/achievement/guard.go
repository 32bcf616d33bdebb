package achievement

import (
	"sync"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

// GuardState is the state of the evaluation guard.
type GuardState string

const (
	// StateIdle - no evaluation pass is running.
	StateIdle GuardState = "idle"

	// StateRunning - an evaluation pass is in flight.
	StateRunning GuardState = "running"
)

// DefaultCooldown is the minimum spacing between evaluation pass starts.
const DefaultCooldown = 1 * time.Second

// Guard serializes evaluation passes and deduplicates per-achievement
// processing. It rejects a pass while another is running or within the
// cooldown window, and it owns the per-achievement in-flight markers that
// cover the gap between "unlocked in memory" and "notification fully shown".
//
// The guard must be released on every exit path; callers pair Begin with a
// deferred End.
type Guard struct {
	mu        sync.Mutex
	state     GuardState
	lastRunAt time.Time
	cooldown  time.Duration
	inFlight  map[string]bool
}

// NewGuard creates a guard with the given cooldown. A non-positive cooldown
// falls back to DefaultCooldown.
func NewGuard(cooldown time.Duration) *Guard {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Guard{
		state:    StateIdle,
		cooldown: cooldown,
		inFlight: make(map[string]bool),
	}
}

// Begin attempts to admit one evaluation pass. It returns
// shared.ErrEvaluationRunning when a pass is already in flight and
// shared.ErrCooldownActive when the previous pass started too recently.
// On success the guard transitions to Running and records the start time.
func (g *Guard) Begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateRunning {
		return shared.ErrEvaluationRunning
	}

	now := time.Now()
	if !g.lastRunAt.IsZero() && now.Sub(g.lastRunAt) < g.cooldown {
		return shared.ErrCooldownActive
	}

	g.state = StateRunning
	g.lastRunAt = now
	return nil
}

// End transitions the guard back to Idle. It is safe to call when already
// idle, so callers can defer it unconditionally.
func (g *Guard) End() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateIdle
}

// MarkInFlight sets the processing marker for an achievement id. The marker
// exists from the moment a predicate evaluates true until the notification
// display window closes.
func (g *Guard) MarkInFlight(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight[id] = true
}

// ClearInFlight removes the processing marker for an achievement id.
func (g *Guard) ClearInFlight(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, id)
}

// IsInFlight reports whether an achievement id is currently being processed.
func (g *Guard) IsInFlight(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight[id]
}

// InFlightCount returns the number of active markers.
func (g *Guard) InFlightCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inFlight)
}

// State returns the current guard state.
func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// LastRunAt returns when the last admitted pass started.
func (g *Guard) LastRunAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastRunAt
}

// Reset wipes all ephemeral state: markers, cooldown history, and the
// running flag. Used on session end; durable unlock state is unaffected.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateIdle
	g.lastRunAt = time.Time{}
	g.inFlight = make(map[string]bool)
}
