package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

func TestGuard_RejectsWhileRunning(t *testing.T) {
	g := NewGuard(time.Hour)

	assert.NoError(t, g.Begin())
	assert.Equal(t, StateRunning, g.State())

	err := g.Begin()
	assert.ErrorIs(t, err, shared.ErrEvaluationRunning)

	g.End()
	assert.Equal(t, StateIdle, g.State())
}

func TestGuard_CooldownAfterEnd(t *testing.T) {
	g := NewGuard(time.Hour)

	assert.NoError(t, g.Begin())
	g.End()

	// Idle again, but the long cooldown still blocks admission.
	err := g.Begin()
	assert.ErrorIs(t, err, shared.ErrCooldownActive)
}

func TestGuard_CooldownExpires(t *testing.T) {
	g := NewGuard(10 * time.Millisecond)

	assert.NoError(t, g.Begin())
	g.End()

	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, g.Begin())
	g.End()
}

func TestGuard_EndIsIdempotent(t *testing.T) {
	g := NewGuard(time.Hour)

	g.End()
	g.End()
	assert.Equal(t, StateIdle, g.State())
}

func TestGuard_NonPositiveCooldownFallsBack(t *testing.T) {
	g := NewGuard(0)

	assert.NoError(t, g.Begin())
	g.End()
	// DefaultCooldown is in effect, so an immediate retry is rejected.
	assert.ErrorIs(t, g.Begin(), shared.ErrCooldownActive)
}

func TestGuard_InFlightMarkers(t *testing.T) {
	g := NewGuard(time.Hour)

	assert.False(t, g.IsInFlight("first-water-log"))
	assert.Equal(t, 0, g.InFlightCount())

	g.MarkInFlight("first-water-log")
	g.MarkInFlight("first-energy-log")

	assert.True(t, g.IsInFlight("first-water-log"))
	assert.Equal(t, 2, g.InFlightCount())

	g.ClearInFlight("first-water-log")
	assert.False(t, g.IsInFlight("first-water-log"))
	assert.True(t, g.IsInFlight("first-energy-log"))
	assert.Equal(t, 1, g.InFlightCount())
}

func TestGuard_ResetWipesEphemeralState(t *testing.T) {
	g := NewGuard(time.Hour)

	assert.NoError(t, g.Begin())
	g.MarkInFlight("first-login")
	g.Reset()

	assert.Equal(t, StateIdle, g.State())
	assert.Equal(t, 0, g.InFlightCount())
	assert.True(t, g.LastRunAt().IsZero())

	// Cooldown history is gone, so a new pass starts immediately.
	assert.NoError(t, g.Begin())
}
