package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cannedAccessor serves fixed data.
type cannedAccessor struct {
	water  []UsageLog
	energy []UsageLog
	tips   []string
	cats   map[string]string
	goals  Goals
	flags  Flags

	failUsage bool
}

func (a *cannedAccessor) UsageLogs(_ context.Context, kind UsageKind) ([]UsageLog, error) {
	if a.failUsage {
		return nil, errors.New("storage down")
	}
	if kind == KindEnergy {
		return a.energy, nil
	}
	return a.water, nil
}

func (a *cannedAccessor) TriedTipIDs(context.Context) ([]string, error) {
	return a.tips, nil
}

func (a *cannedAccessor) Goal(_ context.Context, kind UsageKind) (float64, error) {
	return a.goals.Goal(kind), nil
}

func (a *cannedAccessor) TipCategory(_ context.Context, tipID string) (string, bool, error) {
	c, ok := a.cats[tipID]
	return c, ok, nil
}

func (a *cannedAccessor) Flags(context.Context) (Flags, error) {
	return a.flags, nil
}

func TestTakeSnapshot_NilAccessorDegrades(t *testing.T) {
	snap := TakeSnapshot(context.Background(), nil)

	require.NotNil(t, snap)
	assert.Empty(t, snap.WaterLogs)
	assert.Empty(t, snap.TriedTipIDs)
	assert.Equal(t, DefaultGoals().Water, snap.WaterGoal)
	assert.Equal(t, DefaultGoals().Energy, snap.EnergyGoal)
	assert.False(t, snap.Flags.Authenticated)
}

func TestTakeSnapshot_MaterializesAccessor(t *testing.T) {
	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	acc := &cannedAccessor{
		water:  []UsageLog{{Kind: KindWater, Date: day, Amount: 120}},
		energy: []UsageLog{{Kind: KindEnergy, Date: day, Amount: 6}},
		tips:   []string{"tip-a", "tip-unknown"},
		cats:   map[string]string{"tip-a": "water"},
		goals:  Goals{Water: 100, Energy: 9},
		flags:  Flags{Authenticated: true, SettingsSaved: true},
	}

	snap := TakeSnapshot(context.Background(), acc)

	assert.Len(t, snap.WaterLogs, 1)
	assert.Len(t, snap.EnergyLogs, 1)
	assert.Equal(t, 100.0, snap.WaterGoal)
	assert.Equal(t, 9.0, snap.EnergyGoal)
	assert.True(t, snap.Flags.SettingsSaved)

	// Unknown tips are absent from the category map but stay in the
	// tried list.
	assert.Equal(t, []string{"tip-a", "tip-unknown"}, snap.TriedTipIDs)
	assert.Equal(t, map[string]string{"tip-a": "water"}, snap.TipCategories)
}

func TestTakeSnapshot_ReadErrorMeansAbsence(t *testing.T) {
	acc := &cannedAccessor{
		failUsage: true,
		tips:      []string{"tip-a"},
		goals:     DefaultGoals(),
	}

	snap := TakeSnapshot(context.Background(), acc)

	// Failed reads degrade to empty; working reads still land.
	assert.Empty(t, snap.WaterLogs)
	assert.Empty(t, snap.EnergyLogs)
	assert.Equal(t, []string{"tip-a"}, snap.TriedTipIDs)
}

func TestSnapshot_DailyTotals(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	snap := &Snapshot{
		WaterLogs: []UsageLog{
			{Kind: KindWater, Date: day.Add(8 * time.Hour), Amount: 50},
			{Kind: KindWater, Date: day.Add(20 * time.Hour), Amount: 70},
			{Kind: KindWater, Date: day.AddDate(0, 0, 1), Amount: 40},
		},
	}

	totals := snap.DailyTotals(KindWater)
	assert.Equal(t, 120.0, totals["2026-03-01"])
	assert.Equal(t, 40.0, totals["2026-03-02"])
	assert.Len(t, totals, 2)
}

func TestSnapshot_TriedCategories(t *testing.T) {
	snap := &Snapshot{
		TipCategories: map[string]string{
			"tip-a": "water",
			"tip-b": "energy",
			"tip-c": "water",
		},
	}

	cats := snap.TriedCategories()
	assert.Equal(t, map[string]bool{"water": true, "energy": true}, cats)
}

func TestUsageLog_Validate(t *testing.T) {
	valid := UsageLog{
		ID: "l1", UserID: "u1", Kind: KindWater,
		Date: time.Now(), Amount: 10,
	}
	assert.NoError(t, valid.Validate())

	badKind := valid
	badKind.Kind = "gas"
	assert.Error(t, badKind.Validate())

	negative := valid
	negative.Amount = -1
	assert.Error(t, negative.Validate())
}

func TestGoals(t *testing.T) {
	defaults := DefaultGoals()
	assert.Equal(t, 150.0, defaults.Water)
	assert.Equal(t, 10.0, defaults.Energy)

	g := Goals{Water: 80, Energy: 5}
	assert.Equal(t, 80.0, g.Goal(KindWater))
	assert.Equal(t, 5.0, g.Goal(KindEnergy))
	assert.NoError(t, g.Validate())

	bad := Goals{Water: -1, Energy: 5}
	assert.Error(t, bad.Validate())
}
