package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

func truePredicate(*activity.Snapshot) (bool, error) { return true, nil }

func TestNewCatalog_Validation(t *testing.T) {
	tests := []struct {
		name string
		defs []Definition
		want error
	}{
		{
			name: "empty id",
			defs: []Definition{{ID: "", Predicate: truePredicate}},
			want: shared.ErrInvalidID,
		},
		{
			name: "duplicate id",
			defs: []Definition{
				{ID: "dup", Predicate: truePredicate},
				{ID: "dup", Predicate: truePredicate},
			},
			want: shared.ErrDuplicateAchievementID,
		},
		{
			name: "nil predicate",
			defs: []Definition{{ID: "no-predicate"}},
			want: shared.ErrNilPredicate,
		},
		{
			name: "negative points",
			defs: []Definition{{ID: "neg", Points: -5, Predicate: truePredicate}},
			want: shared.ErrNegativeValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.defs)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewCatalog_OrdersByPriorityThenDeclaration(t *testing.T) {
	c, err := NewCatalog([]Definition{
		{ID: "c", Priority: 3, Predicate: truePredicate},
		{ID: "a2", Priority: 1, Predicate: truePredicate},
		{ID: "b", Priority: 2, Predicate: truePredicate},
		{ID: "a1", Priority: 1, Predicate: truePredicate},
	})
	require.NoError(t, err)

	var ids []string
	for _, d := range c.All() {
		ids = append(ids, d.ID)
	}
	// Ties keep declaration order: a2 was declared before a1.
	assert.Equal(t, []string{"a2", "a1", "b", "c"}, ids)
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, 18, c.Len())
	assert.Greater(t, c.MaxPoints(), 0)

	// Evaluation order is ascending priority end to end.
	all := c.All()
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Priority, all[i].Priority,
			"catalog out of order at %s", all[i].ID)
	}

	d, ok := c.ByID("first-login")
	require.True(t, ok)
	assert.Equal(t, CategorySpecial, d.Category)

	_, ok = c.ByID("does-not-exist")
	assert.False(t, ok)
}

func TestDefaultCatalog_FirstLoginPredicate(t *testing.T) {
	c := DefaultCatalog()
	d, ok := c.ByID("first-login")
	require.True(t, ok)

	snap := &activity.Snapshot{}
	got, err := d.Predicate(snap)
	require.NoError(t, err)
	assert.False(t, got)

	snap.Flags.Authenticated = true
	got, err = d.Predicate(snap)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestDefaultCatalog_DailyTrackerPredicate(t *testing.T) {
	c := DefaultCatalog()
	d, ok := c.ByID("daily-tracker")
	require.True(t, ok)

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	otherDay := day.AddDate(0, 0, 1)

	snap := &activity.Snapshot{
		WaterLogs:  []activity.UsageLog{{Kind: activity.KindWater, Date: day, Amount: 120}},
		EnergyLogs: []activity.UsageLog{{Kind: activity.KindEnergy, Date: otherDay, Amount: 8}},
	}
	got, err := d.Predicate(snap)
	require.NoError(t, err)
	assert.False(t, got, "logs on different days must not satisfy the rule")

	snap.EnergyLogs = append(snap.EnergyLogs, activity.UsageLog{
		Kind: activity.KindEnergy, Date: day.Add(5 * time.Hour), Amount: 3,
	})
	got, err = d.Predicate(snap)
	require.NoError(t, err)
	assert.True(t, got)
}
