package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmt697/EcoTracker-Project/internal/domain/account"
	"github.com/mmt697/EcoTracker-Project/internal/domain/achievement"
	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

func TestUnlockRepository_RoundTrip(t *testing.T) {
	repo := NewUnlockRepository()
	ctx := context.Background()

	records, err := repo.LoadUnlockRecords(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, records)

	at := time.Now().UTC()
	saved := []achievement.UnlockRecord{
		{ID: "first-login", Unlocked: true, UnlockedAt: &at},
		{ID: "first-water-log"},
	}
	require.NoError(t, repo.SaveUnlockRecords(ctx, "user-1", saved))

	records, err = repo.LoadUnlockRecords(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Unlocked)

	// Users are isolated.
	other, err := repo.LoadUnlockRecords(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, repo.DeleteUnlockRecords(ctx, "user-1"))
	records, err = repo.LoadUnlockRecords(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUnlockRepository_SaveCopiesInput(t *testing.T) {
	repo := NewUnlockRepository()
	ctx := context.Background()

	saved := []achievement.UnlockRecord{{ID: "first-login"}}
	require.NoError(t, repo.SaveUnlockRecords(ctx, "user-1", saved))

	// Mutating the caller's slice must not leak into storage.
	saved[0].Unlocked = true

	records, err := repo.LoadUnlockRecords(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, records[0].Unlocked)
}

func TestActivityRepository_UsageLogsFilteredAndOrdered(t *testing.T) {
	repo := NewActivityRepository()
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.AddUsageLog(ctx, activity.UsageLog{
		ID: "l2", UserID: "user-1", Kind: activity.KindWater, Date: day.AddDate(0, 0, 2), Amount: 90,
	}))
	require.NoError(t, repo.AddUsageLog(ctx, activity.UsageLog{
		ID: "l1", UserID: "user-1", Kind: activity.KindWater, Date: day, Amount: 120,
	}))
	require.NoError(t, repo.AddUsageLog(ctx, activity.UsageLog{
		ID: "l3", UserID: "user-1", Kind: activity.KindEnergy, Date: day, Amount: 7,
	}))

	water, err := repo.UsageLogs(ctx, "user-1", activity.KindWater)
	require.NoError(t, err)
	require.Len(t, water, 2)
	assert.Equal(t, "l1", water[0].ID)
	assert.Equal(t, "l2", water[1].ID)

	energy, err := repo.UsageLogs(ctx, "user-1", activity.KindEnergy)
	require.NoError(t, err)
	assert.Len(t, energy, 1)

	none, err := repo.UsageLogs(ctx, "user-2", activity.KindWater)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestActivityRepository_TriedTipsOrderAndDedup(t *testing.T) {
	repo := NewActivityRepository()
	ctx := context.Background()

	require.NoError(t, repo.MarkTipTried(ctx, "user-1", "tip-b"))
	require.NoError(t, repo.MarkTipTried(ctx, "user-1", "tip-a"))
	// Re-trying keeps the original position.
	require.NoError(t, repo.MarkTipTried(ctx, "user-1", "tip-b"))

	ids, err := repo.TriedTipIDs(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tip-b", "tip-a"}, ids)
}

func TestActivityRepository_GoalsDefaultUntilSaved(t *testing.T) {
	repo := NewActivityRepository()
	ctx := context.Background()

	goals, saved, err := repo.Goals(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, activity.DefaultGoals(), goals)

	custom := activity.Goals{Water: 100, Energy: 8}
	require.NoError(t, repo.SaveGoals(ctx, "user-1", custom))

	goals, saved, err = repo.Goals(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, custom, goals)
}

func TestActivityRepository_VisitedPages(t *testing.T) {
	repo := NewActivityRepository()
	ctx := context.Background()

	require.NoError(t, repo.MarkPageVisited(ctx, "user-1", "achievements"))
	require.NoError(t, repo.MarkPageVisited(ctx, "user-1", "achievements"))
	require.NoError(t, repo.MarkPageVisited(ctx, "user-1", "tips"))

	pages, err := repo.VisitedPages(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"achievements": true, "tips": true}, pages)
}

func TestAccountRepository_CreateAndLookup(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	user, err := account.NewUser(account.NewUserParams{
		ID: "u-1", Name: "Eco", Email: "Eco@Example.com", Password: "secret123",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, user))

	byID, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "eco@example.com", byID.Email)

	// Lookup is case-insensitive.
	byEmail, err := repo.GetByEmail(ctx, "ECO@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "u-1", byEmail.ID)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
}

func TestAccountRepository_DuplicateEmailRejected(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	first, err := account.NewUser(account.NewUserParams{
		ID: "u-1", Email: "dup@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, err := account.NewUser(account.NewUserParams{
		ID: "u-2", Email: "dup@example.com", Password: "secret456",
	})
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, second), shared.ErrUserAlreadyExists)
}

func TestAccountRepository_Delete(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	user, err := account.NewUser(account.NewUserParams{
		ID: "u-1", Email: "gone@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.Delete(ctx, "u-1"))
	_, err = repo.GetByID(ctx, "u-1")
	assert.ErrorIs(t, err, shared.ErrUserNotFound)

	// The email frees up for re-registration.
	again, err := account.NewUser(account.NewUserParams{
		ID: "u-2", Email: "gone@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NoError(t, repo.Create(ctx, again))

	assert.ErrorIs(t, repo.Delete(ctx, "u-1"), shared.ErrUserNotFound)
}
