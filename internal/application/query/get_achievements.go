package query

import (
	"context"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/domain/achievement"
)

// ══════════════════════════════════════════════════════════════════════════
// GET ACHIEVEMENTS QUERY
// ══════════════════════════════════════════════════════════════════════════

// AchievementView is one catalog entry joined with the user's unlock
// state, shaped for the achievements page.
type AchievementView struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Hint        string               `json:"hint,omitempty"`
	Category    achievement.Category `json:"category"`
	Points      int                  `json:"points"`
	Unlocked    bool                 `json:"unlocked"`
	UnlockedAt  *time.Time           `json:"unlockedAt,omitempty"`
}

// GetAchievementsQuery asks for the full achievement list of a user.
type GetAchievementsQuery struct {
	// UserID is the internal id of the user.
	UserID string

	// Category filters by category when non-empty.
	Category achievement.Category

	// OnlyUnlocked drops locked entries when true.
	OnlyUnlocked bool
}

// GetAchievementsHandler serves the achievement list.
type GetAchievementsHandler struct {
	catalog *achievement.Catalog
	store   *achievement.Store
}

// NewGetAchievementsHandler creates a new GetAchievementsHandler.
func NewGetAchievementsHandler(catalog *achievement.Catalog, store *achievement.Store) *GetAchievementsHandler {
	return &GetAchievementsHandler{
		catalog: catalog,
		store:   store,
	}
}

// Handle returns the achievement views in catalog (ascending priority)
// order. Locked achievements show their hint instead of the description.
func (h *GetAchievementsHandler) Handle(_ context.Context, q GetAchievementsQuery) ([]AchievementView, error) {
	defs := h.catalog.All()
	views := make([]AchievementView, 0, len(defs))

	for _, d := range defs {
		if q.Category != "" && d.Category != q.Category {
			continue
		}

		unlocked := h.store.IsUnlocked(d.ID)
		if q.OnlyUnlocked && !unlocked {
			continue
		}

		view := AchievementView{
			ID:       d.ID,
			Title:    d.Title,
			Category: d.Category,
			Points:   d.Points,
			Unlocked: unlocked,
		}
		if unlocked {
			view.Description = d.Description
			view.UnlockedAt = h.store.UnlockedAt(d.ID)
		} else {
			view.Description = d.Description
			view.Hint = d.Hint
		}

		views = append(views, view)
	}

	return views, nil
}
