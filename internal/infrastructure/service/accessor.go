// Package service contains infrastructure-side adapters: the activity
// accessor consumed by the evaluation engine and the uuid generator.
package service

import (
	"context"

	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
	"github.com/mmt697/EcoTracker-Project/internal/domain/tips"
)

// AuthState reports whether the current session is authenticated. The
// application session implements it; a nil AuthState means anonymous.
type AuthState interface {
	Authenticated() bool
}

// ══════════════════════════════════════════════════════════════════════════
// ACTIVITY ACCESSOR
// ══════════════════════════════════════════════════════════════════════════

// ActivityAccessor implements activity.Accessor for one user by combining
// the activity repository, the tips catalog, and the session auth state.
type ActivityAccessor struct {
	userID string
	repo   activity.Repository
	tips   *tips.Catalog
	auth   AuthState
}

// NewActivityAccessor creates an accessor bound to the given user.
func NewActivityAccessor(userID string, repo activity.Repository, catalog *tips.Catalog, auth AuthState) *ActivityAccessor {
	return &ActivityAccessor{
		userID: userID,
		repo:   repo,
		tips:   catalog,
		auth:   auth,
	}
}

// UsageLogs returns the user's ordered usage logs for the given kind.
func (a *ActivityAccessor) UsageLogs(ctx context.Context, kind activity.UsageKind) ([]activity.UsageLog, error) {
	return a.repo.UsageLogs(ctx, a.userID, kind)
}

// TriedTipIDs returns the ids of tips the user has tried.
func (a *ActivityAccessor) TriedTipIDs(ctx context.Context) ([]string, error) {
	return a.repo.TriedTipIDs(ctx, a.userID)
}

// Goal returns the user's daily target for the given kind.
func (a *ActivityAccessor) Goal(ctx context.Context, kind activity.UsageKind) (float64, error) {
	goals, _, err := a.repo.Goals(ctx, a.userID)
	if err != nil {
		return 0, err
	}
	return goals.Goal(kind), nil
}

// TipCategory resolves a tip id to its category via the tips catalog.
func (a *ActivityAccessor) TipCategory(_ context.Context, tipID string) (string, bool, error) {
	if a.tips == nil {
		return "", false, nil
	}

	tip, ok := a.tips.ByID(tipID)
	if !ok {
		return "", false, nil
	}

	return string(tip.Category), true, nil
}

// Flags returns the activity-derived boolean flags for the user.
func (a *ActivityAccessor) Flags(ctx context.Context) (activity.Flags, error) {
	flags := activity.Flags{}

	if a.auth != nil {
		flags.Authenticated = a.auth.Authenticated()
	}

	_, saved, err := a.repo.Goals(ctx, a.userID)
	if err != nil {
		return flags, err
	}
	flags.SettingsSaved = saved

	pages, err := a.repo.VisitedPages(ctx, a.userID)
	if err != nil {
		return flags, err
	}
	flags.VisitedPages = pages

	return flags, nil
}
