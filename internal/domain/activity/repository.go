package activity

import (
	"context"
)

// Repository defines persistence for usage logs, tried tips, goals, and
// page-visit flags. Implementations live in the infrastructure layer.
type Repository interface {
	// AddUsageLog stores a usage log entry.
	AddUsageLog(ctx context.Context, log UsageLog) error

	// UsageLogs returns a user's logs of the given kind, ordered by date.
	UsageLogs(ctx context.Context, userID string, kind UsageKind) ([]UsageLog, error)

	// MarkTipTried records that the user tried a tip. Marking the same tip
	// twice is not an error; the set semantics absorb it.
	MarkTipTried(ctx context.Context, userID, tipID string) error

	// TriedTipIDs returns the ids of tips the user has tried.
	TriedTipIDs(ctx context.Context, userID string) ([]string, error)

	// SaveGoals stores the user's custom daily targets.
	SaveGoals(ctx context.Context, userID string, goals Goals) error

	// Goals returns the user's targets. The second return value is false
	// when the user has never saved custom settings.
	Goals(ctx context.Context, userID string) (Goals, bool, error)

	// MarkPageVisited records that the user opened the given page.
	MarkPageVisited(ctx context.Context, userID, page string) error

	// VisitedPages returns the pages the user has opened.
	VisitedPages(ctx context.Context, userID string) (map[string]bool, error)
}
