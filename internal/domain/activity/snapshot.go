package activity

import (
	"context"
	"time"

	"github.com/mmt697/EcoTracker-Project/pkg/timeutil"
)

// Accessor provides read-only access to a user's accumulated activity.
// The achievement engine consumes this interface; implementations live in
// the infrastructure layer. All methods are pure reads.
type Accessor interface {
	// UsageLogs returns the ordered usage logs for the given kind.
	UsageLogs(ctx context.Context, kind UsageKind) ([]UsageLog, error)

	// TriedTipIDs returns the ids of tips the user has marked as tried.
	TriedTipIDs(ctx context.Context) ([]string, error)

	// Goal returns the daily target for the given kind.
	Goal(ctx context.Context, kind UsageKind) (float64, error)

	// TipCategory resolves a tip id to its category. The second return
	// value is false when the tip is unknown.
	TipCategory(ctx context.Context, tipID string) (string, bool, error)

	// Flags returns the activity-derived boolean flags.
	Flags(ctx context.Context) (Flags, error)
}

// Snapshot is the consistent view of a user's activity taken once per
// evaluation pass. Predicates read only from the snapshot, never from the
// accessor, so every rule in one pass sees identical data.
type Snapshot struct {
	// TakenAt - when the snapshot was materialized.
	TakenAt time.Time

	// WaterLogs and EnergyLogs - the user's usage history.
	WaterLogs  []UsageLog
	EnergyLogs []UsageLog

	// TriedTipIDs - tips marked as tried, in the order they were tried.
	TriedTipIDs []string

	// TipCategories - category per tried tip id. Unknown tips are absent.
	TipCategories map[string]string

	// WaterGoal and EnergyGoal - daily targets in effect for this pass.
	WaterGoal  float64
	EnergyGoal float64

	// Flags - activity-derived booleans.
	Flags Flags
}

// TakeSnapshot materializes one consistent view of the accessor.
// A nil accessor, or any read that fails, degrades to "no activity of that
// kind" rather than aborting the pass: predicates must see absence, not
// errors, when a collaborator is missing.
func TakeSnapshot(ctx context.Context, acc Accessor) *Snapshot {
	goals := DefaultGoals()
	snap := &Snapshot{
		TakenAt:       time.Now().UTC(),
		TipCategories: make(map[string]string),
		WaterGoal:     goals.Water,
		EnergyGoal:    goals.Energy,
	}

	if acc == nil {
		return snap
	}

	if logs, err := acc.UsageLogs(ctx, KindWater); err == nil {
		snap.WaterLogs = logs
	}
	if logs, err := acc.UsageLogs(ctx, KindEnergy); err == nil {
		snap.EnergyLogs = logs
	}
	if tips, err := acc.TriedTipIDs(ctx); err == nil {
		snap.TriedTipIDs = tips
	}
	if goal, err := acc.Goal(ctx, KindWater); err == nil {
		snap.WaterGoal = goal
	}
	if goal, err := acc.Goal(ctx, KindEnergy); err == nil {
		snap.EnergyGoal = goal
	}
	if flags, err := acc.Flags(ctx); err == nil {
		snap.Flags = flags
	}

	for _, tipID := range snap.TriedTipIDs {
		category, ok, err := acc.TipCategory(ctx, tipID)
		if err != nil || !ok {
			continue
		}
		snap.TipCategories[tipID] = category
	}

	return snap
}

// Logs returns the usage logs for the given kind.
func (s *Snapshot) Logs(kind UsageKind) []UsageLog {
	if kind == KindEnergy {
		return s.EnergyLogs
	}
	return s.WaterLogs
}

// Goal returns the daily target for the given kind.
func (s *Snapshot) Goal(kind UsageKind) float64 {
	if kind == KindEnergy {
		return s.EnergyGoal
	}
	return s.WaterGoal
}

// LogDates returns the timestamps of all logs of the given kind.
func (s *Snapshot) LogDates(kind UsageKind) []time.Time {
	logs := s.Logs(kind)
	dates := make([]time.Time, 0, len(logs))
	for _, l := range logs {
		dates = append(dates, l.Date)
	}
	return dates
}

// AllLogDates returns the timestamps of all logs of both kinds.
func (s *Snapshot) AllLogDates() []time.Time {
	dates := make([]time.Time, 0, len(s.WaterLogs)+len(s.EnergyLogs))
	for _, l := range s.WaterLogs {
		dates = append(dates, l.Date)
	}
	for _, l := range s.EnergyLogs {
		dates = append(dates, l.Date)
	}
	return dates
}

// DailyTotals aggregates usage of the given kind per UTC calendar day,
// keyed by timeutil.DayKey.
func (s *Snapshot) DailyTotals(kind UsageKind) map[string]float64 {
	totals := make(map[string]float64)
	for _, l := range s.Logs(kind) {
		totals[timeutil.DayKey(l.Date)] += l.Amount
	}
	return totals
}

// TriedCategories returns the distinct categories of tried tips.
func (s *Snapshot) TriedCategories() map[string]bool {
	categories := make(map[string]bool, len(s.TipCategories))
	for _, c := range s.TipCategories {
		categories[c] = true
	}
	return categories
}
