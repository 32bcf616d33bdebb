// Package activity contains the usage-tracking domain: water and energy
// logs, daily goals, tried tips, and the activity snapshot consumed by the
// achievement engine.
package activity

import (
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

// UsageKind identifies which resource a usage log tracks.
type UsageKind string

const (
	// KindWater - water usage in litres.
	KindWater UsageKind = "water"

	// KindEnergy - energy usage in kilowatt-hours.
	KindEnergy UsageKind = "energy"
)

// Valid reports whether the kind is a known usage kind.
func (k UsageKind) Valid() bool {
	return k == KindWater || k == KindEnergy
}

// UsageLog is a single recorded usage entry.
type UsageLog struct {
	// ID - unique identifier of the log entry.
	ID string

	// UserID - owner of the log.
	UserID string

	// Kind - water or energy.
	Kind UsageKind

	// Date - when the usage occurred (not when it was recorded).
	Date time.Time

	// Amount - litres for water, kWh for energy. Never negative.
	Amount float64

	// CreatedAt - when the entry was recorded.
	CreatedAt time.Time
}

// Validate checks the log entry invariants.
func (l UsageLog) Validate() error {
	if !l.Kind.Valid() {
		return shared.ErrInvalidUsageKind
	}
	if l.Amount < 0 {
		return shared.ErrInvalidUsageAmount
	}
	if l.UserID == "" {
		return shared.NewDomainError("activity", "Validate", shared.ErrEmptyValue, "user id is required")
	}
	return nil
}

// Goals holds the user's daily consumption targets.
type Goals struct {
	// Water - litres per day.
	Water float64

	// Energy - kWh per day.
	Energy float64
}

// DefaultGoals returns the targets used before the user customizes settings.
func DefaultGoals() Goals {
	return Goals{Water: 150, Energy: 10}
}

// Goal returns the target for the given kind.
func (g Goals) Goal(kind UsageKind) float64 {
	if kind == KindEnergy {
		return g.Energy
	}
	return g.Water
}

// Validate checks that targets are non-negative.
func (g Goals) Validate() error {
	if g.Water < 0 || g.Energy < 0 {
		return shared.ErrInvalidGoal
	}
	return nil
}

// Flags are activity-derived booleans consumed by achievement predicates.
type Flags struct {
	// Authenticated - the user has an authenticated session.
	Authenticated bool

	// SettingsSaved - the user has saved custom settings at least once.
	SettingsSaved bool

	// VisitedPages - pages the user has opened, keyed by page name.
	VisitedPages map[string]bool
}

// Visited reports whether the user has opened the given page.
func (f Flags) Visited(page string) bool {
	return f.VisitedPages[page]
}

// Tracked page names.
const (
	PageHistory      = "history"
	PageAchievements = "achievements"
	PageTips         = "tips"
)
