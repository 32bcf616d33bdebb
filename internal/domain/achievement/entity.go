// Package achievement contains the achievement rule engine: the immutable
// catalog of unlock conditions, the evaluation engine that detects
// Locked→Unlocked transitions, the reentrancy guard that keeps overlapping
// trigger bursts from double-unlocking, and the unlock state store.
package achievement

import (
	"sort"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

// Category groups achievements for display and statistics.
type Category string

const (
	CategoryWater   Category = "water"
	CategoryEnergy  Category = "energy"
	CategoryTips    Category = "tips"
	CategoryStreak  Category = "streak"
	CategorySpecial Category = "special"
)

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{CategoryWater, CategoryEnergy, CategoryTips, CategoryStreak, CategorySpecial}
}

// Predicate is a pure function deciding whether an achievement's condition
// holds for the given activity snapshot. Predicates must not mutate shared
// state. A non-nil error means the condition could not be evaluated this
// pass; the achievement stays locked and is retried on the next pass.
type Predicate func(snap *activity.Snapshot) (bool, error)

// Definition is a single immutable achievement rule.
type Definition struct {
	// ID - unique stable key, e.g. "first-water-log".
	ID string

	// Title, Description, Hint - display text, opaque to the engine.
	Title       string
	Description string
	Hint        string

	// Category - display/statistics grouping.
	Category Category

	// Points - non-negative reward weight.
	Points int

	// Priority - ordering key. Lower priorities are evaluated and
	// announced first; ties fall back to catalog declaration order.
	Priority int

	// Predicate - the unlock condition.
	Predicate Predicate
}

// Unlocked is one Locked→Unlocked transition produced by an evaluation pass.
type Unlocked struct {
	Definition Definition
	UnlockedAt time.Time
}

// UnlockRecord is the persisted per-achievement unlock state.
type UnlockRecord struct {
	ID         string     `json:"id"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt"` // nil iff Unlocked is false
}

// Catalog is the ordered, read-only collection of achievement definitions.
// It is loaded once at process start and never mutated afterwards.
type Catalog struct {
	ordered []Definition // ascending (priority, declaration order)
	byID    map[string]Definition
}

// NewCatalog validates the definitions and builds a catalog. The evaluation
// order is fixed here: ascending priority, then declaration order.
func NewCatalog(defs []Definition) (*Catalog, error) {
	byID := make(map[string]Definition, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return nil, shared.NewDomainError("achievement", "NewCatalog", shared.ErrInvalidID, "achievement id is required")
		}
		if _, exists := byID[d.ID]; exists {
			return nil, shared.ErrDuplicateAchievementID
		}
		if d.Predicate == nil {
			return nil, shared.ErrNilPredicate
		}
		if d.Points < 0 {
			return nil, shared.NewDomainError("achievement", "NewCatalog", shared.ErrNegativeValue, "points cannot be negative: "+d.ID)
		}
		byID[d.ID] = d
	}

	ordered := make([]Definition, len(defs))
	copy(ordered, defs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	return &Catalog{ordered: ordered, byID: byID}, nil
}

// All returns the definitions in evaluation order.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// ByID looks up a definition by id.
func (c *Catalog) ByID(id string) (Definition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.ordered)
}

// MaxPoints returns the sum of all points in the catalog.
func (c *Catalog) MaxPoints() int {
	total := 0
	for _, d := range c.ordered {
		total += d.Points
	}
	return total
}
