package achievement

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
)

// Engine applies the catalog's predicates to an activity snapshot and
// produces the set of achievements transitioning Locked→Unlocked this pass.
//
// The engine itself is stateless between passes; the Store carries unlock
// state and the Guard carries the ephemeral markers. One predicate failing
// never aborts the rest of the pass.
type Engine struct {
	catalog *Catalog
	store   *Store
	guard   *Guard
	logger  *slog.Logger
}

// Result is the outcome of one evaluation pass.
type Result struct {
	// NewlyUnlocked - achievements unlocked this pass, ascending by
	// (priority, catalog order).
	NewlyUnlocked []Unlocked

	// Checked - number of predicates actually invoked.
	Checked int

	// Failed - number of predicates that returned an error or panicked.
	Failed int
}

// AnyNewlyUnlocked reports whether the pass unlocked anything.
func (r Result) AnyNewlyUnlocked() bool {
	return len(r.NewlyUnlocked) > 0
}

// NewEngine creates an evaluation engine.
func NewEngine(catalog *Catalog, store *Store, guard *Guard, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		catalog: catalog,
		store:   store,
		guard:   guard,
		logger:  logger,
	}
}

// Evaluate runs every still-locked predicate against the snapshot.
//
// For each achievement, in ascending (priority, catalog order):
//   - unlocked or in-flight ids are skipped;
//   - a predicate error or panic leaves the achievement locked with no
//     marker, so it is retried next pass;
//   - a true predicate sets the in-flight marker, commits the unlock with
//     a set-once timestamp, and appends to the result.
//
// With an unchanged snapshot a second call returns an empty result.
func (e *Engine) Evaluate(snap *activity.Snapshot) Result {
	var result Result
	now := time.Now().UTC()

	for _, def := range e.catalog.All() {
		if e.store.IsUnlocked(def.ID) || e.guard.IsInFlight(def.ID) {
			continue
		}

		result.Checked++
		satisfied, err := e.checkPredicate(def, snap)
		if err != nil {
			result.Failed++
			e.logger.Warn("predicate failed, achievement stays locked",
				"achievement_id", def.ID, "error", err)
			continue
		}
		if !satisfied {
			continue
		}

		// Marker first: from here on, overlapping passes must not touch
		// this id until its notification window closes.
		e.guard.MarkInFlight(def.ID)

		if err := e.store.Unlock(def.ID, now); err != nil {
			e.guard.ClearInFlight(def.ID)
			e.logger.Warn("unlock rejected", "achievement_id", def.ID, "error", err)
			continue
		}

		result.NewlyUnlocked = append(result.NewlyUnlocked, Unlocked{
			Definition: def,
			UnlockedAt: now,
		})

		e.logger.Info("achievement unlocked",
			"achievement_id", def.ID,
			"title", def.Title,
			"points", def.Points,
			"priority", def.Priority)
	}

	return result
}

// checkPredicate invokes a predicate, converting panics into errors so a
// single broken rule cannot take down the pass.
func (e *Engine) checkPredicate(def Definition, snap *activity.Snapshot) (satisfied bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			satisfied = false
			err = fmt.Errorf("predicate panicked: %v", r)
		}
	}()

	return def.Predicate(snap)
}
