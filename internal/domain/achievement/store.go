package achievement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

// Store holds the in-memory unlock state for one user and syncs it with an
// UnlockRepository. The rule definitions stay in the immutable Catalog; the
// store keeps only the mutable unlock fields, joined by achievement id.
//
// Unlock flags are monotonic: false→true only. Nothing in the engine resets
// them; only Reset (account wipe) does.
type Store struct {
	mu      sync.RWMutex
	catalog *Catalog
	records map[string]UnlockRecord
}

// Statistics is the derived summary of the current unlock state.
type Statistics struct {
	// Total - number of achievements in the catalog.
	Total int `json:"total"`

	// Unlocked - number of unlocked achievements.
	Unlocked int `json:"unlocked"`

	// Points - sum of points of unlocked achievements.
	Points int `json:"points"`

	// MaxPoints - sum of points of the whole catalog.
	MaxPoints int `json:"maxPoints"`

	// ByCategory - unlocked count per category.
	ByCategory map[Category]int `json:"byCategory"`

	// Next - the lowest-priority locked achievement, nil when everything
	// is unlocked.
	Next *Definition `json:"-"`
}

// NewStore creates a store with every achievement locked.
func NewStore(catalog *Catalog) *Store {
	s := &Store{catalog: catalog}
	s.resetLocked()
	return s
}

func (s *Store) resetLocked() {
	records := make(map[string]UnlockRecord, s.catalog.Len())
	for _, d := range s.catalog.All() {
		records[d.ID] = UnlockRecord{ID: d.ID}
	}
	s.records = records
}

// Load hydrates unlock state from the repository. Achievements absent from
// storage stay locked; records for unknown ids or with inconsistent fields
// are skipped rather than failing the load. A repository error leaves the
// in-memory state untouched and is returned for logging.
func (s *Store) Load(ctx context.Context, repo UnlockRepository, userID string) error {
	if repo == nil {
		return nil
	}

	stored, err := repo.LoadUnlockRecords(ctx, userID)
	if err != nil {
		return shared.WrapError("achievement", "Load", shared.ErrPersistence, "failed to load unlock records", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	for _, r := range stored {
		if _, known := s.catalog.ByID(r.ID); !known {
			continue
		}
		if r.Unlocked && r.UnlockedAt == nil {
			// Malformed: unlocked without a timestamp. Keep the unlock
			// (monotonicity wins) and backfill the load time.
			now := time.Now().UTC()
			r.UnlockedAt = &now
		}
		if !r.Unlocked {
			continue
		}
		s.records[r.ID] = r
	}

	return nil
}

// Save persists the full unlock state synchronously. Callers invoke it
// immediately after an evaluation pass that unlocked anything, before
// notifications are scheduled: the unlock is the durable fact, the
// notification is best-effort.
func (s *Store) Save(ctx context.Context, repo UnlockRepository, userID string) error {
	if repo == nil {
		return nil
	}

	records := s.Records()
	if err := repo.SaveUnlockRecords(ctx, userID, records); err != nil {
		return shared.WrapError("achievement", "Save", shared.ErrPersistence, "failed to save unlock records", err)
	}
	return nil
}

// Records returns the full unlock state in catalog order.
func (s *Store) Records() []UnlockRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]UnlockRecord, 0, s.catalog.Len())
	for _, d := range s.catalog.All() {
		records = append(records, s.records[d.ID])
	}
	return records
}

// IsUnlocked reports whether the achievement is unlocked.
func (s *Store) IsUnlocked(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id].Unlocked
}

// UnlockedAt returns the unlock timestamp, nil while locked.
func (s *Store) UnlockedAt(id string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id].UnlockedAt
}

// Unlock commits a Locked→Unlocked transition. The timestamp is set exactly
// once; unlocking an already-unlocked achievement is rejected so the caller
// cannot double-report a transition.
func (s *Store) Unlock(id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, known := s.records[id]
	if !known {
		return shared.ErrAchievementNotFound
	}
	if r.Unlocked {
		return shared.ErrAchievementAlreadyUnlocked
	}

	at = at.UTC()
	r.Unlocked = true
	r.UnlockedAt = &at
	s.records[id] = r
	return nil
}

// Statistics derives the unlock summary from the current state.
func (s *Store) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Statistics{
		Total:      s.catalog.Len(),
		MaxPoints:  s.catalog.MaxPoints(),
		ByCategory: make(map[Category]int),
	}
	for _, c := range Categories() {
		stats.ByCategory[c] = 0
	}

	// Catalog order is ascending priority, so the first locked entry is
	// the "next" achievement.
	for _, d := range s.catalog.All() {
		r := s.records[d.ID]
		if r.Unlocked {
			stats.Unlocked++
			stats.Points += d.Points
			stats.ByCategory[d.Category]++
			continue
		}
		if stats.Next == nil {
			def := d
			stats.Next = &def
		}
	}

	return stats
}

// Reset relocks every achievement. This is the explicit data-wipe path
// (account deletion); the engine never calls it.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// String implements fmt.Stringer for debug logging.
func (s *Store) String() string {
	stats := s.Statistics()
	return fmt.Sprintf("achievements %d/%d (%d pts)", stats.Unlocked, stats.Total, stats.Points)
}
