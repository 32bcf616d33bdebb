// Package memory provides in-memory repository implementations. They back
// tests and database-less runs; semantics mirror the postgres package.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/domain/account"
	"github.com/mmt697/EcoTracker-Project/internal/domain/achievement"
	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════
// UNLOCK REPOSITORY
// ══════════════════════════════════════════════════════════════════════════

// UnlockRepository is an in-memory achievement.UnlockRepository.
type UnlockRepository struct {
	mu      sync.RWMutex
	records map[string][]achievement.UnlockRecord
}

// NewUnlockRepository creates an empty in-memory unlock repository.
func NewUnlockRepository() *UnlockRepository {
	return &UnlockRepository{
		records: make(map[string][]achievement.UnlockRecord),
	}
}

// LoadUnlockRecords returns the stored records for a user, empty when the
// user was never saved.
func (r *UnlockRepository) LoadUnlockRecords(_ context.Context, userID string) ([]achievement.UnlockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.records[userID]
	out := make([]achievement.UnlockRecord, len(stored))
	copy(out, stored)

	return out, nil
}

// SaveUnlockRecords replaces the user's stored unlock state.
func (r *UnlockRepository) SaveUnlockRecords(_ context.Context, userID string, records []achievement.UnlockRecord) error {
	stored := make([]achievement.UnlockRecord, len(records))
	copy(stored, records)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[userID] = stored

	return nil
}

// DeleteUnlockRecords removes all records for a user.
func (r *UnlockRepository) DeleteUnlockRecords(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, userID)

	return nil
}

// ══════════════════════════════════════════════════════════════════════════
// ACTIVITY REPOSITORY
// ══════════════════════════════════════════════════════════════════════════

type userActivity struct {
	logs      []activity.UsageLog
	triedTips map[string]time.Time
	goals     *activity.Goals
	pages     map[string]bool
}

// ActivityRepository is an in-memory activity.Repository.
type ActivityRepository struct {
	mu    sync.RWMutex
	users map[string]*userActivity
}

// NewActivityRepository creates an empty in-memory activity repository.
func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{
		users: make(map[string]*userActivity),
	}
}

func (r *ActivityRepository) user(userID string) *userActivity {
	ua, ok := r.users[userID]
	if !ok {
		ua = &userActivity{
			triedTips: make(map[string]time.Time),
			pages:     make(map[string]bool),
		}
		r.users[userID] = ua
	}
	return ua
}

// AddUsageLog stores a usage log entry.
func (r *ActivityRepository) AddUsageLog(_ context.Context, log activity.UsageLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ua := r.user(log.UserID)
	ua.logs = append(ua.logs, log)

	return nil
}

// UsageLogs returns the user's logs of the given kind, oldest first.
func (r *ActivityRepository) UsageLogs(_ context.Context, userID string, kind activity.UsageKind) ([]activity.UsageLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ua, ok := r.users[userID]
	if !ok {
		return []activity.UsageLog{}, nil
	}

	logs := make([]activity.UsageLog, 0, len(ua.logs))
	for _, log := range ua.logs {
		if log.Kind == kind {
			logs = append(logs, log)
		}
	}

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Date.Before(logs[j].Date)
	})

	return logs, nil
}

// MarkTipTried records that the user tried a tip.
func (r *ActivityRepository) MarkTipTried(_ context.Context, userID, tipID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ua := r.user(userID)
	if _, ok := ua.triedTips[tipID]; !ok {
		ua.triedTips[tipID] = time.Now()
	}

	return nil
}

// TriedTipIDs returns the ids of tips the user has tried, oldest first.
func (r *ActivityRepository) TriedTipIDs(_ context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ua, ok := r.users[userID]
	if !ok {
		return []string{}, nil
	}

	ids := make([]string, 0, len(ua.triedTips))
	for id := range ua.triedTips {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		return ua.triedTips[ids[i]].Before(ua.triedTips[ids[j]])
	})

	return ids, nil
}

// SaveGoals stores the user's custom daily targets.
func (r *ActivityRepository) SaveGoals(_ context.Context, userID string, goals activity.Goals) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ua := r.user(userID)
	g := goals
	ua.goals = &g

	return nil
}

// Goals returns the user's targets, falling back to defaults.
func (r *ActivityRepository) Goals(_ context.Context, userID string) (activity.Goals, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ua, ok := r.users[userID]
	if !ok || ua.goals == nil {
		return activity.DefaultGoals(), false, nil
	}

	return *ua.goals, true, nil
}

// MarkPageVisited records that the user opened a page.
func (r *ActivityRepository) MarkPageVisited(_ context.Context, userID, page string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.user(userID).pages[page] = true

	return nil
}

// VisitedPages returns a copy of the user's visited page set.
func (r *ActivityRepository) VisitedPages(_ context.Context, userID string) (map[string]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pages := make(map[string]bool)
	if ua, ok := r.users[userID]; ok {
		for p := range ua.pages {
			pages[p] = true
		}
	}

	return pages, nil
}

// ══════════════════════════════════════════════════════════════════════════
// ACCOUNT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════

// AccountRepository is an in-memory account.Repository.
type AccountRepository struct {
	mu      sync.RWMutex
	byID    map[string]*account.User
	byEmail map[string]*account.User
}

// NewAccountRepository creates an empty in-memory account repository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:    make(map[string]*account.User),
		byEmail: make(map[string]*account.User),
	}
}

// Create stores a new user, rejecting duplicate emails.
func (r *AccountRepository) Create(_ context.Context, user *account.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return shared.ErrUserAlreadyExists
	}

	u := *user
	r.byID[u.ID] = &u
	r.byEmail[u.Email] = &u

	return nil
}

// GetByID returns a user by internal id.
func (r *AccountRepository) GetByID(_ context.Context, id string) (*account.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}

	u := *user
	return &u, nil
}

// GetByEmail returns a user by email, case-insensitive.
func (r *AccountRepository) GetByEmail(_ context.Context, email string) (*account.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[account.NormalizeEmail(email)]
	if !ok {
		return nil, shared.ErrUserNotFound
	}

	u := *user
	return &u, nil
}

// Delete removes a user.
func (r *AccountRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return shared.ErrUserNotFound
	}

	delete(r.byEmail, user.Email)
	delete(r.byID, id)

	return nil
}
