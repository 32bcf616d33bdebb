package notification

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/domain/achievement"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════
// COLLABORATOR CONTRACTS
// ══════════════════════════════════════════════════════════════════════════

// IDGenerator produces notification ids.
type IDGenerator interface {
	GenerateID() string
}

// UnlockChecker reports whether an achievement is still unlocked at
// delivery time. The scheduler re-checks right before delivering so a
// state reset between scheduling and firing cannot produce a stale popup.
type UnlockChecker interface {
	IsUnlocked(achievementID string) bool
}

// MarkerClearer releases the evaluation in-flight marker for an
// achievement once its display window has closed.
type MarkerClearer interface {
	ClearInFlight(achievementID string)
}

// ══════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════

const (
	// DefaultStagger separates consecutive deliveries within a batch.
	DefaultStagger = 1500 * time.Millisecond

	// DefaultDisplayDuration is how long a notification stays active
	// before it is cleared and its in-flight marker released.
	DefaultDisplayDuration = 5 * time.Second

	// DefaultSuppressionWindow suppresses repeat deliveries of the same
	// achievement after it was shown.
	DefaultSuppressionWindow = 10 * time.Second
)

// Config holds scheduler timing knobs. Zero values fall back to defaults,
// tests shorten them to keep timing assertions fast.
type Config struct {
	Stagger           time.Duration
	DisplayDuration   time.Duration
	SuppressionWindow time.Duration
}

func (c Config) withDefaults() Config {
	if c.Stagger <= 0 {
		c.Stagger = DefaultStagger
	}
	if c.DisplayDuration <= 0 {
		c.DisplayDuration = DefaultDisplayDuration
	}
	if c.SuppressionWindow <= 0 {
		c.SuppressionWindow = DefaultSuppressionWindow
	}
	return c
}

// ══════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════

// Scheduler delivers unlock announcements with a fixed stagger between
// them and at most one delivery per achievement. All state is in memory:
// active notifications, the recently-shown suppression map, and the
// pending timers. A session reset wipes all of it.
type Scheduler struct {
	mu sync.Mutex

	cfg     Config
	deliver DeliveryFunc
	ids     IDGenerator
	unlocks UnlockChecker
	markers MarkerClearer
	logger  *slog.Logger

	active        map[string]Notification
	recentlyShown map[string]time.Time
	timers        map[*time.Timer]struct{}
	closed        bool

	// generation invalidates deliveries scheduled before the last reset.
	// Timer cancellation alone cannot stop a fire that is already past
	// its timer, and the inline first delivery has no timer at all.
	generation uint64
}

// NewScheduler creates a scheduler. deliver may be nil, in which case
// deliveries are logged and dropped. unlocks and markers may be nil; the
// corresponding re-check and marker release are then skipped.
func NewScheduler(
	cfg Config,
	deliver DeliveryFunc,
	ids IDGenerator,
	unlocks UnlockChecker,
	markers MarkerClearer,
	logger *slog.Logger,
) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cfg:           cfg.withDefaults(),
		deliver:       deliver,
		ids:           ids,
		unlocks:       unlocks,
		markers:       markers,
		logger:        logger,
		active:        make(map[string]Notification),
		recentlyShown: make(map[string]time.Time),
		timers:        make(map[*time.Timer]struct{}),
	}
}

// Announce schedules delivery of every unlock in the batch, preserving
// batch order: the first fires immediately, each following one a stagger
// later. The call itself returns immediately.
//
// A full batch occupies roughly stagger*(n-1) + display duration of wall
// time before the last in-flight marker is released.
func (s *Scheduler) Announce(batch []achievement.Unlocked) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return shared.ErrSchedulerClosed
	}

	gen := s.generation

	for i, u := range batch {
		u := u
		delay := time.Duration(i) * s.cfg.Stagger

		if delay == 0 {
			// First delivery fires inline so a single unlock never
			// waits on a timer tick.
			go s.fire(u, gen)
			continue
		}

		var timer *time.Timer
		timer = time.AfterFunc(delay, func() {
			s.forgetTimer(timer)
			s.fire(u, gen)
		})
		s.timers[timer] = struct{}{}
	}

	return nil
}

// fire performs the delivery of one notification, applying the dedup
// layers in order: still-unlocked, not already active, not recently shown.
// A delivery from a previous generation is dropped silently: the reset
// that bumped the generation already wiped every marker it would manage.
func (s *Scheduler) fire(u achievement.Unlocked, gen uint64) {
	id := u.Definition.ID

	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}

	if s.unlocks != nil && !s.unlocks.IsUnlocked(id) {
		s.mu.Unlock()
		s.skip(id, "no longer unlocked")
		return
	}
	if _, ok := s.active[id]; ok {
		s.mu.Unlock()
		s.skip(id, "already active")
		return
	}
	if shownAt, ok := s.recentlyShown[id]; ok && time.Since(shownAt) < s.cfg.SuppressionWindow {
		s.mu.Unlock()
		s.skip(id, "recently shown")
		return
	}

	now := time.Now()

	var nID NotificationID
	if s.ids != nil {
		nID = NotificationID(s.ids.GenerateID())
	}

	n := Notification{
		ID:            nID,
		AchievementID: id,
		Title:         u.Definition.Title,
		Points:        u.Definition.Points,
		State:         StateDisplayed,
		CreatedAt:     now,
		DeliveredAt:   now,
	}

	s.active[id] = n
	s.recentlyShown[id] = now

	var timer *time.Timer
	timer = time.AfterFunc(s.cfg.DisplayDuration, func() {
		s.forgetTimer(timer)
		s.clear(id)
	})
	s.timers[timer] = struct{}{}

	deliver := s.deliver
	s.mu.Unlock()

	s.logger.Info("notification delivered",
		"achievement_id", id,
		"title", n.Title,
		"points", n.Points,
	)

	if deliver != nil {
		deliver(n)
	}
}

// clear ends a notification's display window: it leaves the active set
// and its evaluation in-flight marker is released.
func (s *Scheduler) clear(achievementID string) {
	s.mu.Lock()
	_, wasActive := s.active[achievementID]
	delete(s.active, achievementID)
	s.mu.Unlock()

	if wasActive && s.markers != nil {
		s.markers.ClearInFlight(achievementID)
	}
}

func (s *Scheduler) skip(achievementID, reason string) {
	s.logger.Debug("notification skipped",
		"achievement_id", achievementID,
		"reason", reason,
	)

	// A skipped delivery still releases its in-flight marker: nothing
	// will display, so nothing will clear it later.
	if s.markers != nil {
		s.markers.ClearInFlight(achievementID)
	}
}

func (s *Scheduler) forgetTimer(t *time.Timer) {
	s.mu.Lock()
	delete(s.timers, t)
	s.mu.Unlock()
}

// ══════════════════════════════════════════════════════════════════════════
// STATE INSPECTION AND TEARDOWN
// ══════════════════════════════════════════════════════════════════════════

// ActiveCount returns how many notifications are currently displayed.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// IsActive reports whether the achievement's notification is on display.
func (s *Scheduler) IsActive(achievementID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[achievementID]
	return ok
}

// WasRecentlyShown reports whether the achievement was delivered within
// the suppression window.
func (s *Scheduler) WasRecentlyShown(achievementID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	shownAt, ok := s.recentlyShown[achievementID]
	return ok && time.Since(shownAt) < s.cfg.SuppressionWindow
}

// PendingCount returns the number of timers yet to fire.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Reset cancels all pending timers and wipes the active and
// recently-shown maps. The scheduler stays usable; a session end calls
// this so the next session starts clean.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Scheduler) resetLocked() {
	for t := range s.timers {
		t.Stop()
	}
	s.timers = make(map[*time.Timer]struct{})
	s.active = make(map[string]Notification)
	s.recentlyShown = make(map[string]time.Time)
	s.generation++
}

// Shutdown resets the scheduler and rejects any further Announce calls.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.closed = true
}
