// Package saga contains complex business processes that orchestrate
// multiple domain operations in a coordinated manner.
package saga

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/domain/achievement"
	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
	"github.com/mmt697/EcoTracker-Project/internal/domain/notification"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
	"github.com/mmt697/EcoTracker-Project/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════
// UNLOCK FLOW SAGA
// Business process: achievement evaluation, unlocking, and announcement.
// Flow: Admit Through Guard → Snapshot Activity → Evaluate Predicates →
//
//	Persist Unlocks → Announce Notifications → Publish Events
//
// The guard admits one pass at a time and enforces the cooldown; a pass
// saves its unlocks before any notification fires, so a crash between the
// two loses only the announcement, never the unlock.
// ══════════════════════════════════════════════════════════════════════════

// FlowResult contains the outcome of one evaluation pass.
type FlowResult struct {
	// UserID - whose achievements were evaluated.
	UserID string

	// Trigger - what caused the pass (e.g. "usage_logged", "sweep").
	Trigger string

	// NewlyUnlocked - achievements that transitioned this pass.
	NewlyUnlocked []achievement.Unlocked

	// Checked - how many locked achievements were evaluated.
	Checked int

	// Failed - number of predicates that errored or panicked this pass.
	Failed int

	// Persisted - whether the unlock records were saved.
	Persisted bool

	// ProcessedAt - when the pass completed.
	ProcessedAt time.Time
}

// HasNewUnlocks returns true if any achievements were unlocked.
func (r *FlowResult) HasNewUnlocks() bool {
	return len(r.NewlyUnlocked) > 0
}

// Config contains tuning for the unlock flow.
type Config struct {
	// Debounce collapses bursts of triggers into one pass.
	Debounce time.Duration
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Debounce: 500 * time.Millisecond,
	}
}

// UnlockFlow orchestrates evaluation for one user session.
type UnlockFlow struct {
	userID string

	store      *achievement.Store
	guard      *achievement.Guard
	engine     *achievement.Engine
	scheduler  *notification.Scheduler
	accessor   activity.Accessor
	unlockRepo achievement.UnlockRepository
	eventBus   shared.EventPublisher
	retrier    *retry.Retrier
	logger     *slog.Logger

	debounce time.Duration

	mu            sync.Mutex
	debounceTimer *time.Timer
}

// NewUnlockFlow creates the saga. unlockRepo and eventBus may be nil; the
// corresponding steps then degrade to no-ops.
func NewUnlockFlow(
	userID string,
	store *achievement.Store,
	guard *achievement.Guard,
	engine *achievement.Engine,
	scheduler *notification.Scheduler,
	accessor activity.Accessor,
	unlockRepo achievement.UnlockRepository,
	eventBus shared.EventPublisher,
	config Config,
	logger *slog.Logger,
) *UnlockFlow {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultConfig().Debounce
	}

	return &UnlockFlow{
		userID:     userID,
		store:      store,
		guard:      guard,
		engine:     engine,
		scheduler:  scheduler,
		accessor:   accessor,
		unlockRepo: unlockRepo,
		eventBus:   eventBus,
		retrier:    retry.DatabaseRetrier(),
		logger:     logger,
		debounce:   config.Debounce,
	}
}

// Restore loads the persisted unlock state into the store. Call once at
// session start, before any trigger.
func (f *UnlockFlow) Restore(ctx context.Context) error {
	if f.unlockRepo == nil {
		return nil
	}
	return f.store.Load(ctx, f.unlockRepo, f.userID)
}

// ──────────────────────────────────────────────────────────────────────────
// Evaluation pass
// ──────────────────────────────────────────────────────────────────────────

// Execute runs one evaluation pass immediately. It is rejected with
// shared.ErrEvaluationRunning or shared.ErrCooldownActive when the guard
// refuses admission.
func (f *UnlockFlow) Execute(ctx context.Context, trigger string) (*FlowResult, error) {
	// Step 1: admit through the guard.
	if err := f.guard.Begin(); err != nil {
		f.logger.Debug("evaluation rejected",
			"user_id", f.userID,
			"trigger", trigger,
			"reason", err,
		)
		if f.eventBus != nil {
			event := shared.NewEvaluationRejectedEvent(f.userID, trigger, err.Error())
			if pubErr := f.eventBus.Publish(event); pubErr != nil {
				f.logger.Warn("failed to publish rejection event", "error", pubErr)
			}
		}
		return nil, err
	}
	defer f.guard.End()

	result := &FlowResult{
		UserID:  f.userID,
		Trigger: trigger,
	}

	// Step 2: one consistent snapshot for the whole pass.
	snap := activity.TakeSnapshot(ctx, f.accessor)

	// Step 3: evaluate every locked predicate.
	evalResult := f.engine.Evaluate(snap)
	result.NewlyUnlocked = evalResult.NewlyUnlocked
	result.Checked = evalResult.Checked
	result.Failed = evalResult.Failed

	// Steps 4-6 only run when something unlocked.
	if len(evalResult.NewlyUnlocked) > 0 {
		result.Persisted = f.stepPersist(ctx)
		f.stepAnnounce(evalResult.NewlyUnlocked)
		f.stepPublishUnlocks(evalResult.NewlyUnlocked)
	}

	f.stepPublishCompleted(result)

	result.ProcessedAt = time.Now().UTC()
	return result, nil
}

// stepPersist saves the unlock records, retrying transient failures.
// Persistence is best-effort: a failed save is logged and the pass
// continues, unlocks survive in memory until the next save.
func (f *UnlockFlow) stepPersist(ctx context.Context) bool {
	if f.unlockRepo == nil {
		return false
	}

	err := f.retrier.Do(ctx, func(ctx context.Context) error {
		return f.store.Save(ctx, f.unlockRepo, f.userID)
	})
	if err != nil {
		f.logger.Warn("failed to persist unlock records",
			"user_id", f.userID,
			"error", err,
		)
		return false
	}

	return true
}

// stepAnnounce hands the batch to the notification scheduler. Markers for
// the batch stay in flight until each display window closes.
func (f *UnlockFlow) stepAnnounce(batch []achievement.Unlocked) {
	if f.scheduler == nil {
		// Nothing will display, so release the markers now.
		for _, u := range batch {
			f.guard.ClearInFlight(u.Definition.ID)
		}
		return
	}

	if err := f.scheduler.Announce(batch); err != nil {
		f.logger.Warn("failed to announce unlocks", "error", err)
		for _, u := range batch {
			f.guard.ClearInFlight(u.Definition.ID)
		}
	}
}

// stepPublishUnlocks publishes one domain event per unlock.
func (f *UnlockFlow) stepPublishUnlocks(batch []achievement.Unlocked) {
	if f.eventBus == nil {
		return
	}

	for _, u := range batch {
		event := shared.NewAchievementUnlockedEvent(
			f.userID,
			u.Definition.ID,
			u.Definition.Title,
			string(u.Definition.Category),
			u.Definition.Points,
			u.UnlockedAt,
		)
		if err := f.eventBus.Publish(event); err != nil {
			f.logger.Warn("failed to publish unlock event",
				"achievement_id", u.Definition.ID,
				"error", err,
			)
		}
	}
}

// stepPublishCompleted publishes the pass summary event.
func (f *UnlockFlow) stepPublishCompleted(result *FlowResult) {
	if f.eventBus == nil {
		return
	}

	event := shared.NewEvaluationCompletedEvent(
		f.userID,
		len(result.NewlyUnlocked),
		result.Checked,
		result.Failed,
	)
	if err := f.eventBus.Publish(event); err != nil {
		f.logger.Warn("failed to publish evaluation event", "error", err)
	}
}

// ──────────────────────────────────────────────────────────────────────────
// Debounced triggering
// ──────────────────────────────────────────────────────────────────────────

// Trigger requests an evaluation pass after the debounce interval. A
// burst of triggers within the interval collapses into one pass; the
// timer restarts on every call.
func (f *UnlockFlow) Trigger(trigger string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.debounceTimer != nil {
		f.debounceTimer.Stop()
	}

	f.debounceTimer = time.AfterFunc(f.debounce, func() {
		// Guard rejections here are expected under bursts; the
		// cooldown keeps the evaluation rate bounded.
		if _, err := f.Execute(context.Background(), trigger); err != nil {
			f.logger.Debug("debounced evaluation not admitted",
				"trigger", trigger,
				"reason", err,
			)
		}
	})
}

// Statistics returns the current achievement statistics view.
func (f *UnlockFlow) Statistics() achievement.Statistics {
	return f.store.Statistics()
}

// Store exposes the underlying unlock store for read paths.
func (f *UnlockFlow) Store() *achievement.Store {
	return f.store
}

// EndSession wipes the ephemeral evaluation state: pending debounce,
// scheduled notifications, active markers, guard state. Persisted unlock
// records are untouched.
func (f *UnlockFlow) EndSession() {
	f.mu.Lock()
	if f.debounceTimer != nil {
		f.debounceTimer.Stop()
		f.debounceTimer = nil
	}
	f.mu.Unlock()

	if f.scheduler != nil {
		f.scheduler.Reset()
	}
	f.guard.Reset()

	if f.eventBus != nil {
		if err := f.eventBus.Publish(shared.NewSessionEndedEvent(f.userID)); err != nil {
			f.logger.Warn("failed to publish session end event", "error", err)
		}
	}

	f.logger.Info("session ended", "user_id", f.userID)
}
