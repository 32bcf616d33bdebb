// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

// IDGenerator produces unique identifiers for new entities.
type IDGenerator interface {
	GenerateID() string
}

// ══════════════════════════════════════════════════════════════════════════
// LOG USAGE COMMAND
// Records a water or energy usage entry. Every accepted entry publishes an
// event that the achievement pipeline listens for.
// ══════════════════════════════════════════════════════════════════════════

// LogUsageCommand contains the data to record a usage entry.
type LogUsageCommand struct {
	// UserID is the internal id of the user.
	UserID string

	// Kind is the usage kind ("water" or "energy").
	Kind activity.UsageKind

	// Amount is the consumed quantity (liters or kWh).
	Amount float64

	// Date is the day the usage belongs to (defaults to now if zero).
	Date time.Time
}

// Validate validates the command.
func (c LogUsageCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("log_usage: user_id is required")
	}
	if !c.Kind.Valid() {
		return shared.ErrInvalidUsageKind
	}
	if c.Amount < 0 {
		return shared.ErrInvalidUsageAmount
	}
	return nil
}

// LogUsageResult contains the result of recording a usage entry.
type LogUsageResult struct {
	// LogID is the id assigned to the new entry.
	LogID string

	// RecordedAt is when the entry was stored.
	RecordedAt time.Time
}

// LogUsageHandler handles LogUsageCommand.
type LogUsageHandler struct {
	repo     activity.Repository
	ids      IDGenerator
	eventBus shared.EventPublisher
}

// NewLogUsageHandler creates a new LogUsageHandler.
func NewLogUsageHandler(repo activity.Repository, ids IDGenerator, eventBus shared.EventPublisher) *LogUsageHandler {
	return &LogUsageHandler{
		repo:     repo,
		ids:      ids,
		eventBus: eventBus,
	}
}

// Handle validates, persists, and publishes the usage entry.
func (h *LogUsageHandler) Handle(ctx context.Context, cmd LogUsageCommand) (*LogUsageResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	date := cmd.Date
	if date.IsZero() {
		date = now
	}

	log := activity.UsageLog{
		ID:        h.ids.GenerateID(),
		UserID:    cmd.UserID,
		Kind:      cmd.Kind,
		Date:      date,
		Amount:    cmd.Amount,
		CreatedAt: now,
	}
	if err := log.Validate(); err != nil {
		return nil, err
	}

	if err := h.repo.AddUsageLog(ctx, log); err != nil {
		return nil, shared.WrapError("activity", "LogUsage", shared.ErrPersistence, "failed to store usage log", err)
	}

	if h.eventBus != nil {
		event := shared.NewUsageLoggedEvent(cmd.UserID, string(cmd.Kind), cmd.Amount, date)
		if err := h.eventBus.Publish(event); err != nil {
			slog.Warn("failed to publish usage event", "user_id", cmd.UserID, "error", err)
		}
	}

	return &LogUsageResult{
		LogID:      log.ID,
		RecordedAt: now,
	}, nil
}
