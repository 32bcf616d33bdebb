package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════
// SAVE SETTINGS COMMAND
// Stores the user's custom daily goals. Saving settings at least once is
// itself achievement-relevant activity.
// ══════════════════════════════════════════════════════════════════════════

// SaveSettingsCommand contains the goals to save.
type SaveSettingsCommand struct {
	// UserID is the internal id of the user.
	UserID string

	// WaterGoal is the daily water target in liters.
	WaterGoal float64

	// EnergyGoal is the daily energy target in kWh.
	EnergyGoal float64
}

// Validate validates the command.
func (c SaveSettingsCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("save_settings: user_id is required")
	}
	if c.WaterGoal <= 0 || c.EnergyGoal <= 0 {
		return shared.ErrInvalidGoal
	}
	return nil
}

// SaveSettingsResult contains the result of saving settings.
type SaveSettingsResult struct {
	// Goals are the targets now in effect.
	Goals activity.Goals

	// SavedAt is when the settings were stored.
	SavedAt time.Time
}

// SaveSettingsHandler handles SaveSettingsCommand.
type SaveSettingsHandler struct {
	repo     activity.Repository
	eventBus shared.EventPublisher
}

// NewSaveSettingsHandler creates a new SaveSettingsHandler.
func NewSaveSettingsHandler(repo activity.Repository, eventBus shared.EventPublisher) *SaveSettingsHandler {
	return &SaveSettingsHandler{
		repo:     repo,
		eventBus: eventBus,
	}
}

// Handle validates, persists, and publishes the settings change.
func (h *SaveSettingsHandler) Handle(ctx context.Context, cmd SaveSettingsCommand) (*SaveSettingsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	goals := activity.Goals{
		Water:  cmd.WaterGoal,
		Energy: cmd.EnergyGoal,
	}
	if err := goals.Validate(); err != nil {
		return nil, err
	}

	if err := h.repo.SaveGoals(ctx, cmd.UserID, goals); err != nil {
		return nil, shared.WrapError("activity", "SaveSettings", shared.ErrPersistence, "failed to save goals", err)
	}

	if h.eventBus != nil {
		event := shared.NewSettingsSavedEvent(cmd.UserID, goals.Water, goals.Energy)
		if err := h.eventBus.Publish(event); err != nil {
			slog.Warn("failed to publish settings event", "user_id", cmd.UserID, "error", err)
		}
	}

	return &SaveSettingsResult{
		Goals:   goals,
		SavedAt: time.Now().UTC(),
	}, nil
}
