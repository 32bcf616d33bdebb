package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
	"github.com/mmt697/EcoTracker-Project/internal/domain/tips"
)

// ══════════════════════════════════════════════════════════════════════════
// TRY TIP COMMAND
// Marks a conservation tip as tried. The tried set has set semantics:
// re-trying a tip is accepted and absorbed.
// ══════════════════════════════════════════════════════════════════════════

// TryTipCommand contains the data to mark a tip as tried.
type TryTipCommand struct {
	// UserID is the internal id of the user.
	UserID string

	// TipID identifies the tip in the catalog.
	TipID string
}

// Validate validates the command.
func (c TryTipCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("try_tip: user_id is required")
	}
	if c.TipID == "" {
		return errors.New("try_tip: tip_id is required")
	}
	return nil
}

// TryTipResult contains the result of marking a tip.
type TryTipResult struct {
	// TipID is the tried tip.
	TipID string

	// Category is the tip's category from the catalog.
	Category tips.Category

	// TriedAt is when the mark was recorded.
	TriedAt time.Time
}

// TryTipHandler handles TryTipCommand.
type TryTipHandler struct {
	repo     activity.Repository
	catalog  *tips.Catalog
	eventBus shared.EventPublisher
}

// NewTryTipHandler creates a new TryTipHandler.
func NewTryTipHandler(repo activity.Repository, catalog *tips.Catalog, eventBus shared.EventPublisher) *TryTipHandler {
	return &TryTipHandler{
		repo:     repo,
		catalog:  catalog,
		eventBus: eventBus,
	}
}

// Handle validates the tip against the catalog, persists the mark, and
// publishes the event.
func (h *TryTipHandler) Handle(ctx context.Context, cmd TryTipCommand) (*TryTipResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	tip, ok := h.catalog.ByID(cmd.TipID)
	if !ok {
		return nil, shared.ErrTipNotFound
	}

	if err := h.repo.MarkTipTried(ctx, cmd.UserID, cmd.TipID); err != nil {
		return nil, shared.WrapError("tips", "TryTip", shared.ErrPersistence, "failed to mark tip tried", err)
	}

	if h.eventBus != nil {
		event := shared.NewTipTriedEvent(cmd.UserID, cmd.TipID, string(tip.Category))
		if err := h.eventBus.Publish(event); err != nil {
			slog.Warn("failed to publish tip event", "user_id", cmd.UserID, "tip_id", cmd.TipID, "error", err)
		}
	}

	return &TryTipResult{
		TipID:    cmd.TipID,
		Category: tip.Category,
		TriedAt:  time.Now().UTC(),
	}, nil
}
