package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════
// RECORD VISIT COMMAND
// Records that the user opened one of the tracked pages. The explorer
// achievements care about which sections were visited, not how often.
// ══════════════════════════════════════════════════════════════════════════

// RecordVisitCommand contains the visited page.
type RecordVisitCommand struct {
	// UserID is the internal id of the user.
	UserID string

	// Page is the visited page identifier.
	Page string
}

// trackedPages is the set of pages whose visits count.
var trackedPages = map[string]bool{
	activity.PageHistory:      true,
	activity.PageAchievements: true,
	activity.PageTips:         true,
}

// Validate validates the command.
func (c RecordVisitCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("record_visit: user_id is required")
	}
	if !trackedPages[c.Page] {
		return fmt.Errorf("record_visit: unknown page: %s", c.Page)
	}
	return nil
}

// RecordVisitHandler handles RecordVisitCommand.
type RecordVisitHandler struct {
	repo     activity.Repository
	eventBus shared.EventPublisher
}

// NewRecordVisitHandler creates a new RecordVisitHandler.
func NewRecordVisitHandler(repo activity.Repository, eventBus shared.EventPublisher) *RecordVisitHandler {
	return &RecordVisitHandler{
		repo:     repo,
		eventBus: eventBus,
	}
}

// Handle validates, persists, and publishes the visit.
func (h *RecordVisitHandler) Handle(ctx context.Context, cmd RecordVisitCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.repo.MarkPageVisited(ctx, cmd.UserID, cmd.Page); err != nil {
		return shared.WrapError("activity", "RecordVisit", shared.ErrPersistence, "failed to mark page visited", err)
	}

	if h.eventBus != nil {
		event := shared.NewPageVisitedEvent(cmd.UserID, cmd.Page)
		if err := h.eventBus.Publish(event); err != nil {
			slog.Warn("failed to publish visit event", "user_id", cmd.UserID, "error", err)
		}
	}

	return nil
}
