package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/domain/account"
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════
// AUTHENTICATE COMMAND
// Verifies credentials and publishes the login event. Authentication is
// itself achievement-relevant: it sets the session's authenticated flag
// and triggers the first evaluation pass of the session.
// ══════════════════════════════════════════════════════════════════════════

// AuthenticateCommand contains login credentials.
type AuthenticateCommand struct {
	// Email is the login identity.
	Email string

	// Password is the raw password.
	Password string
}

// Validate validates the command.
func (c AuthenticateCommand) Validate() error {
	if c.Email == "" {
		return errors.New("authenticate: email is required")
	}
	if c.Password == "" {
		return errors.New("authenticate: password is required")
	}
	return nil
}

// AuthenticateResult contains the result of a successful login.
type AuthenticateResult struct {
	// UserID is the authenticated user's id.
	UserID string

	// Name is the display name.
	Name string

	// Email is the normalized login email.
	Email string

	// AuthenticatedAt is when the login succeeded.
	AuthenticatedAt time.Time
}

// AuthenticateHandler handles AuthenticateCommand.
type AuthenticateHandler struct {
	repo     account.Repository
	eventBus shared.EventPublisher
}

// NewAuthenticateHandler creates a new AuthenticateHandler.
func NewAuthenticateHandler(repo account.Repository, eventBus shared.EventPublisher) *AuthenticateHandler {
	return &AuthenticateHandler{
		repo:     repo,
		eventBus: eventBus,
	}
}

// Handle verifies the credentials. Both unknown email and wrong password
// return ErrInvalidCredentials so the caller cannot enumerate accounts.
func (h *AuthenticateHandler) Handle(ctx context.Context, cmd AuthenticateCommand) (*AuthenticateResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	user, err := h.repo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		if errors.Is(err, shared.ErrUserNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, shared.WrapError("account", "Authenticate", shared.ErrPersistence, "failed to look up user", err)
	}

	if !user.VerifyPassword(cmd.Password) {
		return nil, shared.ErrInvalidCredentials
	}

	if h.eventBus != nil {
		event := shared.NewUserAuthenticatedEvent(user.ID, user.Email)
		if err := h.eventBus.Publish(event); err != nil {
			slog.Warn("failed to publish authenticated event", "user_id", user.ID, "error", err)
		}
	}

	return &AuthenticateResult{
		UserID:          user.ID,
		Name:            user.Name,
		Email:           user.Email,
		AuthenticatedAt: time.Now().UTC(),
	}, nil
}
