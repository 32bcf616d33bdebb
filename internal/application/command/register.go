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
// REGISTER COMMAND
// Creates a new account. The password is bcrypt-hashed by the domain
// constructor; the raw password never reaches persistence.
// ══════════════════════════════════════════════════════════════════════════

// RegisterCommand contains the registration data.
type RegisterCommand struct {
	// Name is the display name.
	Name string

	// Email is the login identity.
	Email string

	// Password is the raw password.
	Password string
}

// Validate validates the command.
func (c RegisterCommand) Validate() error {
	if c.Email == "" {
		return errors.New("register: email is required")
	}
	if c.Password == "" {
		return errors.New("register: password is required")
	}
	return nil
}

// RegisterResult contains the result of registration.
type RegisterResult struct {
	// UserID is the id of the new account.
	UserID string

	// Email is the normalized login email.
	Email string

	// JoinedAt is when the account was created.
	JoinedAt time.Time
}

// RegisterHandler handles RegisterCommand.
type RegisterHandler struct {
	repo     account.Repository
	ids      IDGenerator
	eventBus shared.EventPublisher
}

// NewRegisterHandler creates a new RegisterHandler.
func NewRegisterHandler(repo account.Repository, ids IDGenerator, eventBus shared.EventPublisher) *RegisterHandler {
	return &RegisterHandler{
		repo:     repo,
		ids:      ids,
		eventBus: eventBus,
	}
}

// Handle creates and stores the account.
func (h *RegisterHandler) Handle(ctx context.Context, cmd RegisterCommand) (*RegisterResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	user, err := account.NewUser(account.NewUserParams{
		ID:       h.ids.GenerateID(),
		Name:     cmd.Name,
		Email:    cmd.Email,
		Password: cmd.Password,
	})
	if err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, shared.WrapError("account", "Register", shared.ErrPersistence, "failed to create user", err)
	}

	if h.eventBus != nil {
		event := shared.NewUserRegisteredEvent(user.ID, user.Email)
		if err := h.eventBus.Publish(event); err != nil {
			slog.Warn("failed to publish registered event", "user_id", user.ID, "error", err)
		}
	}

	return &RegisterResult{
		UserID:   user.ID,
		Email:    user.Email,
		JoinedAt: user.JoinedAt,
	}, nil
}
