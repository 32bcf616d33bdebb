// Package account contains the user identity domain: registration and
// credential verification. Session rendering and auth UI are out of scope;
// the achievement engine only needs "who is the user" and "are they
// authenticated".
package account

import (
	"context"
	"strings"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// User is a registered EcoTracker user.
type User struct {
	// ID - internal unique identifier.
	ID string

	// Name - display name.
	Name string

	// Email - login identity, unique, stored lowercase.
	Email string

	// PasswordHash - bcrypt hash of the password. Never the raw password.
	PasswordHash string

	// JoinedAt - when the account was created.
	JoinedAt time.Time
}

// NewUserParams contains the data required to create a user.
type NewUserParams struct {
	ID       string
	Name     string
	Email    string
	Password string // raw; hashed by NewUser
}

// NewUser creates a user with a hashed password.
func NewUser(p NewUserParams) (*User, error) {
	if p.ID == "" {
		return nil, shared.NewDomainError("account", "NewUser", shared.ErrInvalidID, "user id is required")
	}
	email := NormalizeEmail(p.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("account", "NewUser", shared.ErrInvalidInput, "valid email is required")
	}
	if len(p.Password) < MinPasswordLength {
		return nil, shared.ErrWeakPassword
	}

	hash, err := HashPassword(p.Password)
	if err != nil {
		return nil, shared.WrapError("account", "NewUser", shared.ErrValidation, "failed to hash password", err)
	}

	return &User{
		ID:           p.ID,
		Name:         strings.TrimSpace(p.Name),
		Email:        email,
		PasswordHash: hash,
		JoinedAt:     time.Now().UTC(),
	}, nil
}

// NormalizeEmail lowercases and trims an email for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// VerifyPassword checks a raw password against the stored hash.
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Repository defines persistence for users.
type Repository interface {
	// Create stores a new user. Returns shared.ErrUserAlreadyExists when
	// the email is taken.
	Create(ctx context.Context, user *User) error

	// GetByID returns a user by internal id.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail returns a user by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Delete removes a user and is the only path that wipes their unlock
	// records (account deletion).
	Delete(ctx context.Context, id string) error
}
