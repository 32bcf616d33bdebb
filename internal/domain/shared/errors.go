// Package shared contains common domain types, errors, and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation    = errors.New("validation error")
	ErrInvalidID     = errors.New("invalid ID")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyValue    = errors.New("value cannot be empty")
	ErrNegativeValue = errors.New("value cannot be negative")
	ErrInvalidFormat = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrStateTransition  = errors.New("invalid state transition")
	ErrAlreadyProcessed = errors.New("already processed")

	// Concurrency errors
	ErrEvaluationRunning = errors.New("evaluation already in progress")
	ErrCooldownActive    = errors.New("cooldown period active")

	// External service errors
	ErrPersistence        = errors.New("persistence error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "achievement", "activity", "account"
	Op      string // Operation that failed, e.g., "Evaluate", "Save"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Achievement domain errors
var (
	ErrAchievementNotFound        = NewDomainError("achievement", "Find", ErrNotFound, "achievement not found")
	ErrAchievementAlreadyUnlocked = NewDomainError("achievement", "Unlock", ErrAlreadyProcessed, "achievement already unlocked")
	ErrDuplicateAchievementID     = NewDomainError("achievement", "LoadCatalog", ErrAlreadyExists, "duplicate achievement id in catalog")
	ErrNilPredicate               = NewDomainError("achievement", "LoadCatalog", ErrInvalidEntity, "achievement predicate is nil")
)

// Activity domain errors
var (
	ErrInvalidUsageKind   = NewDomainError("activity", "Validate", ErrInvalidInput, "usage kind must be water or energy")
	ErrInvalidUsageAmount = NewDomainError("activity", "Validate", ErrNegativeValue, "usage amount cannot be negative")
	ErrInvalidGoal        = NewDomainError("activity", "Validate", ErrNegativeValue, "daily goal cannot be negative")
)

// Tips domain errors
var (
	ErrTipNotFound      = NewDomainError("tips", "Find", ErrNotFound, "tip not found")
	ErrTipAlreadyTried  = NewDomainError("tips", "MarkTried", ErrAlreadyExists, "tip already marked as tried")
	ErrInvalidTipRating = NewDomainError("tips", "Rate", ErrInvalidInput, "rating must be between 1 and 5")
)

// Account domain errors
var (
	ErrUserNotFound       = NewDomainError("account", "Find", ErrNotFound, "user not found")
	ErrUserAlreadyExists  = NewDomainError("account", "Register", ErrAlreadyExists, "email already registered")
	ErrInvalidCredentials = NewDomainError("account", "Authenticate", ErrValidation, "invalid email or password")
	ErrWeakPassword       = NewDomainError("account", "Register", ErrValidation, "password does not meet requirements")
)

// Notification domain errors
var (
	ErrNotificationSuppressed = NewDomainError("notification", "Deliver", ErrAlreadyProcessed, "notification recently shown")
	ErrNotificationActive     = NewDomainError("notification", "Deliver", ErrAlreadyProcessed, "notification already active")
	ErrSchedulerClosed        = NewDomainError("notification", "Announce", ErrInvalidState, "scheduler is shut down")
)
