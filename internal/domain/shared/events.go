// Package shared contains common domain types, errors, and events
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Account events
	EventUserRegistered    EventType = "account.registered"
	EventUserAuthenticated EventType = "account.authenticated"
	EventSessionEnded      EventType = "account.session_ended"

	// Activity events
	EventUsageLogged   EventType = "activity.usage_logged"
	EventSettingsSaved EventType = "activity.settings_saved"
	EventPageVisited   EventType = "activity.page_visited"

	// Tips events
	EventTipTried EventType = "tips.tip_tried"

	// Achievement events
	EventAchievementUnlocked EventType = "achievement.unlocked"
	EventEvaluationCompleted EventType = "achievement.evaluation_completed"
	EventEvaluationRejected  EventType = "achievement.evaluation_rejected"

	// Notification events
	EventNotificationDelivered EventType = "notification.delivered"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Account Events
// ═══════════════════════════════════════════════════════════════════════════

// UserRegisteredEvent is emitted when a new account is created.
type UserRegisteredEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Payload implements Event interface.
func (e UserRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"email":   e.Email,
	}
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent.
func NewUserRegisteredEvent(userID, email string) UserRegisteredEvent {
	return UserRegisteredEvent{
		BaseEvent: NewBaseEvent(EventUserRegistered, userID),
		UserID:    userID,
		Email:     email,
	}
}

// UserAuthenticatedEvent is emitted when a user logs in successfully.
type UserAuthenticatedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Payload implements Event interface.
func (e UserAuthenticatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"email":   e.Email,
	}
}

// NewUserAuthenticatedEvent creates a new UserAuthenticatedEvent.
func NewUserAuthenticatedEvent(userID, email string) UserAuthenticatedEvent {
	return UserAuthenticatedEvent{
		BaseEvent: NewBaseEvent(EventUserAuthenticated, userID),
		UserID:    userID,
		Email:     email,
	}
}

// SessionEndedEvent is emitted when a user logs out or the session ends.
type SessionEndedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
}

// Payload implements Event interface.
func (e SessionEndedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{"user_id": e.UserID}
}

// NewSessionEndedEvent creates a new SessionEndedEvent.
func NewSessionEndedEvent(userID string) SessionEndedEvent {
	return SessionEndedEvent{
		BaseEvent: NewBaseEvent(EventSessionEnded, userID),
		UserID:    userID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Activity Events
// ═══════════════════════════════════════════════════════════════════════════

// UsageLoggedEvent is emitted when a water or energy usage log is recorded.
type UsageLoggedEvent struct {
	BaseEvent
	UserID string    `json:"user_id"`
	Kind   string    `json:"kind"` // "water" or "energy"
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// Payload implements Event interface.
func (e UsageLoggedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"kind":    e.Kind,
		"amount":  e.Amount,
		"date":    e.Date.Format(time.RFC3339),
	}
}

// NewUsageLoggedEvent creates a new UsageLoggedEvent.
func NewUsageLoggedEvent(userID, kind string, amount float64, date time.Time) UsageLoggedEvent {
	return UsageLoggedEvent{
		BaseEvent: NewBaseEvent(EventUsageLogged, userID),
		UserID:    userID,
		Kind:      kind,
		Amount:    amount,
		Date:      date,
	}
}

// SettingsSavedEvent is emitted when the user saves their daily goals.
type SettingsSavedEvent struct {
	BaseEvent
	UserID     string  `json:"user_id"`
	WaterGoal  float64 `json:"water_goal"`
	EnergyGoal float64 `json:"energy_goal"`
}

// Payload implements Event interface.
func (e SettingsSavedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":     e.UserID,
		"water_goal":  e.WaterGoal,
		"energy_goal": e.EnergyGoal,
	}
}

// NewSettingsSavedEvent creates a new SettingsSavedEvent.
func NewSettingsSavedEvent(userID string, waterGoal, energyGoal float64) SettingsSavedEvent {
	return SettingsSavedEvent{
		BaseEvent:  NewBaseEvent(EventSettingsSaved, userID),
		UserID:     userID,
		WaterGoal:  waterGoal,
		EnergyGoal: energyGoal,
	}
}

// PageVisitedEvent is emitted when the user visits a tracked page.
type PageVisitedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Page   string `json:"page"` // e.g. "history", "achievements"
}

// Payload implements Event interface.
func (e PageVisitedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"page":    e.Page,
	}
}

// NewPageVisitedEvent creates a new PageVisitedEvent.
func NewPageVisitedEvent(userID, page string) PageVisitedEvent {
	return PageVisitedEvent{
		BaseEvent: NewBaseEvent(EventPageVisited, userID),
		UserID:    userID,
		Page:      page,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Tips Events
// ═══════════════════════════════════════════════════════════════════════════

// TipTriedEvent is emitted when the user marks a tip as tried.
type TipTriedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	TipID    string `json:"tip_id"`
	Category string `json:"category"`
}

// Payload implements Event interface.
func (e TipTriedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":  e.UserID,
		"tip_id":   e.TipID,
		"category": e.Category,
	}
}

// NewTipTriedEvent creates a new TipTriedEvent.
func NewTipTriedEvent(userID, tipID, category string) TipTriedEvent {
	return TipTriedEvent{
		BaseEvent: NewBaseEvent(EventTipTried, userID),
		UserID:    userID,
		TipID:     tipID,
		Category:  category,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Achievement Events
// ═══════════════════════════════════════════════════════════════════════════

// AchievementUnlockedEvent is emitted once per Locked→Unlocked transition.
type AchievementUnlockedEvent struct {
	BaseEvent
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	Points        int       `json:"points"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// Payload implements Event interface.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"achievement_id": e.AchievementID,
		"title":          e.Title,
		"category":       e.Category,
		"points":         e.Points,
		"unlocked_at":    e.UnlockedAt.Format(time.RFC3339),
	}
}

// NewAchievementUnlockedEvent creates a new AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(userID, achievementID, title, category string, points int, unlockedAt time.Time) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementUnlocked, userID),
		UserID:        userID,
		AchievementID: achievementID,
		Title:         title,
		Category:      category,
		Points:        points,
		UnlockedAt:    unlockedAt,
	}
}

// EvaluationRejectedEvent is emitted when the guard refuses an
// evaluation pass (already running or cooldown active).
type EvaluationRejectedEvent struct {
	BaseEvent
	UserID  string `json:"user_id"`
	Trigger string `json:"trigger"`
	Reason  string `json:"reason"`
}

// Payload implements Event interface.
func (e EvaluationRejectedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"trigger": e.Trigger,
		"reason":  e.Reason,
	}
}

// NewEvaluationRejectedEvent creates a new EvaluationRejectedEvent.
func NewEvaluationRejectedEvent(userID, trigger, reason string) EvaluationRejectedEvent {
	return EvaluationRejectedEvent{
		BaseEvent: NewBaseEvent(EventEvaluationRejected, userID),
		UserID:    userID,
		Trigger:   trigger,
		Reason:    reason,
	}
}

// EvaluationCompletedEvent is emitted after a full evaluation pass.
type EvaluationCompletedEvent struct {
	BaseEvent
	UserID        string `json:"user_id"`
	NewlyUnlocked int    `json:"newly_unlocked"`
	Checked       int    `json:"checked"`
	Failed        int    `json:"failed"`
}

// Payload implements Event interface.
func (e EvaluationCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"newly_unlocked": e.NewlyUnlocked,
		"checked":        e.Checked,
		"failed":         e.Failed,
	}
}

// NewEvaluationCompletedEvent creates a new EvaluationCompletedEvent.
func NewEvaluationCompletedEvent(userID string, newlyUnlocked, checked, failed int) EvaluationCompletedEvent {
	return EvaluationCompletedEvent{
		BaseEvent:     NewBaseEvent(EventEvaluationCompleted, userID),
		UserID:        userID,
		NewlyUnlocked: newlyUnlocked,
		Checked:       checked,
		Failed:        failed,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Notification Events
// ═══════════════════════════════════════════════════════════════════════════

// NotificationDeliveredEvent is emitted when an unlock notification is shown.
type NotificationDeliveredEvent struct {
	BaseEvent
	UserID        string `json:"user_id"`
	AchievementID string `json:"achievement_id"`
	Title         string `json:"title"`
	Points        int    `json:"points"`
}

// Payload implements Event interface.
func (e NotificationDeliveredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"achievement_id": e.AchievementID,
		"title":          e.Title,
		"points":         e.Points,
	}
}

// NewNotificationDeliveredEvent creates a new NotificationDeliveredEvent.
func NewNotificationDeliveredEvent(userID, achievementID, title string, points int) NotificationDeliveredEvent {
	return NotificationDeliveredEvent{
		BaseEvent:     NewBaseEvent(EventNotificationDelivered, userID),
		UserID:        userID,
		AchievementID: achievementID,
		Title:         title,
		Points:        points,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID          string          `json:"id"`
	Type        EventType       `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Version     int             `json:"version"`
	Payload     json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
