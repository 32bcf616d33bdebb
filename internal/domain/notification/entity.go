// Package notification contains the unlock announcement domain: the
// notification entity, its delivery lifecycle, and the staggered scheduler
// that guarantees each unlock is announced exactly once.
package notification

import (
	"time"
)

// NotificationID uniquely identifies a notification.
type NotificationID string

// DeliveryState is the lifecycle of a single notification.
//
// Scheduled → Delivering → Displayed → Cleared
//
// Skipped is terminal for deliveries absorbed by the dedup layers.
type DeliveryState string

const (
	StateScheduled  DeliveryState = "scheduled"
	StateDelivering DeliveryState = "delivering"
	StateDisplayed  DeliveryState = "displayed"
	StateCleared    DeliveryState = "cleared"
	StateSkipped    DeliveryState = "skipped"
)

// Notification is one unlock announcement.
type Notification struct {
	// ID - unique notification id.
	ID NotificationID

	// AchievementID - the unlocked achievement being announced.
	AchievementID string

	// Title - achievement title shown to the user.
	Title string

	// Points - reward weight shown to the user.
	Points int

	// State - current lifecycle state.
	State DeliveryState

	// CreatedAt - when the notification was scheduled.
	CreatedAt time.Time

	// DeliveredAt - when the delivery callback fired, zero until then.
	DeliveredAt time.Time
}

// DeliveryFunc is invoked once per delivered notification, in batch order.
// It is the UI boundary: implementations render a popup, send a message,
// or just log.
type DeliveryFunc func(n Notification)
