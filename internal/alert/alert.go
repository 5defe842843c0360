// Package alert synthesizes the operational alert feed. The feed is
// pull-based and recomputed per request from live order state; only the
// notification subtype is durable. Viewer identity and role are explicit
// parameters — there is no ambient session state here.
package alert

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies an alert for the UI.
type Type string

const (
	TypeUrgent   Type = "urgent"
	TypeDeadline Type = "deadline"
	TypeWarning  Type = "warning"
	TypeInfo     Type = "info"
)

// Fixed priority tiers. The feed is sorted by these descending; the exact
// numbers are part of the contract with the UI and the tests.
const (
	PriorityNotificationUrgent  = 100
	PriorityUrgentOrder         = 95
	PriorityDeliveryUrgent      = 90
	PriorityNotificationWarning = 80
	PriorityDeliverySoon        = 80
	PriorityDeliveryAhead       = 70
	PriorityNotificationInfo    = 60
)

// Alert is a derived, prioritized notice surfaced to an operator.
type Alert struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	// Link deep-links to the originating order, sub-order or notification.
	Link     string    `json:"link"`
	Date     time.Time `json:"date"`
	Priority int       `json:"priority"`
	IsNew    bool      `json:"is_new"`
}

// Viewer scopes a feed request. Role gates which signal sources contribute.
type Viewer struct {
	ID   uuid.UUID
	Role string
}
