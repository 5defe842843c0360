package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification types. These map onto alert types when the feed is built:
// urgent → urgent, warning → warning, anything else → info.
const (
	NotificationUrgent  = "urgent"
	NotificationWarning = "warning"
	NotificationInfo    = "info"
)

// Notification is the one durable alert subtype. Urgent/deadline alerts are
// recomputed from live order state on every read and never stored; rows here
// exist only for messages that must survive until the user reads them.
type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Type   string    `gorm:"type:varchar(10);not null;default:'info'"`
	Title  string    `gorm:"not null"`
	Body   string
	// Link is a deep-link reference to the originating order or sub-order.
	Link      string
	IsRead    bool `gorm:"not null;default:false;index"`
	CreatedAt time.Time
}
