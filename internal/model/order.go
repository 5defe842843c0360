package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a customer order.
// Forward-only: draft → confirmed → in_production → partially_shipped → completed.
// canceled is terminal and reachable from any non-completed state, but only
// through an explicit administrative action — never derived from quantities.
type OrderStatus string

const (
	StatusDraft            OrderStatus = "draft"
	StatusConfirmed        OrderStatus = "confirmed"
	StatusInProduction     OrderStatus = "in_production"
	StatusPartiallyShipped OrderStatus = "partially_shipped"
	StatusCompleted        OrderStatus = "completed"
	StatusCanceled         OrderStatus = "canceled"
)

// Order is the aggregate root for a customer order of cast-pipe products.
// Its status must always reflect the aggregate production/shipping totals of
// its sub-orders; the status package owns that derivation.
type Order struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNo        string      `gorm:"uniqueIndex;not null"`
	CustomerName   string      `gorm:"index;not null"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	ShippingMethod string      `gorm:"type:varchar(20)"` // "truck" | "train" | "ship" | "mixed"
	// TotalAmount is the contracted monetary total — optional, informational only.
	TotalAmount *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Remark      *string
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	SubOrders []SubOrder `gorm:"foreignKey:OrderID"`
}

// StatusTransition is an immutable audit fact recorded on every status change,
// carrying the aggregate numbers that triggered it. Rows are never updated
// or deleted.
type StatusTransition struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID       uuid.UUID   `gorm:"type:uuid;not null;index"`
	FromStatus    OrderStatus `gorm:"type:varchar(20);not null"`
	ToStatus      OrderStatus `gorm:"type:varchar(20);not null"`
	TotalPlanned  int         `gorm:"not null"`
	TotalProduced int         `gorm:"not null"`
	TotalShipped  int         `gorm:"not null"`
	Note          string
	CreatedAt     time.Time
}

func (StatusTransition) TableName() string { return "status_transitions" }
