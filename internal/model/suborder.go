package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Priority marks how urgently a sub-order must be fulfilled.
type Priority string

const (
	PriorityNormal   Priority = "normal"
	PriorityUrgent   Priority = "urgent"
	PriorityCritical Priority = "critical"
)

// IsUrgent reports whether the priority is urgent or critical.
func (p Priority) IsUrgent() bool { return p == PriorityUrgent || p == PriorityCritical }

// SubOrder is a single product-specification line within an Order.
// The specification fields (Spec, Grade, InterfaceType, Lining, Length,
// AntiCorrosion) are opaque descriptors — the engine never interprets them.
// PlannedQuantity is immutable once set and must be positive.
type SubOrder struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;index"`

	Spec          string `gorm:"not null"` // e.g. "DN300"
	Grade         string `gorm:"type:varchar(30)"`
	InterfaceType string `gorm:"type:varchar(30)"`
	Lining        string `gorm:"type:varchar(30)"`
	Length        string `gorm:"type:varchar(30)"`
	AntiCorrosion string `gorm:"type:varchar(30)"`

	PlannedQuantity int             `gorm:"not null"`
	UnitWeight      decimal.Decimal `gorm:"type:decimal(10,3)"` // tonnes per pipe
	DeliveryDate    time.Time       `gorm:"index;not null"`
	Priority        Priority        `gorm:"type:varchar(10);not null;default:'normal';index"`
	ProductionLine  *string         `gorm:"type:varchar(30)"`
	Warehouse       *string         `gorm:"type:varchar(30)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Order             *Order             `gorm:"foreignKey:OrderID"`
	ProductionRecords []ProductionRecord `gorm:"foreignKey:SubOrderID"`
	ShippingRecords   []ShippingRecord   `gorm:"foreignKey:SubOrderID"`
}

func (SubOrder) TableName() string { return "sub_orders" }
