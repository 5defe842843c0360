package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductionRecord is one declaration of produced quantity against a
// sub-order. Records are append-only in spirit: authorized staff may amend
// or delete them, and every mutation re-runs reconciliation. The capacity
// guard keeps the sum of quantities within PlannedQuantity at all times.
type ProductionRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity   int       `gorm:"not null"`
	ProducedOn time.Time `gorm:"index;not null"`
	Team       string    `gorm:"type:varchar(30)"`
	Shift      string    `gorm:"type:varchar(20)"` // "day" | "night"
	StartedAt  *time.Time
	EndedAt    *time.Time
	CreatedBy  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	SubOrder *SubOrder `gorm:"foreignKey:SubOrderID"`
}

func (ProductionRecord) TableName() string { return "production_records" }
