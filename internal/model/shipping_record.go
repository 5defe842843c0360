package model

import (
	"time"

	"github.com/google/uuid"
)

// Transport types accepted on shipping records.
const (
	TransportTruck = "truck"
	TransportTrain = "train"
	TransportShip  = "ship"
	TransportOther = "other"
)

// ShippingRecord is one declaration of shipped quantity against a sub-order.
// Same mutation semantics as ProductionRecord; the capacity guard keeps the
// shipped sum within the produced sum (cannot ship what was not produced).
type ShippingRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubOrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity      int       `gorm:"not null"`
	ShippedOn     time.Time `gorm:"index;not null"`
	TransportType string    `gorm:"type:varchar(10);not null;default:'truck'"`
	Destination   string
	Carrier       string     `gorm:"type:varchar(60)"`
	DriverName    string     `gorm:"type:varchar(60)"`
	DriverPhone   string     `gorm:"type:varchar(30)"`
	VehicleNo     string     `gorm:"type:varchar(30)"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	SubOrder *SubOrder `gorm:"foreignKey:SubOrderID"`
}

func (ShippingRecord) TableName() string { return "shipping_records" }
