package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles. Alert visibility is gated per role: order-level urgent signals go to
// admin/sales/production, delivery-window signals to admin/sales/shipping.
const (
	RoleAdmin      = "admin"
	RoleSales      = "sales"
	RoleProduction = "production"
	RoleShipping   = "shipping"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Name         string    `gorm:"not null"`
	Email        *string   `gorm:"type:varchar(120)"`
	Role         string    `gorm:"type:varchar(20);not null;index"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
