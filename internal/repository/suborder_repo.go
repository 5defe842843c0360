package repository

import (
	"context"
	"time"

	"pipeflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubOrderRepository interface {
	Create(ctx context.Context, s *model.SubOrder) error
	// FindByID preloads production and shipping records.
	FindByID(ctx context.Context, id uuid.UUID) (*model.SubOrder, error)
	// FindByIDForUpdateTx takes a SELECT ... FOR UPDATE row lock on the
	// sub-order, then loads its records inside the same transaction. This is
	// the serialization point for the read-validate-write sequence: two
	// writers against the same sub-order queue up here, writers against
	// different sub-orders do not block each other.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SubOrder, error)
	// ListNearDelivery feeds the delivery alert source: sub-orders with a
	// delivery date inside [from, to], Order and ShippingRecords preloaded.
	ListNearDelivery(ctx context.Context, from, to time.Time) ([]model.SubOrder, error)
}

type subOrderRepo struct{ db *gorm.DB }

func NewSubOrderRepository(db *gorm.DB) SubOrderRepository { return &subOrderRepo{db: db} }

func (r *subOrderRepo) Create(ctx context.Context, s *model.SubOrder) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *subOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SubOrder, error) {
	var sub model.SubOrder
	err := r.db.WithContext(ctx).
		Preload("ProductionRecords").
		Preload("ShippingRecords").
		First(&sub, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subOrderRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SubOrder, error) {
	var sub model.SubOrder
	// Lock the row first; record preloads run unlocked but are serialized by
	// the lock on the parent sub-order.
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("sub_order_id = ?", id).Find(&sub.ProductionRecords).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("sub_order_id = ?", id).Find(&sub.ShippingRecords).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subOrderRepo) ListNearDelivery(ctx context.Context, from, to time.Time) ([]model.SubOrder, error) {
	var subs []model.SubOrder
	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("ShippingRecords").
		Where("delivery_date BETWEEN ? AND ?", from, to).
		Order("delivery_date ASC").
		Find(&subs).Error
	return subs, err
}
