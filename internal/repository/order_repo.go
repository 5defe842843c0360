package repository

import (
	"context"

	"pipeflow/internal/dto"
	"pipeflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository defines the data access contract for orders.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	// FindByID preloads sub-orders only.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// FindByIDWithRecords preloads sub-orders with all their records.
	FindByIDWithRecords(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// FindByIDWithRecordsTx is the in-transaction variant used during
	// reconciliation so status derivation sees the freshest totals.
	FindByIDWithRecordsTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.OrderStatus) error
	// ListActiveWithUrgentSubOrders feeds the urgent-order alert source:
	// confirmed/in_production orders having ≥1 urgent or critical sub-order.
	ListActiveWithUrgentSubOrders(ctx context.Context) ([]model.Order, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("SubOrders").First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByIDWithRecords(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("SubOrders").
		Preload("SubOrders.ProductionRecords").
		Preload("SubOrders.ShippingRecords").
		First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByIDWithRecordsTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := tx.
		Preload("SubOrders").
		Preload("SubOrders.ProductionRecords").
		Preload("SubOrders.ShippingRecords").
		First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Customer != "" {
		q = q.Where("customer_name ILIKE ?", "%"+filter.Customer+"%")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("SubOrders").
		Preload("SubOrders.ProductionRecords").
		Preload("SubOrders.ShippingRecords").
		Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.OrderStatus) error {
	return tx.Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepo) ListActiveWithUrgentSubOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("SubOrders").
		Where("status IN ?", []model.OrderStatus{model.StatusConfirmed, model.StatusInProduction}).
		Where("EXISTS (SELECT 1 FROM sub_orders so WHERE so.order_id = orders.id AND so.priority IN ('urgent','critical'))").
		Order("updated_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) DB() *gorm.DB { return r.db }
