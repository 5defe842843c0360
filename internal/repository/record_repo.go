package repository

import (
	"context"

	"pipeflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record repositories are transactional by design: every mutation happens
// inside the sub-order-locked transaction opened by the record service, so
// the *Tx methods take the live transaction handle.

type ProductionRecordRepository interface {
	CreateTx(tx *gorm.DB, rec *model.ProductionRecord) error
	UpdateTx(tx *gorm.DB, rec *model.ProductionRecord) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductionRecord, error)
	ListBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]model.ProductionRecord, error)
}

type productionRecordRepo struct{ db *gorm.DB }

func NewProductionRecordRepository(db *gorm.DB) ProductionRecordRepository {
	return &productionRecordRepo{db: db}
}

func (r *productionRecordRepo) CreateTx(tx *gorm.DB, rec *model.ProductionRecord) error {
	return tx.Create(rec).Error
}

func (r *productionRecordRepo) UpdateTx(tx *gorm.DB, rec *model.ProductionRecord) error {
	return tx.Save(rec).Error
}

func (r *productionRecordRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.ProductionRecord{}, "id = ?", id).Error
}

func (r *productionRecordRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductionRecord, error) {
	var rec model.ProductionRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *productionRecordRepo) ListBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]model.ProductionRecord, error) {
	var recs []model.ProductionRecord
	err := r.db.WithContext(ctx).
		Where("sub_order_id = ?", subOrderID).
		Order("produced_on DESC, created_at DESC").
		Find(&recs).Error
	return recs, err
}

type ShippingRecordRepository interface {
	CreateTx(tx *gorm.DB, rec *model.ShippingRecord) error
	UpdateTx(tx *gorm.DB, rec *model.ShippingRecord) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ShippingRecord, error)
	ListBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]model.ShippingRecord, error)
}

type shippingRecordRepo struct{ db *gorm.DB }

func NewShippingRecordRepository(db *gorm.DB) ShippingRecordRepository {
	return &shippingRecordRepo{db: db}
}

func (r *shippingRecordRepo) CreateTx(tx *gorm.DB, rec *model.ShippingRecord) error {
	return tx.Create(rec).Error
}

func (r *shippingRecordRepo) UpdateTx(tx *gorm.DB, rec *model.ShippingRecord) error {
	return tx.Save(rec).Error
}

func (r *shippingRecordRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.ShippingRecord{}, "id = ?", id).Error
}

func (r *shippingRecordRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ShippingRecord, error) {
	var rec model.ShippingRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *shippingRecordRepo) ListBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]model.ShippingRecord, error) {
	var recs []model.ShippingRecord
	err := r.db.WithContext(ctx).
		Where("sub_order_id = ?", subOrderID).
		Order("shipped_on DESC, created_at DESC").
		Find(&recs).Error
	return recs, err
}
