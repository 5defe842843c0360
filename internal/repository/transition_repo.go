package repository

import (
	"context"

	"pipeflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusTransitionRepository persists the immutable audit trail of status
// changes. Create only — transitions are never updated or deleted.
type StatusTransitionRepository interface {
	CreateTx(tx *gorm.DB, t *model.StatusTransition) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.StatusTransition, error)
}

type transitionRepo struct{ db *gorm.DB }

func NewStatusTransitionRepository(db *gorm.DB) StatusTransitionRepository {
	return &transitionRepo{db: db}
}

func (r *transitionRepo) CreateTx(tx *gorm.DB, t *model.StatusTransition) error {
	return tx.Create(t).Error
}

func (r *transitionRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.StatusTransition, error) {
	var ts []model.StatusTransition
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&ts).Error
	return ts, err
}
