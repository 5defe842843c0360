package repository

import (
	"context"
	"time"

	"pipeflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListUnread(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
	// MarkRead flips is_read for one notification owned by the user.
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	// ExistsSince reports whether the user already has a notification for the
	// given link created after the cutoff — used by the reminder cron to avoid
	// re-notifying the same sub-order every tick.
	ExistsSince(ctx context.Context, userID uuid.UUID, link string, since time.Time) (bool, error)
}

type notificationRepo struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) ListUnread(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	var notes []model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_read = false", userID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepo) ExistsSince(ctx context.Context, userID uuid.UUID, link string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND link = ? AND created_at >= ?", userID, link, since).
		Count(&count).Error
	return count > 0, err
}
