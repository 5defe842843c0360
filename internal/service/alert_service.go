package service

import (
	"context"
	"errors"

	"pipeflow/internal/alert"
	"pipeflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlertService exposes the synthesized alert feed. The repositories already
// satisfy the synthesizer's source interfaces, so this is a thin seam that
// owns construction and the mark-read operation.
type AlertService interface {
	Feed(ctx context.Context, viewer alert.Viewer) []alert.Alert
	MarkNotificationRead(ctx context.Context, notificationID, userID uuid.UUID) error
}

type alertService struct {
	synth         *alert.Synthesizer
	notifications repository.NotificationRepository
}

func NewAlertService(
	notifications repository.NotificationRepository,
	orders repository.OrderRepository,
	subOrders repository.SubOrderRepository,
	windowDays int,
) AlertService {
	return &alertService{
		synth:         alert.NewSynthesizer(notifications, orders, subOrders, windowDays, nil),
		notifications: notifications,
	}
}

func (s *alertService) Feed(ctx context.Context, viewer alert.Viewer) []alert.Alert {
	return s.synth.Synthesize(ctx, viewer)
}

func (s *alertService) MarkNotificationRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	err := s.notifications.MarkRead(ctx, notificationID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}
