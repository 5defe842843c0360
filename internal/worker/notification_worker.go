package worker

// Processes status-transition jobs: persists durable notifications for the
// roles that track order progress and fans out email to users that have an
// address on file. Runs outside the write transaction — a failure here never
// rolls back the record write that triggered it.

import (
	"context"
	"encoding/json"
	"fmt"

	"pipeflow/internal/model"
	"pipeflow/internal/repository"

	"github.com/rs/zerolog/log"
)

type NotificationWorker struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	dispatcher    *Dispatcher
}

func NewNotificationWorker(notifications repository.NotificationRepository, users repository.UserRepository, dispatcher *Dispatcher) *NotificationWorker {
	return &NotificationWorker{notifications: notifications, users: users, dispatcher: dispatcher}
}

func (w *NotificationWorker) Process(ctx context.Context, raw json.RawMessage) {
	var p StatusChangedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error().Err(err).Msg("notification_worker: invalid payload")
		return
	}

	recipients, err := w.users.ListByRole(ctx, model.RoleAdmin, model.RoleSales)
	if err != nil {
		log.Error().Err(err).Msg("notification_worker: failed to resolve recipients")
		return
	}

	title := fmt.Sprintf("Order %s is now %s", p.OrderNo, p.ToStatus)
	body := fmt.Sprintf("Order %s (%s) moved from %s to %s: %d planned, %d produced, %d shipped",
		p.OrderNo, p.CustomerName, p.FromStatus, p.ToStatus, p.TotalPlanned, p.TotalProduced, p.TotalShipped)
	link := "/orders/" + p.OrderID

	for i := range recipients {
		u := &recipients[i]
		n := &model.Notification{
			UserID: u.ID,
			Type:   notificationType(p.ToStatus),
			Title:  title,
			Body:   body,
			Link:   link,
		}
		if err := w.notifications.Create(ctx, n); err != nil {
			log.Error().Err(err).Str("user", u.Username).Msg("notification_worker: failed to persist notification")
			continue
		}
		if u.Email != nil && *u.Email != "" {
			_ = w.dispatcher.EnqueueEmail(ctx, EmailPayload{ToEmail: *u.Email, Subject: title, Body: body})
		}
	}
	log.Info().Str("order_no", p.OrderNo).Str("to_status", p.ToStatus).Int("recipients", len(recipients)).
		Msg("notification_worker: transition fanned out")
}

func notificationType(toStatus string) string {
	if toStatus == string(model.StatusCanceled) {
		return model.NotificationWarning
	}
	return model.NotificationInfo
}
