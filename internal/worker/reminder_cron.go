package worker

// Background goroutine that periodically scans sub-orders approaching their
// delivery date with units still unshipped, and leaves a durable
// notification for the shipping desk. Deduplicated per sub-order per day so
// the hourly tick does not spam.

import (
	"context"
	"fmt"
	"time"

	"pipeflow/internal/ledger"
	"pipeflow/internal/model"
	"pipeflow/internal/repository"
	"pipeflow/internal/status"

	"github.com/rs/zerolog/log"
)

const reminderTickInterval = time.Hour

// ReminderCronConfig holds the dependencies for the reminder goroutine.
type ReminderCronConfig struct {
	SubOrders     repository.SubOrderRepository
	Notifications repository.NotificationRepository
	Users         repository.UserRepository
	WindowDays    int
}

// StartReminderCron launches the delivery reminder loop. One scan runs
// immediately on startup, then once per tick. Respects ctx for shutdown.
func StartReminderCron(ctx context.Context, cfg ReminderCronConfig) {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 7
	}
	go func() {
		ticker := time.NewTicker(reminderTickInterval)
		defer ticker.Stop()

		log.Info().Int("window_days", cfg.WindowDays).Msg("reminder_cron: started")
		scanDeliveries(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("reminder_cron: shutting down")
				return
			case <-ticker.C:
				scanDeliveries(ctx, cfg)
			}
		}
	}()
}

func scanDeliveries(ctx context.Context, cfg ReminderCronConfig) {
	now := time.Now()
	subs, err := cfg.SubOrders.ListNearDelivery(ctx, now.AddDate(0, 0, -1), now.AddDate(0, 0, cfg.WindowDays))
	if err != nil {
		log.Error().Err(err).Msg("reminder_cron: failed to list near-delivery sub-orders")
		return
	}

	recipients, err := cfg.Users.ListByRole(ctx, model.RoleShipping)
	if err != nil {
		log.Error().Err(err).Msg("reminder_cron: failed to resolve recipients")
		return
	}
	if len(recipients) == 0 {
		return
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	created := 0

	for i := range subs {
		sub := &subs[i]
		if sub.Order == nil || !status.IsActive(sub.Order.Status) {
			continue
		}
		remaining := sub.PlannedQuantity - ledger.ShippedTotal(sub)
		if remaining <= 0 {
			continue
		}
		link := "/orders/" + sub.OrderID.String() + "/sub-orders/" + sub.ID.String()
		title := fmt.Sprintf("Delivery approaching for order %s", sub.Order.OrderNo)
		body := fmt.Sprintf("Sub-order %s (%s): %d units unshipped, delivery date %s",
			sub.Spec, sub.Order.CustomerName, remaining, sub.DeliveryDate.Format("2006-01-02"))

		for j := range recipients {
			u := &recipients[j]
			exists, err := cfg.Notifications.ExistsSince(ctx, u.ID, link, startOfDay)
			if err != nil || exists {
				continue
			}
			n := &model.Notification{
				UserID: u.ID,
				Type:   model.NotificationWarning,
				Title:  title,
				Body:   body,
				Link:   link,
			}
			if err := cfg.Notifications.Create(ctx, n); err != nil {
				log.Error().Err(err).Str("user", u.Username).Msg("reminder_cron: failed to create notification")
				continue
			}
			created++
		}
	}

	if created > 0 {
		log.Info().Int("notifications", created).Msg("reminder_cron: delivery reminders created")
	}
}
