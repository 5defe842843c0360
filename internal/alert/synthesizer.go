package alert

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pipeflow/internal/ledger"
	"pipeflow/internal/model"
	"pipeflow/internal/status"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// The three signal sources. Each is fetched independently: a failing source
// logs and contributes nothing, it never aborts the others.

// NotificationSource lists durable unread notifications for one user.
type NotificationSource interface {
	ListUnread(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
}

// UrgentOrderSource lists orders in confirmed/in_production status that have
// at least one urgent or critical sub-order, sub-orders preloaded.
type UrgentOrderSource interface {
	ListActiveWithUrgentSubOrders(ctx context.Context) ([]model.Order, error)
}

// DeliverySource lists sub-orders whose delivery date falls inside
// [from, to], with Order and ShippingRecords preloaded.
type DeliverySource interface {
	ListNearDelivery(ctx context.Context, from, to time.Time) ([]model.SubOrder, error)
}

// Synthesizer builds the per-viewer alert feed.
type Synthesizer struct {
	notifications NotificationSource
	urgentOrders  UrgentOrderSource
	deliveries    DeliverySource
	windowDays    int
	now           func() time.Time
}

func NewSynthesizer(n NotificationSource, u UrgentOrderSource, d DeliverySource, windowDays int, now func() time.Time) *Synthesizer {
	if windowDays <= 0 {
		windowDays = 7
	}
	if now == nil {
		now = time.Now
	}
	return &Synthesizer{notifications: n, urgentOrders: u, deliveries: d, windowDays: windowDays, now: now}
}

// Role gates. Order-level urgent signals are operational; delivery signals
// concern dispatch.
func seesOrderSignals(role string) bool {
	return role == model.RoleAdmin || role == model.RoleSales || role == model.RoleProduction
}

func seesDeliverySignals(role string) bool {
	return role == model.RoleAdmin || role == model.RoleSales || role == model.RoleShipping
}

// Synthesize gathers all three sources for the viewer, normalizes them into
// one feed, and sorts by priority descending with ties broken by reference
// date, newest first. The ordering is a contract, not an implementation
// detail.
func (s *Synthesizer) Synthesize(ctx context.Context, v Viewer) []Alert {
	feed := make([]Alert, 0, 16)
	feed = append(feed, s.notificationAlerts(ctx, v)...)
	if seesOrderSignals(v.Role) {
		feed = append(feed, s.urgentOrderAlerts(ctx)...)
	}
	if seesDeliverySignals(v.Role) {
		feed = append(feed, s.deliveryAlerts(ctx)...)
	}

	sort.SliceStable(feed, func(i, j int) bool {
		if feed[i].Priority != feed[j].Priority {
			return feed[i].Priority > feed[j].Priority
		}
		return feed[i].Date.After(feed[j].Date)
	})
	return feed
}

func (s *Synthesizer) notificationAlerts(ctx context.Context, v Viewer) []Alert {
	notes, err := s.notifications.ListUnread(ctx, v.ID)
	if err != nil {
		log.Error().Err(err).Str("viewer", v.ID.String()).Msg("alert: notification source failed")
		return nil
	}
	alerts := make([]Alert, 0, len(notes))
	for i := range notes {
		n := &notes[i]
		typ, prio := TypeInfo, PriorityNotificationInfo
		switch n.Type {
		case model.NotificationUrgent:
			typ, prio = TypeUrgent, PriorityNotificationUrgent
		case model.NotificationWarning:
			typ, prio = TypeWarning, PriorityNotificationWarning
		}
		alerts = append(alerts, Alert{
			ID:          "notification:" + n.ID.String(),
			Type:        typ,
			Title:       n.Title,
			Description: n.Body,
			Link:        n.Link,
			Date:        n.CreatedAt,
			Priority:    prio,
			IsNew:       true,
		})
	}
	return alerts
}

func (s *Synthesizer) urgentOrderAlerts(ctx context.Context) []Alert {
	orders, err := s.urgentOrders.ListActiveWithUrgentSubOrders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("alert: urgent order source failed")
		return nil
	}
	alerts := make([]Alert, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		urgent := 0
		for j := range o.SubOrders {
			if o.SubOrders[j].Priority.IsUrgent() {
				urgent++
			}
		}
		if urgent == 0 {
			continue
		}
		alerts = append(alerts, Alert{
			ID:          "urgent-order:" + o.ID.String(),
			Type:        TypeUrgent,
			Title:       fmt.Sprintf("Urgent order %s", o.OrderNo),
			Description: fmt.Sprintf("Order %s (%s) has %d urgent sub-orders awaiting fulfillment", o.OrderNo, o.CustomerName, urgent),
			Link:        "/orders/" + o.ID.String(),
			Date:        o.UpdatedAt,
			Priority:    PriorityUrgentOrder,
			IsNew:       true,
		})
	}
	return alerts
}

// deliveryAlerts emits one alert per order holding incomplete sub-orders due
// within the window: earliest delivery date and aggregate remaining-to-ship
// across that order's incomplete lines.
func (s *Synthesizer) deliveryAlerts(ctx context.Context) []Alert {
	now := s.now()
	subs, err := s.deliveries.ListNearDelivery(ctx, now.AddDate(0, 0, -1), now.AddDate(0, 0, s.windowDays))
	if err != nil {
		log.Error().Err(err).Msg("alert: delivery source failed")
		return nil
	}

	type orderGroup struct {
		order     *model.Order
		earliest  time.Time
		remaining int
	}
	groups := make(map[uuid.UUID]*orderGroup)
	orderIDs := make([]uuid.UUID, 0, 8) // preserve scan order for stable output

	for i := range subs {
		sub := &subs[i]
		if sub.Order == nil || !status.IsActive(sub.Order.Status) {
			continue
		}
		shipped := ledger.ShippedTotal(sub)
		if shipped >= sub.PlannedQuantity {
			continue // line complete — no signal
		}
		g, ok := groups[sub.OrderID]
		if !ok {
			g = &orderGroup{order: sub.Order, earliest: sub.DeliveryDate}
			groups[sub.OrderID] = g
			orderIDs = append(orderIDs, sub.OrderID)
		}
		if sub.DeliveryDate.Before(g.earliest) {
			g.earliest = sub.DeliveryDate
		}
		g.remaining += sub.PlannedQuantity - shipped
	}

	alerts := make([]Alert, 0, len(groups))
	for _, id := range orderIDs {
		g := groups[id]
		days := daysUntil(now, g.earliest)
		typ, prio := TypeDeadline, PriorityDeliveryAhead
		switch {
		case days <= 2:
			typ, prio = TypeUrgent, PriorityDeliveryUrgent
		case days <= 4:
			prio = PriorityDeliverySoon
		}
		alerts = append(alerts, Alert{
			ID:          "delivery:" + id.String(),
			Type:        typ,
			Title:       fmt.Sprintf("Delivery due for order %s", g.order.OrderNo),
			Description: fmt.Sprintf("Order %s (%s): %d units remaining to ship, earliest delivery %s", g.order.OrderNo, g.order.CustomerName, g.remaining, describeDays(days)),
			Link:        "/orders/" + id.String(),
			Date:        g.earliest,
			Priority:    prio,
			IsNew:       true,
		})
	}
	return alerts
}

// daysUntil counts whole calendar days from now to the deadline, negative
// when overdue.
func daysUntil(now, deadline time.Time) int {
	a := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func describeDays(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("overdue by %d days", -days)
	case days == 0:
		return "today"
	case days == 1:
		return "in 1 day"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
