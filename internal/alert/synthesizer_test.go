package alert

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"pipeflow/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stub sources ─────────────────────────────────────────────────────────────

type stubNotifications struct {
	notes []model.Notification
	err   error
}

func (s *stubNotifications) ListUnread(_ context.Context, _ uuid.UUID) ([]model.Notification, error) {
	return s.notes, s.err
}

type stubUrgentOrders struct {
	orders []model.Order
	err    error
}

func (s *stubUrgentOrders) ListActiveWithUrgentSubOrders(_ context.Context) ([]model.Order, error) {
	return s.orders, s.err
}

type stubDeliveries struct {
	subs []model.SubOrder
	err  error
}

func (s *stubDeliveries) ListNearDelivery(_ context.Context, _, _ time.Time) ([]model.SubOrder, error) {
	return s.subs, s.err
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestSynthesizer(n NotificationSource, u UrgentOrderSource, d DeliverySource) *Synthesizer {
	return NewSynthesizer(n, u, d, 7, func() time.Time { return testNow })
}

func adminViewer() Viewer { return Viewer{ID: uuid.New(), Role: model.RoleAdmin} }

func deliverySub(order *model.Order, planned, shipped int, delivery time.Time) model.SubOrder {
	sub := model.SubOrder{
		ID:              uuid.New(),
		OrderID:         order.ID,
		Spec:            "DN300",
		PlannedQuantity: planned,
		DeliveryDate:    delivery,
		Order:           order,
	}
	if shipped > 0 {
		sub.ShippingRecords = []model.ShippingRecord{{ID: uuid.New(), Quantity: shipped}}
	}
	return sub
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestFeedSortedByPriorityThenDate(t *testing.T) {
	older := testNow.Add(-48 * time.Hour)
	newer := testNow.Add(-1 * time.Hour)
	notes := &stubNotifications{notes: []model.Notification{
		{ID: uuid.New(), Type: model.NotificationInfo, Title: "older info", CreatedAt: older},
		{ID: uuid.New(), Type: model.NotificationUrgent, Title: "urgent note", CreatedAt: older},
		{ID: uuid.New(), Type: model.NotificationInfo, Title: "newer info", CreatedAt: newer},
	}}
	order := &model.Order{ID: uuid.New(), OrderNo: "ORD-1", Status: model.StatusConfirmed, UpdatedAt: testNow,
		SubOrders: []model.SubOrder{{Priority: model.PriorityUrgent}}}
	urgent := &stubUrgentOrders{orders: []model.Order{*order}}

	s := newTestSynthesizer(notes, urgent, &stubDeliveries{})
	feed := s.Synthesize(context.Background(), adminViewer())

	require.Len(t, feed, 4)
	assert.True(t, sort.SliceIsSorted(feed, func(i, j int) bool {
		if feed[i].Priority != feed[j].Priority {
			return feed[i].Priority > feed[j].Priority
		}
		return feed[i].Date.After(feed[j].Date)
	}))
	assert.Equal(t, "urgent note", feed[0].Title)
	assert.Equal(t, PriorityNotificationUrgent, feed[0].Priority)
	assert.Equal(t, PriorityUrgentOrder, feed[1].Priority)
	// equal-priority infos break the tie by date, newest first
	assert.Equal(t, "newer info", feed[2].Title)
	assert.Equal(t, "older info", feed[3].Title)
}

func TestFailingSourceContributesNothing(t *testing.T) {
	notes := &stubNotifications{err: errors.New("db down")}
	order := &model.Order{ID: uuid.New(), OrderNo: "ORD-2", Status: model.StatusInProduction, UpdatedAt: testNow,
		SubOrders: []model.SubOrder{{Priority: model.PriorityCritical}}}
	urgent := &stubUrgentOrders{orders: []model.Order{*order}}

	s := newTestSynthesizer(notes, urgent, &stubDeliveries{err: errors.New("also down")})
	feed := s.Synthesize(context.Background(), adminViewer())

	require.Len(t, feed, 1, "surviving source still delivers")
	assert.Equal(t, "urgent-order:"+order.ID.String(), feed[0].ID)
}

func TestDeliveryAlertOneDayOutIsUrgent(t *testing.T) {
	order := &model.Order{ID: uuid.New(), OrderNo: "ORD-3", CustomerName: "Acme Water", Status: model.StatusInProduction}
	sub := deliverySub(order, 100, 40, testNow.AddDate(0, 0, 1))

	s := newTestSynthesizer(&stubNotifications{}, &stubUrgentOrders{}, &stubDeliveries{subs: []model.SubOrder{sub}})
	feed := s.Synthesize(context.Background(), adminViewer())

	require.Len(t, feed, 1)
	a := feed[0]
	assert.Equal(t, TypeUrgent, a.Type)
	assert.Equal(t, PriorityDeliveryUrgent, a.Priority)
	assert.Contains(t, a.Description, "60 units remaining to ship")
	assert.Contains(t, a.Description, "in 1 day")
}

func TestDeliveryAlertPriorityBands(t *testing.T) {
	cases := []struct {
		days     int
		priority int
		typ      Type
	}{
		{0, PriorityDeliveryUrgent, TypeUrgent},
		{2, PriorityDeliveryUrgent, TypeUrgent},
		{3, PriorityDeliverySoon, TypeDeadline},
		{4, PriorityDeliverySoon, TypeDeadline},
		{5, PriorityDeliveryAhead, TypeDeadline},
		{7, PriorityDeliveryAhead, TypeDeadline},
	}
	for _, tc := range cases {
		order := &model.Order{ID: uuid.New(), OrderNo: "ORD-B", Status: model.StatusConfirmed}
		sub := deliverySub(order, 10, 0, testNow.AddDate(0, 0, tc.days))

		s := newTestSynthesizer(&stubNotifications{}, &stubUrgentOrders{}, &stubDeliveries{subs: []model.SubOrder{sub}})
		feed := s.Synthesize(context.Background(), adminViewer())

		require.Len(t, feed, 1, "days=%d", tc.days)
		assert.Equal(t, tc.priority, feed[0].Priority, "days=%d", tc.days)
		assert.Equal(t, tc.typ, feed[0].Type, "days=%d", tc.days)
	}
}

func TestDeliveryAlertsGroupPerOrder(t *testing.T) {
	order := &model.Order{ID: uuid.New(), OrderNo: "ORD-4", CustomerName: "Acme", Status: model.StatusPartiallyShipped}
	subs := []model.SubOrder{
		deliverySub(order, 100, 80, testNow.AddDate(0, 0, 6)), // 20 remaining
		deliverySub(order, 50, 0, testNow.AddDate(0, 0, 3)),   // 50 remaining, earlier date
		deliverySub(order, 30, 30, testNow.AddDate(0, 0, 1)),  // complete — excluded entirely
	}

	s := newTestSynthesizer(&stubNotifications{}, &stubUrgentOrders{}, &stubDeliveries{subs: subs})
	feed := s.Synthesize(context.Background(), adminViewer())

	require.Len(t, feed, 1, "one alert per order, not per line")
	a := feed[0]
	assert.Contains(t, a.Description, "70 units remaining to ship")
	// completed line's nearer date must not drag the earliest date in
	assert.Contains(t, a.Description, "in 3 days")
	assert.Equal(t, PriorityDeliverySoon, a.Priority)
}

func TestDeliveryAlertsSkipInactiveOrders(t *testing.T) {
	canceled := &model.Order{ID: uuid.New(), OrderNo: "ORD-5", Status: model.StatusCanceled}
	draft := &model.Order{ID: uuid.New(), OrderNo: "ORD-6", Status: model.StatusDraft}
	subs := []model.SubOrder{
		deliverySub(canceled, 100, 0, testNow.AddDate(0, 0, 1)),
		deliverySub(draft, 100, 0, testNow.AddDate(0, 0, 1)),
	}

	s := newTestSynthesizer(&stubNotifications{}, &stubUrgentOrders{}, &stubDeliveries{subs: subs})
	feed := s.Synthesize(context.Background(), adminViewer())

	assert.Empty(t, feed)
}

func TestRoleGating(t *testing.T) {
	order := &model.Order{ID: uuid.New(), OrderNo: "ORD-7", Status: model.StatusConfirmed, UpdatedAt: testNow,
		SubOrders: []model.SubOrder{{Priority: model.PriorityUrgent}}}
	urgent := &stubUrgentOrders{orders: []model.Order{*order}}
	delivery := &stubDeliveries{subs: []model.SubOrder{
		deliverySub(&model.Order{ID: uuid.New(), OrderNo: "ORD-8", Status: model.StatusConfirmed}, 10, 0, testNow.AddDate(0, 0, 1)),
	}}
	s := newTestSynthesizer(&stubNotifications{}, urgent, delivery)

	byRole := func(role string) []Alert {
		return s.Synthesize(context.Background(), Viewer{ID: uuid.New(), Role: role})
	}

	assert.Len(t, byRole(model.RoleAdmin), 2, "admin sees both signal kinds")
	assert.Len(t, byRole(model.RoleSales), 2, "sales sees both signal kinds")

	prodFeed := byRole(model.RoleProduction)
	require.Len(t, prodFeed, 1, "production sees urgent orders only")
	assert.Equal(t, PriorityUrgentOrder, prodFeed[0].Priority)

	shipFeed := byRole(model.RoleShipping)
	require.Len(t, shipFeed, 1, "shipping sees delivery signals only")
	assert.Equal(t, PriorityDeliveryUrgent, shipFeed[0].Priority)
}

func TestNotificationAlertMapping(t *testing.T) {
	nid := uuid.New()
	notes := &stubNotifications{notes: []model.Notification{
		{ID: nid, Type: model.NotificationWarning, Title: "Delivery approaching", Body: "20 unshipped", Link: "/orders/x", CreatedAt: testNow},
	}}

	s := newTestSynthesizer(notes, &stubUrgentOrders{}, &stubDeliveries{})
	feed := s.Synthesize(context.Background(), adminViewer())

	require.Len(t, feed, 1)
	a := feed[0]
	assert.Equal(t, "notification:"+nid.String(), a.ID)
	assert.Equal(t, TypeWarning, a.Type)
	assert.Equal(t, PriorityNotificationWarning, a.Priority)
	assert.Equal(t, "/orders/x", a.Link)
	assert.True(t, a.IsNew)
}

func TestOverdueDeliveryStillAlerts(t *testing.T) {
	order := &model.Order{ID: uuid.New(), OrderNo: "ORD-9", Status: model.StatusInProduction}
	sub := deliverySub(order, 10, 0, testNow.AddDate(0, 0, -1))

	s := newTestSynthesizer(&stubNotifications{}, &stubUrgentOrders{}, &stubDeliveries{subs: []model.SubOrder{sub}})
	feed := s.Synthesize(context.Background(), adminViewer())

	require.Len(t, feed, 1)
	assert.Equal(t, PriorityDeliveryUrgent, feed[0].Priority)
	assert.Contains(t, feed[0].Description, "overdue by 1 days")
}
