package tests

// Order service suite: draft creation, the confirm-on-first-line transition,
// detail aggregation, and explicit cancellation.

import (
	"context"
	"testing"

	"pipeflow/internal/dto"
	"pipeflow/internal/model"
	"pipeflow/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	w       *fulfillmentWorld
	orders  service.OrderService
	records service.RecordService
	actorID uuid.UUID
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	w := newWorld()
	orderRepo := &stubOrderRepo{w: w}
	subRepo := &stubSubOrderRepo{w: w}
	prodRepo := &stubProductionRepo{w: w}
	shipRepo := &stubShippingRepo{w: w}
	transRepo := &stubTransitionRepo{w: w}
	return &orderFixture{
		w:       w,
		orders:  service.NewOrderService(orderRepo, subRepo, transRepo, nil),
		records: service.NewRecordService(orderRepo, subRepo, prodRepo, shipRepo, transRepo, nil),
		actorID: uuid.New(),
	}
}

func (f *orderFixture) createOrder(t *testing.T, orderNo string) *dto.OrderResponse {
	t.Helper()
	amount := decimal.NewFromInt(250000)
	resp, err := f.orders.Create(context.Background(), f.actorID, dto.CreateOrderRequest{
		OrderNo:        orderNo,
		CustomerName:   "Acme Water",
		ShippingMethod: "truck",
		TotalAmount:    &amount,
	})
	require.NoError(t, err)
	return resp
}

func (f *orderFixture) addLine(t *testing.T, orderID string, planned int) *dto.SubOrderResponse {
	t.Helper()
	resp, err := f.orders.AddSubOrder(context.Background(), uuid.MustParse(orderID), dto.CreateSubOrderRequest{
		Spec:            "DN300",
		PlannedQuantity: planned,
		DeliveryDate:    "2026-04-15",
		Priority:        "normal",
	})
	require.NoError(t, err)
	return resp
}

func TestCreateOrderStartsAsDraft(t *testing.T) {
	f := newOrderFixture(t)

	resp := f.createOrder(t, "PF-2026-010")

	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, "PF-2026-010", resp.OrderNo)
	assert.Empty(t, f.w.transitions, "creation is not a transition")
}

func TestDuplicateOrderNoRejected(t *testing.T) {
	f := newOrderFixture(t)
	f.createOrder(t, "PF-2026-011")

	_, err := f.orders.Create(context.Background(), f.actorID, dto.CreateOrderRequest{
		OrderNo: "PF-2026-011", CustomerName: "Other",
	})
	assert.ErrorIs(t, err, service.ErrDuplicateOrderNo)
}

func TestFirstSubOrderConfirmsDraft(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, "PF-2026-012")

	line := f.addLine(t, order.ID, 100)
	assert.Equal(t, 100, line.Ledger.Planned)
	assert.Equal(t, 0, line.Ledger.Produced)

	orderID := uuid.MustParse(order.ID)
	assert.Equal(t, model.StatusConfirmed, f.w.orders[orderID].Status)
	require.Len(t, f.w.transitions, 1)
	assert.Equal(t, model.StatusDraft, f.w.transitions[0].FromStatus)
	assert.Equal(t, model.StatusConfirmed, f.w.transitions[0].ToStatus)

	// second line does not re-fire the transition
	f.addLine(t, order.ID, 50)
	assert.Len(t, f.w.transitions, 1)
}

func TestAddSubOrderToCanceledOrderRejected(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, "PF-2026-013")
	f.addLine(t, order.ID, 100)

	_, err := f.orders.Cancel(context.Background(), uuid.MustParse(order.ID), dto.CancelOrderRequest{Reason: "customer withdrew"})
	require.NoError(t, err)

	_, err = f.orders.AddSubOrder(context.Background(), uuid.MustParse(order.ID), dto.CreateSubOrderRequest{
		Spec: "DN400", PlannedQuantity: 10, DeliveryDate: "2026-05-01",
	})
	assert.ErrorIs(t, err, service.ErrOrderCanceled)
}

func TestGetDetailAggregatesAcrossLines(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, "PF-2026-014")
	lineA := f.addLine(t, order.ID, 100)
	f.addLine(t, order.ID, 50)

	_, err := f.records.AddProduction(context.Background(), uuid.MustParse(lineA.ID), f.actorID, dto.ProductionRecordRequest{
		Quantity: 40, ProducedOn: "2026-03-01",
	})
	require.NoError(t, err)

	detail, err := f.orders.Get(context.Background(), uuid.MustParse(order.ID))
	require.NoError(t, err)

	assert.Equal(t, "in_production", detail.Status)
	assert.Equal(t, 150, detail.Aggregate.Planned)
	assert.Equal(t, 40, detail.Aggregate.Produced)
	assert.Equal(t, 27, detail.Aggregate.Progress) // round(100*40/150)
	require.Len(t, detail.SubOrders, 2)
	assert.Equal(t, 110, detail.Aggregate.RemainingToProduce)
}

func TestProgressSummaryListsEveryLine(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, "PF-2026-019")
	lineA := f.addLine(t, order.ID, 100)
	f.addLine(t, order.ID, 50)

	_, err := f.records.AddProduction(context.Background(), uuid.MustParse(lineA.ID), f.actorID, dto.ProductionRecordRequest{
		Quantity: 100, ProducedOn: "2026-03-01",
	})
	require.NoError(t, err)
	_, err = f.records.AddShipping(context.Background(), uuid.MustParse(lineA.ID), f.actorID, dto.ShippingRecordRequest{
		Quantity: 25, ShippedOn: "2026-03-02",
	})
	require.NoError(t, err)

	progress, err := f.orders.Progress(context.Background(), uuid.MustParse(order.ID))
	require.NoError(t, err)

	assert.Equal(t, "PF-2026-019", progress.OrderNo)
	require.Len(t, progress.Lines, 2)
	assert.Equal(t, 100, progress.Lines[0].Ledger.Progress)
	assert.Equal(t, 0, progress.Lines[1].Ledger.Progress)
	assert.Equal(t, 67, progress.Aggregate.Progress)
	assert.Equal(t, 75, progress.Lines[0].Ledger.InStock)
	assert.Equal(t, 50, progress.Aggregate.Shortage, "surplus on one line never covers another")
}

func TestOneFullyShippedLineLeavesOrderPartiallyShipped(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, "PF-2026-020")
	lineA := f.addLine(t, order.ID, 50)
	lineB := f.addLine(t, order.ID, 50)

	aID := uuid.MustParse(lineA.ID)
	bID := uuid.MustParse(lineB.ID)

	// line A fully produced and shipped
	_, err := f.records.AddProduction(context.Background(), aID, f.actorID, dto.ProductionRecordRequest{
		Quantity: 50, ProducedOn: "2026-03-01",
	})
	require.NoError(t, err)
	_, err = f.records.AddShipping(context.Background(), aID, f.actorID, dto.ShippingRecordRequest{
		Quantity: 50, ShippedOn: "2026-03-02",
	})
	require.NoError(t, err)

	// line B produced in full but nothing shipped yet
	_, err = f.records.AddProduction(context.Background(), bID, f.actorID, dto.ProductionRecordRequest{
		Quantity: 50, ProducedOn: "2026-03-03",
	})
	require.NoError(t, err)

	// completing one line never completes the order; the aggregate decides
	assert.Equal(t, model.StatusPartiallyShipped, f.w.orders[uuid.MustParse(order.ID)].Status)

	detail, err := f.orders.Get(context.Background(), uuid.MustParse(order.ID))
	require.NoError(t, err)
	assert.Equal(t, "partially_shipped", detail.Status)
	assert.Equal(t, 100, detail.Aggregate.Produced)
	assert.Equal(t, 50, detail.Aggregate.Shipped)
	assert.Equal(t, 50, detail.Aggregate.RemainingToShip)
}

func TestCancelRecordsAggregateSnapshot(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, "PF-2026-015")
	line := f.addLine(t, order.ID, 100)
	_, err := f.records.AddProduction(context.Background(), uuid.MustParse(line.ID), f.actorID, dto.ProductionRecordRequest{
		Quantity: 30, ProducedOn: "2026-03-01",
	})
	require.NoError(t, err)

	resp, err := f.orders.Cancel(context.Background(), uuid.MustParse(order.ID), dto.CancelOrderRequest{Reason: "budget cut"})
	require.NoError(t, err)
	assert.Equal(t, "canceled", resp.Status)

	last := f.w.transitions[len(f.w.transitions)-1]
	assert.Equal(t, model.StatusCanceled, last.ToStatus)
	assert.Equal(t, 100, last.TotalPlanned)
	assert.Equal(t, 30, last.TotalProduced)
	assert.Equal(t, "budget cut", last.Note)
}

func TestCancelTwiceRejected(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, "PF-2026-016")
	f.addLine(t, order.ID, 10)

	_, err := f.orders.Cancel(context.Background(), uuid.MustParse(order.ID), dto.CancelOrderRequest{Reason: "first"})
	require.NoError(t, err)
	_, err = f.orders.Cancel(context.Background(), uuid.MustParse(order.ID), dto.CancelOrderRequest{Reason: "second"})
	assert.ErrorIs(t, err, service.ErrAlreadyCanceled)
}

func TestCancelCompletedOrderRejected(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, "PF-2026-017")
	line := f.addLine(t, order.ID, 10)

	subID := uuid.MustParse(line.ID)
	_, err := f.records.AddProduction(context.Background(), subID, f.actorID, dto.ProductionRecordRequest{
		Quantity: 10, ProducedOn: "2026-03-01",
	})
	require.NoError(t, err)
	_, err = f.records.AddShipping(context.Background(), subID, f.actorID, dto.ShippingRecordRequest{
		Quantity: 10, ShippedOn: "2026-03-02",
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, f.w.orders[uuid.MustParse(order.ID)].Status)

	_, err = f.orders.Cancel(context.Background(), uuid.MustParse(order.ID), dto.CancelOrderRequest{Reason: "too late"})
	assert.ErrorIs(t, err, service.ErrOrderCompleted)
}

func TestTransitionsEndpointReturnsTrail(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, "PF-2026-018")
	line := f.addLine(t, order.ID, 10)

	subID := uuid.MustParse(line.ID)
	_, err := f.records.AddProduction(context.Background(), subID, f.actorID, dto.ProductionRecordRequest{
		Quantity: 10, ProducedOn: "2026-03-01",
	})
	require.NoError(t, err)

	trail, err := f.orders.Transitions(context.Background(), uuid.MustParse(order.ID))
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, "draft", trail[0].FromStatus)
	assert.Equal(t, "confirmed", trail[0].ToStatus)
	assert.Equal(t, "in_production", trail[1].ToStatus)

	_, err = f.orders.Transitions(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrOrderNotFound)
}
