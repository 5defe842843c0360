package tests

// Shared in-memory repository stubs for the service suites. The stubs share
// one fulfillmentWorld so a record created through the production repo is
// visible when the order repo rebuilds the aggregate during reconciliation —
// the same coupling the real schema has.

import (
	"context"
	"time"

	"pipeflow/internal/dto"
	"pipeflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fulfillmentWorld struct {
	orders      map[uuid.UUID]*model.Order
	subs        map[uuid.UUID]*model.SubOrder
	subIDs      []uuid.UUID // creation order, for deterministic listings
	prods       map[uuid.UUID]*model.ProductionRecord
	ships       map[uuid.UUID]*model.ShippingRecord
	transitions []model.StatusTransition
}

func newWorld() *fulfillmentWorld {
	return &fulfillmentWorld{
		orders: make(map[uuid.UUID]*model.Order),
		subs:   make(map[uuid.UUID]*model.SubOrder),
		prods:  make(map[uuid.UUID]*model.ProductionRecord),
		ships:  make(map[uuid.UUID]*model.ShippingRecord),
	}
}

// subSnapshot returns a copy of the sub-order with its records attached.
func (w *fulfillmentWorld) subSnapshot(id uuid.UUID) *model.SubOrder {
	stored, ok := w.subs[id]
	if !ok {
		return nil
	}
	sub := *stored
	sub.ProductionRecords = nil
	sub.ShippingRecords = nil
	for _, r := range w.prods {
		if r.SubOrderID == id {
			sub.ProductionRecords = append(sub.ProductionRecords, *r)
		}
	}
	for _, r := range w.ships {
		if r.SubOrderID == id {
			sub.ShippingRecords = append(sub.ShippingRecords, *r)
		}
	}
	return &sub
}

func (w *fulfillmentWorld) orderSnapshot(id uuid.UUID) *model.Order {
	stored, ok := w.orders[id]
	if !ok {
		return nil
	}
	order := *stored
	order.SubOrders = nil
	for _, subID := range w.subIDs {
		if w.subs[subID].OrderID == id {
			order.SubOrders = append(order.SubOrders, *w.subSnapshot(subID))
		}
	}
	return &order
}

// ── OrderRepository ──────────────────────────────────────────────────────────

type stubOrderRepo struct{ w *fulfillmentWorld }

func (r *stubOrderRepo) Create(_ context.Context, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for _, existing := range r.w.orders {
		if existing.OrderNo == o.OrderNo {
			return gorm.ErrDuplicatedKey
		}
	}
	o.CreatedAt = time.Now()
	cloned := *o
	r.w.orders[o.ID] = &cloned
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o := r.w.orderSnapshot(id)
	if o == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) FindByIDWithRecords(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o := r.w.orderSnapshot(id)
	if o == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) FindByIDWithRecordsTx(_ *gorm.DB, id uuid.UUID) (*model.Order, error) {
	o := r.w.orderSnapshot(id)
	if o == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) List(_ context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for id := range r.w.orders {
		o := r.w.orderSnapshot(id)
		if filter.Status != "" && string(o.Status) != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status model.OrderStatus) error {
	o, ok := r.w.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	return nil
}

func (r *stubOrderRepo) ListActiveWithUrgentSubOrders(_ context.Context) ([]model.Order, error) {
	var out []model.Order
	for id := range r.w.orders {
		o := r.w.orderSnapshot(id)
		if o.Status != model.StatusConfirmed && o.Status != model.StatusInProduction {
			continue
		}
		for i := range o.SubOrders {
			if o.SubOrders[i].Priority.IsUrgent() {
				out = append(out, *o)
				break
			}
		}
	}
	return out, nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

// ── SubOrderRepository ───────────────────────────────────────────────────────

type stubSubOrderRepo struct{ w *fulfillmentWorld }

func (r *stubSubOrderRepo) Create(_ context.Context, s *model.SubOrder) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	cloned := *s
	r.w.subs[s.ID] = &cloned
	r.w.subIDs = append(r.w.subIDs, s.ID)
	return nil
}

func (r *stubSubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SubOrder, error) {
	sub := r.w.subSnapshot(id)
	if sub == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (r *stubSubOrderRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.SubOrder, error) {
	sub := r.w.subSnapshot(id)
	if sub == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (r *stubSubOrderRepo) ListNearDelivery(_ context.Context, from, to time.Time) ([]model.SubOrder, error) {
	var out []model.SubOrder
	for _, id := range r.w.subIDs {
		sub := r.w.subSnapshot(id)
		if sub.DeliveryDate.Before(from) || sub.DeliveryDate.After(to) {
			continue
		}
		order := r.w.orderSnapshot(sub.OrderID)
		sub.Order = order
		out = append(out, *sub)
	}
	return out, nil
}

// ── Record repositories ──────────────────────────────────────────────────────

type stubProductionRepo struct{ w *fulfillmentWorld }

func (r *stubProductionRepo) CreateTx(_ *gorm.DB, rec *model.ProductionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	cloned := *rec
	r.w.prods[rec.ID] = &cloned
	return nil
}

func (r *stubProductionRepo) UpdateTx(_ *gorm.DB, rec *model.ProductionRecord) error {
	if _, ok := r.w.prods[rec.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cloned := *rec
	r.w.prods[rec.ID] = &cloned
	return nil
}

func (r *stubProductionRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.w.prods, id)
	return nil
}

func (r *stubProductionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProductionRecord, error) {
	rec, ok := r.w.prods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *rec
	return &cloned, nil
}

func (r *stubProductionRepo) ListBySubOrder(_ context.Context, subOrderID uuid.UUID) ([]model.ProductionRecord, error) {
	var out []model.ProductionRecord
	for _, rec := range r.w.prods {
		if rec.SubOrderID == subOrderID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type stubShippingRepo struct{ w *fulfillmentWorld }

func (r *stubShippingRepo) CreateTx(_ *gorm.DB, rec *model.ShippingRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	cloned := *rec
	r.w.ships[rec.ID] = &cloned
	return nil
}

func (r *stubShippingRepo) UpdateTx(_ *gorm.DB, rec *model.ShippingRecord) error {
	if _, ok := r.w.ships[rec.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cloned := *rec
	r.w.ships[rec.ID] = &cloned
	return nil
}

func (r *stubShippingRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.w.ships, id)
	return nil
}

func (r *stubShippingRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ShippingRecord, error) {
	rec, ok := r.w.ships[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *rec
	return &cloned, nil
}

func (r *stubShippingRepo) ListBySubOrder(_ context.Context, subOrderID uuid.UUID) ([]model.ShippingRecord, error) {
	var out []model.ShippingRecord
	for _, rec := range r.w.ships {
		if rec.SubOrderID == subOrderID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// ── StatusTransitionRepository ───────────────────────────────────────────────

type stubTransitionRepo struct{ w *fulfillmentWorld }

func (r *stubTransitionRepo) CreateTx(_ *gorm.DB, t *model.StatusTransition) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	r.w.transitions = append(r.w.transitions, *t)
	return nil
}

func (r *stubTransitionRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]model.StatusTransition, error) {
	var out []model.StatusTransition
	for _, t := range r.w.transitions {
		if t.OrderID == orderID {
			out = append(out, t)
		}
	}
	return out, nil
}
