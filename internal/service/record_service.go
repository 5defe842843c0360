package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pipeflow/internal/dto"
	"pipeflow/internal/ledger"
	"pipeflow/internal/model"
	"pipeflow/internal/repository"
	"pipeflow/internal/status"
	"pipeflow/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RecordService owns every mutation of production and shipping records.
// Each operation follows the same discipline: lock the sub-order row, read
// the freshest ledger totals, run the capacity guard, write, then re-derive
// the order status — all inside one transaction, so status never lags
// committed quantities and two writers cannot jointly over-commit.
type RecordService interface {
	AddProduction(ctx context.Context, subOrderID, actorID uuid.UUID, req dto.ProductionRecordRequest) (*dto.ProductionRecordResponse, error)
	UpdateProduction(ctx context.Context, recordID uuid.UUID, req dto.ProductionRecordRequest) (*dto.ProductionRecordResponse, error)
	DeleteProduction(ctx context.Context, recordID uuid.UUID) error

	AddShipping(ctx context.Context, subOrderID, actorID uuid.UUID, req dto.ShippingRecordRequest) (*dto.ShippingRecordResponse, error)
	UpdateShipping(ctx context.Context, recordID uuid.UUID, req dto.ShippingRecordRequest) (*dto.ShippingRecordResponse, error)
	DeleteShipping(ctx context.Context, recordID uuid.UUID) error

	// Ledger returns the derived totals for one sub-order.
	Ledger(ctx context.Context, subOrderID uuid.UUID) (*dto.LedgerResponse, error)
}

type recordService struct {
	orders      repository.OrderRepository
	subOrders   repository.SubOrderRepository
	production  repository.ProductionRecordRepository
	shipping    repository.ShippingRecordRepository
	transitions repository.StatusTransitionRepository
	dispatcher  *worker.Dispatcher
}

func NewRecordService(
	orders repository.OrderRepository,
	subOrders repository.SubOrderRepository,
	production repository.ProductionRecordRepository,
	shipping repository.ShippingRecordRepository,
	transitions repository.StatusTransitionRepository,
	dispatcher *worker.Dispatcher,
) RecordService {
	return &recordService{
		orders:      orders,
		subOrders:   subOrders,
		production:  production,
		shipping:    shipping,
		transitions: transitions,
		dispatcher:  dispatcher,
	}
}

// ── Production ───────────────────────────────────────────────────────────────

func (s *recordService) AddProduction(ctx context.Context, subOrderID, actorID uuid.UUID, req dto.ProductionRecordRequest) (*dto.ProductionRecordResponse, error) {
	producedOn, err := parseDate(req.ProducedOn)
	if err != nil {
		return nil, fmt.Errorf("produced_on: %w", err)
	}

	var rec model.ProductionRecord
	var totals ledger.Totals
	var orderStatus model.OrderStatus
	var changed *worker.StatusChangedPayload

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		sub, err := s.lockSubOrder(tx, subOrderID)
		if err != nil {
			return err
		}
		if err := ledger.CheckProduction(sub.PlannedQuantity, ledger.ProducedTotal(sub), req.Quantity); err != nil {
			return err
		}

		rec = model.ProductionRecord{
			SubOrderID: subOrderID,
			Quantity:   req.Quantity,
			ProducedOn: producedOn,
			Team:       req.Team,
			Shift:      req.Shift,
			StartedAt:  parseTimestamp(req.StartedAt),
			EndedAt:    parseTimestamp(req.EndedAt),
			CreatedBy:  &actorID,
		}
		if err := s.production.CreateTx(tx, &rec); err != nil {
			return err
		}

		sub.ProductionRecords = append(sub.ProductionRecords, rec)
		totals = ledger.Compute(sub)

		orderStatus, changed, err = s.reconcileTx(tx, sub.OrderID, "production record added")
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("sub_order_id", subOrderID.String()).
		Str("record_id", rec.ID.String()).
		Int("quantity", req.Quantity).
		Msg("production record accepted")
	s.notify(ctx, changed)

	return &dto.ProductionRecordResponse{
		ID:         rec.ID.String(),
		SubOrderID: subOrderID.String(),
		Quantity:   rec.Quantity,
		ProducedOn: rec.ProducedOn.Format("2006-01-02"),
		Team:       rec.Team,
		Shift:      rec.Shift,
		Ledger:     totals,
		Status:     string(orderStatus),
	}, nil
}

func (s *recordService) UpdateProduction(ctx context.Context, recordID uuid.UUID, req dto.ProductionRecordRequest) (*dto.ProductionRecordResponse, error) {
	producedOn, err := parseDate(req.ProducedOn)
	if err != nil {
		return nil, fmt.Errorf("produced_on: %w", err)
	}

	existing, err := s.production.FindByID(ctx, recordID)
	if err != nil {
		return nil, ErrRecordNotFound
	}

	var totals ledger.Totals
	var orderStatus model.OrderStatus
	var changed *worker.StatusChangedPayload

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		sub, err := s.lockSubOrder(tx, existing.SubOrderID)
		if err != nil {
			return err
		}

		// Capacity is checked excluding the record being edited; a downward
		// edit must still leave enough produced to cover what already shipped.
		producedExcl := ledger.ProducedTotalExcluding(sub, recordID)
		if err := ledger.CheckProduction(sub.PlannedQuantity, producedExcl, req.Quantity); err != nil {
			return err
		}
		if err := ledger.CheckProductionRemoval(producedExcl+req.Quantity, ledger.ShippedTotal(sub)); err != nil {
			return err
		}

		existing.Quantity = req.Quantity
		existing.ProducedOn = producedOn
		existing.Team = req.Team
		existing.Shift = req.Shift
		existing.StartedAt = parseTimestamp(req.StartedAt)
		existing.EndedAt = parseTimestamp(req.EndedAt)
		if err := s.production.UpdateTx(tx, existing); err != nil {
			return err
		}

		replaceProduction(sub, existing)
		totals = ledger.Compute(sub)

		orderStatus, changed, err = s.reconcileTx(tx, sub.OrderID, "production record amended")
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("record_id", recordID.String()).Int("quantity", req.Quantity).Msg("production record amended")
	s.notify(ctx, changed)

	return &dto.ProductionRecordResponse{
		ID:         existing.ID.String(),
		SubOrderID: existing.SubOrderID.String(),
		Quantity:   existing.Quantity,
		ProducedOn: existing.ProducedOn.Format("2006-01-02"),
		Team:       existing.Team,
		Shift:      existing.Shift,
		Ledger:     totals,
		Status:     string(orderStatus),
	}, nil
}

func (s *recordService) DeleteProduction(ctx context.Context, recordID uuid.UUID) error {
	existing, err := s.production.FindByID(ctx, recordID)
	if err != nil {
		return ErrRecordNotFound
	}

	var changed *worker.StatusChangedPayload

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		sub, err := s.lockSubOrder(tx, existing.SubOrderID)
		if err != nil {
			return err
		}

		// Deleting produced quantity that was already shipped against would
		// leave shipped > produced — rejected as an integrity violation.
		producedAfter := ledger.ProducedTotalExcluding(sub, recordID)
		if err := ledger.CheckProductionRemoval(producedAfter, ledger.ShippedTotal(sub)); err != nil {
			return err
		}

		if err := s.production.DeleteTx(tx, recordID); err != nil {
			return err
		}
		removeProduction(sub, recordID)

		_, changed, err = s.reconcileTx(tx, sub.OrderID, "production record deleted")
		return err
	})
	if txErr != nil {
		return txErr
	}

	log.Info().Str("record_id", recordID.String()).Msg("production record deleted")
	s.notify(ctx, changed)
	return nil
}

// ── Shipping ─────────────────────────────────────────────────────────────────

func (s *recordService) AddShipping(ctx context.Context, subOrderID, actorID uuid.UUID, req dto.ShippingRecordRequest) (*dto.ShippingRecordResponse, error) {
	shippedOn, err := parseDate(req.ShippedOn)
	if err != nil {
		return nil, fmt.Errorf("shipped_on: %w", err)
	}
	transport := req.TransportType
	if transport == "" {
		transport = model.TransportTruck
	}

	var rec model.ShippingRecord
	var totals ledger.Totals
	var orderStatus model.OrderStatus
	var changed *worker.StatusChangedPayload

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		sub, err := s.lockSubOrder(tx, subOrderID)
		if err != nil {
			return err
		}
		if err := ledger.CheckShipping(ledger.ProducedTotal(sub), ledger.ShippedTotal(sub), req.Quantity); err != nil {
			return err
		}

		rec = model.ShippingRecord{
			SubOrderID:    subOrderID,
			Quantity:      req.Quantity,
			ShippedOn:     shippedOn,
			TransportType: transport,
			Destination:   req.Destination,
			Carrier:       req.Carrier,
			DriverName:    req.DriverName,
			DriverPhone:   req.DriverPhone,
			VehicleNo:     req.VehicleNo,
			CreatedBy:     &actorID,
		}
		if err := s.shipping.CreateTx(tx, &rec); err != nil {
			return err
		}

		sub.ShippingRecords = append(sub.ShippingRecords, rec)
		totals = ledger.Compute(sub)

		orderStatus, changed, err = s.reconcileTx(tx, sub.OrderID, "shipping record added")
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("sub_order_id", subOrderID.String()).
		Str("record_id", rec.ID.String()).
		Int("quantity", req.Quantity).
		Msg("shipping record accepted")
	s.notify(ctx, changed)

	return &dto.ShippingRecordResponse{
		ID:            rec.ID.String(),
		SubOrderID:    subOrderID.String(),
		Quantity:      rec.Quantity,
		ShippedOn:     rec.ShippedOn.Format("2006-01-02"),
		TransportType: rec.TransportType,
		Destination:   rec.Destination,
		Ledger:        totals,
		Status:        string(orderStatus),
	}, nil
}

func (s *recordService) UpdateShipping(ctx context.Context, recordID uuid.UUID, req dto.ShippingRecordRequest) (*dto.ShippingRecordResponse, error) {
	shippedOn, err := parseDate(req.ShippedOn)
	if err != nil {
		return nil, fmt.Errorf("shipped_on: %w", err)
	}

	existing, err := s.shipping.FindByID(ctx, recordID)
	if err != nil {
		return nil, ErrRecordNotFound
	}

	var totals ledger.Totals
	var orderStatus model.OrderStatus
	var changed *worker.StatusChangedPayload

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		sub, err := s.lockSubOrder(tx, existing.SubOrderID)
		if err != nil {
			return err
		}

		shippedExcl := ledger.ShippedTotalExcluding(sub, recordID)
		if err := ledger.CheckShipping(ledger.ProducedTotal(sub), shippedExcl, req.Quantity); err != nil {
			return err
		}

		existing.Quantity = req.Quantity
		existing.ShippedOn = shippedOn
		if req.TransportType != "" {
			existing.TransportType = req.TransportType
		}
		existing.Destination = req.Destination
		existing.Carrier = req.Carrier
		existing.DriverName = req.DriverName
		existing.DriverPhone = req.DriverPhone
		existing.VehicleNo = req.VehicleNo
		if err := s.shipping.UpdateTx(tx, existing); err != nil {
			return err
		}

		replaceShipping(sub, existing)
		totals = ledger.Compute(sub)

		orderStatus, changed, err = s.reconcileTx(tx, sub.OrderID, "shipping record amended")
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("record_id", recordID.String()).Int("quantity", req.Quantity).Msg("shipping record amended")
	s.notify(ctx, changed)

	return &dto.ShippingRecordResponse{
		ID:            existing.ID.String(),
		SubOrderID:    existing.SubOrderID.String(),
		Quantity:      existing.Quantity,
		ShippedOn:     existing.ShippedOn.Format("2006-01-02"),
		TransportType: existing.TransportType,
		Destination:   existing.Destination,
		Ledger:        totals,
		Status:        string(orderStatus),
	}, nil
}

func (s *recordService) DeleteShipping(ctx context.Context, recordID uuid.UUID) error {
	existing, err := s.shipping.FindByID(ctx, recordID)
	if err != nil {
		return ErrRecordNotFound
	}

	var changed *worker.StatusChangedPayload

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		sub, err := s.lockSubOrder(tx, existing.SubOrderID)
		if err != nil {
			return err
		}
		if err := s.shipping.DeleteTx(tx, recordID); err != nil {
			return err
		}
		removeShipping(sub, recordID)

		_, changed, err = s.reconcileTx(tx, sub.OrderID, "shipping record deleted")
		return err
	})
	if txErr != nil {
		return txErr
	}

	log.Info().Str("record_id", recordID.String()).Msg("shipping record deleted")
	s.notify(ctx, changed)
	return nil
}

// ── Ledger queries ───────────────────────────────────────────────────────────

func (s *recordService) Ledger(ctx context.Context, subOrderID uuid.UUID) (*dto.LedgerResponse, error) {
	sub, err := s.subOrders.FindByID(ctx, subOrderID)
	if err != nil {
		return nil, ErrSubOrderNotFound
	}
	return &dto.LedgerResponse{
		SubOrderID: subOrderID.String(),
		Ledger:     ledger.Compute(sub),
	}, nil
}

// ── Internals ────────────────────────────────────────────────────────────────

func (s *recordService) lockSubOrder(tx *gorm.DB, id uuid.UUID) (*model.SubOrder, error) {
	sub, err := s.subOrders.FindByIDForUpdateTx(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubOrderNotFound
		}
		return nil, err
	}
	return sub, nil
}

// reconcileTx re-derives the order status from the aggregate totals of all
// its sub-orders. On change it updates the order and writes the immutable
// transition audit row, all inside the caller's transaction. Always returns
// the status the order holds after reconciliation; the payload for async
// fan-out is nil when the status is unchanged.
func (s *recordService) reconcileTx(tx *gorm.DB, orderID uuid.UUID, note string) (model.OrderStatus, *worker.StatusChangedPayload, error) {
	order, err := s.orders.FindByIDWithRecordsTx(tx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrOrderNotFound
		}
		return "", nil, err
	}

	agg := ledger.Aggregate(order.SubOrders)
	next := status.Derive(order.Status, agg)
	if next == order.Status {
		return next, nil, nil
	}

	if err := s.orders.UpdateStatusTx(tx, orderID, next); err != nil {
		return "", nil, err
	}
	if err := s.transitions.CreateTx(tx, &model.StatusTransition{
		OrderID:       orderID,
		FromStatus:    order.Status,
		ToStatus:      next,
		TotalPlanned:  agg.Planned,
		TotalProduced: agg.Produced,
		TotalShipped:  agg.Shipped,
		Note:          note,
	}); err != nil {
		return "", nil, err
	}

	log.Info().
		Str("order_no", order.OrderNo).
		Str("from", string(order.Status)).
		Str("to", string(next)).
		Int("planned", agg.Planned).
		Int("produced", agg.Produced).
		Int("shipped", agg.Shipped).
		Msg("order status transitioned")

	return next, &worker.StatusChangedPayload{
		OrderID:       orderID.String(),
		OrderNo:       order.OrderNo,
		CustomerName:  order.CustomerName,
		FromStatus:    string(order.Status),
		ToStatus:      string(next),
		TotalPlanned:  agg.Planned,
		TotalProduced: agg.Produced,
		TotalShipped:  agg.Shipped,
	}, nil
}

// notify fans out a committed transition — best-effort, after commit.
func (s *recordService) notify(ctx context.Context, changed *worker.StatusChangedPayload) {
	if changed == nil || s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueStatusChanged(ctx, *changed); err != nil {
		log.Error().Err(err).Str("order_no", changed.OrderNo).Msg("failed to enqueue status notification")
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

// In-memory record list maintenance so post-write totals come from the same
// locked snapshot the guard validated against.

func replaceProduction(sub *model.SubOrder, rec *model.ProductionRecord) {
	for i := range sub.ProductionRecords {
		if sub.ProductionRecords[i].ID == rec.ID {
			sub.ProductionRecords[i] = *rec
			return
		}
	}
	sub.ProductionRecords = append(sub.ProductionRecords, *rec)
}

func removeProduction(sub *model.SubOrder, id uuid.UUID) {
	for i := range sub.ProductionRecords {
		if sub.ProductionRecords[i].ID == id {
			sub.ProductionRecords = append(sub.ProductionRecords[:i], sub.ProductionRecords[i+1:]...)
			return
		}
	}
}

func replaceShipping(sub *model.SubOrder, rec *model.ShippingRecord) {
	for i := range sub.ShippingRecords {
		if sub.ShippingRecords[i].ID == rec.ID {
			sub.ShippingRecords[i] = *rec
			return
		}
	}
	sub.ShippingRecords = append(sub.ShippingRecords, *rec)
}

func removeShipping(sub *model.SubOrder, id uuid.UUID) {
	for i := range sub.ShippingRecords {
		if sub.ShippingRecords[i].ID == id {
			sub.ShippingRecords = append(sub.ShippingRecords[:i], sub.ShippingRecords[i+1:]...)
			return
		}
	}
}
