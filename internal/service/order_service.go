package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

type OrderService interface {
	Create(ctx context.Context, actorID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	// AddSubOrder appends a specification line; the first line confirms a
	// draft order.
	AddSubOrder(ctx context.Context, orderID uuid.UUID, req dto.CreateSubOrderRequest) (*dto.SubOrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.OrderDetailResponse, error)
	List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, req dto.CancelOrderRequest) (*dto.OrderResponse, error)
	Transitions(ctx context.Context, id uuid.UUID) ([]dto.TransitionResponse, error)
	// Progress is the dashboard view: aggregate totals plus per-line ledgers.
	Progress(ctx context.Context, id uuid.UUID) (*dto.ProgressResponse, error)
}

type orderService struct {
	orders      repository.OrderRepository
	subOrders   repository.SubOrderRepository
	transitions repository.StatusTransitionRepository
	dispatcher  *worker.Dispatcher
}

func NewOrderService(
	orders repository.OrderRepository,
	subOrders repository.SubOrderRepository,
	transitions repository.StatusTransitionRepository,
	dispatcher *worker.Dispatcher,
) OrderService {
	return &orderService{
		orders:      orders,
		subOrders:   subOrders,
		transitions: transitions,
		dispatcher:  dispatcher,
	}
}

func (s *orderService) Create(ctx context.Context, actorID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	order := model.Order{
		OrderNo:        req.OrderNo,
		CustomerName:   req.CustomerName,
		Status:         model.StatusDraft,
		ShippingMethod: req.ShippingMethod,
		TotalAmount:    req.TotalAmount,
		Remark:         req.Remark,
	}
	if actorID != uuid.Nil {
		order.CreatedBy = &actorID
	}

	if err := s.orders.Create(ctx, &order); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateOrderNo
		}
		return nil, err
	}

	log.Info().Str("order_no", order.OrderNo).Str("customer", order.CustomerName).Msg("order created")
	return orderToResponse(&order), nil
}

func (s *orderService) AddSubOrder(ctx context.Context, orderID uuid.UUID, req dto.CreateSubOrderRequest) (*dto.SubOrderResponse, error) {
	deliveryDate, err := parseDate(req.DeliveryDate)
	if err != nil {
		return nil, fmt.Errorf("delivery_date: %w", err)
	}
	priority := model.Priority(req.Priority)
	if priority == "" {
		priority = model.PriorityNormal
	}

	var sub model.SubOrder

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		order, err := s.findOrderTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status == model.StatusCanceled {
			return ErrOrderCanceled
		}
		if order.Status == model.StatusCompleted {
			return ErrOrderCompleted
		}

		sub = model.SubOrder{
			OrderID:         orderID,
			Spec:            req.Spec,
			Grade:           req.Grade,
			InterfaceType:   req.InterfaceType,
			Lining:          req.Lining,
			Length:          req.Length,
			AntiCorrosion:   req.AntiCorrosion,
			PlannedQuantity: req.PlannedQuantity,
			UnitWeight:      req.UnitWeight,
			DeliveryDate:    deliveryDate,
			Priority:        priority,
			ProductionLine:  req.ProductionLine,
			Warehouse:       req.Warehouse,
		}
		if err := createSubOrderTx(ctx, tx, s.subOrders, &sub); err != nil {
			return err
		}

		// First sub-order confirms a draft order.
		if next := status.Confirm(order.Status); next != order.Status {
			if err := s.orders.UpdateStatusTx(tx, orderID, next); err != nil {
				return err
			}
			if err := s.transitions.CreateTx(tx, &model.StatusTransition{
				OrderID:      orderID,
				FromStatus:   order.Status,
				ToStatus:     next,
				TotalPlanned: req.PlannedQuantity,
				Note:         "first sub-order added",
			}); err != nil {
				return err
			}
			log.Info().Str("order_no", order.OrderNo).Msg("order confirmed")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := subOrderToResponse(&sub)
	return &resp, nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*dto.OrderDetailResponse, error) {
	order, err := s.orders.FindByIDWithRecords(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	detail := dto.OrderDetailResponse{
		OrderResponse: *orderToResponse(order),
		Aggregate:     ledger.Aggregate(order.SubOrders),
		SubOrders:     make([]dto.SubOrderResponse, 0, len(order.SubOrders)),
	}
	for i := range order.SubOrders {
		detail.SubOrders = append(detail.SubOrders, subOrderToResponse(&order.SubOrders[i]))
	}
	return &detail, nil
}

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.OrderListItem, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		items = append(items, dto.OrderListItem{
			OrderResponse: *orderToResponse(o),
			SubOrderCount: len(o.SubOrders),
			Aggregate:     ledger.Aggregate(o.SubOrders),
		})
	}
	return &dto.OrderListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *orderService) Cancel(ctx context.Context, id uuid.UUID, req dto.CancelOrderRequest) (*dto.OrderResponse, error) {
	var payload *worker.StatusChangedPayload
	var canceled model.Order

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		order, err := s.orders.FindByIDWithRecordsTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.Status == model.StatusCanceled {
			return ErrAlreadyCanceled
		}
		if !status.CanCancel(order.Status) {
			return ErrOrderCompleted
		}

		agg := ledger.Aggregate(order.SubOrders)
		if err := s.orders.UpdateStatusTx(tx, id, model.StatusCanceled); err != nil {
			return err
		}
		if err := s.transitions.CreateTx(tx, &model.StatusTransition{
			OrderID:       id,
			FromStatus:    order.Status,
			ToStatus:      model.StatusCanceled,
			TotalPlanned:  agg.Planned,
			TotalProduced: agg.Produced,
			TotalShipped:  agg.Shipped,
			Note:          req.Reason,
		}); err != nil {
			return err
		}

		payload = &worker.StatusChangedPayload{
			OrderID:       id.String(),
			OrderNo:       order.OrderNo,
			CustomerName:  order.CustomerName,
			FromStatus:    string(order.Status),
			ToStatus:      string(model.StatusCanceled),
			TotalPlanned:  agg.Planned,
			TotalProduced: agg.Produced,
			TotalShipped:  agg.Shipped,
		}
		canceled = *order
		canceled.Status = model.StatusCanceled
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Warn().Str("order_no", canceled.OrderNo).Str("reason", req.Reason).Msg("order canceled")
	if s.dispatcher != nil && payload != nil {
		if err := s.dispatcher.EnqueueStatusChanged(ctx, *payload); err != nil {
			log.Error().Err(err).Str("order_no", canceled.OrderNo).Msg("failed to enqueue cancellation notification")
		}
	}
	return orderToResponse(&canceled), nil
}

func (s *orderService) Transitions(ctx context.Context, id uuid.UUID) ([]dto.TransitionResponse, error) {
	if _, err := s.orders.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	ts, err := s.transitions.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransitionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, dto.TransitionResponse{
			FromStatus:    string(t.FromStatus),
			ToStatus:      string(t.ToStatus),
			TotalPlanned:  t.TotalPlanned,
			TotalProduced: t.TotalProduced,
			TotalShipped:  t.TotalShipped,
			Note:          t.Note,
			CreatedAt:     t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out, nil
}

func (s *orderService) Progress(ctx context.Context, id uuid.UUID) (*dto.ProgressResponse, error) {
	order, err := s.orders.FindByIDWithRecords(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	resp := dto.ProgressResponse{
		OrderID:   order.ID.String(),
		OrderNo:   order.OrderNo,
		Status:    string(order.Status),
		Aggregate: ledger.Aggregate(order.SubOrders),
		Lines:     make([]dto.ProgressLine, 0, len(order.SubOrders)),
	}
	for i := range order.SubOrders {
		sub := &order.SubOrders[i]
		resp.Lines = append(resp.Lines, dto.ProgressLine{
			SubOrderID: sub.ID.String(),
			Spec:       sub.Spec,
			Priority:   string(sub.Priority),
			Ledger:     ledger.Compute(sub),
		})
	}
	return &resp, nil
}

// findOrderTx reads the order inside the transaction when one is open,
// falling back to the repository read in unit-test mode.
func (s *orderService) findOrderTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var order *model.Order
	var err error
	if tx != nil {
		var o model.Order
		err = tx.First(&o, "id = ?", id).Error
		order = &o
	} else {
		order, err = s.orders.FindByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func createSubOrderTx(ctx context.Context, tx *gorm.DB, repo repository.SubOrderRepository, sub *model.SubOrder) error {
	if tx != nil {
		return tx.Create(sub).Error
	}
	return repo.Create(ctx, sub)
}

func orderToResponse(o *model.Order) *dto.OrderResponse {
	return &dto.OrderResponse{
		ID:             o.ID.String(),
		OrderNo:        o.OrderNo,
		CustomerName:   o.CustomerName,
		Status:         string(o.Status),
		ShippingMethod: o.ShippingMethod,
		TotalAmount:    o.TotalAmount,
		Remark:         o.Remark,
		CreatedAt:      o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func subOrderToResponse(sub *model.SubOrder) dto.SubOrderResponse {
	return dto.SubOrderResponse{
		ID:              sub.ID.String(),
		OrderID:         sub.OrderID.String(),
		Spec:            sub.Spec,
		Grade:           sub.Grade,
		InterfaceType:   sub.InterfaceType,
		Lining:          sub.Lining,
		Length:          sub.Length,
		AntiCorrosion:   sub.AntiCorrosion,
		PlannedQuantity: sub.PlannedQuantity,
		DeliveryDate:    sub.DeliveryDate.Format("2006-01-02"),
		Priority:        string(sub.Priority),
		ProductionLine:  sub.ProductionLine,
		Warehouse:       sub.Warehouse,
		Ledger:          ledger.Compute(sub),
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "23505")
}
