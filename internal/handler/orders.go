package handler

import (
	"net/http"

	"pipeflow/internal/apierror"
	"pipeflow/internal/dto"
	"pipeflow/internal/middleware"
	"pipeflow/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders  service.OrderService
	records service.RecordService
}

func NewOrderHandler(orders service.OrderService, records service.RecordService) *OrderHandler {
	return &OrderHandler{orders: orders, records: records}
}

// Create godoc
// @Summary  Create an order (draft)
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    body body dto.CreateOrderRequest true "order"
// @Success  201 {object} dto.OrderResponse
// @Failure  409 {object} apierror.APIError
// @Router   /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.orders.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AddSubOrder godoc
// @Summary  Add a sub-order line; the first line confirms a draft order
// @Tags     orders
// @Param    id   path string true "order id"
// @Param    body body dto.CreateSubOrderRequest true "sub-order"
// @Success  201 {object} dto.SubOrderResponse
// @Router   /orders/{id}/sub-orders [post]
func (h *OrderHandler) AddSubOrder(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CreateSubOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.orders.AddSubOrder(c.Request.Context(), orderID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary  Order detail with per-line ledgers and the aggregate
// @Tags     orders
// @Param    id path string true "order id"
// @Success  200 {object} dto.OrderDetailResponse
// @Router   /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary  List orders with filters and pagination
// @Tags     orders
// @Param    status   query string false "status filter"
// @Param    customer query string false "customer name substring"
// @Success  200 {object} dto.OrderListResponse
// @Router   /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter dto.OrderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return
	}
	resp, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary  Cancel an order (terminal, explicit, requires a reason)
// @Tags     orders
// @Param    id   path string true "order id"
// @Param    body body dto.CancelOrderRequest true "reason"
// @Success  200 {object} dto.OrderResponse
// @Router   /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CancelOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.orders.Cancel(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transitions godoc
// @Summary  Status transition audit trail for an order
// @Tags     orders
// @Param    id path string true "order id"
// @Success  200 {array} dto.TransitionResponse
// @Router   /orders/{id}/transitions [get]
func (h *OrderHandler) Transitions(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.orders.Transitions(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Progress godoc
// @Summary  Fulfillment progress: aggregate totals plus per-line ledgers
// @Tags     orders
// @Param    id path string true "order id"
// @Success  200 {object} dto.ProgressResponse
// @Router   /orders/{id}/progress [get]
func (h *OrderHandler) Progress(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.orders.Progress(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ledger godoc
// @Summary  Derived quantity totals for one sub-order
// @Tags     sub-orders
// @Param    id path string true "sub-order id"
// @Success  200 {object} dto.LedgerResponse
// @Router   /sub-orders/{id}/ledger [get]
func (h *OrderHandler) Ledger(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.records.Ledger(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
