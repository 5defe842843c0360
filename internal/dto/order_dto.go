package dto

import (
	"github.com/shopspring/decimal"

	"pipeflow/internal/ledger"
)

type CreateOrderRequest struct {
	OrderNo        string           `json:"order_no" validate:"required"`
	CustomerName   string           `json:"customer_name" validate:"required"`
	ShippingMethod string           `json:"shipping_method" validate:"omitempty,oneof=truck train ship mixed"`
	TotalAmount    *decimal.Decimal `json:"total_amount" validate:"omitempty,min=0"`
	Remark         *string          `json:"remark"`
}

type CreateSubOrderRequest struct {
	Spec            string          `json:"spec" validate:"required"`
	Grade           string          `json:"grade"`
	InterfaceType   string          `json:"interface_type"`
	Lining          string          `json:"lining"`
	Length          string          `json:"length"`
	AntiCorrosion   string          `json:"anti_corrosion"`
	PlannedQuantity int             `json:"planned_quantity" validate:"required,gt=0"`
	UnitWeight      decimal.Decimal `json:"unit_weight" validate:"omitempty,min=0"`
	DeliveryDate    string          `json:"delivery_date" validate:"required"` // "2006-01-02"
	Priority        string          `json:"priority" validate:"omitempty,oneof=normal urgent critical"`
	ProductionLine  *string         `json:"production_line"`
	Warehouse       *string         `json:"warehouse"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type OrderFilter struct {
	Status   string `form:"status"`
	Customer string `form:"customer"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type SubOrderResponse struct {
	ID              string        `json:"id"`
	OrderID         string        `json:"order_id"`
	Spec            string        `json:"spec"`
	Grade           string        `json:"grade,omitempty"`
	InterfaceType   string        `json:"interface_type,omitempty"`
	Lining          string        `json:"lining,omitempty"`
	Length          string        `json:"length,omitempty"`
	AntiCorrosion   string        `json:"anti_corrosion,omitempty"`
	PlannedQuantity int           `json:"planned_quantity"`
	DeliveryDate    string        `json:"delivery_date"`
	Priority        string        `json:"priority"`
	ProductionLine  *string       `json:"production_line,omitempty"`
	Warehouse       *string       `json:"warehouse,omitempty"`
	Ledger          ledger.Totals `json:"ledger"`
}

type OrderResponse struct {
	ID             string           `json:"id"`
	OrderNo        string           `json:"order_no"`
	CustomerName   string           `json:"customer_name"`
	Status         string           `json:"status"`
	ShippingMethod string           `json:"shipping_method,omitempty"`
	TotalAmount    *decimal.Decimal `json:"total_amount,omitempty"`
	Remark         *string          `json:"remark,omitempty"`
	CreatedAt      string           `json:"created_at"`
}

type OrderDetailResponse struct {
	OrderResponse
	Aggregate ledger.Totals      `json:"aggregate"`
	SubOrders []SubOrderResponse `json:"sub_orders"`
}

type OrderListItem struct {
	OrderResponse
	SubOrderCount int           `json:"sub_order_count"`
	Aggregate     ledger.Totals `json:"aggregate"`
}

type OrderListResponse struct {
	Data  []OrderListItem `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type ProgressLine struct {
	SubOrderID string        `json:"sub_order_id"`
	Spec       string        `json:"spec"`
	Priority   string        `json:"priority"`
	Ledger     ledger.Totals `json:"ledger"`
}

type ProgressResponse struct {
	OrderID   string         `json:"order_id"`
	OrderNo   string         `json:"order_no"`
	Status    string         `json:"status"`
	Aggregate ledger.Totals  `json:"aggregate"`
	Lines     []ProgressLine `json:"lines"`
}

type TransitionResponse struct {
	FromStatus    string `json:"from_status"`
	ToStatus      string `json:"to_status"`
	TotalPlanned  int    `json:"total_planned"`
	TotalProduced int    `json:"total_produced"`
	TotalShipped  int    `json:"total_shipped"`
	Note          string `json:"note,omitempty"`
	CreatedAt     string `json:"created_at"`
}
