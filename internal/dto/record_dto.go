package dto

import "pipeflow/internal/ledger"

type ProductionRecordRequest struct {
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
	ProducedOn string `json:"produced_on" validate:"required"` // "2006-01-02"
	Team       string `json:"team"`
	Shift      string `json:"shift" validate:"omitempty,oneof=day night"`
	StartedAt  string `json:"started_at"` // RFC 3339, optional
	EndedAt    string `json:"ended_at"`
}

type ShippingRecordRequest struct {
	Quantity      int    `json:"quantity" validate:"required,gt=0"`
	ShippedOn     string `json:"shipped_on" validate:"required"`
	TransportType string `json:"transport_type" validate:"omitempty,oneof=truck train ship other"`
	Destination   string `json:"destination"`
	Carrier       string `json:"carrier"`
	DriverName    string `json:"driver_name"`
	DriverPhone   string `json:"driver_phone"`
	VehicleNo     string `json:"vehicle_no"`
}

type ProductionRecordResponse struct {
	ID         string        `json:"id"`
	SubOrderID string        `json:"sub_order_id"`
	Quantity   int           `json:"quantity"`
	ProducedOn string        `json:"produced_on"`
	Team       string        `json:"team,omitempty"`
	Shift      string        `json:"shift,omitempty"`
	Ledger     ledger.Totals `json:"ledger"`
	Status     string        `json:"order_status"`
}

type ShippingRecordResponse struct {
	ID            string        `json:"id"`
	SubOrderID    string        `json:"sub_order_id"`
	Quantity      int           `json:"quantity"`
	ShippedOn     string        `json:"shipped_on"`
	TransportType string        `json:"transport_type"`
	Destination   string        `json:"destination,omitempty"`
	Ledger        ledger.Totals `json:"ledger"`
	Status        string        `json:"order_status"`
}

type LedgerResponse struct {
	SubOrderID string        `json:"sub_order_id"`
	Ledger     ledger.Totals `json:"ledger"`
}
