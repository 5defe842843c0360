// Package status owns the order status state machine. Derivation is a pure
// function of the current status and the aggregate ledger totals across all
// of the order's sub-orders; it runs inside the same transaction as the
// record write that triggered it so status never lags committed quantities.
package status

import (
	"pipeflow/internal/ledger"
	"pipeflow/internal/model"
)

// rank orders the forward-only sequence. Derivation may only move an order
// to a higher rank; canceled sits outside the sequence.
var rank = map[model.OrderStatus]int{
	model.StatusDraft:            0,
	model.StatusConfirmed:        1,
	model.StatusInProduction:     2,
	model.StatusPartiallyShipped: 3,
	model.StatusCompleted:        4,
}

// thresholds is the transition table, highest target first. The first rule
// whose condition holds names the candidate status.
var thresholds = []struct {
	target model.OrderStatus
	met    func(t ledger.Totals) bool
}{
	{model.StatusCompleted, func(t ledger.Totals) bool {
		return t.Planned > 0 && t.Shipped >= t.Planned
	}},
	{model.StatusPartiallyShipped, func(t ledger.Totals) bool {
		return t.Produced >= t.Planned && t.Shipped > 0 && t.Shipped < t.Planned
	}},
	{model.StatusInProduction, func(t ledger.Totals) bool {
		return t.Produced > 0
	}},
}

// Derive returns the status the order should hold given the aggregate
// totals. Idempotent, and never regresses: downward quantity corrections
// leave the status where it was. Draft orders are untouched — the
// draft→confirmed transition fires on sub-order creation, not on
// production/shipping activity. Canceled and completed are terminal.
func Derive(current model.OrderStatus, t ledger.Totals) model.OrderStatus {
	switch current {
	case model.StatusDraft, model.StatusCanceled, model.StatusCompleted:
		return current
	}
	for _, rule := range thresholds {
		if rule.met(t) {
			if rank[rule.target] > rank[current] {
				return rule.target
			}
			return current
		}
	}
	return current
}

// Confirm handles the one non-derived forward transition: adding the first
// sub-order moves a draft order to confirmed. Any other status is unchanged.
func Confirm(current model.OrderStatus) model.OrderStatus {
	if current == model.StatusDraft {
		return model.StatusConfirmed
	}
	return current
}

// CanCancel reports whether explicit cancellation is allowed: any state
// except completed, and canceling twice is a no-op the caller should reject.
func CanCancel(current model.OrderStatus) bool {
	return current != model.StatusCompleted && current != model.StatusCanceled
}

// IsActive reports whether the order is in an operationally active state —
// the states the alert synthesizer scans for urgent and delivery signals.
func IsActive(s model.OrderStatus) bool {
	return s == model.StatusConfirmed || s == model.StatusInProduction || s == model.StatusPartiallyShipped
}
