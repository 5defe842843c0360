package service

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP codes;
// capacity and integrity violations carry their own types (see the ledger
// package) so callers can surface the exact numbers.
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrSubOrderNotFound = errors.New("sub-order not found")
	ErrRecordNotFound   = errors.New("record not found")
	ErrDuplicateOrderNo = errors.New("order number already exists")
	ErrOrderCompleted   = errors.New("completed orders cannot be canceled")
	ErrAlreadyCanceled  = errors.New("order is already canceled")
	ErrOrderCanceled    = errors.New("order is canceled")
)
