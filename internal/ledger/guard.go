package ledger

import (
	"errors"
	"fmt"
)

// RecordKind distinguishes which capacity rule a guard decision applied.
type RecordKind string

const (
	KindProduction RecordKind = "production"
	KindShipping   RecordKind = "shipping"
)

// ErrNonPositiveQuantity rejects zero or negative quantities before any
// capacity math runs.
var ErrNonPositiveQuantity = errors.New("quantity must be a positive integer")

// CapacityError is returned when a proposed record would over-commit a
// sub-order. MaxAllowed carries the exact remaining capacity so the caller
// can correct the input — surfacing that number is part of the contract,
// never clamp silently.
type CapacityError struct {
	Kind       RecordKind
	MaxAllowed int
}

func (e *CapacityError) Error() string {
	if e.Kind == KindShipping {
		return fmt.Sprintf("shipping quantity exceeds produced stock: at most %d can be shipped", e.MaxAllowed)
	}
	return fmt.Sprintf("production quantity exceeds plan: at most %d can be produced", e.MaxAllowed)
}

// CheckProduction validates a proposed production quantity against the plan.
// producedExcluding must be the produced total excluding the record being
// validated (relevant for edits), read inside the same transaction that will
// perform the write.
func CheckProduction(planned, producedExcluding, quantity int) error {
	if quantity <= 0 {
		return ErrNonPositiveQuantity
	}
	if producedExcluding+quantity > planned {
		return &CapacityError{Kind: KindProduction, MaxAllowed: planned - producedExcluding}
	}
	return nil
}

// CheckShipping validates a proposed shipping quantity against what has
// actually been produced. shippedExcluding follows the same exclusion rule
// as CheckProduction.
func CheckShipping(producedTotal, shippedExcluding, quantity int) error {
	if quantity <= 0 {
		return ErrNonPositiveQuantity
	}
	if shippedExcluding+quantity > producedTotal {
		return &CapacityError{Kind: KindShipping, MaxAllowed: producedTotal - shippedExcluding}
	}
	return nil
}

// IntegrityError is raised when a mutation would leave shippedTotal above
// producedTotal — e.g. deleting a production record that goods were already
// shipped against. Surfaced as a violation, never silently tolerated.
type IntegrityError struct {
	Produced int // produced total the mutation would leave behind
	Shipped  int // shipped total already committed
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("mutation would leave %d produced against %d already shipped", e.Produced, e.Shipped)
}

// CheckProductionRemoval guards deletion (or downward edit) of a production
// record: removing produced quantity below what has already shipped would
// break the shipped ≤ produced invariant.
func CheckProductionRemoval(producedAfterRemoval, shippedTotal int) error {
	if shippedTotal > producedAfterRemoval {
		return &IntegrityError{Produced: producedAfterRemoval, Shipped: shippedTotal}
	}
	return nil
}
