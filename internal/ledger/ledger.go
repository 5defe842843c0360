// Package ledger folds a sub-order's production and shipping records into
// derived quantity totals. Every view in the system (order detail, progress
// dashboard, alert feed, capacity guard) consumes these functions — there is
// deliberately no second place where totals are computed.
package ledger

import (
	"pipeflow/internal/model"

	"github.com/google/uuid"
)

// Totals are the derived figures for one sub-order, or the plain sum of
// per-sub-order figures when aggregated over an order. All fields are unit
// counts except Progress, which is a 0–100 display percentage.
type Totals struct {
	Planned            int `json:"planned"`
	Produced           int `json:"produced"`
	Shipped            int `json:"shipped"`
	InStock            int `json:"in_stock"`
	RemainingToShip    int `json:"remaining_to_ship"`
	RemainingToProduce int `json:"remaining_to_produce"`
	Shortage           int `json:"shortage"`
	Progress           int `json:"progress"`
}

// ProducedTotal sums quantities over all production records. Empty yields 0.
func ProducedTotal(sub *model.SubOrder) int {
	total := 0
	for i := range sub.ProductionRecords {
		total += sub.ProductionRecords[i].Quantity
	}
	return total
}

// ShippedTotal sums quantities over all shipping records. Empty yields 0.
func ShippedTotal(sub *model.SubOrder) int {
	total := 0
	for i := range sub.ShippingRecords {
		total += sub.ShippingRecords[i].Quantity
	}
	return total
}

// ProducedTotalExcluding sums production quantities skipping one record.
// Used when validating an update-in-place edit: the record being edited must
// not count against its own capacity.
func ProducedTotalExcluding(sub *model.SubOrder, exclude uuid.UUID) int {
	total := 0
	for i := range sub.ProductionRecords {
		if sub.ProductionRecords[i].ID == exclude {
			continue
		}
		total += sub.ProductionRecords[i].Quantity
	}
	return total
}

// ShippedTotalExcluding sums shipping quantities skipping one record.
func ShippedTotalExcluding(sub *model.SubOrder, exclude uuid.UUID) int {
	total := 0
	for i := range sub.ShippingRecords {
		if sub.ShippingRecords[i].ID == exclude {
			continue
		}
		total += sub.ShippingRecords[i].Quantity
	}
	return total
}

// ProgressPercent returns round(100*produced/planned), 0 when planned is 0,
// capped at 100 for display. The underlying ratio can only exceed 100 if the
// capacity guard was bypassed, which the tests treat as an invariant breach.
func ProgressPercent(produced, planned int) int {
	if planned <= 0 {
		return 0
	}
	pct := (produced*100 + planned/2) / planned
	if pct > 100 {
		return 100
	}
	return pct
}

// Shortage is the positive gap between what still must ship and what is in
// stock right now.
func Shortage(remainingToShip, inStock int) int {
	if s := remainingToShip - inStock; s > 0 {
		return s
	}
	return 0
}

// Compute folds one sub-order's records into its full set of totals.
// InStock can come out negative only on corrupted data (shipped beyond
// produced); callers must surface that, not treat it as a valid state.
func Compute(sub *model.SubOrder) Totals {
	produced := ProducedTotal(sub)
	shipped := ShippedTotal(sub)
	inStock := produced - shipped
	remainingToShip := sub.PlannedQuantity - shipped
	remainingToProduce := sub.PlannedQuantity - produced
	if remainingToProduce < 0 {
		remainingToProduce = 0
	}
	return Totals{
		Planned:            sub.PlannedQuantity,
		Produced:           produced,
		Shipped:            shipped,
		InStock:            inStock,
		RemainingToShip:    remainingToShip,
		RemainingToProduce: remainingToProduce,
		Shortage:           Shortage(remainingToShip, inStock),
		Progress:           ProgressPercent(produced, sub.PlannedQuantity),
	}
}

// Aggregate sums per-sub-order totals across an order. Quantities never
// offset across sub-orders: a surplus on one line cannot cover a shortage on
// another, so Shortage is summed per line rather than recomputed from the
// aggregate remainders.
func Aggregate(subs []model.SubOrder) Totals {
	var agg Totals
	for i := range subs {
		t := Compute(&subs[i])
		agg.Planned += t.Planned
		agg.Produced += t.Produced
		agg.Shipped += t.Shipped
		agg.InStock += t.InStock
		agg.RemainingToShip += t.RemainingToShip
		agg.RemainingToProduce += t.RemainingToProduce
		agg.Shortage += t.Shortage
	}
	agg.Progress = ProgressPercent(agg.Produced, agg.Planned)
	return agg
}
