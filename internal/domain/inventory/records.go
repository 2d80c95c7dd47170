package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmadist/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AllocationRecord captures one slice of a FEFO allocation: which lot it came
// from, how many units, and the unit cost copied from the batch at the moment
// of allocation. Records are permanent history; they survive the depletion or
// transfer of the batch they reference and are never recomputed (specific
// identification costing, not weighted average).
type AllocationRecord struct {
	LotNumber string
	Quantity  int64
	UnitCost  decimal.Decimal
}

// TotalCost returns quantity times unit cost
func (r AllocationRecord) TotalCost() decimal.Decimal {
	return decimal.NewFromInt(r.Quantity).Mul(r.UnitCost)
}

// TotalAllocated sums the quantities of the given records
func TotalAllocated(records []AllocationRecord) int64 {
	var total int64
	for _, r := range records {
		total += r.Quantity
	}
	return total
}

// TotalAllocationCost sums the cost of the given records
func TotalAllocationCost(records []AllocationRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.TotalCost())
	}
	return total
}

// WeightedUnitCost returns the quantity-weighted average unit cost of the
// given records, rounded to 4 decimal places. Returns zero when the records
// are empty or carry no quantity.
func WeightedUnitCost(records []AllocationRecord) decimal.Decimal {
	total := TotalAllocated(records)
	if total == 0 {
		return decimal.Zero
	}
	return TotalAllocationCost(records).Div(decimal.NewFromInt(total)).Round(4)
}

// OrderLine is one sold line of a sales order. BonusQuantity is free units
// that are drawn from stock like sold units but contribute no revenue.
type OrderLine struct {
	DrugID        uuid.UUID
	QuantitySold  int64
	BonusQuantity int64
	UnitSalePrice decimal.Decimal
	Allocations   []AllocationRecord
}

// UnitsToShip returns the total physical units removed from stock for the line
func (l *OrderLine) UnitsToShip() int64 {
	return l.QuantitySold + l.BonusQuantity
}

// Revenue returns the sale value of the line (bonus units contribute nothing)
func (l *OrderLine) Revenue() decimal.Decimal {
	return decimal.NewFromInt(l.QuantitySold).Mul(l.UnitSalePrice)
}

// CostOfGoods returns the recorded cost basis of the shipped units
func (l *OrderLine) CostOfGoods() decimal.Decimal {
	return TotalAllocationCost(l.Allocations)
}

// GrossProfit returns revenue minus cost of goods
func (l *OrderLine) GrossProfit() decimal.Decimal {
	return l.Revenue().Sub(l.CostOfGoods())
}

// WriteOff is the permanent record of intentionally discarded stock. The
// operator selects the exact lot, so the loss is valued at that batch's
// purchase price at the time of the write-off.
type WriteOff struct {
	shared.BaseEntity
	DrugID         uuid.UUID
	LotNumber      string
	Location       Location
	Quantity       int64
	Reason         string
	UnitCostAtTime decimal.Decimal
	TotalLossValue decimal.Decimal
	Date           time.Time
}

// NewWriteOff creates a write-off record for the given batch deduction
func NewWriteOff(batch *Batch, quantity int64, reason string) *WriteOff {
	unitCost := batch.PurchasePrice
	return &WriteOff{
		BaseEntity:     shared.NewBaseEntity(),
		DrugID:         batch.DrugID,
		LotNumber:      batch.LotNumber,
		Location:       batch.Location,
		Quantity:       quantity,
		Reason:         reason,
		UnitCostAtTime: unitCost,
		TotalLossValue: decimal.NewFromInt(quantity).Mul(unitCost),
		Date:           time.Now(),
	}
}
