package inventory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pharmadist/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionKind tags an entry of a drug's transaction history
type TransactionKind string

const (
	// TransactionPurchase is a purchase receipt into stock
	TransactionPurchase TransactionKind = "purchase"
	// TransactionSale is a sale shipment out of stock
	TransactionSale TransactionKind = "sale"
	// TransactionSaleReturn is a sale return back into stock
	TransactionSaleReturn TransactionKind = "sale_return"
	// TransactionTransferIn is stock arriving from another warehouse
	TransactionTransferIn TransactionKind = "transfer_in"
	// TransactionTransferOut is stock leaving to another warehouse
	TransactionTransferOut TransactionKind = "transfer_out"
	// TransactionWriteOff is discarded stock
	TransactionWriteOff TransactionKind = "write_off"
)

// String returns the string representation
func (k TransactionKind) String() string {
	return string(k)
}

// IsValid checks if the kind is known
func (k TransactionKind) IsValid() bool {
	switch k {
	case TransactionPurchase, TransactionSale, TransactionSaleReturn,
		TransactionTransferIn, TransactionTransferOut, TransactionWriteOff:
		return true
	}
	return false
}

// IsInbound returns true for kinds that add stock
func (k TransactionKind) IsInbound() bool {
	switch k {
	case TransactionPurchase, TransactionSaleReturn, TransactionTransferIn:
		return true
	}
	return false
}

// IsOutbound returns true for kinds that remove stock
func (k TransactionKind) IsOutbound() bool {
	switch k {
	case TransactionSale, TransactionTransferOut, TransactionWriteOff:
		return true
	}
	return false
}

// StockTransaction is the unified historical view the ledger replays. It is
// derived from purchase receipts, allocation records on order lines, and
// write-off records — never from live batch state, because batches get pruned
// and merged and lose their history.
type StockTransaction struct {
	Date        time.Time
	Kind        TransactionKind
	LotNumber   string
	QuantityIn  int64
	QuantityOut int64
	UnitCost    decimal.Decimal
}

// SignedQuantity returns in minus out
func (t StockTransaction) SignedQuantity() int64 {
	return t.QuantityIn - t.QuantityOut
}

// SignedValue returns the value this transaction carried, at its own unit
// cost. The ledger is specific-identification: each movement is valued at
// the cost that exact movement recorded, not at a running average.
func (t StockTransaction) SignedValue() decimal.Decimal {
	return decimal.NewFromInt(t.SignedQuantity()).Mul(t.UnitCost)
}

// LedgerRow is one period transaction with the running balance after it
type LedgerRow struct {
	Date         time.Time
	Kind         TransactionKind
	LotNumber    string
	QuantityIn   int64
	QuantityOut  int64
	UnitCost     decimal.Decimal
	RunningQty   int64
	RunningValue decimal.Decimal
}

// Ledger is the reconstructed kardex of one drug for a reporting period
type Ledger struct {
	DrugID       uuid.UUID
	PeriodStart  time.Time
	PeriodEnd    time.Time
	OpeningQty   int64
	OpeningValue decimal.Decimal
	Rows         []LedgerRow
	TotalIn      int64
	TotalOut     int64
	ClosingQty   int64
	ClosingValue decimal.Decimal
}

// BuildLedger replays the full transaction history of a drug chronologically
// and reconstructs the running quantity and value per transaction.
//
// Transactions strictly before periodStart accumulate into the opening
// balance; transactions within [periodStart, periodEnd] become rows carrying
// the running balance after each one. The sort is stable, so same-date
// transactions keep their original insertion order.
//
// The function is pure: it never mutates its inputs, has no side effects, and
// produces identical output for identical input. An empty or out-of-range
// history yields an all-zero summary, not an error.
func BuildLedger(drugID uuid.UUID, periodStart, periodEnd time.Time, history []StockTransaction) (*Ledger, error) {
	if drugID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DRUG", "Drug ID cannot be empty")
	}

	ordered := make([]StockTransaction, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	ledger := &Ledger{
		DrugID:       drugID,
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		OpeningValue: decimal.Zero,
		Rows:         make([]LedgerRow, 0),
		ClosingValue: decimal.Zero,
	}

	runningQty := int64(0)
	runningValue := decimal.Zero
	for _, tx := range ordered {
		if tx.Date.Before(periodStart) {
			runningQty += tx.SignedQuantity()
			runningValue = runningValue.Add(tx.SignedValue())
			continue
		}
		if tx.Date.After(periodEnd) {
			continue
		}
		if len(ledger.Rows) == 0 {
			ledger.OpeningQty = runningQty
			ledger.OpeningValue = runningValue
		}
		runningQty += tx.SignedQuantity()
		runningValue = runningValue.Add(tx.SignedValue())
		ledger.Rows = append(ledger.Rows, LedgerRow{
			Date:         tx.Date,
			Kind:         tx.Kind,
			LotNumber:    tx.LotNumber,
			QuantityIn:   tx.QuantityIn,
			QuantityOut:  tx.QuantityOut,
			UnitCost:     tx.UnitCost,
			RunningQty:   runningQty,
			RunningValue: runningValue,
		})
		ledger.TotalIn += tx.QuantityIn
		ledger.TotalOut += tx.QuantityOut
	}

	if len(ledger.Rows) == 0 {
		ledger.OpeningQty = runningQty
		ledger.OpeningValue = runningValue
	}
	ledger.ClosingQty = runningQty
	ledger.ClosingValue = runningValue
	return ledger, nil
}
