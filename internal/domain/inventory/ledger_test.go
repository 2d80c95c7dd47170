package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2025, time.March, n, 0, 0, 0, 0, time.UTC)
}

func TestBuildLedger(t *testing.T) {
	drugID := uuid.New()

	t.Run("purchase then sale scenario", func(t *testing.T) {
		history := []StockTransaction{
			{Date: day(1), Kind: TransactionPurchase, LotNumber: "L1", QuantityIn: 100, UnitCost: decimal.NewFromInt(50)},
			{Date: day(5), Kind: TransactionSale, LotNumber: "L1", QuantityOut: 30, UnitCost: decimal.NewFromInt(50)},
		}

		ledger, err := BuildLedger(drugID, day(1), day(10), history)
		require.NoError(t, err)

		assert.Equal(t, int64(0), ledger.OpeningQty)
		assert.True(t, ledger.OpeningValue.IsZero())
		assert.Equal(t, int64(100), ledger.TotalIn)
		assert.Equal(t, int64(30), ledger.TotalOut)
		assert.Equal(t, int64(70), ledger.ClosingQty)
		assert.True(t, ledger.ClosingValue.Equal(decimal.NewFromInt(3500)))
		require.Len(t, ledger.Rows, 2)
		assert.Equal(t, int64(100), ledger.Rows[0].RunningQty)
		assert.True(t, ledger.Rows[0].RunningValue.Equal(decimal.NewFromInt(5000)))
		assert.Equal(t, int64(70), ledger.Rows[1].RunningQty)
	})

	t.Run("transactions before the period form the opening balance", func(t *testing.T) {
		history := []StockTransaction{
			{Date: day(1), Kind: TransactionPurchase, LotNumber: "L1", QuantityIn: 100, UnitCost: decimal.NewFromInt(50)},
			{Date: day(3), Kind: TransactionSale, LotNumber: "L1", QuantityOut: 40, UnitCost: decimal.NewFromInt(50)},
			{Date: day(10), Kind: TransactionWriteOff, LotNumber: "L1", QuantityOut: 5, UnitCost: decimal.NewFromInt(50)},
		}

		ledger, err := BuildLedger(drugID, day(8), day(15), history)
		require.NoError(t, err)

		assert.Equal(t, int64(60), ledger.OpeningQty)
		assert.True(t, ledger.OpeningValue.Equal(decimal.NewFromInt(3000)))
		require.Len(t, ledger.Rows, 1)
		assert.Equal(t, TransactionWriteOff, ledger.Rows[0].Kind)
		assert.Equal(t, int64(55), ledger.ClosingQty)
		assert.True(t, ledger.ClosingValue.Equal(decimal.NewFromInt(2750)))
	})

	t.Run("values track per-transaction cost, not an average", func(t *testing.T) {
		history := []StockTransaction{
			{Date: day(1), Kind: TransactionPurchase, LotNumber: "L1", QuantityIn: 10, UnitCost: decimal.NewFromInt(40)},
			{Date: day(2), Kind: TransactionPurchase, LotNumber: "L2", QuantityIn: 10, UnitCost: decimal.NewFromInt(60)},
			{Date: day(3), Kind: TransactionSale, LotNumber: "L1", QuantityOut: 10, UnitCost: decimal.NewFromInt(40)},
		}

		ledger, err := BuildLedger(drugID, day(1), day(5), history)
		require.NoError(t, err)

		// The remaining stock is lot L2 at its own cost of 60, not the blended 50.
		assert.Equal(t, int64(10), ledger.ClosingQty)
		assert.True(t, ledger.ClosingValue.Equal(decimal.NewFromInt(600)))
	})

	t.Run("stable date ties keep insertion order", func(t *testing.T) {
		history := []StockTransaction{
			{Date: day(2), Kind: TransactionPurchase, LotNumber: "L1", QuantityIn: 20, UnitCost: decimal.NewFromInt(10)},
			{Date: day(2), Kind: TransactionSale, LotNumber: "L1", QuantityOut: 20, UnitCost: decimal.NewFromInt(10)},
		}

		ledger, err := BuildLedger(drugID, day(1), day(5), history)
		require.NoError(t, err)
		require.Len(t, ledger.Rows, 2)
		assert.Equal(t, TransactionPurchase, ledger.Rows[0].Kind)
		assert.Equal(t, int64(20), ledger.Rows[0].RunningQty)
		assert.Equal(t, int64(0), ledger.Rows[1].RunningQty)
	})

	t.Run("unsorted input is replayed chronologically", func(t *testing.T) {
		history := []StockTransaction{
			{Date: day(5), Kind: TransactionSale, LotNumber: "L1", QuantityOut: 30, UnitCost: decimal.NewFromInt(50)},
			{Date: day(1), Kind: TransactionPurchase, LotNumber: "L1", QuantityIn: 100, UnitCost: decimal.NewFromInt(50)},
		}

		ledger, err := BuildLedger(drugID, day(1), day(10), history)
		require.NoError(t, err)
		require.Len(t, ledger.Rows, 2)
		assert.Equal(t, TransactionPurchase, ledger.Rows[0].Kind)
		assert.Equal(t, int64(70), ledger.ClosingQty)
	})

	t.Run("is idempotent and does not mutate its input", func(t *testing.T) {
		history := []StockTransaction{
			{Date: day(5), Kind: TransactionSale, LotNumber: "L1", QuantityOut: 30, UnitCost: decimal.NewFromInt(50)},
			{Date: day(1), Kind: TransactionPurchase, LotNumber: "L1", QuantityIn: 100, UnitCost: decimal.NewFromInt(50)},
		}

		first, err := BuildLedger(drugID, day(1), day(10), history)
		require.NoError(t, err)
		second, err := BuildLedger(drugID, day(1), day(10), history)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, day(5), history[0].Date, "input order must be preserved")
	})

	t.Run("closing equals opening plus in minus out", func(t *testing.T) {
		history := []StockTransaction{
			{Date: day(1), Kind: TransactionPurchase, LotNumber: "L1", QuantityIn: 100, UnitCost: decimal.NewFromInt(50)},
			{Date: day(4), Kind: TransactionTransferIn, LotNumber: "L2", QuantityIn: 25, UnitCost: decimal.NewFromInt(45)},
			{Date: day(6), Kind: TransactionSale, LotNumber: "L1", QuantityOut: 60, UnitCost: decimal.NewFromInt(50)},
			{Date: day(7), Kind: TransactionSaleReturn, LotNumber: "RET-1", QuantityIn: 10, UnitCost: decimal.NewFromInt(50)},
			{Date: day(9), Kind: TransactionWriteOff, LotNumber: "L2", QuantityOut: 5, UnitCost: decimal.NewFromInt(45)},
		}

		ledger, err := BuildLedger(drugID, day(3), day(10), history)
		require.NoError(t, err)
		assert.Equal(t, ledger.OpeningQty+ledger.TotalIn-ledger.TotalOut, ledger.ClosingQty)
	})

	t.Run("empty history yields an all-zero summary", func(t *testing.T) {
		ledger, err := BuildLedger(drugID, day(1), day(10), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), ledger.OpeningQty)
		assert.Equal(t, int64(0), ledger.ClosingQty)
		assert.True(t, ledger.ClosingValue.IsZero())
		assert.Empty(t, ledger.Rows)
	})

	t.Run("rejects missing drug identity", func(t *testing.T) {
		_, err := BuildLedger(uuid.Nil, day(1), day(10), nil)
		assert.Error(t, err)
	})

	t.Run("transactions after the period are excluded", func(t *testing.T) {
		history := []StockTransaction{
			{Date: day(1), Kind: TransactionPurchase, LotNumber: "L1", QuantityIn: 100, UnitCost: decimal.NewFromInt(50)},
			{Date: day(20), Kind: TransactionSale, LotNumber: "L1", QuantityOut: 30, UnitCost: decimal.NewFromInt(50)},
		}

		ledger, err := BuildLedger(drugID, day(1), day(10), history)
		require.NoError(t, err)
		require.Len(t, ledger.Rows, 1)
		assert.Equal(t, int64(100), ledger.ClosingQty)
	})
}

func TestTransactionKind(t *testing.T) {
	t.Run("direction helpers", func(t *testing.T) {
		assert.True(t, TransactionPurchase.IsInbound())
		assert.True(t, TransactionSaleReturn.IsInbound())
		assert.True(t, TransactionTransferIn.IsInbound())
		assert.True(t, TransactionSale.IsOutbound())
		assert.True(t, TransactionTransferOut.IsOutbound())
		assert.True(t, TransactionWriteOff.IsOutbound())
	})

	t.Run("validity", func(t *testing.T) {
		assert.True(t, TransactionPurchase.IsValid())
		assert.False(t, TransactionKind("theft").IsValid())
	})
}
