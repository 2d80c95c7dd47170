package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBatch(t *testing.T, drugID uuid.UUID, lot string, qty int64, expiry *time.Time, cost int64, loc Location) *Batch {
	t.Helper()
	b, err := NewBatch(drugID, lot, qty, expiry, decimal.NewFromInt(cost), loc)
	require.NoError(t, err)
	return b
}

func TestBatchStore_Upsert(t *testing.T) {
	drugID := uuid.New()

	t.Run("inserts new batches", func(t *testing.T) {
		store := NewBatchStore()
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "L1", 10, expiryIn(30), 5, LocationMainWarehouse)))
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "L2", 20, expiryIn(60), 6, LocationMainWarehouse)))
		assert.Len(t, store.ActiveBatches(drugID, LocationMainWarehouse), 2)
	})

	t.Run("merges same drug, lot and location instead of duplicating", func(t *testing.T) {
		store := NewBatchStore()
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "L1", 10, expiryIn(30), 5, LocationSalesWarehouse)))
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "L1", 15, expiryIn(30), 5, LocationSalesWarehouse)))

		active := store.ActiveBatches(drugID, LocationSalesWarehouse)
		require.Len(t, active, 1)
		assert.Equal(t, int64(25), active[0].Quantity)
	})

	t.Run("same lot at different locations stays separate", func(t *testing.T) {
		store := NewBatchStore()
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "L1", 10, expiryIn(30), 5, LocationMainWarehouse)))
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "L1", 5, expiryIn(30), 5, LocationSalesWarehouse)))
		assert.Len(t, store.ActiveBatches(drugID, LocationMainWarehouse), 1)
		assert.Len(t, store.ActiveBatches(drugID, LocationSalesWarehouse), 1)
	})
}

func TestBatchStore_ActiveBatches(t *testing.T) {
	drugID := uuid.New()

	t.Run("orders by expiry ascending", func(t *testing.T) {
		store := NewBatchStore()
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "LATE", 10, expiryIn(90), 5, LocationSalesWarehouse)))
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "SOON", 10, expiryIn(10), 5, LocationSalesWarehouse)))
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "MID", 10, expiryIn(45), 5, LocationSalesWarehouse)))

		active := store.ActiveBatches(drugID, LocationSalesWarehouse)
		require.Len(t, active, 3)
		assert.Equal(t, "SOON", active[0].LotNumber)
		assert.Equal(t, "MID", active[1].LotNumber)
		assert.Equal(t, "LATE", active[2].LotNumber)
	})

	t.Run("batches without expiry sort last", func(t *testing.T) {
		store := NewBatchStore()
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "NOEXP", 10, nil, 5, LocationSalesWarehouse)))
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "EXP", 10, expiryIn(300), 5, LocationSalesWarehouse)))

		active := store.ActiveBatches(drugID, LocationSalesWarehouse)
		require.Len(t, active, 2)
		assert.Equal(t, "EXP", active[0].LotNumber)
		assert.Equal(t, "NOEXP", active[1].LotNumber)
	})

	t.Run("expiry ties keep creation order", func(t *testing.T) {
		store := NewBatchStore()
		expiry := expiryIn(30)
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "FIRST", 10, expiry, 5, LocationSalesWarehouse)))
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "SECOND", 10, expiry, 5, LocationSalesWarehouse)))

		active := store.ActiveBatches(drugID, LocationSalesWarehouse)
		require.Len(t, active, 2)
		assert.Equal(t, "FIRST", active[0].LotNumber)
		assert.Equal(t, "SECOND", active[1].LotNumber)
	})

	t.Run("excludes other drugs and locations", func(t *testing.T) {
		store := NewBatchStore()
		otherDrug := uuid.New()
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "L1", 10, expiryIn(30), 5, LocationSalesWarehouse)))
		require.NoError(t, store.Upsert(mustBatch(t, otherDrug, "L2", 10, expiryIn(10), 5, LocationSalesWarehouse)))
		require.NoError(t, store.Upsert(mustBatch(t, drugID, "L3", 10, expiryIn(10), 5, LocationMainWarehouse)))

		active := store.ActiveBatches(drugID, LocationSalesWarehouse)
		require.Len(t, active, 1)
		assert.Equal(t, "L1", active[0].LotNumber)
	})
}

func TestBatchStore_Decrement(t *testing.T) {
	drugID := uuid.New()

	t.Run("reduces the identified batch", func(t *testing.T) {
		store := NewBatchStore()
		batch := mustBatch(t, drugID, "L1", 10, expiryIn(30), 5, LocationSalesWarehouse)
		require.NoError(t, store.Upsert(batch))
		require.NoError(t, store.Decrement(batch.ID, 4))
		assert.Equal(t, int64(6), batch.Quantity)
	})

	t.Run("fails on overdraw and leaves quantity unchanged", func(t *testing.T) {
		store := NewBatchStore()
		batch := mustBatch(t, drugID, "L1", 10, expiryIn(30), 5, LocationSalesWarehouse)
		require.NoError(t, store.Upsert(batch))

		var insufficient *InsufficientStockError
		require.ErrorAs(t, store.Decrement(batch.ID, 11), &insufficient)
		assert.Equal(t, int64(10), batch.Quantity)
	})

	t.Run("fails on unknown batch", func(t *testing.T) {
		store := NewBatchStore()
		assert.Error(t, store.Decrement(uuid.New(), 1))
	})
}

func TestBatchStore_Prune(t *testing.T) {
	drugID := uuid.New()
	store := NewBatchStore()
	drained := mustBatch(t, drugID, "GONE", 5, expiryIn(10), 5, LocationSalesWarehouse)
	kept := mustBatch(t, drugID, "KEPT", 5, expiryIn(20), 5, LocationSalesWarehouse)
	require.NoError(t, store.Upsert(drained))
	require.NoError(t, store.Upsert(kept))

	require.NoError(t, store.Decrement(drained.ID, 5))
	pruned := store.Prune()

	assert.Equal(t, 1, pruned)
	active := store.ActiveBatches(drugID, LocationSalesWarehouse)
	require.Len(t, active, 1)
	assert.Equal(t, "KEPT", active[0].LotNumber)
	assert.Nil(t, store.Find(drained.ID))
}

func TestBatchStore_SnapshotRestore(t *testing.T) {
	drugID := uuid.New()
	store := NewBatchStore()
	batch := mustBatch(t, drugID, "L1", 10, expiryIn(30), 5, LocationSalesWarehouse)
	require.NoError(t, store.Upsert(batch))

	snap := store.Snapshot()
	require.NoError(t, store.Decrement(batch.ID, 10))
	store.Prune()
	require.Empty(t, store.ActiveBatches(drugID, LocationSalesWarehouse))

	store.Restore(snap)
	active := store.ActiveBatches(drugID, LocationSalesWarehouse)
	require.Len(t, active, 1)
	assert.Equal(t, int64(10), active[0].Quantity)
	assert.Equal(t, int64(10), store.TotalAvailable(drugID, LocationSalesWarehouse))
}

func TestBatchStore_ExpiringWithin(t *testing.T) {
	drugID := uuid.New()
	store := NewBatchStore()
	require.NoError(t, store.Upsert(mustBatch(t, drugID, "SOON", 10, expiryIn(5), 5, LocationSalesWarehouse)))
	require.NoError(t, store.Upsert(mustBatch(t, drugID, "LATER", 10, expiryIn(200), 5, LocationSalesWarehouse)))
	require.NoError(t, store.Upsert(mustBatch(t, drugID, "NOEXP", 10, nil, 5, LocationSalesWarehouse)))

	expiring := store.ExpiringWithin(LocationSalesWarehouse, 30*24*time.Hour)
	require.Len(t, expiring, 1)
	assert.Equal(t, "SOON", expiring[0].LotNumber)
}
