package inventory

import (
	"github.com/google/uuid"
	"github.com/pharmadist/backend/internal/domain/shared"
)

// Allocator deducts stock from batches in First-Expired-First-Out order.
// Given the same batch snapshot it always produces the same allocation,
// which is what makes sale cost bases auditable after the fact.
type Allocator struct {
	store *BatchStore
}

// NewAllocator creates a FEFO allocator over the given store
func NewAllocator(store *BatchStore) *Allocator {
	return &Allocator{store: store}
}

// Allocate greedily consumes active batches for the (drug, location) pair in
// expiry order until the requested quantity is met or stock runs out. Each
// consumed slice is recorded with the lot number and the batch's purchase
// price at this moment. The unmet remainder is returned as shortfall, never
// as an error: callers decide whether a partial allocation is acceptable.
func (a *Allocator) Allocate(drugID uuid.UUID, location Location, requestedQty int64) ([]AllocationRecord, int64, error) {
	if drugID == uuid.Nil {
		return nil, 0, shared.NewDomainError("INVALID_DRUG", "Drug ID cannot be empty")
	}
	if requestedQty <= 0 {
		return nil, 0, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}

	remaining := requestedQty
	records := make([]AllocationRecord, 0)
	for _, batch := range a.store.ActiveBatches(drugID, location) {
		if remaining == 0 {
			break
		}
		take := remaining
		if batch.Quantity < take {
			take = batch.Quantity
		}
		if err := a.store.Decrement(batch.ID, take); err != nil {
			return nil, 0, err
		}
		records = append(records, AllocationRecord{
			LotNumber: batch.LotNumber,
			Quantity:  take,
			UnitCost:  batch.PurchasePrice,
		})
		remaining -= take
	}
	return records, remaining, nil
}
