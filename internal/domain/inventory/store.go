package inventory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pharmadist/backend/internal/domain/shared"
)

// batchKey partitions the store by drug and warehouse for O(1) FEFO
// candidate lookup.
type batchKey struct {
	drugID   uuid.UUID
	location Location
}

// BatchStore holds the current set of batches for all drugs, partitioned by
// warehouse location. It owns only the in-memory collection; persistence is
// the caller's job. The store is not internally synchronized: every intent
// runs under the AdjustmentService mutex, which is the single mutual-exclusion
// scope required for FEFO read-then-write sequences.
type BatchStore struct {
	byKey map[batchKey][]*Batch
	byID  map[uuid.UUID]*Batch
}

// NewBatchStore creates an empty batch store
func NewBatchStore() *BatchStore {
	return &BatchStore{
		byKey: make(map[batchKey][]*Batch),
		byID:  make(map[uuid.UUID]*Batch),
	}
}

// Load seeds the store with an existing batch collection, preserving the
// given order as the creation order for FEFO tie-breaking.
func (s *BatchStore) Load(batches []*Batch) error {
	for _, b := range batches {
		if err := s.Upsert(b); err != nil {
			return err
		}
	}
	return nil
}

// Upsert inserts a batch, merging quantities into an existing active batch
// with the same (drug, lot, location) tuple instead of creating a duplicate.
// The existing batch keeps its purchase price and expiry date; a lot carries
// a single cost by definition.
func (s *BatchStore) Upsert(batch *Batch) error {
	if batch == nil {
		return shared.NewDomainError("INVALID_BATCH", "Batch cannot be nil")
	}
	if !batch.Location.IsValid() {
		return shared.NewDomainError("INVALID_LOCATION", "Unknown warehouse location: "+string(batch.Location))
	}
	key := batchKey{drugID: batch.DrugID, location: batch.Location}
	for _, existing := range s.byKey[key] {
		if existing.LotNumber == batch.LotNumber {
			return existing.Add(batch.Quantity)
		}
	}
	s.byKey[key] = append(s.byKey[key], batch)
	s.byID[batch.ID] = batch
	return nil
}

// Find returns the batch with the given ID, or nil
func (s *BatchStore) Find(batchID uuid.UUID) *Batch {
	return s.byID[batchID]
}

// FindByLot returns the active batch for the (drug, lot, location) tuple, or nil.
// At most one active batch exists per tuple (Upsert merges collisions).
func (s *BatchStore) FindByLot(drugID uuid.UUID, lotNumber string, location Location) *Batch {
	for _, b := range s.byKey[batchKey{drugID: drugID, location: location}] {
		if b.LotNumber == lotNumber && b.HasStock() {
			return b
		}
	}
	return nil
}

// ActiveBatches returns the batches with stock for the (drug, location) pair,
// sorted ascending by expiry date. Batches without an expiry date sort last.
// Ties preserve creation order, which makes FEFO allocation deterministic.
func (s *BatchStore) ActiveBatches(drugID uuid.UUID, location Location) []*Batch {
	candidates := s.byKey[batchKey{drugID: drugID, location: location}]
	active := make([]*Batch, 0, len(candidates))
	for _, b := range candidates {
		if b.HasStock() {
			active = append(active, b)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		iExpiry, jExpiry := active[i].ExpiryDate, active[j].ExpiryDate
		if iExpiry == nil {
			return false
		}
		if jExpiry == nil {
			return true
		}
		return iExpiry.Before(*jExpiry)
	})
	return active
}

// Decrement reduces the identified batch by the given quantity. Fails with
// InsufficientStockError when the quantity exceeds what the batch holds.
func (s *BatchStore) Decrement(batchID uuid.UUID, quantity int64) error {
	batch, ok := s.byID[batchID]
	if !ok {
		return shared.NewDomainError("BATCH_NOT_FOUND", "Batch not found: "+batchID.String())
	}
	return batch.Deduct(quantity)
}

// Prune removes zero-quantity batches from the active set. It must run after
// every mutating transaction: a drained batch is logically gone.
func (s *BatchStore) Prune() int {
	pruned := 0
	for key, batches := range s.byKey {
		kept := batches[:0]
		for _, b := range batches {
			if b.HasStock() {
				kept = append(kept, b)
			} else {
				delete(s.byID, b.ID)
				pruned++
			}
		}
		if len(kept) == 0 {
			delete(s.byKey, key)
		} else {
			s.byKey[key] = kept
		}
	}
	return pruned
}

// TotalAvailable returns the summed quantity of active batches for the pair
func (s *BatchStore) TotalAvailable(drugID uuid.UUID, location Location) int64 {
	var total int64
	for _, b := range s.byKey[batchKey{drugID: drugID, location: location}] {
		if b.HasStock() {
			total += b.Quantity
		}
	}
	return total
}

// ExpiringWithin returns active batches at the location that expire within
// the given window, soonest first.
func (s *BatchStore) ExpiringWithin(location Location, window time.Duration) []*Batch {
	deadline := time.Now().Add(window)
	expiring := make([]*Batch, 0)
	for key, batches := range s.byKey {
		if key.location != location {
			continue
		}
		for _, b := range batches {
			if b.HasStock() && b.ExpiryDate != nil && b.ExpiryDate.Before(deadline) {
				expiring = append(expiring, b)
			}
		}
	}
	sort.SliceStable(expiring, func(i, j int) bool {
		return expiring[i].ExpiryDate.Before(*expiring[j].ExpiryDate)
	})
	return expiring
}

// AllBatches returns every batch currently held, in no particular order
func (s *BatchStore) AllBatches() []*Batch {
	batches := make([]*Batch, 0, len(s.byID))
	for _, key := range s.sortedKeys() {
		batches = append(batches, s.byKey[key]...)
	}
	return batches
}

// sortedKeys returns store keys in a stable order so snapshots and listings
// are reproducible.
func (s *BatchStore) sortedKeys() []batchKey {
	keys := make([]batchKey, 0, len(s.byKey))
	for key := range s.byKey {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].drugID != keys[j].drugID {
			return keys[i].drugID.String() < keys[j].drugID.String()
		}
		return keys[i].location < keys[j].location
	})
	return keys
}

// StoreSnapshot is a deep copy of the store state, used to roll back
// multi-line intents atomically.
type StoreSnapshot struct {
	batches map[batchKey][]*Batch
}

// Snapshot captures a deep copy of the current store state
func (s *BatchStore) Snapshot() *StoreSnapshot {
	snap := &StoreSnapshot{batches: make(map[batchKey][]*Batch, len(s.byKey))}
	for key, batches := range s.byKey {
		copies := make([]*Batch, len(batches))
		for i, b := range batches {
			copies[i] = b.Clone()
		}
		snap.batches[key] = copies
	}
	return snap
}

// Restore replaces the store state with the given snapshot
func (s *BatchStore) Restore(snap *StoreSnapshot) {
	s.byKey = make(map[batchKey][]*Batch, len(snap.batches))
	s.byID = make(map[uuid.UUID]*Batch)
	for key, batches := range snap.batches {
		copies := make([]*Batch, len(batches))
		for i, b := range batches {
			copies[i] = b.Clone()
			s.byID[copies[i].ID] = copies[i]
		}
		s.byKey[key] = copies
	}
}
