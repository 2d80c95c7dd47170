package inventory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pharmadist/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransferShortfallPolicy decides what happens when a transfer cannot be
// fully fulfilled from the main warehouse.
type TransferShortfallPolicy string

const (
	// TransferPolicyPartial fulfills what is available and reports the
	// fulfilled quantity per line. Transfers are advisory, unlike sales.
	TransferPolicyPartial TransferShortfallPolicy = "PARTIAL"
	// TransferPolicyStrict rejects the whole transfer when any line is short
	TransferPolicyStrict TransferShortfallPolicy = "STRICT"
)

// IsValid checks if the policy is known
func (p TransferShortfallPolicy) IsValid() bool {
	return p == TransferPolicyPartial || p == TransferPolicyStrict
}

// TransferRequest is one requested line of a stock requisition (main → sales)
type TransferRequest struct {
	DrugID   uuid.UUID
	Quantity int64
}

// TransferResult reports the outcome of one transfer line. Fulfilled may be
// less than Requested under the partial policy.
type TransferResult struct {
	DrugID      uuid.UUID
	Requested   int64
	Fulfilled   int64
	Allocations []AllocationRecord
}

// AdjustmentService applies business intents (ship, return, transfer, write
// off, receive) to the batch store through the FEFO allocator. Every intent
// runs under a single store-wide mutex: FEFO allocation is a read-then-write
// sequence and two interleaved allocations could overdraw the same batch.
type AdjustmentService struct {
	mu             sync.Mutex
	store          *BatchStore
	allocator      *Allocator
	transferPolicy TransferShortfallPolicy
}

// NewAdjustmentService creates an adjustment service over the given store
// with the partial transfer policy.
func NewAdjustmentService(store *BatchStore) *AdjustmentService {
	return &AdjustmentService{
		store:          store,
		allocator:      NewAllocator(store),
		transferPolicy: TransferPolicyPartial,
	}
}

// SetTransferShortfallPolicy overrides the transfer shortfall policy
func (s *AdjustmentService) SetTransferShortfallPolicy(policy TransferShortfallPolicy) error {
	if !policy.IsValid() {
		return shared.NewDomainError("INVALID_POLICY", "Unknown transfer shortfall policy: "+string(policy))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transferPolicy = policy
	return nil
}

// Receive records a purchase receipt: a new batch at the given location,
// merged into an existing batch of the same lot if one is already there.
// Returns the active batch holding the received stock.
func (s *AdjustmentService) Receive(
	drugID uuid.UUID,
	lotNumber string,
	quantity int64,
	expiryDate *time.Time,
	purchasePrice decimal.Decimal,
	location Location,
) (*Batch, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	batch, err := NewBatch(drugID, lotNumber, quantity, expiryDate, purchasePrice, location)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Upsert(batch); err != nil {
		return nil, err
	}
	return s.store.FindByLot(drugID, lotNumber, location).Clone(), nil
}

// Ship allocates stock for every order line from the sales warehouse and
// attaches the resulting allocation records to the lines. The operation is
// atomic across lines: if any line falls short the store is rolled back to
// its prior state, no line keeps an allocation, and an InsufficientStockError
// is returned. A sale invoice is never half-shipped.
func (s *AdjustmentService) Ship(lines []*OrderLine) error {
	if len(lines) == 0 {
		return shared.NewDomainError("INVALID_ORDER", "Order must have at least one line")
	}
	for _, line := range lines {
		if line.QuantitySold < 0 || line.BonusQuantity < 0 {
			return shared.NewDomainError("INVALID_QUANTITY", "Line quantities cannot be negative")
		}
		if line.UnitsToShip() <= 0 {
			return shared.NewDomainError("INVALID_QUANTITY", "Line must ship at least one unit")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.store.Snapshot()
	allocated := make([][]AllocationRecord, len(lines))
	for i, line := range lines {
		requested := line.UnitsToShip()
		records, shortfall, err := s.allocator.Allocate(line.DrugID, LocationSalesWarehouse, requested)
		if err != nil {
			s.store.Restore(snapshot)
			return err
		}
		if shortfall > 0 {
			s.store.Restore(snapshot)
			return &InsufficientStockError{
				DrugID:    line.DrugID,
				Location:  LocationSalesWarehouse,
				Requested: requested,
				Available: requested - shortfall,
			}
		}
		allocated[i] = records
	}

	// Commit allocations to the lines only once every line has stock.
	for i, line := range lines {
		line.Allocations = allocated[i]
	}
	s.store.Prune()
	return nil
}

// Return puts the physical units of previously shipped lines back into the
// sales warehouse as new batches under a synthetic lot marker. Restoring the
// physical count takes priority over exact lot traceability. The returned
// batch is valued at the weighted average unit cost of the line's original
// allocation records when they are available; without them the cost basis is
// lost and defaults to zero.
func (s *AdjustmentService) Return(sourceID string, lines []*OrderLine) ([]*Batch, error) {
	if sourceID == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Return source ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "Return must have at least one line")
	}
	for _, line := range lines {
		if line.UnitsToShip() <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Return line must carry at least one unit")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	restored := make([]*Batch, 0, len(lines))
	for i, line := range lines {
		lotMarker := fmt.Sprintf("RET-%s-%d", sourceID, i+1)
		unitCost := WeightedUnitCost(line.Allocations)
		batch, err := NewBatch(line.DrugID, lotMarker, line.UnitsToShip(), nil, unitCost, LocationSalesWarehouse)
		if err != nil {
			return nil, err
		}
		if err := s.store.Upsert(batch); err != nil {
			return nil, err
		}
		restored = append(restored, s.store.FindByLot(line.DrugID, lotMarker, LocationSalesWarehouse).Clone())
	}
	return restored, nil
}

// Transfer fulfills a stock requisition from the main warehouse into the
// sales warehouse. Each allocated slice becomes an equal-quantity batch at
// the destination preserving its lot number, purchase price, and expiry date,
// merged into an existing batch of the same lot when present. Under the
// partial policy short lines report what was fulfilled; under the strict
// policy any shortfall aborts the whole transfer before mutating anything.
func (s *AdjustmentService) Transfer(requests []TransferRequest) ([]TransferResult, error) {
	if len(requests) == 0 {
		return nil, shared.NewDomainError("INVALID_TRANSFER", "Transfer must have at least one line")
	}
	for _, req := range requests {
		if req.DrugID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_DRUG", "Drug ID cannot be empty")
		}
		if req.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Transfer quantity must be positive")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transferPolicy == TransferPolicyStrict {
		// Demand is aggregated per drug: lines that fit individually can
		// still jointly overdraw the same stock.
		demand := make(map[uuid.UUID]int64)
		for _, req := range requests {
			demand[req.DrugID] += req.Quantity
		}
		for _, req := range requests {
			available := s.store.TotalAvailable(req.DrugID, LocationMainWarehouse)
			if available < demand[req.DrugID] {
				return nil, &InsufficientStockError{
					DrugID:    req.DrugID,
					Location:  LocationMainWarehouse,
					Requested: demand[req.DrugID],
					Available: available,
				}
			}
		}
	}

	results := make([]TransferResult, 0, len(requests))
	for _, req := range requests {
		// Capture expiry dates before allocation; a fully drained source
		// batch is gone once pruned.
		expiries := make(map[string]*time.Time)
		for _, b := range s.store.ActiveBatches(req.DrugID, LocationMainWarehouse) {
			if _, seen := expiries[b.LotNumber]; !seen {
				expiries[b.LotNumber] = b.ExpiryDate
			}
		}

		records, shortfall, err := s.allocator.Allocate(req.DrugID, LocationMainWarehouse, req.Quantity)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			var expiry *time.Time
			if e := expiries[record.LotNumber]; e != nil {
				copied := *e
				expiry = &copied
			}
			batch, err := NewBatch(req.DrugID, record.LotNumber, record.Quantity, expiry, record.UnitCost, LocationSalesWarehouse)
			if err != nil {
				return nil, err
			}
			if err := s.store.Upsert(batch); err != nil {
				return nil, err
			}
		}
		results = append(results, TransferResult{
			DrugID:      req.DrugID,
			Requested:   req.Quantity,
			Fulfilled:   req.Quantity - shortfall,
			Allocations: records,
		})
	}
	s.store.Prune()
	return results, nil
}

// WriteOffBatch discards stock from an operator-selected lot. The batch is
// chosen explicitly rather than by FEFO because the operator is intentionally
// discarding a known lot (breakage, recall, expiry). The loss is valued at
// the batch's purchase price at this moment.
func (s *AdjustmentService) WriteOffBatch(
	drugID uuid.UUID,
	lotNumber string,
	location Location,
	quantity int64,
	reason string,
) (*WriteOff, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Write-off quantity must be positive")
	}
	if !location.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Unknown warehouse location: "+string(location))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.store.FindByLot(drugID, lotNumber, location)
	if batch == nil {
		return nil, &UnknownBatchError{DrugID: drugID, LotNumber: lotNumber, Location: location}
	}
	if quantity > batch.Quantity {
		return nil, &InsufficientStockError{
			DrugID:    drugID,
			Location:  location,
			Requested: quantity,
			Available: batch.Quantity,
		}
	}
	writeOff := NewWriteOff(batch, quantity, reason)
	if err := batch.Deduct(quantity); err != nil {
		return nil, err
	}
	s.store.Prune()
	return writeOff, nil
}

// ActiveBatches returns copies of the active batches for the pair in FEFO order
func (s *AdjustmentService) ActiveBatches(drugID uuid.UUID, location Location) []*Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	batches := s.store.ActiveBatches(drugID, location)
	copies := make([]*Batch, len(batches))
	for i, b := range batches {
		copies[i] = b.Clone()
	}
	return copies
}

// ExpiringWithin returns copies of batches at the location expiring within
// the window, soonest first.
func (s *AdjustmentService) ExpiringWithin(location Location, window time.Duration) []*Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	batches := s.store.ExpiringWithin(location, window)
	copies := make([]*Batch, len(batches))
	for i, b := range batches {
		copies[i] = b.Clone()
	}
	return copies
}

// CheckAvailability reports whether the requested quantity is coverable by
// active stock, and how much is available.
func (s *AdjustmentService) CheckAvailability(drugID uuid.UUID, location Location, quantity int64) (bool, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	available := s.store.TotalAvailable(drugID, location)
	return available >= quantity, available
}
