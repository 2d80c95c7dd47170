package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pharmadist/backend/internal/domain/inventory"
	"github.com/pharmadist/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// JournalEntry ties a stock transaction to the drug it moved. The journal is
// the append-only history the ledger replays; live batch state cannot serve
// that purpose because batches get merged and pruned.
type JournalEntry struct {
	DrugID uuid.UUID
	Tx     inventory.StockTransaction
}

// InventoryService orchestrates inventory intents over the drug catalog and
// the adjustment service, and maintains the transaction journal for ledger
// reconstruction.
type InventoryService struct {
	mu          sync.Mutex // guards journal
	catalog     *inventory.DrugCatalog
	adjustments *inventory.AdjustmentService
	journal     []JournalEntry
	logger      *zap.Logger
	now         func() time.Time
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	catalog *inventory.DrugCatalog,
	adjustments *inventory.AdjustmentService,
	logger *zap.Logger,
) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		catalog:     catalog,
		adjustments: adjustments,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *InventoryService) appendJournal(entries ...JournalEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal = append(s.journal, entries...)
}

// historyFor returns the journal transactions of one drug in insertion order
func (s *InventoryService) historyFor(drugID uuid.UUID) []inventory.StockTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]inventory.StockTransaction, 0)
	for _, entry := range s.journal {
		if entry.DrugID == drugID {
			history = append(history, entry.Tx)
		}
	}
	return history
}

func (s *InventoryService) requireDrug(drugID uuid.UUID) error {
	if !s.catalog.Contains(drugID) {
		return shared.NewDomainError("DRUG_NOT_FOUND", "Drug not found: "+drugID.String())
	}
	return nil
}

func locationOrDefault(raw string, fallback inventory.Location) inventory.Location {
	if raw == "" {
		return fallback
	}
	return inventory.Location(raw)
}

// RegisterDrug adds a drug definition to the catalog
func (s *InventoryService) RegisterDrug(ctx context.Context, req RegisterDrugRequest) (*DrugResponse, error) {
	drug, err := inventory.NewDrugDefinition(req.Name, req.UnitsPerCarton, req.SellingPrice, req.DiscountPercentage, req.Category)
	if err != nil {
		return nil, err
	}
	if err := s.catalog.Register(drug); err != nil {
		return nil, err
	}
	s.logger.Info("drug registered",
		zap.String("drug_id", drug.ID.String()),
		zap.String("name", drug.Name))
	response := ToDrugResponse(drug)
	return &response, nil
}

// ListDrugs returns all registered drug definitions
func (s *InventoryService) ListDrugs(ctx context.Context) []DrugResponse {
	drugs := s.catalog.All()
	responses := make([]DrugResponse, len(drugs))
	for i, d := range drugs {
		responses[i] = ToDrugResponse(d)
	}
	return responses
}

// ReceiveStock records a purchase receipt into a warehouse. The location
// defaults to the main warehouse when the request leaves it empty.
func (s *InventoryService) ReceiveStock(ctx context.Context, req ReceiveStockRequest) (*BatchResponse, error) {
	if err := s.requireDrug(req.DrugID); err != nil {
		return nil, err
	}
	location := locationOrDefault(req.Location, inventory.LocationMainWarehouse)

	batch, err := s.adjustments.Receive(req.DrugID, req.LotNumber, req.Quantity, req.ExpiryDate, req.PurchasePrice, location)
	if err != nil {
		return nil, err
	}

	s.appendJournal(JournalEntry{
		DrugID: req.DrugID,
		Tx: inventory.StockTransaction{
			Date:       s.now(),
			Kind:       inventory.TransactionPurchase,
			LotNumber:  req.LotNumber,
			QuantityIn: req.Quantity,
			UnitCost:   req.PurchasePrice,
		},
	})
	s.logger.Info("stock received",
		zap.String("drug_id", req.DrugID.String()),
		zap.String("lot_number", req.LotNumber),
		zap.Int64("quantity", req.Quantity),
		zap.String("location", location.String()))

	response := ToBatchResponse(batch)
	return &response, nil
}

// Ship allocates and ships a sales order from the sales warehouse. The
// operation is atomic: either every line ships in full or nothing moves.
func (s *InventoryService) Ship(ctx context.Context, req ShipRequest) (*ShipResponse, error) {
	lines := make([]*inventory.OrderLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		if err := s.requireDrug(lineReq.DrugID); err != nil {
			return nil, err
		}
		lines[i] = &inventory.OrderLine{
			DrugID:        lineReq.DrugID,
			QuantitySold:  lineReq.QuantitySold,
			BonusQuantity: lineReq.BonusQuantity,
			UnitSalePrice: lineReq.UnitSalePrice,
		}
	}

	if err := s.adjustments.Ship(lines); err != nil {
		return nil, err
	}

	shippedAt := s.now()
	entries := make([]JournalEntry, 0, len(lines))
	responses := make([]ShipLineResponse, len(lines))
	for i, line := range lines {
		for _, record := range line.Allocations {
			entries = append(entries, JournalEntry{
				DrugID: line.DrugID,
				Tx: inventory.StockTransaction{
					Date:        shippedAt,
					Kind:        inventory.TransactionSale,
					LotNumber:   record.LotNumber,
					QuantityOut: record.Quantity,
					UnitCost:    record.UnitCost,
				},
			})
		}
		responses[i] = ShipLineResponse{
			DrugID:       line.DrugID,
			UnitsShipped: line.UnitsToShip(),
			Allocations:  ToAllocationResponses(line.Allocations),
			Revenue:      line.Revenue(),
			CostOfGoods:  line.CostOfGoods(),
			GrossProfit:  line.GrossProfit(),
		}
	}
	s.appendJournal(entries...)
	s.logger.Info("order shipped",
		zap.String("order_id", req.OrderID),
		zap.Int("lines", len(lines)))

	return &ShipResponse{OrderID: req.OrderID, Lines: responses}, nil
}

// Return puts previously shipped stock back into the sales warehouse. Lines
// that echo their original allocation records get a cost basis equal to the
// weighted average of those records; lines without records come back at zero.
func (s *InventoryService) Return(ctx context.Context, req ReturnRequest) (*ReturnResponse, error) {
	lines := make([]*inventory.OrderLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		if err := s.requireDrug(lineReq.DrugID); err != nil {
			return nil, err
		}
		allocations := make([]inventory.AllocationRecord, len(lineReq.Allocations))
		for j, a := range lineReq.Allocations {
			allocations[j] = inventory.AllocationRecord{
				LotNumber: a.LotNumber,
				Quantity:  a.Quantity,
				UnitCost:  a.UnitCost,
			}
		}
		lines[i] = &inventory.OrderLine{
			DrugID:        lineReq.DrugID,
			QuantitySold:  lineReq.QuantitySold,
			BonusQuantity: lineReq.BonusQuantity,
			UnitSalePrice: lineReq.UnitSalePrice,
			Allocations:   allocations,
		}
	}

	batches, err := s.adjustments.Return(req.SourceID, lines)
	if err != nil {
		return nil, err
	}

	returnedAt := s.now()
	entries := make([]JournalEntry, len(batches))
	for i, batch := range batches {
		entries[i] = JournalEntry{
			DrugID: batch.DrugID,
			Tx: inventory.StockTransaction{
				Date:       returnedAt,
				Kind:       inventory.TransactionSaleReturn,
				LotNumber:  batch.LotNumber,
				QuantityIn: lines[i].UnitsToShip(),
				UnitCost:   batch.PurchasePrice,
			},
		}
	}
	s.appendJournal(entries...)
	s.logger.Info("stock returned",
		zap.String("source_id", req.SourceID),
		zap.Int("lines", len(lines)))

	return &ReturnResponse{SourceID: req.SourceID, Batches: ToBatchResponses(batches)}, nil
}

// Transfer fulfills a stock requisition from the main warehouse into the
// sales warehouse.
func (s *InventoryService) Transfer(ctx context.Context, req TransferStockRequest) ([]TransferResultResponse, error) {
	requests := make([]inventory.TransferRequest, len(req.Lines))
	for i, lineReq := range req.Lines {
		if err := s.requireDrug(lineReq.DrugID); err != nil {
			return nil, err
		}
		requests[i] = inventory.TransferRequest{
			DrugID:   lineReq.DrugID,
			Quantity: lineReq.Quantity,
		}
	}

	results, err := s.adjustments.Transfer(requests)
	if err != nil {
		return nil, err
	}

	transferredAt := s.now()
	entries := make([]JournalEntry, 0, len(results)*2)
	responses := make([]TransferResultResponse, len(results))
	for i, result := range results {
		for _, record := range result.Allocations {
			entries = append(entries,
				JournalEntry{
					DrugID: result.DrugID,
					Tx: inventory.StockTransaction{
						Date:        transferredAt,
						Kind:        inventory.TransactionTransferOut,
						LotNumber:   record.LotNumber,
						QuantityOut: record.Quantity,
						UnitCost:    record.UnitCost,
					},
				},
				JournalEntry{
					DrugID: result.DrugID,
					Tx: inventory.StockTransaction{
						Date:       transferredAt,
						Kind:       inventory.TransactionTransferIn,
						LotNumber:  record.LotNumber,
						QuantityIn: record.Quantity,
						UnitCost:   record.UnitCost,
					},
				})
		}
		responses[i] = TransferResultResponse{
			DrugID:      result.DrugID,
			Requested:   result.Requested,
			Fulfilled:   result.Fulfilled,
			Allocations: ToAllocationResponses(result.Allocations),
		}
	}
	s.appendJournal(entries...)
	s.logger.Info("stock transferred",
		zap.Int("lines", len(results)))

	return responses, nil
}

// WriteOff discards stock from an operator-selected lot and records the loss
func (s *InventoryService) WriteOff(ctx context.Context, req WriteOffRequest) (*WriteOffResponse, error) {
	if err := s.requireDrug(req.DrugID); err != nil {
		return nil, err
	}
	location := inventory.Location(req.Location)

	writeOff, err := s.adjustments.WriteOffBatch(req.DrugID, req.LotNumber, location, req.Quantity, req.Reason)
	if err != nil {
		return nil, err
	}

	s.appendJournal(JournalEntry{
		DrugID: req.DrugID,
		Tx: inventory.StockTransaction{
			Date:        writeOff.Date,
			Kind:        inventory.TransactionWriteOff,
			LotNumber:   req.LotNumber,
			QuantityOut: req.Quantity,
			UnitCost:    writeOff.UnitCostAtTime,
		},
	})
	s.logger.Info("stock written off",
		zap.String("drug_id", req.DrugID.String()),
		zap.String("lot_number", req.LotNumber),
		zap.Int64("quantity", req.Quantity),
		zap.String("reason", req.Reason),
		zap.String("loss_value", writeOff.TotalLossValue.String()))

	response := ToWriteOffResponse(writeOff)
	return &response, nil
}

// CheckAvailability reports whether the requested quantity is coverable by
// active stock at the location.
func (s *InventoryService) CheckAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error) {
	if err := s.requireDrug(req.DrugID); err != nil {
		return nil, err
	}
	location := inventory.Location(req.Location)
	sufficient, available := s.adjustments.CheckAvailability(req.DrugID, location, req.Quantity)
	return &AvailabilityResponse{
		DrugID:     req.DrugID,
		Location:   req.Location,
		Requested:  req.Quantity,
		Available:  available,
		Sufficient: sufficient,
	}, nil
}

// Ledger reconstructs the stock ledger of one drug for a reporting period by
// replaying its transaction journal.
func (s *InventoryService) Ledger(ctx context.Context, drugID uuid.UUID, periodStart, periodEnd time.Time) (*LedgerResponse, error) {
	if err := s.requireDrug(drugID); err != nil {
		return nil, err
	}
	ledger, err := inventory.BuildLedger(drugID, periodStart, periodEnd, s.historyFor(drugID))
	if err != nil {
		return nil, err
	}
	response := ToLedgerResponse(ledger)
	return &response, nil
}

// ActiveBatches returns the active batches of a drug at a location, soonest
// expiry first.
func (s *InventoryService) ActiveBatches(ctx context.Context, drugID uuid.UUID, location inventory.Location) ([]BatchResponse, error) {
	if err := s.requireDrug(drugID); err != nil {
		return nil, err
	}
	if !location.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Unknown warehouse location: "+location.String())
	}
	return ToBatchResponses(s.adjustments.ActiveBatches(drugID, location)), nil
}

// ExpiringBatches returns batches at the location expiring within the given
// number of days, soonest first.
func (s *InventoryService) ExpiringBatches(ctx context.Context, location inventory.Location, days int) ([]BatchResponse, error) {
	if !location.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Unknown warehouse location: "+location.String())
	}
	if days <= 0 {
		return nil, shared.NewDomainError("INVALID_WINDOW", "Expiry window must be positive")
	}
	window := time.Duration(days) * 24 * time.Hour
	return ToBatchResponses(s.adjustments.ExpiringWithin(location, window)), nil
}
