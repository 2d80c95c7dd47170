package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmadist/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// RegisterDrugRequest represents a request to register a drug definition
type RegisterDrugRequest struct {
	Name               string          `json:"name" binding:"required,min=1,max=255"`
	UnitsPerCarton     int             `json:"units_per_carton" binding:"omitempty,min=0"`
	SellingPrice       decimal.Decimal `json:"selling_price" binding:"required"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Category           string          `json:"category"`
}

// DrugResponse represents a drug definition in API responses
type DrugResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	UnitsPerCarton     int             `json:"units_per_carton"`
	SellingPrice       decimal.Decimal `json:"selling_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Category           string          `json:"category"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ReceiveStockRequest represents a purchase receipt into a warehouse
type ReceiveStockRequest struct {
	DrugID        uuid.UUID       `json:"drug_id" binding:"required"`
	LotNumber     string          `json:"lot_number" binding:"required,min=1,max=100"`
	Quantity      int64           `json:"quantity" binding:"required,gt=0"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
	PurchasePrice decimal.Decimal `json:"purchase_price" binding:"required"`
	Location      string          `json:"location" binding:"omitempty,oneof=main_warehouse sales_warehouse"`
}

// BatchResponse represents a stock batch in API responses
type BatchResponse struct {
	ID              uuid.UUID       `json:"id"`
	DrugID          uuid.UUID       `json:"drug_id"`
	LotNumber       string          `json:"lot_number"`
	Quantity        int64           `json:"quantity"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	Location        string          `json:"location"`
	TotalValue      decimal.Decimal `json:"total_value"`
	DaysUntilExpiry int             `json:"days_until_expiry"`
}

// AllocationResponse represents one slice of a FEFO allocation
type AllocationResponse struct {
	LotNumber string          `json:"lot_number"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// AllocationRequest carries a previously returned allocation record back in,
// so a sale return can be valued at the cost basis of the original shipment.
type AllocationRequest struct {
	LotNumber string          `json:"lot_number" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// ShipLineRequest represents one line of an outgoing sales order
type ShipLineRequest struct {
	DrugID        uuid.UUID       `json:"drug_id" binding:"required"`
	QuantitySold  int64           `json:"quantity_sold" binding:"omitempty,min=0"`
	BonusQuantity int64           `json:"bonus_quantity" binding:"omitempty,min=0"`
	UnitSalePrice decimal.Decimal `json:"unit_sale_price"`
}

// ShipRequest represents a request to ship a sales order
type ShipRequest struct {
	OrderID string            `json:"order_id" binding:"required,min=1,max=100"`
	Lines   []ShipLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ShipLineResponse reports the allocation and profitability of one shipped line
type ShipLineResponse struct {
	DrugID       uuid.UUID            `json:"drug_id"`
	UnitsShipped int64                `json:"units_shipped"`
	Allocations  []AllocationResponse `json:"allocations"`
	Revenue      decimal.Decimal      `json:"revenue"`
	CostOfGoods  decimal.Decimal      `json:"cost_of_goods"`
	GrossProfit  decimal.Decimal      `json:"gross_profit"`
}

// ShipResponse represents the outcome of shipping a sales order
type ShipResponse struct {
	OrderID string             `json:"order_id"`
	Lines   []ShipLineResponse `json:"lines"`
}

// ReturnLineRequest represents one returned line of a previously shipped order
type ReturnLineRequest struct {
	DrugID        uuid.UUID           `json:"drug_id" binding:"required"`
	QuantitySold  int64               `json:"quantity_sold" binding:"omitempty,min=0"`
	BonusQuantity int64               `json:"bonus_quantity" binding:"omitempty,min=0"`
	UnitSalePrice decimal.Decimal     `json:"unit_sale_price"`
	Allocations   []AllocationRequest `json:"allocations" binding:"omitempty,dive"`
}

// ReturnRequest represents a request to return shipped stock
type ReturnRequest struct {
	SourceID string              `json:"source_id" binding:"required,min=1,max=100"`
	Lines    []ReturnLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReturnResponse represents the batches recreated by a sale return
type ReturnResponse struct {
	SourceID string          `json:"source_id"`
	Batches  []BatchResponse `json:"batches"`
}

// TransferLineRequest represents one line of a stock requisition
type TransferLineRequest struct {
	DrugID   uuid.UUID `json:"drug_id" binding:"required"`
	Quantity int64     `json:"quantity" binding:"required,gt=0"`
}

// TransferStockRequest represents a requisition from main to sales warehouse
type TransferStockRequest struct {
	Lines []TransferLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// TransferResultResponse reports the outcome of one transfer line
type TransferResultResponse struct {
	DrugID      uuid.UUID            `json:"drug_id"`
	Requested   int64                `json:"requested"`
	Fulfilled   int64                `json:"fulfilled"`
	Allocations []AllocationResponse `json:"allocations"`
}

// WriteOffRequest represents a request to discard stock from a specific lot
type WriteOffRequest struct {
	DrugID    uuid.UUID `json:"drug_id" binding:"required"`
	LotNumber string    `json:"lot_number" binding:"required,min=1,max=100"`
	Location  string    `json:"location" binding:"required,oneof=main_warehouse sales_warehouse"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
	Reason    string    `json:"reason" binding:"required,min=1,max=255"`
}

// WriteOffResponse represents a write-off record in API responses
type WriteOffResponse struct {
	ID             uuid.UUID       `json:"id"`
	DrugID         uuid.UUID       `json:"drug_id"`
	LotNumber      string          `json:"lot_number"`
	Location       string          `json:"location"`
	Quantity       int64           `json:"quantity"`
	Reason         string          `json:"reason"`
	UnitCostAtTime decimal.Decimal `json:"unit_cost_at_time"`
	TotalLossValue decimal.Decimal `json:"total_loss_value"`
	Date           time.Time       `json:"date"`
}

// AvailabilityRequest represents a stock availability check
type AvailabilityRequest struct {
	DrugID   uuid.UUID `json:"drug_id" binding:"required"`
	Location string    `json:"location" binding:"required,oneof=main_warehouse sales_warehouse"`
	Quantity int64     `json:"quantity" binding:"required,gt=0"`
}

// AvailabilityResponse reports whether the requested quantity is coverable
type AvailabilityResponse struct {
	DrugID     uuid.UUID `json:"drug_id"`
	Location   string    `json:"location"`
	Requested  int64     `json:"requested"`
	Available  int64     `json:"available"`
	Sufficient bool      `json:"sufficient"`
}

// LedgerRowResponse is one period transaction with running balances
type LedgerRowResponse struct {
	Date         time.Time       `json:"date"`
	Kind         string          `json:"kind"`
	LotNumber    string          `json:"lot_number"`
	QuantityIn   int64           `json:"quantity_in"`
	QuantityOut  int64           `json:"quantity_out"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	RunningQty   int64           `json:"running_qty"`
	RunningValue decimal.Decimal `json:"running_value"`
}

// LedgerResponse represents a reconstructed stock ledger for one drug
type LedgerResponse struct {
	DrugID       uuid.UUID           `json:"drug_id"`
	PeriodStart  time.Time           `json:"period_start"`
	PeriodEnd    time.Time           `json:"period_end"`
	OpeningQty   int64               `json:"opening_qty"`
	OpeningValue decimal.Decimal     `json:"opening_value"`
	Rows         []LedgerRowResponse `json:"rows"`
	TotalIn      int64               `json:"total_in"`
	TotalOut     int64               `json:"total_out"`
	ClosingQty   int64               `json:"closing_qty"`
	ClosingValue decimal.Decimal     `json:"closing_value"`
}

// ToDrugResponse converts a drug definition to its response representation
func ToDrugResponse(drug *inventory.DrugDefinition) DrugResponse {
	return DrugResponse{
		ID:                 drug.ID,
		Name:               drug.Name,
		UnitsPerCarton:     drug.UnitsPerCarton,
		SellingPrice:       drug.SellingPrice,
		DiscountPercentage: drug.DiscountPercentage,
		Category:           drug.Category,
		CreatedAt:          drug.CreatedAt,
	}
}

// ToBatchResponse converts a batch to its response representation
func ToBatchResponse(batch *inventory.Batch) BatchResponse {
	return BatchResponse{
		ID:              batch.ID,
		DrugID:          batch.DrugID,
		LotNumber:       batch.LotNumber,
		Quantity:        batch.Quantity,
		ExpiryDate:      batch.ExpiryDate,
		PurchasePrice:   batch.PurchasePrice,
		Location:        batch.Location.String(),
		TotalValue:      batch.TotalValue(),
		DaysUntilExpiry: batch.DaysUntilExpiry(),
	}
}

// ToBatchResponses converts a slice of batches
func ToBatchResponses(batches []*inventory.Batch) []BatchResponse {
	responses := make([]BatchResponse, len(batches))
	for i, b := range batches {
		responses[i] = ToBatchResponse(b)
	}
	return responses
}

// ToAllocationResponses converts allocation records to their response form
func ToAllocationResponses(records []inventory.AllocationRecord) []AllocationResponse {
	responses := make([]AllocationResponse, len(records))
	for i, r := range records {
		responses[i] = AllocationResponse{
			LotNumber: r.LotNumber,
			Quantity:  r.Quantity,
			UnitCost:  r.UnitCost,
			TotalCost: r.TotalCost(),
		}
	}
	return responses
}

// ToWriteOffResponse converts a write-off record to its response representation
func ToWriteOffResponse(writeOff *inventory.WriteOff) WriteOffResponse {
	return WriteOffResponse{
		ID:             writeOff.ID,
		DrugID:         writeOff.DrugID,
		LotNumber:      writeOff.LotNumber,
		Location:       writeOff.Location.String(),
		Quantity:       writeOff.Quantity,
		Reason:         writeOff.Reason,
		UnitCostAtTime: writeOff.UnitCostAtTime,
		TotalLossValue: writeOff.TotalLossValue,
		Date:           writeOff.Date,
	}
}

// ToLedgerResponse converts a ledger to its response representation
func ToLedgerResponse(ledger *inventory.Ledger) LedgerResponse {
	rows := make([]LedgerRowResponse, len(ledger.Rows))
	for i, row := range ledger.Rows {
		rows[i] = LedgerRowResponse{
			Date:         row.Date,
			Kind:         row.Kind.String(),
			LotNumber:    row.LotNumber,
			QuantityIn:   row.QuantityIn,
			QuantityOut:  row.QuantityOut,
			UnitCost:     row.UnitCost,
			RunningQty:   row.RunningQty,
			RunningValue: row.RunningValue,
		}
	}
	return LedgerResponse{
		DrugID:       ledger.DrugID,
		PeriodStart:  ledger.PeriodStart,
		PeriodEnd:    ledger.PeriodEnd,
		OpeningQty:   ledger.OpeningQty,
		OpeningValue: ledger.OpeningValue,
		Rows:         rows,
		TotalIn:      ledger.TotalIn,
		TotalOut:     ledger.TotalOut,
		ClosingQty:   ledger.ClosingQty,
		ClosingValue: ledger.ClosingValue,
	}
}
