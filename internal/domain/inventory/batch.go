package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmadist/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Batch represents a physical lot of a drug at one warehouse location.
// Unit counts are whole numbers; the purchase price is the unit cost fixed at
// receipt and never recalculated. A batch that reaches zero quantity is
// logically gone and must be pruned from the active set.
type Batch struct {
	shared.BaseEntity
	LotNumber     string
	DrugID        uuid.UUID
	Quantity      int64
	ExpiryDate    *time.Time // optional; batches created by sale returns carry none
	PurchasePrice decimal.Decimal
	Location      Location
}

// NewBatch creates a new stock batch
func NewBatch(
	drugID uuid.UUID,
	lotNumber string,
	quantity int64,
	expiryDate *time.Time,
	purchasePrice decimal.Decimal,
	location Location,
) (*Batch, error) {
	if drugID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DRUG", "Drug ID cannot be empty")
	}
	if lotNumber == "" {
		return nil, shared.NewDomainError("INVALID_LOT", "Lot number cannot be empty")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity cannot be negative")
	}
	if purchasePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Purchase price cannot be negative")
	}
	if !location.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Unknown warehouse location: "+string(location))
	}
	return &Batch{
		BaseEntity:    shared.NewBaseEntity(),
		LotNumber:     lotNumber,
		DrugID:        drugID,
		Quantity:      quantity,
		ExpiryDate:    expiryDate,
		PurchasePrice: purchasePrice,
		Location:      location,
	}, nil
}

// Deduct reduces the batch quantity. It fails when the requested quantity
// exceeds what the batch holds; a batch never goes negative.
func (b *Batch) Deduct(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
	}
	if quantity > b.Quantity {
		return &InsufficientStockError{
			DrugID:    b.DrugID,
			Location:  b.Location,
			Requested: quantity,
			Available: b.Quantity,
		}
	}
	b.Quantity -= quantity
	b.UpdatedAt = time.Now()
	return nil
}

// Add increases the batch quantity (transfer merge or adjustment)
func (b *Batch) Add(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Added quantity must be positive")
	}
	b.Quantity += quantity
	b.UpdatedAt = time.Now()
	return nil
}

// IsExpired returns true if the batch has expired at the given time
func (b *Batch) IsExpired(at time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(at)
}

// WillExpireWithin returns true if the batch expires within the given duration
func (b *Batch) WillExpireWithin(window time.Duration) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(time.Now().Add(window))
}

// DaysUntilExpiry returns the number of days until expiry, -1 if no expiry date
func (b *Batch) DaysUntilExpiry() int {
	if b.ExpiryDate == nil {
		return -1
	}
	return int(time.Until(*b.ExpiryDate).Hours() / 24)
}

// HasStock returns true if the batch has remaining quantity
func (b *Batch) HasStock() bool {
	return b.Quantity > 0
}

// TotalValue returns quantity times unit purchase price
func (b *Batch) TotalValue() decimal.Decimal {
	return decimal.NewFromInt(b.Quantity).Mul(b.PurchasePrice)
}

// Clone returns a deep copy of the batch
func (b *Batch) Clone() *Batch {
	clone := *b
	if b.ExpiryDate != nil {
		expiry := *b.ExpiryDate
		clone.ExpiryDate = &expiry
	}
	return &clone
}
