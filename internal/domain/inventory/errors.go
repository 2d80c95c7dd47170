package inventory

import (
	"fmt"

	"github.com/google/uuid"
)

// InsufficientStockError is returned when a ship or write-off requests more
// stock than the FEFO-available quantity. The intent that produced it is
// aborted atomically; no partial allocation is ever committed.
type InsufficientStockError struct {
	DrugID    uuid.UUID
	Location  Location
	Requested int64
	Available int64
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for drug %s at %s: requested %d, available %d",
		e.DrugID, e.Location, e.Requested, e.Available)
}

// Code returns the error code for HTTP mapping
func (e *InsufficientStockError) Code() string {
	return "INSUFFICIENT_STOCK"
}

// Shortfall returns the unmet quantity
func (e *InsufficientStockError) Shortfall() int64 {
	return e.Requested - e.Available
}

// UnknownBatchError is returned when a write-off or decrement references a
// lot that is not present at the expected location.
type UnknownBatchError struct {
	DrugID    uuid.UUID
	LotNumber string
	Location  Location
}

// Error implements the error interface
func (e *UnknownBatchError) Error() string {
	return fmt.Sprintf("no active batch for drug %s lot %q at %s", e.DrugID, e.LotNumber, e.Location)
}

// Code returns the error code for HTTP mapping
func (e *UnknownBatchError) Code() string {
	return "UNKNOWN_BATCH_OR_LOT"
}
