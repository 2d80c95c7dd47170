package inventory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pharmadist/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Location identifies which warehouse holds a batch.
type Location string

const (
	// LocationMainWarehouse is the receiving/storage warehouse
	LocationMainWarehouse Location = "main_warehouse"
	// LocationSalesWarehouse is the warehouse orders ship from
	LocationSalesWarehouse Location = "sales_warehouse"
)

// IsValid checks if the location is one of the known warehouses
func (l Location) IsValid() bool {
	switch l {
	case LocationMainWarehouse, LocationSalesWarehouse:
		return true
	}
	return false
}

// String returns the string representation
func (l Location) String() string {
	return string(l)
}

// DrugDefinition is the product master record. Its identity is immutable and
// its lifecycle is independent of stock: a drug may exist with zero batches.
type DrugDefinition struct {
	shared.BaseEntity
	Name               string
	UnitsPerCarton     int // pack size, display only
	SellingPrice       decimal.Decimal
	DiscountPercentage decimal.Decimal
	Category           string
}

// NewDrugDefinition creates a new drug definition
func NewDrugDefinition(name string, unitsPerCarton int, sellingPrice, discountPercentage decimal.Decimal, category string) (*DrugDefinition, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Drug name cannot be empty")
	}
	if unitsPerCarton < 0 {
		return nil, shared.NewDomainError("INVALID_PACK_SIZE", "Units per carton cannot be negative")
	}
	if sellingPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}
	return &DrugDefinition{
		BaseEntity:         shared.NewBaseEntity(),
		Name:               name,
		UnitsPerCarton:     unitsPerCarton,
		SellingPrice:       sellingPrice,
		DiscountPercentage: discountPercentage,
		Category:           category,
	}, nil
}

// DrugCatalog is an in-memory registry of drug definitions.
// The surrounding application owns persistence; the engine only needs lookups.
type DrugCatalog struct {
	mu    sync.RWMutex
	drugs map[uuid.UUID]*DrugDefinition
}

// NewDrugCatalog creates an empty drug catalog
func NewDrugCatalog() *DrugCatalog {
	return &DrugCatalog{
		drugs: make(map[uuid.UUID]*DrugDefinition),
	}
}

// Register adds or replaces a drug definition in the catalog
func (c *DrugCatalog) Register(drug *DrugDefinition) error {
	if drug == nil {
		return shared.NewDomainError("INVALID_DRUG", "Drug definition cannot be nil")
	}
	if drug.ID == uuid.Nil {
		return shared.NewDomainError("INVALID_DRUG", "Drug ID cannot be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drugs[drug.ID] = drug
	return nil
}

// Get returns the drug definition for the given ID
func (c *DrugCatalog) Get(drugID uuid.UUID) (*DrugDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	drug, ok := c.drugs[drugID]
	if !ok {
		return nil, shared.NewDomainError("DRUG_NOT_FOUND", "Drug not found: "+drugID.String())
	}
	return drug, nil
}

// Contains reports whether the catalog holds a definition for the given ID
func (c *DrugCatalog) Contains(drugID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.drugs[drugID]
	return ok
}

// All returns all registered drug definitions
func (c *DrugCatalog) All() []*DrugDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	drugs := make([]*DrugDefinition, 0, len(c.drugs))
	for _, d := range c.drugs {
		drugs = append(drugs, d)
	}
	return drugs
}
