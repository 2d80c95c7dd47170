package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinventory "github.com/pharmadist/backend/internal/application/inventory"
	"github.com/pharmadist/backend/internal/domain/inventory"
)

// InventoryHandler handles inventory-related HTTP requests
type InventoryHandler struct {
	BaseHandler
	service           *appinventory.InventoryService
	defaultExpiryDays int
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(service *appinventory.InventoryService, defaultExpiryDays int) *InventoryHandler {
	if defaultExpiryDays <= 0 {
		defaultExpiryDays = 90
	}
	return &InventoryHandler{service: service, defaultExpiryDays: defaultExpiryDays}
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	drugs := rg.Group("/drugs")
	{
		drugs.POST("", h.RegisterDrug)
		drugs.GET("", h.ListDrugs)
	}

	inv := rg.Group("/inventory")
	{
		inv.POST("/receive", h.Receive)
		inv.POST("/ship", h.Ship)
		inv.POST("/return", h.Return)
		inv.POST("/transfer", h.Transfer)
		inv.POST("/write-off", h.WriteOff)
		inv.POST("/availability", h.Availability)
		inv.GET("/ledger/:drug_id", h.Ledger)
		inv.GET("/batches/:drug_id", h.Batches)
		inv.GET("/expiring", h.Expiring)
	}
}

// RegisterDrug handles POST /drugs
func (h *InventoryHandler) RegisterDrug(c *gin.Context) {
	var req appinventory.RegisterDrugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	drug, err := h.service.RegisterDrug(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, drug)
}

// ListDrugs handles GET /drugs
func (h *InventoryHandler) ListDrugs(c *gin.Context) {
	h.Success(c, h.service.ListDrugs(c.Request.Context()))
}

// Receive handles POST /inventory/receive
func (h *InventoryHandler) Receive(c *gin.Context) {
	var req appinventory.ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	batch, err := h.service.ReceiveStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, batch)
}

// Ship handles POST /inventory/ship
func (h *InventoryHandler) Ship(c *gin.Context) {
	var req appinventory.ShipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.Ship(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Return handles POST /inventory/return
func (h *InventoryHandler) Return(c *gin.Context) {
	var req appinventory.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.Return(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Transfer handles POST /inventory/transfer
func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req appinventory.TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	results, err := h.service.Transfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// WriteOff handles POST /inventory/write-off
func (h *InventoryHandler) WriteOff(c *gin.Context) {
	var req appinventory.WriteOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.WriteOff(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Availability handles POST /inventory/availability
func (h *InventoryHandler) Availability(c *gin.Context) {
	var req appinventory.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Ledger handles GET /inventory/ledger/:drug_id?from=RFC3339&to=RFC3339
func (h *InventoryHandler) Ledger(c *gin.Context) {
	drugID, err := uuid.Parse(c.Param("drug_id"))
	if err != nil {
		h.BadRequest(c, "invalid drug ID")
		return
	}

	from, to, err := parsePeriod(c.Query("from"), c.Query("to"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ledger, err := h.service.Ledger(c.Request.Context(), drugID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ledger)
}

// Batches handles GET /inventory/batches/:drug_id?location=sales_warehouse
func (h *InventoryHandler) Batches(c *gin.Context) {
	drugID, err := uuid.Parse(c.Param("drug_id"))
	if err != nil {
		h.BadRequest(c, "invalid drug ID")
		return
	}
	location := inventory.Location(c.DefaultQuery("location", inventory.LocationSalesWarehouse.String()))

	batches, err := h.service.ActiveBatches(c.Request.Context(), drugID, location)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// Expiring handles GET /inventory/expiring?location=main_warehouse&days=90
func (h *InventoryHandler) Expiring(c *gin.Context) {
	location := inventory.Location(c.DefaultQuery("location", inventory.LocationMainWarehouse.String()))
	days := h.defaultExpiryDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "days must be an integer")
			return
		}
		days = parsed
	}

	batches, err := h.service.ExpiringBatches(c.Request.Context(), location, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// parsePeriod parses the ledger reporting window. Missing bounds default to
// the beginning of time and now respectively.
func parsePeriod(fromRaw, toRaw string) (time.Time, time.Time, error) {
	from := time.Time{}
	to := time.Now()
	var err error
	if fromRaw != "" {
		from, err = time.Parse(time.RFC3339, fromRaw)
		if err != nil {
			return from, to, err
		}
	}
	if toRaw != "" {
		to, err = time.Parse(time.RFC3339, toRaw)
		if err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}
