// api/handlers/station_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mtofleet/fleet-backend/api/models"
	"github.com/mtofleet/fleet-backend/internal/storage"
)

// StationHandler serves the fuel-stations resource.
type StationHandler struct {
	*CRUD
	store *storage.Store
}

func NewStationHandler(store *storage.Store) *StationHandler {
	return &StationHandler{CRUD: NewCRUD(store.Stations), store: store}
}

// GetByCode looks a station up by its code.
func (h *StationHandler) GetByCode(c *gin.Context) {
	record, err := h.store.Stations.FindOne(c.Request.Context(), "stationCode", c.Param("stationCode"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// Active lists stations currently under contract.
func (h *StationHandler) Active(c *gin.Context) {
	listFixed(c, h.store.Stations, []string{"isActive = 1"}, nil)
}

// UpdateStock adds a restock delivery to the station's stock levels. At least
// one fuel type must be present in the request.
func (h *StationHandler) UpdateStock(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.PetrolStock == nil && req.DieselStock == nil {
		sendError(c, http.StatusBadRequest, "INVALID_INPUT", "At least one of petrolStock or dieselStock is required", "")
		return
	}

	station, err := h.store.Stations.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	payload := storage.Record{}
	if req.PetrolStock != nil {
		current, _ := station["petrolStock"].(float64)
		payload["petrolStock"] = current + *req.PetrolStock
	}
	if req.DieselStock != nil {
		current, _ := station["dieselStock"].(float64)
		payload["dieselStock"] = current + *req.DieselStock
	}

	record, err := h.store.Stations.Update(c.Request.Context(), id, payload)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// UpdatePrices sets the station's per-liter prices.
func (h *StationHandler) UpdatePrices(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdatePricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.PetrolPrice == nil && req.DieselPrice == nil {
		sendError(c, http.StatusBadRequest, "INVALID_INPUT", "At least one of petrolPrice or dieselPrice is required", "")
		return
	}

	payload := storage.Record{}
	if req.PetrolPrice != nil {
		payload["petrolPrice"] = *req.PetrolPrice
	}
	if req.DieselPrice != nil {
		payload["dieselPrice"] = *req.DieselPrice
	}

	record, err := h.store.Stations.Update(c.Request.Context(), id, payload)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// LowStock lists active stations with either fuel below the threshold,
// 1000 liters unless overridden with ?threshold=N.
func (h *StationHandler) LowStock(c *gin.Context) {
	threshold := 1000.0
	if thresholdStr := c.Query("threshold"); thresholdStr != "" {
		if parsed, err := strconv.ParseFloat(thresholdStr, 64); err == nil && parsed > 0 {
			threshold = parsed
		}
	}
	listFixed(c, h.store.Stations,
		[]string{"isActive = 1", "(petrolStock < ? OR dieselStock < ?)"},
		[]any{threshold, threshold}, "threshold")
}
