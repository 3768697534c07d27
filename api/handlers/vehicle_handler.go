// api/handlers/vehicle_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtofleet/fleet-backend/api/models"
	"github.com/mtofleet/fleet-backend/internal/storage"
)

// VehicleHandler serves the vehicles resource.
type VehicleHandler struct {
	*CRUD
	store *storage.Store
}

func NewVehicleHandler(store *storage.Store) *VehicleHandler {
	return &VehicleHandler{CRUD: NewCRUD(store.Vehicles), store: store}
}

// GetByRegNo looks a vehicle up by its registration number.
func (h *VehicleHandler) GetByRegNo(c *gin.Context) {
	record, err := h.store.Vehicles.FindOne(c.Request.Context(), "vehRegNo", c.Param("vehRegNo"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// Available lists active vehicles not currently assigned or in maintenance.
func (h *VehicleHandler) Available(c *gin.Context) {
	listFixed(c, h.store.Vehicles, []string{"status = ?", "isActive = 1"}, []any{"available"})
}

// UpdateStatus moves a vehicle through its lifecycle states.
func (h *VehicleHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateVehicleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	record, err := h.store.Vehicles.Update(c.Request.Context(), id, storage.Record{"status": req.Status})
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// UpdateOdometer advances the odometer. Readings never go backwards.
func (h *VehicleHandler) UpdateOdometer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateOdometerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	vehicle, err := h.store.Vehicles.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if current, ok := vehicle["totalKm"].(float64); ok && req.TotalKm < current {
		sendError(c, http.StatusBadRequest, "INVALID_ODOMETER",
			"Odometer reading cannot be lower than the current total", "totalKm")
		return
	}

	record, err := h.store.Vehicles.Update(c.Request.Context(), id, storage.Record{"totalKm": req.TotalKm})
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// ScheduleMaintenance books the vehicle for service and takes it off the road.
func (h *VehicleHandler) ScheduleMaintenance(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.ScheduleMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	record, err := h.store.Vehicles.Update(c.Request.Context(), id, storage.Record{
		"nextServiceDue": req.NextServiceDue,
		"status":         "maintenance",
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// ByUnit lists vehicles attached to one unit.
func (h *VehicleHandler) ByUnit(c *gin.Context) {
	id, ok := idParam(c, "unitId")
	if !ok {
		return
	}
	listFixed(c, h.store.Vehicles, []string{"unitId = ?"}, []any{id})
}
