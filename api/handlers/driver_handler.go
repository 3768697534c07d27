// api/handlers/driver_handler.go
package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mtofleet/fleet-backend/api/models"
	"github.com/mtofleet/fleet-backend/internal/storage"
)

var (
	errDriverNotAvailable  = errors.New("driver is not available for assignment")
	errVehicleNotAvailable = errors.New("vehicle is not available for assignment")
)

// DriverHandler serves the drivers resource, including the paired
// driver/vehicle assignment transitions.
type DriverHandler struct {
	*CRUD
	store *storage.Store
}

func NewDriverHandler(store *storage.Store) *DriverHandler {
	return &DriverHandler{CRUD: NewCRUD(store.Drivers), store: store}
}

// Available lists active, unassigned drivers whose license has not expired.
func (h *DriverHandler) Available(c *gin.Context) {
	listFixed(c, h.store.Drivers,
		[]string{"status = ?", "isActive = 1", "licenseExpiry >= date('now')"},
		[]any{"available"})
}

// AssignToVehicle pairs an available driver with an available vehicle. Both
// rows change together or not at all.
func (h *DriverHandler) AssignToVehicle(c *gin.Context) {
	driverID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	err := h.store.WithTx(c.Request.Context(), func(tx *sql.Tx) error {
		driver, err := h.store.Drivers.GetByIDTx(c.Request.Context(), tx, driverID)
		if err != nil {
			return err
		}
		if status, _ := driver["status"].(string); status != "available" {
			return errDriverNotAvailable
		}

		vehicle, err := h.store.Vehicles.GetByIDTx(c.Request.Context(), tx, req.VehicleID)
		if err != nil {
			return err
		}
		if status, _ := vehicle["status"].(string); status != "available" {
			return errVehicleNotAvailable
		}

		if err := h.store.Drivers.UpdateTx(c.Request.Context(), tx, driverID, storage.Record{
			"assignedVehicleId": req.VehicleID,
			"status":            "on_duty",
		}); err != nil {
			return err
		}
		return h.store.Vehicles.UpdateTx(c.Request.Context(), tx, req.VehicleID, storage.Record{
			"currentDriverId": driverID,
			"status":          "in_use",
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, errDriverNotAvailable):
			sendError(c, http.StatusBadRequest, "DRIVER_NOT_AVAILABLE", err.Error(), "")
		case errors.Is(err, errVehicleNotAvailable):
			sendError(c, http.StatusBadRequest, "VEHICLE_NOT_AVAILABLE", err.Error(), "")
		default:
			_ = c.Error(err)
		}
		return
	}

	record, err := h.store.Drivers.GetByID(c.Request.Context(), driverID, "assignedVehicleId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// ReleaseFromVehicle undoes an assignment, freeing both sides.
func (h *DriverHandler) ReleaseFromVehicle(c *gin.Context) {
	driverID, ok := idParam(c, "id")
	if !ok {
		return
	}

	err := h.store.WithTx(c.Request.Context(), func(tx *sql.Tx) error {
		driver, err := h.store.Drivers.GetByIDTx(c.Request.Context(), tx, driverID)
		if err != nil {
			return err
		}

		if vehicleID, ok := driver["assignedVehicleId"].(int64); ok {
			if err := h.store.Vehicles.UpdateTx(c.Request.Context(), tx, vehicleID, storage.Record{
				"currentDriverId": nil,
				"status":          "available",
			}); err != nil && !errors.Is(err, storage.ErrNotFound) {
				return err
			}
		}
		return h.store.Drivers.UpdateTx(c.Request.Context(), tx, driverID, storage.Record{
			"assignedVehicleId": nil,
			"status":            "available",
		})
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	record, err := h.store.Drivers.GetByID(c.Request.Context(), driverID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// UpdateStatus moves a driver through its duty states.
func (h *DriverHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateDriverStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	record, err := h.store.Drivers.Update(c.Request.Context(), id, storage.Record{"status": req.Status})
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// UpdateRating folds one trip rating into the driver's running average and
// bumps the trip counter.
func (h *DriverHandler) UpdateRating(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	driver, err := h.store.Drivers.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	trips, _ := driver["totalTrips"].(int64)
	rating := req.Rating
	if current, ok := driver["rating"].(float64); ok && trips > 0 {
		rating = (current*float64(trips) + req.Rating) / float64(trips+1)
	}

	record, err := h.store.Drivers.Update(c.Request.Context(), id, storage.Record{
		"rating":     rating,
		"totalTrips": trips + 1,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// ExpiringLicenses lists active drivers whose license expires within the
// window, 30 days unless overridden with ?days=N.
func (h *DriverHandler) ExpiringLicenses(c *gin.Context) {
	days := 30
	if daysStr := c.Query("days"); daysStr != "" {
		if parsed, err := strconv.Atoi(daysStr); err == nil && parsed > 0 {
			days = parsed
		}
	}
	listFixed(c, h.store.Drivers,
		[]string{"isActive = 1", "licenseExpiry <= date('now', ?)"},
		[]any{fmt.Sprintf("+%d day", days)}, "days")
}
