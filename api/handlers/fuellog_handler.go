// api/handlers/fuellog_handler.go
package handlers

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mtofleet/fleet-backend/api/middleware"
	"github.com/mtofleet/fleet-backend/api/models"
	"github.com/mtofleet/fleet-backend/internal/storage"
)

var (
	errInvalidOdometer   = errors.New("odometer reading is below the vehicle's current total")
	errInsufficientStock = errors.New("station does not have enough fuel in stock")
)

// FuelLogHandler serves the fuel-logs resource. Creating a log is the one
// write that spans three tables: the log row, the station's stock ledger and
// the vehicle's odometer all move in a single transaction.
type FuelLogHandler struct {
	*CRUD
	store *storage.Store
}

func NewFuelLogHandler(store *storage.Store) *FuelLogHandler {
	return &FuelLogHandler{CRUD: NewCRUD(store.FuelLogs), store: store}
}

// payloadID reads an entity reference from a decoded JSON payload, where
// numbers arrive as float64.
func payloadID(payload storage.Record, key string) (int64, bool) {
	switch v := payload[key].(type) {
	case float64:
		if v > 0 {
			return int64(v), true
		}
	case int64:
		if v > 0 {
			return v, true
		}
	}
	return 0, false
}

func refNotFound(field string) error {
	return &storage.ValidationError{Fields: []storage.FieldError{{Field: field, Message: "referenced record not found"}}}
}

// Create records a fuel fill. Validates the odometer against the vehicle,
// decrements the station's stock and advances the vehicle, atomically.
func (h *FuelLogHandler) Create(c *gin.Context) {
	var payload storage.Record
	if err := c.ShouldBindJSON(&payload); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_INPUT", "Request body must be a JSON object", "")
		return
	}

	if _, ok := payload["receiptNo"].(string); !ok {
		payload["receiptNo"] = uuid.New().String()
	}
	if _, ok := payload["fillDate"]; !ok {
		payload["fillDate"] = time.Now().UTC().Format(time.RFC3339)
	}
	payload["approvalStatus"] = "pending"

	var logID int64
	err := h.store.WithTx(c.Request.Context(), func(tx *sql.Tx) error {
		vehicleID, ok := payloadID(payload, "vehicleId")
		if !ok {
			return refNotFound("vehicleId")
		}
		vehicle, err := h.store.Vehicles.GetByIDTx(c.Request.Context(), tx, vehicleID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return refNotFound("vehicleId")
			}
			return err
		}

		if driverID, ok := payloadID(payload, "driverId"); ok {
			if _, err := h.store.Drivers.GetByIDTx(c.Request.Context(), tx, driverID); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return refNotFound("driverId")
				}
				return err
			}
		}

		odometer, ok := payload["odometerReading"].(float64)
		if !ok {
			return &storage.ValidationError{Fields: []storage.FieldError{
				{Field: "odometerReading", Message: "must be a number"},
			}}
		}
		if currentKm, ok := vehicle["totalKm"].(float64); ok && odometer < currentKm {
			return errInvalidOdometer
		}

		stationID, ok := payloadID(payload, "stationId")
		if !ok {
			return refNotFound("stationId")
		}
		station, err := h.store.Stations.GetByIDTx(c.Request.Context(), tx, stationID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return refNotFound("stationId")
			}
			return err
		}

		fuelType, _ := payload["fuelType"].(string)
		stockColumn := "petrolStock"
		if fuelType == "diesel" {
			stockColumn = "dieselStock"
		}
		quantity, _ := payload["quantity"].(float64)
		stock, _ := station[stockColumn].(float64)
		if quantity <= 0 || stock < quantity {
			return errInsufficientStock
		}

		if price, ok := payload["pricePerLiter"].(float64); ok {
			payload["totalAmount"] = quantity * price
		}
		if _, ok := payload["unitId"]; !ok {
			if unitID, ok := vehicle["unitId"].(int64); ok {
				payload["unitId"] = unitID
			}
		}

		logID, err = h.store.FuelLogs.InsertTx(c.Request.Context(), tx, payload)
		if err != nil {
			return err
		}

		if err := h.store.Stations.UpdateTx(c.Request.Context(), tx, stationID, storage.Record{
			stockColumn: stock - quantity,
		}); err != nil {
			return err
		}
		return h.store.Vehicles.UpdateTx(c.Request.Context(), tx, vehicleID, storage.Record{
			"totalKm": odometer,
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, errInvalidOdometer):
			sendError(c, http.StatusBadRequest, "INVALID_ODOMETER", err.Error(), "odometerReading")
		case errors.Is(err, errInsufficientStock):
			sendError(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", err.Error(), "quantity")
		default:
			_ = c.Error(err)
		}
		return
	}

	record, err := h.store.FuelLogs.GetByID(c.Request.Context(), logID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusCreated, record)
}

// ByVehicle lists fuel logs for one vehicle.
func (h *FuelLogHandler) ByVehicle(c *gin.Context) {
	id, ok := idParam(c, "vehicleId")
	if !ok {
		return
	}
	listFixed(c, h.store.FuelLogs, []string{"vehicleId = ?"}, []any{id})
}

// ByDriver lists fuel logs for one driver.
func (h *FuelLogHandler) ByDriver(c *gin.Context) {
	id, ok := idParam(c, "driverId")
	if !ok {
		return
	}
	listFixed(c, h.store.FuelLogs, []string{"driverId = ?"}, []any{id})
}

// Pending lists logs awaiting approval.
func (h *FuelLogHandler) Pending(c *gin.Context) {
	listFixed(c, h.store.FuelLogs, []string{"approvalStatus = ?"}, []any{"pending"})
}

// Approve marks a log approved by the authenticated user.
func (h *FuelLogHandler) Approve(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	record, err := h.store.FuelLogs.Update(c.Request.Context(), id, storage.Record{
		"approvalStatus": "approved",
		"approvedBy":     c.GetInt64(middleware.ContextUserIDKey),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// Reject marks a log rejected, with an optional reason.
func (h *FuelLogHandler) Reject(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.RejectFuelLogRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(err)
		return
	}

	payload := storage.Record{
		"approvalStatus": "rejected",
		"approvedBy":     c.GetInt64(middleware.ContextUserIDKey),
	}
	if req.Reason != "" {
		payload["remarks"] = req.Reason
	}

	record, err := h.store.FuelLogs.Update(c.Request.Context(), id, payload)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// ConsumptionReport aggregates approved fills per vehicle and fuel type,
// optionally bounded with ?from= and ?to= dates.
func (h *FuelLogHandler) ConsumptionReport(c *gin.Context) {
	report, err := storage.FuelConsumptionByVehicle(c.Request.Context(), h.store.DB, c.Query("from"), c.Query("to"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, report)
}
