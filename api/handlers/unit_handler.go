// api/handlers/unit_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtofleet/fleet-backend/api/models"
	"github.com/mtofleet/fleet-backend/internal/storage"
)

// UnitHandler serves the units resource.
type UnitHandler struct {
	*CRUD
	store *storage.Store
}

func NewUnitHandler(store *storage.Store) *UnitHandler {
	return &UnitHandler{CRUD: NewCRUD(store.Units), store: store}
}

// GetByCode looks a unit up by its code.
func (h *UnitHandler) GetByCode(c *gin.Context) {
	record, err := h.store.Units.FindOne(c.Request.Context(), "unitCode", c.Param("unitCode"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// SubUnits lists the units directly under one parent.
func (h *UnitHandler) SubUnits(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	listFixed(c, h.store.Units, []string{"parentUnitId = ?"}, []any{id})
}

// UpdateFuelQuota sets the unit's monthly fuel quotas. At least one fuel type
// must be present in the request.
func (h *UnitHandler) UpdateFuelQuota(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateFuelQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.PetrolQuota == nil && req.DieselQuota == nil {
		sendError(c, http.StatusBadRequest, "INVALID_INPUT", "At least one of petrolQuota or dieselQuota is required", "")
		return
	}

	payload := storage.Record{}
	if req.PetrolQuota != nil {
		payload["petrolQuota"] = *req.PetrolQuota
	}
	if req.DieselQuota != nil {
		payload["dieselQuota"] = *req.DieselQuota
	}

	record, err := h.store.Units.Update(c.Request.Context(), id, payload)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// ByDistrict lists units in one district.
func (h *UnitHandler) ByDistrict(c *gin.Context) {
	listFixed(c, h.store.Units, []string{"district = ?"}, []any{c.Param("district")})
}
