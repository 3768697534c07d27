// api/handlers/user_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtofleet/fleet-backend/api/models"
	"github.com/mtofleet/fleet-backend/internal/auth"
	"github.com/mtofleet/fleet-backend/internal/storage"
)

// UserHandler serves the users resource. Passwords only ever enter the table
// through here, already hashed.
type UserHandler struct {
	*CRUD
	store *storage.Store
}

func NewUserHandler(store *storage.Store) *UserHandler {
	return &UserHandler{CRUD: NewCRUD(store.Users), store: store}
}

// Create inserts a user, hashing the plaintext password from the payload.
func (h *UserHandler) Create(c *gin.Context) {
	var payload storage.Record
	if err := c.ShouldBindJSON(&payload); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_INPUT", "Request body must be a JSON object", "")
		return
	}

	if password, ok := payload["password"].(string); ok && password != "" {
		hashed, err := auth.HashPassword(password)
		if err != nil {
			_ = c.Error(err)
			return
		}
		payload["password"] = hashed
	}

	record, err := h.store.Users.Insert(c.Request.Context(), payload)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusCreated, record)
}

// Update applies a partial update. Credential columns are stripped; they have
// their own endpoints.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var payload storage.Record
	if err := c.ShouldBindJSON(&payload); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_INPUT", "Request body must be a JSON object", "")
		return
	}
	delete(payload, "password")
	delete(payload, "refreshToken")

	record, err := h.store.Users.Update(c.Request.Context(), id, payload)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// UpdatePassword replaces the user's password.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if _, err := h.store.Users.Update(c.Request.Context(), id, storage.Record{"password": hashed}); err != nil {
		_ = c.Error(err)
		return
	}
	sendMessage(c, http.StatusOK, "Password updated successfully")
}

// ByRole lists users holding one role.
func (h *UserHandler) ByRole(c *gin.Context) {
	listFixed(c, h.store.Users, []string{"role = ?"}, []any{c.Param("role")})
}

// ByUnit lists users attached to one unit.
func (h *UserHandler) ByUnit(c *gin.Context) {
	id, ok := idParam(c, "unitId")
	if !ok {
		return
	}
	listFixed(c, h.store.Users, []string{"unitId = ?"}, []any{id})
}
