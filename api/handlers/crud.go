// api/handlers/crud.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mtofleet/fleet-backend/internal/core"
	"github.com/mtofleet/fleet-backend/internal/storage"
)

// CRUD serves the generic record operations for one entity repo. Resource
// handlers embed it and add their entity-specific endpoints on top.
type CRUD struct {
	repo *storage.EntityRepo
}

// NewCRUD builds the generic controller over one entity repo.
func NewCRUD(repo *storage.EntityRepo) *CRUD {
	return &CRUD{repo: repo}
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		sendError(c, http.StatusBadRequest, "INVALID_INPUT", name+" must be a positive integer", name)
		return 0, false
	}
	return id, true
}

// filterFromQuery derives the SQL filter from the request's non-reserved query
// parameters, per the repo's column spec.
func (h *CRUD) filterFromQuery(c *gin.Context) (*core.Filter, bool) {
	filter, err := core.BuildFilter(c.Request.URL.Query(), h.repo.Spec().Columns, h.repo.Spec().Searchable)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return filter, true
}

// listFixed serves a list endpoint constrained by fixed conditions, merged
// with whatever filter the request's query parameters derive. Query keys the
// endpoint consumes itself (thresholds, horizons) go in consumed so they are
// not mistaken for column filters.
func listFixed(c *gin.Context, repo *storage.EntityRepo, where []string, args []any, consumed ...string) {
	query := c.Request.URL.Query()
	for _, key := range consumed {
		query.Del(key)
	}

	p, err := core.ParsePagination(query)
	if err != nil {
		_ = c.Error(err)
		return
	}
	filter, err := core.BuildFilter(query, repo.Spec().Columns, repo.Spec().Searchable)
	if err != nil {
		_ = c.Error(err)
		return
	}
	filter.Where = append(append([]string{}, where...), filter.Where...)
	filter.Args = append(append([]any{}, args...), filter.Args...)

	records, total, err := repo.List(c.Request.Context(), filter, p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if records == nil {
		records = []storage.Record{}
	}
	sendPaginated(c, records, total, p)
}

// Create inserts one record from the JSON body.
func (h *CRUD) Create(c *gin.Context) {
	var payload storage.Record
	if err := c.ShouldBindJSON(&payload); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_INPUT", "Request body must be a JSON object", "")
		return
	}

	record, err := h.repo.Insert(c.Request.Context(), payload)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusCreated, record)
}

// FindByID returns one record, expanding any populate targets.
func (h *CRUD) FindByID(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := core.ParsePagination(c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}

	record, err := h.repo.GetByID(c.Request.Context(), id, p.Populate...)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// FindAll returns a filtered, sorted page of records.
func (h *CRUD) FindAll(c *gin.Context) {
	p, err := core.ParsePagination(c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}
	filter, ok := h.filterFromQuery(c)
	if !ok {
		return
	}

	records, total, err := h.repo.List(c.Request.Context(), filter, p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if records == nil {
		records = []storage.Record{}
	}
	sendPaginated(c, records, total, p)
}

// Update applies a partial update from the JSON body.
func (h *CRUD) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var payload storage.Record
	if err := c.ShouldBindJSON(&payload); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_INPUT", "Request body must be a JSON object", "")
		return
	}

	record, err := h.repo.Update(c.Request.Context(), id, payload)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}

// Delete removes one record permanently.
func (h *CRUD) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	sendMessage(c, http.StatusOK, h.repo.Spec().Name+" deleted successfully")
}

// SoftDelete deactivates one record, keeping the row.
func (h *CRUD) SoftDelete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.repo.SoftDelete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	sendMessage(c, http.StatusOK, h.repo.Spec().Name+" deactivated successfully")
}

// BulkCreate inserts an array of records, continuing past individual failures.
func (h *CRUD) BulkCreate(c *gin.Context) {
	var items []storage.Record
	if err := c.ShouldBindJSON(&items); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_INPUT", "Request body must be a JSON array of objects", "")
		return
	}
	if len(items) == 0 {
		sendError(c, http.StatusBadRequest, "INVALID_INPUT", "Request body must contain at least one record", "")
		return
	}

	created, failures := h.repo.BulkInsert(c.Request.Context(), items)
	if failures == nil {
		failures = []storage.BulkFailure{}
	}
	sendSuccess(c, http.StatusCreated, gin.H{
		"created":  created,
		"failed":   len(failures),
		"failures": failures,
	})
}

// Count returns the number of records matching the query filter.
func (h *CRUD) Count(c *gin.Context) {
	filter, ok := h.filterFromQuery(c)
	if !ok {
		return
	}
	total, err := h.repo.Count(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendSuccess(c, http.StatusOK, gin.H{"count": total})
}
