// Package attendees exposes attendee CRUD endpoints.
package attendees

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/certivault/backend/internal/models"
	"github.com/certivault/backend/internal/store"
	"github.com/certivault/backend/pkg/response"
)

// SaveRequest is the body for POST /attendees and PUT /attendees/:id.
type SaveRequest struct {
	Name   string                `json:"name" binding:"required"`
	Email  string                `json:"email"`
	Status models.AttendeeStatus `json:"status"`
}

// Handler handles attendee HTTP endpoints.
type Handler struct {
	store *store.Store
}

// NewHandler creates an attendee handler.
func NewHandler(st *store.Store) *Handler {
	return &Handler{store: st}
}

// List handles GET /attendees.
func (h *Handler) List(c *gin.Context) {
	response.OK(c, h.store.Attendees())
}

// GetByID handles GET /attendees/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attendee id")
		return
	}
	a, ok := h.store.AttendeeByID(id)
	if !ok {
		response.NotFound(c, "attendee not found")
		return
	}
	response.OK(c, a)
}

// Create handles POST /attendees.
func (h *Handler) Create(c *gin.Context) {
	h.save(c, uuid.Nil)
}

// Update handles PUT /attendees/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attendee id")
		return
	}
	h.save(c, id)
}

func (h *Handler) save(c *gin.Context, id uuid.UUID) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Status != "" && !req.Status.Valid() {
		response.BadRequest(c, "invalid attendee status")
		return
	}

	a := models.Attendee{
		ID:     id,
		Name:   req.Name,
		Email:  req.Email,
		Status: req.Status,
	}
	if a.Status == "" {
		a.Status = models.AttendeeRegistered
	}
	if id != uuid.Nil {
		if existing, ok := h.store.AttendeeByID(id); ok {
			a.CreatedAt = existing.CreatedAt
		} else {
			response.NotFound(c, "attendee not found")
			return
		}
	}

	saved, err := h.store.SaveAttendee(c.Request.Context(), a)
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(c, verr.Error())
			return
		}
		response.Internal(c, "failed to save attendee")
		return
	}
	if id == uuid.Nil {
		response.Created(c, saved)
	} else {
		response.OK(c, saved)
	}
}

// Delete handles DELETE /attendees/:id. Deleting an unknown id is a no-op.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attendee id")
		return
	}
	if err := h.store.DeleteAttendee(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete attendee")
		return
	}
	response.NoContent(c)
}
