// Package events exposes event CRUD, attendee association and batch
// certificate generation endpoints.
package events

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/certivault/backend/internal/issuance"
	"github.com/certivault/backend/internal/models"
	"github.com/certivault/backend/internal/store"
	"github.com/certivault/backend/pkg/queue"
	"github.com/certivault/backend/pkg/response"
)

// SaveRequest is the body for POST /events and PUT /events/:id.
type SaveRequest struct {
	Title              string             `json:"title" binding:"required"`
	Description        string             `json:"description"`
	Type               models.EventType   `json:"type"`
	Date               string             `json:"date"` // RFC3339 or "2006-01-02"
	TemplateID         string             `json:"template_id"`
	SigningAuthorityID string             `json:"signing_authority_id"`
	Status             models.EventStatus `json:"status"`
	Attendees          []string           `json:"attendees"`
	CustomFields       map[string]string  `json:"custom_fields"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	store  *store.Store
	issuer *issuance.Issuer
	queue  *queue.Queue
	logger *zap.Logger
}

// NewHandler creates an event handler. queue may be nil when background
// rendering is disabled.
func NewHandler(st *store.Store, issuer *issuance.Issuer, q *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: st, issuer: issuer, queue: q, logger: logger}
}

// List handles GET /events.
func (h *Handler) List(c *gin.Context) {
	response.OK(c, h.store.Events())
}

// GetByID handles GET /events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, ok := h.store.EventByID(id)
	if !ok {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	h.save(c, uuid.Nil)
}

// Update handles PUT /events/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
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
	if req.Type != "" && !req.Type.Valid() {
		response.BadRequest(c, "invalid event type")
		return
	}
	if req.Status != "" && !req.Status.Valid() {
		response.BadRequest(c, "invalid event status")
		return
	}

	e := models.Event{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		Status:       req.Status,
		CustomFields: req.CustomFields,
	}
	if e.Type == "" {
		e.Type = models.EventWebinar
	}
	if e.Status == "" {
		e.Status = models.EventActive
	}
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			response.BadRequest(c, "invalid date")
			return
		}
		e.Date = d
	}
	if req.TemplateID != "" {
		tid, err := uuid.Parse(req.TemplateID)
		if err != nil {
			response.BadRequest(c, "invalid template_id")
			return
		}
		e.TemplateID = tid
	}
	if req.SigningAuthorityID != "" {
		aid, err := uuid.Parse(req.SigningAuthorityID)
		if err != nil {
			response.BadRequest(c, "invalid signing_authority_id")
			return
		}
		e.SigningAuthorityID = aid
	}
	for _, s := range req.Attendees {
		aid, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "invalid attendee id: "+s)
			return
		}
		e.Attendees = append(e.Attendees, aid)
	}
	if id != uuid.Nil {
		if existing, ok := h.store.EventByID(id); ok {
			e.CreatedAt = existing.CreatedAt
		} else {
			response.NotFound(c, "event not found")
			return
		}
	}

	saved, err := h.store.SaveEvent(c.Request.Context(), e)
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(c, verr.Error())
			return
		}
		response.Internal(c, "failed to save event")
		return
	}
	if id == uuid.Nil {
		response.Created(c, saved)
	} else {
		response.OK(c, saved)
	}
}

// Delete handles DELETE /events/:id. Deleting an unknown id is a no-op.
// Certificates already issued for the event keep their snapshots.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.store.DeleteEvent(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}

// AddAttendeesRequest is the body for POST /events/:id/attendees.
type AddAttendeesRequest struct {
	AttendeeIDs []string `json:"attendee_ids" binding:"required"`
}

// AddAttendees handles POST /events/:id/attendees: associates existing
// attendees with the event, preserving order and skipping duplicates.
func (h *Handler) AddAttendees(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, ok := h.store.EventByID(id)
	if !ok {
		response.NotFound(c, "event not found")
		return
	}
	var req AddAttendeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	for _, s := range req.AttendeeIDs {
		aid, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "invalid attendee id: "+s)
			return
		}
		if _, ok := h.store.AttendeeByID(aid); !ok {
			response.NotFound(c, "attendee not found: "+s)
			return
		}
		e.Attendees = append(e.Attendees, aid)
	}
	saved, err := h.store.SaveEvent(c.Request.Context(), e)
	if err != nil {
		response.Internal(c, "failed to save event")
		return
	}
	response.OK(c, saved)
}

// ListCertificates handles GET /events/:id/certificates: all certificates
// issued for the event.
func (h *Handler) ListCertificates(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if _, ok := h.store.EventByID(id); !ok {
		response.NotFound(c, "event not found")
		return
	}
	certs := h.store.CertificatesByEvent(id)
	if certs == nil {
		certs = []models.Certificate{}
	}
	response.OK(c, certs)
}

// GenerateResult summarizes a batch certificate generation.
type GenerateResult struct {
	Issued  []models.Certificate `json:"issued"`
	Skipped int                  `json:"skipped"`
}

// GenerateCertificates handles POST /events/:id/certificates: issues a
// certificate for every associated attendee marked completed and enqueues a
// render job for each. Filtering on completion status is handler policy; the
// issuance rule itself is unconditional.
func (h *Handler) GenerateCertificates(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, ok := h.store.EventByID(id)
	if !ok {
		response.NotFound(c, "event not found")
		return
	}
	if _, ok := h.store.TemplateByID(e.TemplateID); !ok {
		response.UnprocessableEntity(c, "event has no template")
		return
	}

	result := GenerateResult{Issued: []models.Certificate{}}
	for _, attendeeID := range e.Attendees {
		attendee, ok := h.store.AttendeeByID(attendeeID)
		if !ok || attendee.Status != models.AttendeeCompleted {
			result.Skipped++
			continue
		}
		cert, err := h.issuer.Issue(c.Request.Context(), e.ID, attendeeID)
		if err != nil {
			h.logger.Error("issue failed",
				zap.Error(err),
				zap.String("event_id", e.ID.String()),
				zap.String("attendee_id", attendeeID.String()),
			)
			result.Skipped++
			continue
		}
		result.Issued = append(result.Issued, *cert)
		if h.queue != nil {
			if err := h.queue.EnqueueRender(c.Request.Context(), queue.RenderPayload{CertificateID: cert.CertificateID}); err != nil {
				h.logger.Warn("enqueue render failed", zap.Error(err), zap.String("certificate_id", cert.CertificateID))
			}
		}
	}
	response.OK(c, result)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
