// Package authorities exposes signing authority CRUD and signature image
// upload endpoints.
package authorities

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/certivault/backend/internal/models"
	"github.com/certivault/backend/internal/store"
	"github.com/certivault/backend/pkg/response"
	"github.com/certivault/backend/pkg/storage"
)

// SaveRequest is the body for POST /authorities and PUT /authorities/:id.
type SaveRequest struct {
	Name      string `json:"name" binding:"required"`
	Title     string `json:"title"`
	Signature string `json:"signature"`
}

// Handler handles signing authority HTTP endpoints.
type Handler struct {
	store  *store.Store
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates a signing authority handler. s3 may be nil when asset
// uploads are disabled.
func NewHandler(st *store.Store, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: st, s3: s3, logger: logger}
}

// List handles GET /authorities.
func (h *Handler) List(c *gin.Context) {
	response.OK(c, h.store.Authorities())
}

// Create handles POST /authorities.
func (h *Handler) Create(c *gin.Context) {
	h.save(c, uuid.Nil)
}

// Update handles PUT /authorities/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid authority id")
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

	a := models.SigningAuthority{
		ID:        id,
		Name:      req.Name,
		Title:     req.Title,
		Signature: req.Signature,
	}
	if id != uuid.Nil {
		if existing, ok := h.store.AuthorityByID(id); ok {
			a.CreatedAt = existing.CreatedAt
		} else {
			response.NotFound(c, "authority not found")
			return
		}
	}

	saved, err := h.store.SaveAuthority(c.Request.Context(), a)
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(c, verr.Error())
			return
		}
		response.Internal(c, "failed to save authority")
		return
	}
	if id == uuid.Nil {
		response.Created(c, saved)
	} else {
		response.OK(c, saved)
	}
}

// Delete handles DELETE /authorities/:id. Deleting an unknown id is a no-op.
// A signature image stored in the asset bucket is removed best-effort.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid authority id")
		return
	}
	a, ok := h.store.AuthorityByID(id)
	if err := h.store.DeleteAuthority(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete authority")
		return
	}
	if ok && h.s3 != nil && a.Signature != "" {
		if key, inBucket := h.s3.KeyFromObjectURL(a.Signature); inBucket {
			if err := h.s3.DeleteObject(c.Request.Context(), key); err != nil {
				h.logger.Warn("signature cleanup failed", zap.Error(err), zap.String("key", key))
			}
		}
	}
	response.NoContent(c)
}

// UploadSignature handles POST /authorities/:id/signature (multipart image
// upload to S3; sets the authority's signature image URL).
func (h *Handler) UploadSignature(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "asset storage is not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid authority id")
		return
	}
	a, ok := h.store.AuthorityByID(id)
	if !ok {
		response.NotFound(c, "authority not found")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if file.Size > storage.MaxAssetFileSize {
		response.BadRequest(c, "file too large")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !storage.ValidateImageType(contentType, file.Filename) {
		response.BadRequest(c, "unsupported image type")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	defer src.Close()

	if contentType == "" {
		contentType = storage.ContentTypeForFilename(file.Filename)
	}
	key := storage.SignatureKey(id.String(), file.Filename)
	url, err := h.s3.Upload(c.Request.Context(), key, contentType, src, file.Size)
	if err != nil {
		h.logger.Error("signature upload failed", zap.Error(err), zap.String("authority_id", id.String()))
		response.Internal(c, "failed to upload signature")
		return
	}

	a.Signature = url
	saved, err := h.store.SaveAuthority(c.Request.Context(), a)
	if err != nil {
		response.Internal(c, "failed to save authority")
		return
	}
	response.OK(c, saved)
}
