// Package templates exposes certificate template CRUD and background image
// upload endpoints.
package templates

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

// SaveRequest is the body for POST /templates and PUT /templates/:id.
type SaveRequest struct {
	Name            string                   `json:"name" binding:"required"`
	Description     string                   `json:"description"`
	Size            models.PageSize          `json:"size"`
	Orientation     models.Orientation       `json:"orientation"`
	BackgroundColor string                   `json:"background_color"`
	BackgroundImage string                   `json:"background_image"`
	Elements        []models.TemplateElement `json:"elements"`
	CustomFields    map[string]string        `json:"custom_fields"`
}

// Handler handles template HTTP endpoints.
type Handler struct {
	store  *store.Store
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates a template handler. s3 may be nil when asset uploads
// are disabled.
func NewHandler(st *store.Store, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: st, s3: s3, logger: logger}
}

// List handles GET /templates.
func (h *Handler) List(c *gin.Context) {
	response.OK(c, h.store.Templates())
}

// GetByID handles GET /templates/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return
	}
	t, ok := h.store.TemplateByID(id)
	if !ok {
		response.NotFound(c, "template not found")
		return
	}
	response.OK(c, t)
}

// Defaults handles GET /templates/defaults: the starter layout plus the
// available merge tags for the editor.
func (h *Handler) Defaults(c *gin.Context) {
	response.OK(c, gin.H{
		"template":   DefaultTemplate(),
		"merge_tags": MergeTags(),
	})
}

// Create handles POST /templates.
func (h *Handler) Create(c *gin.Context) {
	h.save(c, uuid.Nil)
}

// Update handles PUT /templates/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template id")
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
	if req.Size != "" && !req.Size.Valid() {
		response.BadRequest(c, "invalid size")
		return
	}
	if req.Orientation != "" && !req.Orientation.Valid() {
		response.BadRequest(c, "invalid orientation")
		return
	}

	t := models.Template{
		ID:              id,
		Name:            req.Name,
		Description:     req.Description,
		Size:            req.Size,
		Orientation:     req.Orientation,
		BackgroundColor: req.BackgroundColor,
		BackgroundImage: req.BackgroundImage,
		Elements:        req.Elements,
		CustomFields:    req.CustomFields,
	}
	if t.Size == "" {
		t.Size = models.SizeA4
	}
	if t.Orientation == "" {
		t.Orientation = models.OrientationLandscape
	}
	if id != uuid.Nil {
		if existing, ok := h.store.TemplateByID(id); ok {
			t.CreatedAt = existing.CreatedAt
		} else {
			response.NotFound(c, "template not found")
			return
		}
	}

	saved, err := h.store.SaveTemplate(c.Request.Context(), t)
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(c, verr.Error())
			return
		}
		response.Internal(c, "failed to save template")
		return
	}
	if id == uuid.Nil {
		response.Created(c, saved)
	} else {
		response.OK(c, saved)
	}
}

// Delete handles DELETE /templates/:id. Deleting an unknown id is a no-op.
// A background image stored in the asset bucket is removed best-effort.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return
	}
	t, ok := h.store.TemplateByID(id)
	if err := h.store.DeleteTemplate(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete template")
		return
	}
	if ok && h.s3 != nil && t.BackgroundImage != "" {
		if key, inBucket := h.s3.KeyFromObjectURL(t.BackgroundImage); inBucket {
			if err := h.s3.DeleteObject(c.Request.Context(), key); err != nil {
				h.logger.Warn("background image cleanup failed", zap.Error(err), zap.String("key", key))
			}
		}
	}
	response.NoContent(c)
}

// UploadBackground handles POST /templates/:id/background (multipart image
// upload to S3; sets the template's background image URL).
func (h *Handler) UploadBackground(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "asset storage is not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return
	}
	t, ok := h.store.TemplateByID(id)
	if !ok {
		response.NotFound(c, "template not found")
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
	key := storage.BackgroundKey(id.String(), file.Filename)
	url, err := h.s3.Upload(c.Request.Context(), key, contentType, src, file.Size)
	if err != nil {
		h.logger.Error("background upload failed", zap.Error(err), zap.String("template_id", id.String()))
		response.Internal(c, "failed to upload background image")
		return
	}

	t.BackgroundImage = url
	saved, err := h.store.SaveTemplate(c.Request.Context(), t)
	if err != nil {
		response.Internal(c, "failed to save template")
		return
	}
	response.OK(c, saved)
}
