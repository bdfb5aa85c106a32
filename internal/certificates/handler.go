// Package certificates exposes read endpoints over issued certificates and
// their rendered artifacts (PDF document, verification QR code).
package certificates

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/certivault/backend/internal/pdfrender"
	"github.com/certivault/backend/internal/qrlink"
	"github.com/certivault/backend/internal/store"
	"github.com/certivault/backend/pkg/response"
	"github.com/certivault/backend/pkg/storage"
)

// Handler handles certificate HTTP endpoints. Certificates are append-only:
// there is no update or delete route.
type Handler struct {
	store           *store.Store
	renderer        *pdfrender.Renderer
	s3              *storage.S3
	verificationURL string
	logger          *zap.Logger
}

// NewHandler creates a certificate handler. s3 may be nil when object
// storage is disabled; the pre-signed download route is unavailable then.
func NewHandler(st *store.Store, renderer *pdfrender.Renderer, s3 *storage.S3, verificationURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: st, renderer: renderer, s3: s3, verificationURL: verificationURL, logger: logger}
}

// List handles GET /certificates.
func (h *Handler) List(c *gin.Context) {
	response.OK(c, h.store.Certificates())
}

// GetByCertificateID handles GET /certificates/:certificateId (public id).
func (h *Handler) GetByCertificateID(c *gin.Context) {
	cert, ok := h.store.CertificateByPublicID(c.Param("certificateId"))
	if !ok {
		response.NotFound(c, "certificate not found")
		return
	}
	response.OK(c, cert)
}

// DownloadPDF handles GET /certificates/:certificateId/pdf: renders the
// certificate against its template and streams the document.
func (h *Handler) DownloadPDF(c *gin.Context) {
	cert, ok := h.store.CertificateByPublicID(c.Param("certificateId"))
	if !ok {
		response.NotFound(c, "certificate not found")
		return
	}
	tpl, ok := h.store.TemplateByID(cert.TemplateID)
	if !ok {
		response.UnprocessableEntity(c, "certificate template no longer exists")
		return
	}

	pdfBytes, err := h.renderer.Render(&cert, &tpl)
	if err != nil {
		h.logger.Error("pdf render failed", zap.Error(err), zap.String("certificate_id", cert.CertificateID))
		response.Internal(c, "failed to render certificate")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=certificate-%s.pdf", cert.CertificateID))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// DownloadURL handles GET /certificates/:certificateId/download-url: returns
// a pre-signed link to the worker-rendered PDF in object storage.
func (h *Handler) DownloadURL(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "object storage is not configured")
		return
	}
	cert, ok := h.store.CertificateByPublicID(c.Param("certificateId"))
	if !ok {
		response.NotFound(c, "certificate not found")
		return
	}
	url, err := h.s3.PresignDownloadURL(c.Request.Context(), storage.CertificatePDFKey(cert.CertificateID))
	if err != nil {
		h.logger.Error("presign failed", zap.Error(err), zap.String("certificate_id", cert.CertificateID))
		response.Internal(c, "failed to create download link")
		return
	}
	response.OK(c, gin.H{
		"url":        url,
		"expires_in": int(h.s3.PresignExpire().Seconds()),
	})
}

// QRCode handles GET /certificates/:certificateId/qr: returns a PNG QR code
// encoding the public verification link.
func (h *Handler) QRCode(c *gin.Context) {
	cert, ok := h.store.CertificateByPublicID(c.Param("certificateId"))
	if !ok {
		response.NotFound(c, "certificate not found")
		return
	}
	png, err := qrlink.PNG(h.verificationURL, cert.CertificateID)
	if err != nil {
		h.logger.Error("qr render failed", zap.Error(err), zap.String("certificate_id", cert.CertificateID))
		response.Internal(c, "failed to render qr code")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
