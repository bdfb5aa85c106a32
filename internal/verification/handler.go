package verification

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/certivault/backend/pkg/response"
)

// Handler serves the public verification entry point.
type Handler struct {
	service *Service
}

// NewHandler creates a verification handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Verify handles GET /verify?id=<certificateId>. No authentication.
func (h *Handler) Verify(c *gin.Context) {
	result, err := h.service.Verify(c.Query("id"))
	if err != nil {
		if errors.Is(err, ErrEmptyID) {
			response.BadRequest(c, err.Error())
			return
		}
		response.Internal(c, "verification failed")
		return
	}
	response.OK(c, result)
}
