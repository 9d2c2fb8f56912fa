package v1

import (
	"net/http"

	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/service"
	"github.com/gin-gonic/gin"
)

type CertificateHandler struct {
	certificateService service.CertificateService
	logger             *logger.Logger
}

func NewCertificateHandler(certificateService service.CertificateService, logger *logger.Logger) *CertificateHandler {
	return &CertificateHandler{
		certificateService: certificateService,
		logger:             logger,
	}
}

// RefreshCertificates godoc
// @Summary Reload the signing credentials of every active company
// @Tags Certificates
// @Produce json
// @Success 200 {object} dto.CertificateRefreshResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /certificates/refresh [post]
func (h *CertificateHandler) RefreshCertificates(c *gin.Context) {
	auth, ok := authContext(c)
	if !ok {
		return
	}

	resp, err := h.certificateService.Refresh(c.Request.Context(), auth)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
