package v1

import (
	"net/http"
	"time"

	"github.com/flexprice/fiscal/internal/logger"
	"github.com/gin-gonic/gin"
)

// CredentialStatus reports when the vault was last loaded and what it holds
type CredentialStatus interface {
	List() []string
	LoadedAt() time.Time
}

type HealthHandler struct {
	credentials CredentialStatus
	logger      *logger.Logger
}

func NewHealthHandler(credentials CredentialStatus, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		credentials: credentials,
		logger:      logger,
	}
}

// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{
		"status":      "ok",
		"credentials": len(h.credentials.List()),
	}
	if loadedAt := h.credentials.LoadedAt(); !loadedAt.IsZero() {
		resp["credentials_loaded_at"] = loadedAt
	}
	c.JSON(http.StatusOK, resp)
}
