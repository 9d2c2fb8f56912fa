package v1

import (
	"net/http"

	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/service"
	"github.com/gin-gonic/gin"
)

type PremiseHandler struct {
	registrar service.PremiseRegistrar
	logger    *logger.Logger
}

func NewPremiseHandler(registrar service.PremiseRegistrar, logger *logger.Logger) *PremiseHandler {
	return &PremiseHandler{
		registrar: registrar,
		logger:    logger,
	}
}

// ListPremises godoc
// @Summary List business premises
// @Tags Premises
// @Produce json
// @Success 200 {object} dto.ListPremisesResponse
// @Router /premises [get]
func (h *PremiseHandler) ListPremises(c *gin.Context) {
	auth, ok := authContext(c)
	if !ok {
		return
	}

	resp, err := h.registrar.List(c.Request.Context(), auth)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterAll godoc
// @Summary Register every unregistered premise of every active company
// @Tags Premises
// @Produce json
// @Success 200 {object} dto.RegistrationSummary
// @Router /premises/register [post]
func (h *PremiseHandler) RegisterAll(c *gin.Context) {
	if _, ok := authContext(c); !ok {
		return
	}

	c.JSON(http.StatusOK, h.registrar.RegisterAll(c.Request.Context()))
}

// RegisterPremise godoc
// @Summary Register a single premise
// @Tags Premises
// @Produce json
// @Param id path string true "Premise ID"
// @Success 200 {object} dto.PremiseResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /premises/{id}/register [post]
func (h *PremiseHandler) RegisterPremise(c *gin.Context) {
	auth, ok := authContext(c)
	if !ok {
		return
	}

	resp, err := h.registrar.Register(c.Request.Context(), auth, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RetryPremise godoc
// @Summary Retry a failed premise registration
// @Tags Premises
// @Produce json
// @Param id path string true "Premise ID"
// @Success 200 {object} dto.PremiseResponse
// @Router /premises/{id}/retry [post]
func (h *PremiseHandler) RetryPremise(c *gin.Context) {
	auth, ok := authContext(c)
	if !ok {
		return
	}

	resp, err := h.registrar.Retry(c.Request.Context(), auth, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
