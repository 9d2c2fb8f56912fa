package v1

import (
	"context"
	"net/http"

	"github.com/flexprice/fiscal/internal/api/dto"
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/service"
	"github.com/flexprice/fiscal/internal/types"
	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logger         *logger.Logger
}

func NewInvoiceHandler(invoiceService service.InvoiceService, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// IssueInvoice godoc
// @Summary Issue a fiscal invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param invoice body dto.IssueInvoiceRequest true "Invoice lines"
// @Success 201 {object} dto.IssueInvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /invoices [post]
func (h *InvoiceHandler) IssueInvoice(c *gin.Context) {
	auth, ok := authContext(c)
	if !ok {
		return
	}

	var req dto.IssueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.Issue(c.Request.Context(), auth, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetInvoice godoc
// @Summary Get an invoice
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	auth, ok := authContext(c)
	if !ok {
		return
	}

	resp, err := h.invoiceService.Get(c.Request.Context(), auth, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListInvoices godoc
// @Summary List the invoices of the caller's company
// @Tags Invoices
// @Produce json
// @Param filter query types.InvoiceFilter false "Filter"
// @Success 200 {object} dto.ListInvoicesResponse
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	h.list(c, h.invoiceService.List)
}

// ListAllInvoices godoc
// @Summary List the invoices of every company
// @Tags Invoices
// @Produce json
// @Param filter query types.InvoiceFilter false "Filter"
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /invoices/all [get]
func (h *InvoiceHandler) ListAllInvoices(c *gin.Context) {
	h.list(c, h.invoiceService.ListAll)
}

type listFunc func(ctx context.Context, auth types.AuthContext, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)

func (h *InvoiceHandler) list(c *gin.Context, fn listFunc) {
	auth, ok := authContext(c)
	if !ok {
		return
	}

	filter := types.NewInvoiceFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := fn(c.Request.Context(), auth, filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
