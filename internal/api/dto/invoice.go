package dto

import (
	"time"

	"github.com/flexprice/fiscal/internal/domain/invoice"
	"github.com/flexprice/fiscal/internal/types"
	"github.com/flexprice/fiscal/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// PriceRequest is a single taxable amount on an invoice
type PriceRequest struct {
	// amount is the taxable amount of the line
	Amount decimal.Decimal `json:"amount"`

	// tax_rate is the VAT rate in percent, e.g. 22 or 9.5
	TaxRate decimal.Decimal `json:"tax_rate" validate:"gte=0,lte=100"`
}

// IssueInvoiceRequest represents the request payload for issuing a fiscal invoice
type IssueInvoiceRequest struct {
	// device_id is the id of the electronic device issuing the invoice
	DeviceID string `json:"device_id" validate:"required"`

	// operator_tax_id is the tax number of the person operating the device
	OperatorTaxID int64 `json:"operator_tax_id" validate:"required,gt=0"`

	// prices are the taxable lines of the invoice
	Prices []PriceRequest `json:"prices" validate:"required,min=1,dive"`

	// issued_at marks a subsequent submission of an invoice issued while
	// the authority was unreachable. When absent the invoice is issued now.
	IssuedAt *time.Time `json:"issued_at,omitempty"`
}

func (r IssueInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// Lines converts the request prices into domain price lines
func (r IssueInvoiceRequest) Lines() []invoice.PriceLine {
	return lo.Map(r.Prices, func(p PriceRequest, _ int) invoice.PriceLine {
		return invoice.PriceLine{Amount: p.Amount, TaxRate: p.TaxRate}
	})
}

// IssueInvoiceResponse is returned once the authority accepted and the record is stored
type IssueInvoiceResponse struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	Digest        string          `json:"digest"`
	Receipt       string          `json:"receipt"`
	IssuedAt      time.Time       `json:"issued_at"`
	Sequence      int64           `json:"sequence"`
	Total         decimal.Decimal `json:"total"`
}

func NewIssueInvoiceResponse(inv *invoice.Invoice) *IssueInvoiceResponse {
	return &IssueInvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Digest:        inv.Digest,
		Receipt:       inv.Receipt,
		IssuedAt:      inv.IssuedAt,
		Sequence:      inv.Sequence,
		Total:         inv.Total,
	}
}

// InvoiceResponse represents a stored invoice record
type InvoiceResponse struct {
	*invoice.Invoice
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv}
}

// ListInvoicesResponse represents the paginated response for listing invoices
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]
