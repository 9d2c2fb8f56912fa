// Package authority defines the contract of the tax authority client used
// by the issuance core. The digest algorithm and the wire protocol live
// behind it.
package authority

import (
	"context"
	"time"

	"github.com/flexprice/fiscal/internal/types"
	"github.com/shopspring/decimal"
)

// Client talks to the tax authority on behalf of one company
type Client interface {
	// ComputeDigest returns the protective mark (ZOI) of an invoice
	ComputeDigest(ctx context.Context, req DigestRequest) (string, error)

	// Submit reports an invoice and returns the authority receipt (EOR)
	Submit(ctx context.Context, req SubmitRequest) (string, error)

	// RegisterMovablePremise reports whether the authority accepted the premise
	RegisterMovablePremise(ctx context.Context, req MovablePremiseRegistration) (bool, error)
}

// Factory builds a Client from a decrypted credential
type Factory interface {
	NewClient(ctx context.Context, cred Credential) (Client, error)
}

// Credential is the signing material of one company. Password is the
// decrypted certificate password and must never be logged.
type Credential struct {
	CompanyID       string
	TaxID           int64
	CertificatePath string
	Password        string
}

type DigestRequest struct {
	TaxID              int64
	IssuedAt           time.Time
	Sequence           int64
	PremiseAuthorityID string
	DeviceExternalID   string
	Total              decimal.Decimal
}

// TaxRate is one entry of the per rate breakdown sent with an invoice
type TaxRate struct {
	Rate          decimal.Decimal `json:"rate"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
}

type SubmitRequest struct {
	Digest             string
	TaxID              int64
	IssuedAt           time.Time
	InvoiceNumber      string
	PremiseAuthorityID string
	DeviceExternalID   string
	Total              decimal.Decimal
	Taxes              []TaxRate
	OperatorTaxID      int64
	Subsequent         bool
}

type MovablePremiseRegistration struct {
	TaxID                     int64
	PremiseAuthorityID        string
	Subtype                   types.MovablePremiseType
	ValidityFrom              time.Time
	SoftwareSupplierTaxNumber int64
	Notes                     string
}
