package company

import (
	"time"
)

// Company is a tenant that issues invoices under its own tax id and
// signing certificate.
type Company struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	// TaxID identifies the company to the tax authority and names its
	// certificate file
	TaxID int64 `db:"tax_id" json:"tax_id"`

	// CertKey is the encrypted certificate password envelope. It is never
	// returned by the API.
	CertKey string `db:"cert_key" json:"-"`

	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
