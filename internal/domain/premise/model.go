package premise

import (
	"time"

	"github.com/flexprice/fiscal/internal/types"
)

// Premise is a business premise registered with the tax authority.
// Registration state is mutated only by the premise registrar.
type Premise struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`

	// AuthorityID is the premise identifier used on the authority side
	// and as the first part of every invoice number
	AuthorityID  string    `json:"authority_id"`
	ValidityFrom time.Time `json:"validity_from"`
	Notes        string    `json:"notes,omitempty"`

	Kind         Kind         `json:"-"`
	Registration Registration `json:"registration"`

	CreatedAt time.Time `json:"created_at"`
}

// Kind is either Movable or Immovable
type Kind interface {
	PremiseType() types.PremiseType
	isKind()
}

// Movable is a premise without a fixed address, like a market stall or vehicle
type Movable struct {
	Subtype types.MovablePremiseType
}

// Immovable is a premise bound to a cadastral real estate record
type Immovable struct {
	CadastralNumber       int64
	BuildingNumber        int64
	BuildingSectionNumber int64
	Street                string
	HouseNumber           string
	HouseNumberAdditional string
	Community             string
	City                  string
	PostalCode            string
}

func (Movable) PremiseType() types.PremiseType   { return types.PremiseTypeMovable }
func (Immovable) PremiseType() types.PremiseType { return types.PremiseTypeImmovable }

func (Movable) isKind()   {}
func (Immovable) isKind() {}

// Registration tracks the premise state at the authority
type Registration struct {
	Status    types.RegistrationStatus `json:"status"`
	Reason    string                   `json:"reason,omitempty"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// CanIssue reports whether invoices may be issued from devices in this premise.
// A failed registration is known to the operator and does not block issuance.
func (p *Premise) CanIssue() bool {
	return !p.Registration.Status.IsPending()
}

// PremiseType returns the kind discriminator, empty when the kind is unknown
func (p *Premise) PremiseType() types.PremiseType {
	if p.Kind == nil {
		return ""
	}
	return p.Kind.PremiseType()
}
