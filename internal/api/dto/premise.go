package dto

import (
	"time"

	"github.com/flexprice/fiscal/internal/domain/premise"
	"github.com/flexprice/fiscal/internal/types"
)

// PremiseResponse renders a premise with its kind flattened
type PremiseResponse struct {
	ID           string                   `json:"id"`
	CompanyID    string                   `json:"company_id"`
	AuthorityID  string                   `json:"authority_id"`
	Type         types.PremiseType        `json:"type,omitempty"`
	Subtype      types.MovablePremiseType `json:"subtype,omitempty"`
	ValidityFrom time.Time                `json:"validity_from"`
	Notes        string                   `json:"notes,omitempty"`
	Registration premise.Registration     `json:"registration"`
	CreatedAt    time.Time                `json:"created_at"`
}

func NewPremiseResponse(p *premise.Premise) *PremiseResponse {
	resp := &PremiseResponse{
		ID:           p.ID,
		CompanyID:    p.CompanyID,
		AuthorityID:  p.AuthorityID,
		Type:         p.PremiseType(),
		ValidityFrom: p.ValidityFrom,
		Notes:        p.Notes,
		Registration: p.Registration,
		CreatedAt:    p.CreatedAt,
	}
	if m, ok := p.Kind.(premise.Movable); ok {
		resp.Subtype = m.Subtype
	}
	return resp
}

type ListPremisesResponse = types.ListResponse[*PremiseResponse]

// PremiseRegistrationResult is the outcome for one premise in a registration run
type PremiseRegistrationResult struct {
	PremiseID string                   `json:"premise_id"`
	CompanyID string                   `json:"company_id"`
	Status    types.RegistrationStatus `json:"status"`
	Reason    string                   `json:"reason,omitempty"`
}

// RegistrationSummary describes a registration run over all active companies.
// Skipped premises keep their status.
type RegistrationSummary struct {
	Registered int                         `json:"registered"`
	Failed     int                         `json:"failed"`
	Skipped    int                         `json:"skipped"`
	Results    []PremiseRegistrationResult `json:"results"`
	Error      string                      `json:"error,omitempty"`
}
