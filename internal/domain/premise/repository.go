package premise

import (
	"context"

	"github.com/flexprice/fiscal/internal/types"
)

type Repository interface {
	Get(ctx context.Context, id string) (*Premise, error)
	ListByCompany(ctx context.Context, companyID string) ([]*Premise, error)
	List(ctx context.Context) ([]*Premise, error)

	// Transition moves the registration from one status to another only if
	// the stored status still equals from. It reports whether the row moved.
	Transition(ctx context.Context, id string, from, to types.RegistrationStatus, reason string) (bool, error)
}
