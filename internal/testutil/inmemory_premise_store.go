package testutil

import (
	"context"
	"time"

	"github.com/flexprice/fiscal/internal/domain/premise"
	"github.com/flexprice/fiscal/internal/types"
)

// InMemoryPremiseStore implements premise.Repository
type InMemoryPremiseStore struct {
	*InMemoryStore[premise.Premise]

	// TransitionErr makes Transition fail when set
	TransitionErr error
}

func NewInMemoryPremiseStore() *InMemoryPremiseStore {
	return &InMemoryPremiseStore{InMemoryStore: NewInMemoryStore[premise.Premise]()}
}

func (s *InMemoryPremiseStore) Add(ctx context.Context, p *premise.Premise) error {
	return s.InMemoryStore.Create(ctx, p.ID, *p)
}

func (s *InMemoryPremiseStore) Get(ctx context.Context, id string) (*premise.Premise, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *InMemoryPremiseStore) ListByCompany(ctx context.Context, companyID string) ([]*premise.Premise, error) {
	items, err := s.InMemoryStore.List(ctx, companyID,
		func(_ context.Context, p premise.Premise, f interface{}) bool { return p.CompanyID == f.(string) },
		byPremiseID,
	)
	if err != nil {
		return nil, err
	}
	return toPtrs(items), nil
}

func (s *InMemoryPremiseStore) List(ctx context.Context) ([]*premise.Premise, error) {
	items, err := s.InMemoryStore.List(ctx, nil, nil, byPremiseID)
	if err != nil {
		return nil, err
	}
	return toPtrs(items), nil
}

func (s *InMemoryPremiseStore) Transition(
	ctx context.Context,
	id string,
	from, to types.RegistrationStatus,
	reason string,
) (bool, error) {
	if s.TransitionErr != nil {
		return false, s.TransitionErr
	}
	moved := false
	err := s.Mutate(ctx, id, func(p premise.Premise) (premise.Premise, error) {
		if p.Registration.Status != from {
			return p, nil
		}
		p.Registration = premise.Registration{Status: to, Reason: reason, UpdatedAt: time.Now().UTC()}
		moved = true
		return p, nil
	})
	return moved, err
}

// Status returns the registration status of a premise
func (s *InMemoryPremiseStore) Status(ctx context.Context, id string) types.RegistrationStatus {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return ""
	}
	return p.Registration.Status
}

func byPremiseID(a, b premise.Premise) bool {
	if a.CompanyID != b.CompanyID {
		return a.CompanyID < b.CompanyID
	}
	return a.ID < b.ID
}
