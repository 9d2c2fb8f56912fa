package testutil

import (
	"context"

	"github.com/flexprice/fiscal/internal/domain/company"
)

// InMemoryCompanyStore implements company.Repository
type InMemoryCompanyStore struct {
	*InMemoryStore[company.Company]

	// ListErr makes ListActive fail when set
	ListErr error
}

func NewInMemoryCompanyStore() *InMemoryCompanyStore {
	return &InMemoryCompanyStore{InMemoryStore: NewInMemoryStore[company.Company]()}
}

func (s *InMemoryCompanyStore) Add(ctx context.Context, c *company.Company) error {
	return s.InMemoryStore.Create(ctx, c.ID, *c)
}

func (s *InMemoryCompanyStore) Get(ctx context.Context, id string) (*company.Company, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *InMemoryCompanyStore) ListActive(ctx context.Context) ([]*company.Company, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	items, err := s.InMemoryStore.List(ctx, nil,
		func(_ context.Context, c company.Company, _ interface{}) bool { return c.IsActive },
		func(a, b company.Company) bool { return a.ID < b.ID },
	)
	if err != nil {
		return nil, err
	}
	return toPtrs(items), nil
}

// SetActive flips the activation flag of a company
func (s *InMemoryCompanyStore) SetActive(ctx context.Context, id string, active bool) error {
	return s.Mutate(ctx, id, func(c company.Company) (company.Company, error) {
		c.IsActive = active
		return c, nil
	})
}

func toPtrs[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}
