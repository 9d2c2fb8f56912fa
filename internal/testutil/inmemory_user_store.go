package testutil

import (
	"context"

	"github.com/flexprice/fiscal/internal/domain/user"
)

// InMemoryUserStore implements user.Repository
type InMemoryUserStore struct {
	*InMemoryStore[user.User]
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{InMemoryStore: NewInMemoryStore[user.User]()}
}

func (s *InMemoryUserStore) Add(ctx context.Context, u *user.User) error {
	return s.InMemoryStore.Create(ctx, u.ID, *u)
}

func (s *InMemoryUserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	u, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
