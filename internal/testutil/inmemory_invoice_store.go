package testutil

import (
	"context"

	"github.com/flexprice/fiscal/internal/domain/invoice"
	"github.com/flexprice/fiscal/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[invoice.Invoice]

	// CreateErr makes Create fail when set
	CreateErr error
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{InMemoryStore: NewInMemoryStore[invoice.Invoice]()}
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	return s.InMemoryStore.Create(ctx, inv.ID, *inv)
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	items, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, func(a, b invoice.Invoice) bool {
		if !a.IssuedAt.Equal(b.IssuedAt) {
			return a.IssuedAt.After(b.IssuedAt)
		}
		return a.ID > b.ID
	})
	if err != nil {
		return nil, err
	}
	return toPtrs(paginate(items, filter.GetLimit(), filter.GetOffset())), nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

func invoiceFilterFn(_ context.Context, inv invoice.Invoice, filter interface{}) bool {
	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}
	if f.CompanyID != "" && inv.CompanyID != f.CompanyID {
		return false
	}
	if f.DeviceID != "" && inv.DeviceID != f.DeviceID {
		return false
	}
	if f.InvoiceNumber != "" && inv.InvoiceNumber != f.InvoiceNumber {
		return false
	}
	return true
}
