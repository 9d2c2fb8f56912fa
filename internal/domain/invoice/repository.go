package invoice

import (
	"context"

	"github.com/flexprice/fiscal/internal/types"
)

// Repository stores issued invoices. It has no update or delete on purpose.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
}
