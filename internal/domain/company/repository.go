package company

import "context"

// Repository defines the read access the issuance core needs for companies
type Repository interface {
	Get(ctx context.Context, id string) (*Company, error)
	ListActive(ctx context.Context) ([]*Company, error)
}
