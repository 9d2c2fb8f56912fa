package postgres

import (
	"context"

	"github.com/flexprice/fiscal/internal/domain/company"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/postgres"
)

type companyRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCompanyRepository(db *postgres.DB, logger *logger.Logger) company.Repository {
	return &companyRepository{db: db, logger: logger}
}

const companyColumns = `id, name, tax_id, cert_key, is_active, created_at, updated_at`

func (r *companyRepository) Get(ctx context.Context, id string) (*company.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`

	var c company.Company
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &c, query, id); err != nil {
		return nil, notFoundOr(err, "company", id)
	}
	return &c, nil
}

func (r *companyRepository) ListActive(ctx context.Context) ([]*company.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE is_active = TRUE ORDER BY id`

	var companies []*company.Company
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &companies, query); err != nil {
		return nil, queryError(err, "company")
	}
	return companies, nil
}
