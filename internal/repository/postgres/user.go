package postgres

import (
	"context"

	"github.com/flexprice/fiscal/internal/domain/user"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/postgres"
)

type userRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewUserRepository(db *postgres.DB, logger *logger.Logger) user.Repository {
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT id, username, email, role, company_id, active, created_at FROM users WHERE id = $1`

	var u user.User
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &u, query, id); err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return &u, nil
}
