package postgres

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/lib/pq"
)

// notFoundOr maps sql.ErrNoRows to ErrNotFound and every other failure to ErrDatabase
func notFoundOr(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s %s not found", entity, id).
			WithReportableDetails(map[string]any{entity + "_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return queryError(err, entity)
}

func queryError(err error, entity string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			Mark(ierr.ErrAlreadyExists)
	}
	return ierr.WithError(err).
		WithHintf("Failed to access %s", entity).
		Mark(ierr.ErrDatabase)
}
