package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/flexprice/fiscal/internal/domain/premise"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/postgres"
	"github.com/flexprice/fiscal/internal/types"
	"github.com/samber/lo"
)

type premiseRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPremiseRepository(db *postgres.DB, logger *logger.Logger) premise.Repository {
	return &premiseRepository{db: db, logger: logger}
}

// premiseRow is the flat table layout. Kind specific columns are nullable.
type premiseRow struct {
	ID           string         `db:"id"`
	CompanyID    string         `db:"company_id"`
	FursID       string         `db:"furs_id"`
	ValidityFrom time.Time      `db:"validity_from"`
	Notes        sql.NullString `db:"notes"`
	PremiseType  string         `db:"premise_type"`
	MovableType  sql.NullString `db:"movable_type"`

	CadastralNumber       sql.NullInt64  `db:"real_estate_cadastral_number"`
	BuildingNumber        sql.NullInt64  `db:"real_estate_building_number"`
	BuildingSectionNumber sql.NullInt64  `db:"real_estate_building_section_number"`
	Street                sql.NullString `db:"street"`
	HouseNumber           sql.NullString `db:"house_number"`
	HouseNumberAdditional sql.NullString `db:"house_number_additional"`
	Community             sql.NullString `db:"community"`
	City                  sql.NullString `db:"city"`
	PostalCode            sql.NullString `db:"postal_code"`

	RegistrationStatus    string         `db:"registration_status"`
	RegistrationReason    sql.NullString `db:"registration_reason"`
	RegistrationUpdatedAt time.Time      `db:"registration_updated_at"`
	CreatedAt             time.Time      `db:"created_at"`
}

const premiseColumns = `id, company_id, furs_id, validity_from, notes, premise_type, movable_type,
	real_estate_cadastral_number, real_estate_building_number, real_estate_building_section_number,
	street, house_number, house_number_additional, community, city, postal_code,
	registration_status, registration_reason, registration_updated_at, created_at`

// toDomain leaves Kind nil for a premise_type it does not know, the
// registrar logs and skips those
func (row *premiseRow) toDomain() *premise.Premise {
	p := &premise.Premise{
		ID:           row.ID,
		CompanyID:    row.CompanyID,
		AuthorityID:  row.FursID,
		ValidityFrom: row.ValidityFrom,
		Notes:        row.Notes.String,
		Registration: premise.Registration{
			Status:    types.RegistrationStatus(row.RegistrationStatus),
			Reason:    row.RegistrationReason.String,
			UpdatedAt: row.RegistrationUpdatedAt,
		},
		CreatedAt: row.CreatedAt,
	}

	switch types.PremiseType(row.PremiseType) {
	case types.PremiseTypeMovable:
		p.Kind = premise.Movable{Subtype: types.MovablePremiseType(row.MovableType.String)}
	case types.PremiseTypeImmovable:
		p.Kind = premise.Immovable{
			CadastralNumber:       row.CadastralNumber.Int64,
			BuildingNumber:        row.BuildingNumber.Int64,
			BuildingSectionNumber: row.BuildingSectionNumber.Int64,
			Street:                row.Street.String,
			HouseNumber:           row.HouseNumber.String,
			HouseNumberAdditional: row.HouseNumberAdditional.String,
			Community:             row.Community.String,
			City:                  row.City.String,
			PostalCode:            row.PostalCode.String,
		}
	}
	return p
}

func (r *premiseRepository) Get(ctx context.Context, id string) (*premise.Premise, error) {
	query := `SELECT ` + premiseColumns + ` FROM business_premises WHERE id = $1`

	var row premiseRow
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id); err != nil {
		return nil, notFoundOr(err, "premise", id)
	}
	return row.toDomain(), nil
}

func (r *premiseRepository) ListByCompany(ctx context.Context, companyID string) ([]*premise.Premise, error) {
	query := `SELECT ` + premiseColumns + ` FROM business_premises WHERE company_id = $1 ORDER BY id`
	return r.selectPremises(ctx, query, companyID)
}

func (r *premiseRepository) List(ctx context.Context) ([]*premise.Premise, error) {
	query := `SELECT ` + premiseColumns + ` FROM business_premises ORDER BY company_id, id`
	return r.selectPremises(ctx, query)
}

func (r *premiseRepository) selectPremises(ctx context.Context, query string, args ...interface{}) ([]*premise.Premise, error) {
	var rows []*premiseRow
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, queryError(err, "premise")
	}
	return lo.Map(rows, func(row *premiseRow, _ int) *premise.Premise {
		return row.toDomain()
	}), nil
}

func (r *premiseRepository) Transition(
	ctx context.Context,
	id string,
	from, to types.RegistrationStatus,
	reason string,
) (bool, error) {
	query := `
		UPDATE business_premises
		SET registration_status = $3,
			registration_reason = NULLIF($4, ''),
			registration_updated_at = NOW()
		WHERE id = $1 AND registration_status = $2`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, id, from, to, reason)
	if err != nil {
		return false, queryError(err, "premise")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, queryError(err, "premise")
	}

	r.logger.Debugw("premise registration transition",
		"premise_id", id,
		"from", from,
		"to", to,
		"applied", affected == 1,
	)
	return affected == 1, nil
}
