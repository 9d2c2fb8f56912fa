package postgres

import (
	"context"

	"github.com/flexprice/fiscal/internal/domain/device"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/postgres"
)

type deviceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewDeviceRepository(db *postgres.DB, logger *logger.Logger) device.Repository {
	return &deviceRepository{db: db, logger: logger}
}

func (r *deviceRepository) Get(ctx context.Context, id string) (*device.Device, error) {
	query := `
		SELECT id, device_id, premise_id, seq_invoice_id, is_active, created_at
		FROM devices
		WHERE id = $1`

	var d device.Device
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &d, query, id); err != nil {
		return nil, notFoundOr(err, "device", id)
	}
	return &d, nil
}

// NextSequence relies on the row lock taken by UPDATE, so concurrent
// callers are serialised by postgres and each gets a distinct value.
// The increment is never rolled back by the issuance flow.
func (r *deviceRepository) NextSequence(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE devices
		SET seq_invoice_id = seq_invoice_id + 1
		WHERE id = $1
		RETURNING seq_invoice_id`

	var seq int64
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &seq, query, id); err != nil {
		return 0, notFoundOr(err, "device", id)
	}

	r.logger.Debugw("allocated invoice sequence", "device_id", id, "sequence", seq)
	return seq, nil
}
