package postgres

import (
	"context"
	"strings"

	"github.com/flexprice/fiscal/internal/domain/invoice"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/postgres"
	"github.com/flexprice/fiscal/internal/types"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

const invoiceColumns = `id, zoi, eor, invoice_number, sequence, issued_at, subsequent, total,
	user_id, company_id, device_id, created_at`

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (:id, :zoi, :eor, :invoice_number, :sequence, :issued_at, :subsequent, :total,
			:user_id, :company_id, :device_id, :created_at)`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, inv); err != nil {
		return queryError(err, "invoice")
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	var inv invoice.Invoice
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, id); err != nil {
		return nil, notFoundOr(err, "invoice", id)
	}
	return &inv, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	where, args := invoiceWhere(filter)
	args = append(args, filter.GetLimit(), filter.GetOffset())

	query := `SELECT ` + invoiceColumns + ` FROM invoices` + where +
		` ORDER BY issued_at DESC, id DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	var invoices []*invoice.Invoice
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, queryError(err, "invoice")
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	where, args := invoiceWhere(filter)

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, `SELECT COUNT(*) FROM invoices`+where, args...); err != nil {
		return 0, queryError(err, "invoice")
	}
	return count, nil
}

func invoiceWhere(filter *types.InvoiceFilter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}

	var (
		conds []string
		args  []interface{}
	)
	if filter.CompanyID != "" {
		args = append(args, filter.CompanyID)
		conds = append(conds, "company_id = $"+itoa(len(args)))
	}
	if filter.DeviceID != "" {
		args = append(args, filter.DeviceID)
		conds = append(conds, "device_id = $"+itoa(len(args)))
	}
	if filter.InvoiceNumber != "" {
		args = append(args, filter.InvoiceNumber)
		conds = append(conds, "invoice_number = $"+itoa(len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
