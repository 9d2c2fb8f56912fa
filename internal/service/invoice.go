package service

import (
	"context"
	"strconv"
	"time"

	"github.com/flexprice/fiscal/internal/api/dto"
	"github.com/flexprice/fiscal/internal/authority"
	"github.com/flexprice/fiscal/internal/config"
	"github.com/flexprice/fiscal/internal/domain/company"
	"github.com/flexprice/fiscal/internal/domain/device"
	"github.com/flexprice/fiscal/internal/domain/invoice"
	"github.com/flexprice/fiscal/internal/domain/premise"
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/metrics"
	"github.com/flexprice/fiscal/internal/numbering"
	"github.com/flexprice/fiscal/internal/types"
	"github.com/samber/lo"
)

// Burn reasons recorded when an allocated sequence does not produce an invoice
const (
	burnNoCredential = "no_credential"
	burnDigest       = "digest_failed"
	burnSubmit       = "submit_failed"
	burnTimeout      = "timeout"
)

type InvoiceService interface {
	// Issue fiscalizes a sale: it allocates the next device sequence, has the
	// authority compute the digest and accept the invoice, then stores it.
	Issue(ctx context.Context, auth types.AuthContext, req dto.IssueInvoiceRequest) (*dto.IssueInvoiceResponse, error)
	Get(ctx context.Context, auth types.AuthContext, id string) (*dto.InvoiceResponse, error)
	List(ctx context.Context, auth types.AuthContext, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	ListAll(ctx context.Context, auth types.AuthContext, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
}

type invoiceService struct {
	companies company.Repository
	premises  premise.Repository
	devices   device.Repository
	invoices  invoice.Repository
	sequences SequenceAllocator
	vault     CredentialVault
	cfg       *config.Configuration
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		companies: params.CompanyRepo,
		premises:  params.PremiseRepo,
		devices:   params.DeviceRepo,
		invoices:  params.InvoiceRepo,
		sequences: NewSequenceAllocator(params),
		vault:     params.Vault,
		cfg:       params.Config,
		logger:    params.Logger,
		metrics:   params.Metrics,
	}
}

func (s *invoiceService) Issue(ctx context.Context, auth types.AuthContext, req dto.IssueInvoiceRequest) (*dto.IssueInvoiceResponse, error) {
	if err := requireActive(auth); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d, p, c, err := s.checkIssuer(ctx, auth, req.DeviceID)
	if err != nil {
		return nil, err
	}

	// from here on the sequence is consumed whatever happens
	seq, err := s.sequences.NextSequence(ctx, d.ID)
	if err != nil {
		return nil, err
	}

	handle, err := s.vault.Get(c.ID)
	if err != nil {
		s.burn(ctx, d, seq, burnNoCredential, err)
		return nil, ierr.NewErrorf("no signing credential for company %s: %v", c.ID, err).
			WithHint("No signing credential is loaded for this company").
			WithReportableDetails(map[string]any{
				"company_id": c.ID,
				"sequence":   seq,
			}).
			Mark(ierr.ErrNoSigningCredential)
	}

	issuedAt := time.Now().UTC()
	subsequent := req.IssuedAt != nil
	if subsequent {
		issuedAt = req.IssuedAt.UTC()
	}

	lines := req.Lines()
	total := invoice.Total(lines)
	taxes := lo.Map(invoice.TaxBreakdown(lines), func(g invoice.TaxGroup, _ int) authority.TaxRate {
		return authority.TaxRate{Rate: g.Rate, TaxableAmount: g.TaxableAmount, TaxAmount: g.TaxAmount}
	})

	var digest string
	err = s.callAuthority(ctx, "digest", func(ctx context.Context) error {
		var err error
		digest, err = handle.Client.ComputeDigest(ctx, authority.DigestRequest{
			TaxID:              c.TaxID,
			IssuedAt:           issuedAt,
			Sequence:           seq,
			PremiseAuthorityID: p.AuthorityID,
			DeviceExternalID:   d.ExternalID,
			Total:              total,
		})
		return err
	})
	if err != nil {
		return nil, s.authorityFailure(ctx, d, seq, burnDigest, err)
	}

	number := numbering.Format(p.AuthorityID, d.ExternalID, seq)

	var receipt string
	err = s.callAuthority(ctx, "submit", func(ctx context.Context) error {
		var err error
		receipt, err = handle.Client.Submit(ctx, authority.SubmitRequest{
			Digest:             digest,
			TaxID:              c.TaxID,
			IssuedAt:           issuedAt,
			InvoiceNumber:      number,
			PremiseAuthorityID: p.AuthorityID,
			DeviceExternalID:   d.ExternalID,
			Total:              total,
			Taxes:              taxes,
			OperatorTaxID:      req.OperatorTaxID,
			Subsequent:         subsequent,
		})
		return err
	})
	if err != nil {
		return nil, s.authorityFailure(ctx, d, seq, burnSubmit, err)
	}

	inv := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		Digest:        digest,
		Receipt:       receipt,
		InvoiceNumber: number,
		Sequence:      seq,
		IssuedAt:      issuedAt,
		Subsequent:    subsequent,
		Total:         total,
		UserID:        auth.UserID,
		CompanyID:     c.ID,
		DeviceID:      d.ID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		// the authority holds this invoice, the record is needed for reconciliation
		s.logger.WithContext(ctx).Errorw("failed to store invoice accepted by the authority",
			"invoice_number", number,
			"digest", digest,
			"receipt", receipt,
			"device_id", d.ID,
			"company_id", c.ID,
			"sequence", seq,
			"error", err,
		)
		return nil, ierr.WithError(err).
			WithHint("The invoice was accepted by the tax authority but could not be stored").
			WithReportableDetails(map[string]any{
				"invoice_number": number,
				"receipt":        receipt,
			}).
			Mark(ierr.ErrDatabase)
	}

	if s.metrics != nil {
		s.metrics.InvoicesIssued.WithLabelValues(strconv.FormatBool(subsequent)).Inc()
	}
	s.logger.WithContext(ctx).Infow("issued invoice",
		"invoice_id", inv.ID,
		"invoice_number", number,
		"device_id", d.ID,
		"company_id", c.ID,
		"subsequent", subsequent,
	)
	return dto.NewIssueInvoiceResponse(inv), nil
}

// checkIssuer runs every precondition of Issue. Nothing is consumed here.
func (s *invoiceService) checkIssuer(ctx context.Context, auth types.AuthContext, deviceID string) (*device.Device, *premise.Premise, *company.Company, error) {
	d, err := s.devices.Get(ctx, deviceID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil, nil, ierr.WithError(err).Mark(device.ErrDeviceNotFound)
		}
		return nil, nil, nil, err
	}
	if !d.IsActive {
		return nil, nil, nil, ierr.WithError(device.ErrDeviceDisabled).
			WithHint("Device is not active").
			WithReportableDetails(map[string]any{"device_id": d.ID}).
			Mark(ierr.ErrDisabled)
	}

	p, err := s.premises.Get(ctx, d.PremiseID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil, nil, ierr.WithError(err).Mark(premise.ErrPremiseNotFound)
		}
		return nil, nil, nil, err
	}
	if p.CompanyID != auth.CompanyID {
		return nil, nil, nil, ierr.NewError("device belongs to another company").
			WithHint("You are not allowed to issue invoices from this device").
			WithReportableDetails(map[string]any{"device_id": d.ID}).
			Mark(ierr.ErrPermissionDenied)
	}

	c, err := s.companies.Get(ctx, p.CompanyID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil, nil, ierr.WithError(err).Mark(company.ErrCompanyNotFound)
		}
		return nil, nil, nil, err
	}
	if !c.IsActive {
		return nil, nil, nil, ierr.WithError(company.ErrCompanyDisabled).
			WithHint("Company is not active").
			WithReportableDetails(map[string]any{"company_id": c.ID}).
			Mark(ierr.ErrDisabled)
	}

	if !p.CanIssue() {
		return nil, nil, nil, ierr.WithError(premise.ErrRegistrationPending).
			WithHintf("Premise registration is %s", p.Registration.Status).
			WithReportableDetails(map[string]any{
				"premise_id": p.ID,
				"status":     p.Registration.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return d, p, c, nil
}

// callAuthority bounds fn by the authority timeout and records its duration
func (s *invoiceService) callAuthority(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Authority.Timeout)
	defer cancel()

	start := time.Now()
	err := fn(callCtx)
	if s.metrics != nil {
		result := "success"
		if err != nil {
			result = "error"
		}
		s.metrics.AuthorityDuration.WithLabelValues(operation, result).Observe(time.Since(start).Seconds())
	}
	return err
}

func (s *invoiceService) authorityFailure(ctx context.Context, d *device.Device, seq int64, reason string, err error) error {
	if ierr.Is(err, context.DeadlineExceeded) {
		reason = burnTimeout
	}
	s.burn(ctx, d, seq, reason, err)
	return ierr.WithError(err).
		WithHint("The tax authority did not accept the invoice").
		WithReportableDetails(map[string]any{
			"device_id": d.ID,
			"sequence":  seq,
		}).
		Mark(ierr.ErrAuthoritySubmission)
}

func (s *invoiceService) burn(ctx context.Context, d *device.Device, seq int64, reason string, err error) {
	s.logger.WithContext(ctx).Errorw("sequence burned",
		"device_id", d.ID,
		"sequence", seq,
		"reason", reason,
		"error", err,
	)
	if s.metrics != nil {
		s.metrics.SequenceBurned.WithLabelValues(reason).Inc()
	}
}

func (s *invoiceService) Get(ctx context.Context, auth types.AuthContext, id string) (*dto.InvoiceResponse, error) {
	if err := requireRole(auth, types.UserRoleOrganizationAdmin, types.UserRoleAdmin); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ierr.NewError("invoice id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireCompany(auth, inv.CompanyID); err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) List(ctx context.Context, auth types.AuthContext, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if err := requireRole(auth, types.UserRoleOrganizationAdmin, types.UserRoleAdmin); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	filter.CompanyID = auth.CompanyID
	return s.list(ctx, filter)
}

func (s *invoiceService) ListAll(ctx context.Context, auth types.AuthContext, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if err := requireRole(auth, types.UserRoleAdmin); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	filter.CompanyID = ""
	return s.list(ctx, filter)
}

func (s *invoiceService) list(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if filter.InvoiceNumber != "" {
		if _, err := numbering.Parse(filter.InvoiceNumber); err != nil {
			return nil, err
		}
	}

	invoices, err := s.invoices.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.invoices.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return dto.NewInvoiceResponse(inv)
	})
	resp := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}
