package service

import (
	"context"
	"sort"

	"github.com/flexprice/fiscal/internal/api/dto"
	"github.com/flexprice/fiscal/internal/authority"
	"github.com/flexprice/fiscal/internal/config"
	"github.com/flexprice/fiscal/internal/domain/company"
	"github.com/flexprice/fiscal/internal/domain/premise"
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/metrics"
	"github.com/flexprice/fiscal/internal/types"
	"github.com/flexprice/fiscal/internal/vault"
	"github.com/samber/lo"
)

const (
	registrationResultRegistered = "registered"
	registrationResultFailed     = "failed"
	registrationResultSkipped    = "skipped"

	reasonNotImplemented = "not implemented"
	reasonRejected       = "rejected by authority"
	reasonNoCredential   = "no signing credential"
	reasonUnknownKind    = "unknown premise kind"
	reasonClaimLost      = "registration already in progress"
	reasonClaimFailed    = "could not claim premise"

	// defaultPremiseNotes is sent when a premise has no notes
	defaultPremiseNotes = "None"
)

// PremiseRegistrar moves business premises through
// unregistered -> registering -> registered | failed
type PremiseRegistrar interface {
	// RegisterAll registers every unregistered premise of every active
	// company. Failures are recorded on the premise and never returned.
	RegisterAll(ctx context.Context) *dto.RegistrationSummary

	// Register registers a single unregistered premise and returns the failure
	Register(ctx context.Context, auth types.AuthContext, premiseID string) (*dto.PremiseResponse, error)

	// Retry resets a failed or stuck premise and registers it again
	Retry(ctx context.Context, auth types.AuthContext, premiseID string) (*dto.PremiseResponse, error)

	List(ctx context.Context, auth types.AuthContext) (*dto.ListPremisesResponse, error)
}

type premiseRegistrar struct {
	companies company.Repository
	premises  premise.Repository
	vault     CredentialVault
	cfg       *config.Configuration
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewPremiseRegistrar(params ServiceParams) PremiseRegistrar {
	return &premiseRegistrar{
		companies: params.CompanyRepo,
		premises:  params.PremiseRepo,
		vault:     params.Vault,
		cfg:       params.Config,
		logger:    params.Logger,
		metrics:   params.Metrics,
	}
}

// registration is the outcome of one attempt. err carries the failure for
// callers that asked for a single premise.
type registration struct {
	result string
	status types.RegistrationStatus
	reason string
	err    error
}

func (s *premiseRegistrar) RegisterAll(ctx context.Context) *dto.RegistrationSummary {
	summary := &dto.RegistrationSummary{Results: []dto.PremiseRegistrationResult{}}

	companies, err := s.companies.ListActive(ctx)
	if err != nil {
		s.logger.Errorw("failed to list active companies for premise registration", "error", err)
		summary.Error = err.Error()
		return summary
	}

	for _, c := range companies {
		premises, err := s.premises.ListByCompany(ctx, c.ID)
		if err != nil {
			s.logger.Errorw("failed to list premises", "company_id", c.ID, "error", err)
			continue
		}

		pending := lo.Filter(premises, func(p *premise.Premise, _ int) bool {
			return p.Registration.Status == types.RegistrationStatusUnregistered
		})
		if len(pending) == 0 {
			continue
		}

		handle, err := s.vault.Get(c.ID)
		if err != nil {
			s.logger.Warnw("no signing credential, skipping premise registration",
				"company_id", c.ID,
				"premises", len(pending),
			)
			for _, p := range pending {
				s.count(registrationResultSkipped)
				s.record(summary, p, registration{
					result: registrationResultSkipped,
					status: p.Registration.Status,
					reason: reasonNoCredential,
				})
			}
			continue
		}

		for _, p := range pending {
			s.record(summary, p, s.register(ctx, c, handle, p))
		}
	}

	sort.SliceStable(summary.Results, func(i, j int) bool {
		return summary.Results[i].PremiseID < summary.Results[j].PremiseID
	})
	s.logger.Infow("premise registration finished",
		"registered", summary.Registered,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary
}

func (s *premiseRegistrar) record(summary *dto.RegistrationSummary, p *premise.Premise, r registration) {
	switch r.result {
	case registrationResultRegistered:
		summary.Registered++
	case registrationResultFailed:
		summary.Failed++
	default:
		summary.Skipped++
	}
	summary.Results = append(summary.Results, dto.PremiseRegistrationResult{
		PremiseID: p.ID,
		CompanyID: p.CompanyID,
		Status:    r.status,
		Reason:    r.reason,
	})
}

// register claims an unregistered premise and dispatches on its kind
func (s *premiseRegistrar) register(ctx context.Context, c *company.Company, handle *vault.Handle, p *premise.Premise) registration {
	var call func(ctx context.Context) registration

	switch kind := p.Kind.(type) {
	case premise.Movable:
		call = func(ctx context.Context) registration {
			return s.registerMovable(ctx, c, handle, p, kind)
		}
	case premise.Immovable:
		call = func(ctx context.Context) registration {
			return registration{
				result: registrationResultFailed,
				status: types.RegistrationStatusFailed,
				reason: reasonNotImplemented,
				err: ierr.NewError("immovable premise registration is not implemented").
					WithHint("Registration of immovable premises is not supported").
					WithReportableDetails(map[string]any{"premise_id": p.ID}).
					Mark(ierr.ErrNotImplemented),
			}
		}
	default:
		s.logger.Warnw("skipping premise of unknown kind", "premise_id", p.ID, "company_id", c.ID)
		s.count(registrationResultSkipped)
		return registration{
			result: registrationResultSkipped,
			status: p.Registration.Status,
			reason: reasonUnknownKind,
			err: ierr.NewError("premise kind is unknown").
				WithHint("The premise has no known type and cannot be registered").
				WithReportableDetails(map[string]any{"premise_id": p.ID}).
				Mark(ierr.ErrInvalidOperation),
		}
	}

	claimed, err := s.premises.Transition(ctx, p.ID,
		types.RegistrationStatusUnregistered, types.RegistrationStatusRegistering, "")
	if err != nil {
		s.logger.Errorw("failed to claim premise for registration", "premise_id", p.ID, "error", err)
		s.count(registrationResultSkipped)
		return registration{result: registrationResultSkipped, status: p.Registration.Status, reason: reasonClaimFailed, err: err}
	}
	if !claimed {
		s.logger.Debugw("premise claimed elsewhere", "premise_id", p.ID)
		s.count(registrationResultSkipped)
		return registration{
			result: registrationResultSkipped,
			status: p.Registration.Status,
			reason: reasonClaimLost,
			err: ierr.NewError("premise registration already in progress").
				WithHint("The premise is already being registered").
				WithReportableDetails(map[string]any{"premise_id": p.ID}).
				Mark(ierr.ErrInvalidOperation),
		}
	}

	r := call(ctx)
	if _, err := s.premises.Transition(ctx, p.ID, types.RegistrationStatusRegistering, r.status, r.reason); err != nil {
		s.logger.Errorw("failed to store premise registration outcome",
			"premise_id", p.ID,
			"status", r.status,
			"error", err,
		)
		return registration{result: registrationResultFailed, status: types.RegistrationStatusRegistering, reason: r.reason, err: err}
	}

	if r.result == registrationResultFailed {
		s.logger.Warnw("premise registration failed",
			"premise_id", p.ID,
			"company_id", c.ID,
			"reason", r.reason,
		)
	} else {
		s.logger.Infow("premise registered", "premise_id", p.ID, "company_id", c.ID)
	}
	s.count(r.result)
	return r
}

func (s *premiseRegistrar) registerMovable(
	ctx context.Context,
	c *company.Company,
	handle *vault.Handle,
	p *premise.Premise,
	kind premise.Movable,
) registration {
	notes := p.Notes
	if notes == "" {
		notes = defaultPremiseNotes
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Authority.Timeout)
	defer cancel()

	accepted, err := handle.Client.RegisterMovablePremise(callCtx, authority.MovablePremiseRegistration{
		TaxID:                     c.TaxID,
		PremiseAuthorityID:        p.AuthorityID,
		Subtype:                   kind.Subtype,
		ValidityFrom:              p.ValidityFrom,
		SoftwareSupplierTaxNumber: s.cfg.Authority.SoftwareSupplierTaxNumber,
		Notes:                     notes,
	})
	if err != nil {
		return registration{
			result: registrationResultFailed,
			status: types.RegistrationStatusFailed,
			reason: err.Error(),
			err: ierr.WithError(err).
				WithHint("The tax authority could not register the premise").
				WithReportableDetails(map[string]any{"premise_id": p.ID}).
				Mark(ierr.ErrAuthoritySubmission),
		}
	}
	if !accepted {
		return registration{
			result: registrationResultFailed,
			status: types.RegistrationStatusFailed,
			reason: reasonRejected,
			err: ierr.NewError("premise registration rejected").
				WithHint("The tax authority rejected the premise registration").
				WithReportableDetails(map[string]any{"premise_id": p.ID}).
				Mark(ierr.ErrAuthoritySubmission),
		}
	}
	return registration{result: registrationResultRegistered, status: types.RegistrationStatusRegistered}
}

func (s *premiseRegistrar) count(result string) {
	if s.metrics != nil {
		s.metrics.PremiseRegistrations.WithLabelValues(result).Inc()
	}
}

func (s *premiseRegistrar) Register(ctx context.Context, auth types.AuthContext, premiseID string) (*dto.PremiseResponse, error) {
	p, c, err := s.loadForRegistration(ctx, auth, premiseID)
	if err != nil {
		return nil, err
	}

	if p.Registration.Status != types.RegistrationStatusUnregistered {
		return nil, ierr.NewErrorf("premise is %s", p.Registration.Status).
			WithHintf("Premise is already %s", p.Registration.Status).
			WithReportableDetails(map[string]any{
				"premise_id": p.ID,
				"status":     p.Registration.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	return s.registerOne(ctx, c, p)
}

func (s *premiseRegistrar) Retry(ctx context.Context, auth types.AuthContext, premiseID string) (*dto.PremiseResponse, error) {
	p, c, err := s.loadForRegistration(ctx, auth, premiseID)
	if err != nil {
		return nil, err
	}

	from := p.Registration.Status
	if from != types.RegistrationStatusFailed && from != types.RegistrationStatusRegistering {
		return nil, ierr.NewErrorf("premise is %s", from).
			WithHint("Only failed or stuck registrations can be retried").
			WithReportableDetails(map[string]any{
				"premise_id": p.ID,
				"status":     from,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	reset, err := s.premises.Transition(ctx, p.ID, from, types.RegistrationStatusUnregistered, "")
	if err != nil {
		return nil, err
	}
	if !reset {
		return nil, ierr.NewError("premise status changed concurrently").
			WithHint("The premise registration changed, reload and try again").
			WithReportableDetails(map[string]any{"premise_id": p.ID}).
			Mark(ierr.ErrInvalidOperation)
	}
	s.logger.Infow("premise registration reset", "premise_id", p.ID, "from", from)

	p.Registration.Status = types.RegistrationStatusUnregistered
	p.Registration.Reason = ""
	return s.registerOne(ctx, c, p)
}

func (s *premiseRegistrar) registerOne(ctx context.Context, c *company.Company, p *premise.Premise) (*dto.PremiseResponse, error) {
	handle, err := s.vault.Get(c.ID)
	if err != nil {
		return nil, ierr.NewErrorf("no signing credential for company %s: %v", c.ID, err).
			WithHint("No signing credential is loaded for this company").
			WithReportableDetails(map[string]any{"company_id": c.ID}).
			Mark(ierr.ErrNoSigningCredential)
	}

	if r := s.register(ctx, c, handle, p); r.err != nil {
		return nil, r.err
	}

	updated, err := s.premises.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewPremiseResponse(updated), nil
}

// loadForRegistration checks the caller may register the premise and that its company is active
func (s *premiseRegistrar) loadForRegistration(ctx context.Context, auth types.AuthContext, premiseID string) (*premise.Premise, *company.Company, error) {
	if err := requireRole(auth, types.UserRoleOrganizationAdmin, types.UserRoleAdmin); err != nil {
		return nil, nil, err
	}

	p, err := s.premises.Get(ctx, premiseID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil, ierr.WithError(err).Mark(premise.ErrPremiseNotFound)
		}
		return nil, nil, err
	}
	if err := requireCompany(auth, p.CompanyID); err != nil {
		return nil, nil, err
	}

	c, err := s.companies.Get(ctx, p.CompanyID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil, ierr.WithError(err).Mark(company.ErrCompanyNotFound)
		}
		return nil, nil, err
	}
	if !c.IsActive {
		return nil, nil, ierr.WithError(company.ErrCompanyDisabled).
			WithHint("Company is not active").
			WithReportableDetails(map[string]any{"company_id": c.ID}).
			Mark(ierr.ErrDisabled)
	}
	return p, c, nil
}

func (s *premiseRegistrar) List(ctx context.Context, auth types.AuthContext) (*dto.ListPremisesResponse, error) {
	if err := requireActive(auth); err != nil {
		return nil, err
	}

	var (
		premises []*premise.Premise
		err      error
	)
	if auth.IsAdmin() {
		premises, err = s.premises.List(ctx)
	} else {
		premises, err = s.premises.ListByCompany(ctx, auth.CompanyID)
	}
	if err != nil {
		return nil, err
	}

	items := lo.Map(premises, func(p *premise.Premise, _ int) *dto.PremiseResponse {
		return dto.NewPremiseResponse(p)
	})
	resp := types.NewListResponse(items, len(items), len(items), 0)
	return &resp, nil
}
