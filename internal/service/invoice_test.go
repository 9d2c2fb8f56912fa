package service

import (
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/flexprice/fiscal/internal/api/dto"
	"github.com/flexprice/fiscal/internal/domain/company"
	"github.com/flexprice/fiscal/internal/domain/device"
	"github.com/flexprice/fiscal/internal/domain/premise"
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/flexprice/fiscal/internal/numbering"
	"github.com/flexprice/fiscal/internal/testutil"
	"github.com/flexprice/fiscal/internal/types"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	serviceSuite
	service InvoiceService

	testData struct {
		company *company.Company
		premise *premise.Premise
		device  *device.Device
		auth    types.AuthContext
		client  *testutil.FakeAuthorityClient
	}
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.serviceSuite.SetupTest()
	s.service = NewInvoiceService(s.params)
	s.setupTestData()
}

func (s *InvoiceServiceSuite) setupTestData() {
	s.testData.company = s.fiscalCompany(12345678)
	s.testData.premise = s.CreatePremise(s.testData.company.ID, "PP1", movable(), types.RegistrationStatusRegistered)
	s.testData.device = s.CreateDevice(s.testData.premise.ID, "BL1", 5, true)
	s.testData.auth = s.orgAdmin(s.testData.company.ID)
	s.testData.client = s.GetAuthorityFactory().Client(s.testData.company.ID)
	s.loadVault()
}

func (s *InvoiceServiceSuite) request() dto.IssueInvoiceRequest {
	return dto.IssueInvoiceRequest{
		DeviceID:      s.testData.device.ID,
		OperatorTaxID: 87654321,
		Prices: []dto.PriceRequest{
			{Amount: decimal.NewFromInt(100), TaxRate: decimal.NewFromInt(22)},
			{Amount: decimal.NewFromInt(50), TaxRate: decimal.RequireFromString("9.5")},
		},
	}
}

func (s *InvoiceServiceSuite) counter() int64 {
	return s.GetStores().DeviceRepo.Counter(s.GetContext(), s.testData.device.ID)
}

func (s *InvoiceServiceSuite) TestIssueTwoLines() {
	resp, err := s.service.Issue(s.GetContext(), s.testData.auth, s.request())
	s.Require().NoError(err)

	s.Equal(int64(6), resp.Sequence)
	s.Equal("PP1-BL1-6", resp.InvoiceNumber)
	s.True(resp.Total.Equal(decimal.NewFromInt(150)), "total %s", resp.Total)
	s.Equal("zoi-12345678-PP1-BL1-6", resp.Digest)
	s.Equal("eor-PP1-BL1-6", resp.Receipt)
	s.Equal(int64(6), s.counter())

	_, submits, _ := s.testData.client.Calls()
	s.Require().Equal(1, submits)
	sub := s.testData.client.SubmitCalls[0]
	s.False(sub.Subsequent)
	s.Equal(int64(87654321), sub.OperatorTaxID)
	s.Equal(int64(12345678), sub.TaxID)
	s.True(sub.Total.Equal(decimal.NewFromInt(150)))
	s.Require().Len(sub.Taxes, 2)
	s.True(sub.Taxes[0].Rate.Equal(decimal.RequireFromString("9.5")))
	s.True(sub.Taxes[0].TaxableAmount.Equal(decimal.NewFromInt(50)))
	s.True(sub.Taxes[0].TaxAmount.Equal(decimal.RequireFromString("4.75")))
	s.True(sub.Taxes[1].Rate.Equal(decimal.NewFromInt(22)))
	s.True(sub.Taxes[1].TaxableAmount.Equal(decimal.NewFromInt(100)))
	s.True(sub.Taxes[1].TaxAmount.Equal(decimal.NewFromInt(22)))

	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal(resp.InvoiceNumber, stored.InvoiceNumber)
	s.Equal(s.testData.auth.UserID, stored.UserID)
	s.Equal(s.testData.company.ID, stored.CompanyID)
	s.Equal(s.testData.device.ID, stored.DeviceID)

	s.Equal(float64(1), promtest.ToFloat64(s.GetMetrics().InvoicesIssued.WithLabelValues("false")))
}

func (s *InvoiceServiceSuite) TestIssueNumberRoundTrips() {
	resp, err := s.service.Issue(s.GetContext(), s.testData.auth, s.request())
	s.Require().NoError(err)

	n, err := numbering.Parse(resp.InvoiceNumber)
	s.NoError(err)
	s.Equal("PP1", n.PremiseAuthorityID)
	s.Equal("BL1", n.DeviceExternalID)
	s.Equal(resp.Sequence, n.Sequence)
}

func (s *InvoiceServiceSuite) TestIssueSubsequent() {
	issuedAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	req := s.request()
	req.IssuedAt = &issuedAt

	resp, err := s.service.Issue(s.GetContext(), s.testData.auth, req)
	s.Require().NoError(err)

	s.True(resp.IssuedAt.Equal(issuedAt))
	s.Equal(time.UTC, resp.IssuedAt.Location())
	s.True(s.testData.client.SubmitCalls[0].Subsequent)
	s.Equal(float64(1), promtest.ToFloat64(s.GetMetrics().InvoicesIssued.WithLabelValues("true")))
}

func (s *InvoiceServiceSuite) TestIssuePreconditions() {
	other := s.fiscalCompany(11111111)
	otherAdmin := s.orgAdmin(other.ID)

	inactive := s.CreateCompany(22222222, false, "cert-password")
	inactivePremise := s.CreatePremise(inactive.ID, "PP2", movable(), types.RegistrationStatusRegistered)
	inactiveDevice := s.CreateDevice(inactivePremise.ID, "BL2", 5, true)
	inactiveAdmin := s.orgAdmin(inactive.ID)

	disabledDevice := s.CreateDevice(s.testData.premise.ID, "BL3", 5, false)

	pendingPremise := s.CreatePremise(s.testData.company.ID, "PP4", movable(), types.RegistrationStatusUnregistered)
	pendingDevice := s.CreateDevice(pendingPremise.ID, "BL4", 5, true)

	callerInactive := s.testData.auth
	callerInactive.IsActive = false

	tests := []struct {
		name     string
		auth     types.AuthContext
		deviceID string
		check    func(err error) bool
		sentinel error
	}{
		{
			name:     "inactive caller",
			auth:     callerInactive,
			deviceID: s.testData.device.ID,
			check:    ierr.IsPermissionDenied,
		},
		{
			name:     "unknown device",
			auth:     s.testData.auth,
			deviceID: "dev_missing",
			check:    ierr.IsNotFound,
			sentinel: device.ErrDeviceNotFound,
		},
		{
			name:     "disabled device",
			auth:     s.testData.auth,
			deviceID: disabledDevice.ID,
			check:    ierr.IsDisabled,
			sentinel: device.ErrDeviceDisabled,
		},
		{
			name:     "device of another company",
			auth:     otherAdmin,
			deviceID: s.testData.device.ID,
			check:    ierr.IsPermissionDenied,
		},
		{
			name:     "inactive company",
			auth:     inactiveAdmin,
			deviceID: inactiveDevice.ID,
			check:    ierr.IsDisabled,
			sentinel: company.ErrCompanyDisabled,
		},
		{
			name:     "premise not registered yet",
			auth:     s.testData.auth,
			deviceID: pendingDevice.ID,
			check:    ierr.IsInvalidOperation,
			sentinel: premise.ErrRegistrationPending,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			before := s.GetStores().DeviceRepo.Counter(s.GetContext(), tt.deviceID)

			req := s.request()
			req.DeviceID = tt.deviceID
			_, err := s.service.Issue(s.GetContext(), tt.auth, req)

			s.Require().Error(err)
			s.True(tt.check(err), "unexpected error class: %v", err)
			if tt.sentinel != nil {
				s.True(errors.Is(err, tt.sentinel), "missing sentinel: %v", err)
			}
			s.Equal(before, s.GetStores().DeviceRepo.Counter(s.GetContext(), tt.deviceID))
		})
	}

	_, submits, _ := s.testData.client.Calls()
	s.Zero(submits)
}

func (s *InvoiceServiceSuite) TestIssueInvalidRequest() {
	tests := []struct {
		name   string
		mutate func(r *dto.IssueInvoiceRequest)
	}{
		{"no prices", func(r *dto.IssueInvoiceRequest) { r.Prices = nil }},
		{"no device", func(r *dto.IssueInvoiceRequest) { r.DeviceID = "" }},
		{"no operator", func(r *dto.IssueInvoiceRequest) { r.OperatorTaxID = 0 }},
		{"rate above 100", func(r *dto.IssueInvoiceRequest) { r.Prices[0].TaxRate = decimal.NewFromInt(150) }},
		{"negative rate", func(r *dto.IssueInvoiceRequest) { r.Prices[0].TaxRate = decimal.NewFromInt(-1) }},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := s.request()
			tt.mutate(&req)
			_, err := s.service.Issue(s.GetContext(), s.testData.auth, req)
			s.True(ierr.IsValidation(err), "expected validation error, got %v", err)
		})
	}
	s.Equal(int64(5), s.counter())
}

func (s *InvoiceServiceSuite) TestIssueAuthorityTimeoutBurnsSequence() {
	s.testData.client.SubmitDelay = time.Second

	_, err := s.service.Issue(s.GetContext(), s.testData.auth, s.request())

	s.Require().Error(err)
	s.True(ierr.IsAuthoritySubmission(err))
	s.Equal(int64(6), s.counter())
	s.Equal(float64(1), promtest.ToFloat64(s.GetMetrics().SequenceBurned.WithLabelValues(burnTimeout)))

	count, err := s.GetStores().InvoiceRepo.Count(s.GetContext(), types.NewInvoiceFilter())
	s.NoError(err)
	s.Zero(count)
}

func (s *InvoiceServiceSuite) TestIssueRejectionDoesNotReuseSequence() {
	s.testData.client.DigestErr = errors.New("signing gateway unavailable")

	_, err := s.service.Issue(s.GetContext(), s.testData.auth, s.request())
	s.True(ierr.IsAuthoritySubmission(err))
	s.Equal(float64(1), promtest.ToFloat64(s.GetMetrics().SequenceBurned.WithLabelValues(burnDigest)))

	s.testData.client.DigestErr = nil
	resp, err := s.service.Issue(s.GetContext(), s.testData.auth, s.request())
	s.Require().NoError(err)
	s.Equal(int64(7), resp.Sequence)
	s.Equal("PP1-BL1-7", resp.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestIssueSubmitError() {
	s.testData.client.SubmitErr = errors.New("connection reset")

	_, err := s.service.Issue(s.GetContext(), s.testData.auth, s.request())
	s.True(ierr.IsAuthoritySubmission(err))
	s.Equal(int64(6), s.counter())
	s.Equal(float64(1), promtest.ToFloat64(s.GetMetrics().SequenceBurned.WithLabelValues(burnSubmit)))
}

func (s *InvoiceServiceSuite) TestIssueWithoutCredential() {
	c := s.CreateCompany(33333333, true, "")
	p := s.CreatePremise(c.ID, "PP5", movable(), types.RegistrationStatusRegistered)
	d := s.CreateDevice(p.ID, "BL5", 0, true)
	s.loadVault()

	req := s.request()
	req.DeviceID = d.ID
	_, err := s.service.Issue(s.GetContext(), s.orgAdmin(c.ID), req)

	s.True(ierr.IsNoSigningCredential(err))
	s.False(ierr.IsNotFound(err))
	s.Equal(int64(1), s.GetStores().DeviceRepo.Counter(s.GetContext(), d.ID))
	s.Equal(float64(1), promtest.ToFloat64(s.GetMetrics().SequenceBurned.WithLabelValues(burnNoCredential)))
}

func (s *InvoiceServiceSuite) TestIssueFailedPremiseMayIssue() {
	p := s.CreatePremise(s.testData.company.ID, "PP6", movable(), types.RegistrationStatusFailed)
	d := s.CreateDevice(p.ID, "BL6", 0, true)

	req := s.request()
	req.DeviceID = d.ID
	resp, err := s.service.Issue(s.GetContext(), s.testData.auth, req)
	s.Require().NoError(err)
	s.Equal("PP6-BL6-1", resp.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestIssuePersistenceFailure() {
	s.GetStores().InvoiceRepo.CreateErr = errors.New("connection refused")

	_, err := s.service.Issue(s.GetContext(), s.testData.auth, s.request())

	s.Require().Error(err)
	s.True(ierr.Is(err, ierr.ErrDatabase))
	s.False(ierr.IsAuthoritySubmission(err))
	_, submits, _ := s.testData.client.Calls()
	s.Equal(1, submits)
}

func (s *InvoiceServiceSuite) TestConcurrentIssueProducesDistinctNumbers() {
	const n = 25
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []string
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := s.service.Issue(s.GetContext(), s.testData.auth, s.request())
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers = append(numbers, resp.InvoiceNumber)
		}()
	}
	wg.Wait()

	s.Empty(errs)
	s.Len(lo.Uniq(numbers), n)
	s.Equal(int64(5+n), s.counter())
}

func (s *InvoiceServiceSuite) TestGetInvoice() {
	resp, err := s.service.Issue(s.GetContext(), s.testData.auth, s.request())
	s.Require().NoError(err)

	other := s.fiscalCompany(44444444)
	admin := s.CreateUser(other.ID, types.UserRoleAdmin).AuthContext()

	tests := []struct {
		name    string
		auth    types.AuthContext
		wantErr func(error) bool
	}{
		{"organization admin of the company", s.testData.auth, nil},
		{"system admin", admin, nil},
		{"default role", s.CreateUser(s.testData.company.ID, types.UserRoleDefault).AuthContext(), ierr.IsPermissionDenied},
		{"organization admin of another company", s.orgAdmin(other.ID), ierr.IsPermissionDenied},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, err := s.service.Get(s.GetContext(), tt.auth, resp.ID)
			if tt.wantErr != nil {
				s.True(tt.wantErr(err), "unexpected error: %v", err)
				return
			}
			s.Require().NoError(err)
			s.Equal(resp.InvoiceNumber, got.InvoiceNumber)
			s.Equal(resp.Receipt, got.Receipt)
		})
	}

	_, err = s.service.Get(s.GetContext(), s.testData.auth, "inv_missing")
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestListInvoices() {
	second := s.CreateDevice(s.testData.premise.ID, "BL2", 0, true)
	for i := 0; i < 3; i++ {
		_, err := s.service.Issue(s.GetContext(), s.testData.auth, s.request())
		s.Require().NoError(err)
	}
	req := s.request()
	req.DeviceID = second.ID
	_, err := s.service.Issue(s.GetContext(), s.testData.auth, req)
	s.Require().NoError(err)

	other := s.fiscalCompany(55555555)
	otherAdmin := s.orgAdmin(other.ID)

	s.Run("own company", func() {
		resp, err := s.service.List(s.GetContext(), s.testData.auth, nil)
		s.Require().NoError(err)
		s.Len(resp.Items, 4)
		s.Equal(4, resp.Pagination.Total)
	})

	s.Run("device filter and pagination", func() {
		filter := types.NewInvoiceFilter()
		filter.DeviceID = s.testData.device.ID
		filter.Limit = lo.ToPtr(2)
		resp, err := s.service.List(s.GetContext(), s.testData.auth, filter)
		s.Require().NoError(err)
		s.Len(resp.Items, 2)
		s.Equal(3, resp.Pagination.Total)
		s.Equal(2, resp.Pagination.Limit)
	})

	s.Run("default role is denied", func() {
		user := s.CreateUser(s.testData.company.ID, types.UserRoleDefault).AuthContext()
		_, err := s.service.List(s.GetContext(), user, nil)
		s.True(ierr.IsPermissionDenied(err))
	})

	s.Run("company id cannot be widened", func() {
		filter := types.NewInvoiceFilter()
		filter.CompanyID = s.testData.company.ID
		resp, err := s.service.List(s.GetContext(), otherAdmin, filter)
		s.Require().NoError(err)
		s.Empty(resp.Items)
	})

	s.Run("list all requires admin", func() {
		_, err := s.service.ListAll(s.GetContext(), s.testData.auth, nil)
		s.True(ierr.IsPermissionDenied(err))

		admin := s.CreateUser(other.ID, types.UserRoleAdmin).AuthContext()
		resp, err := s.service.ListAll(s.GetContext(), admin, nil)
		s.Require().NoError(err)
		s.Len(resp.Items, 4)
	})

	s.Run("lookup by number", func() {
		filter := types.NewInvoiceFilter()
		filter.InvoiceNumber = "PP1-BL1-7"
		resp, err := s.service.List(s.GetContext(), s.testData.auth, filter)
		s.Require().NoError(err)
		s.Require().Len(resp.Items, 1)
		s.Equal(int64(7), resp.Items[0].Sequence)
	})

	s.Run("malformed number", func() {
		filter := types.NewInvoiceFilter()
		filter.InvoiceNumber = "PP1-BL1"
		_, err := s.service.List(s.GetContext(), s.testData.auth, filter)
		s.True(ierr.IsValidation(err))
	})

	s.Run("invalid limit", func() {
		filter := types.NewInvoiceFilter()
		filter.Limit = lo.ToPtr(0)
		_, err := s.service.List(s.GetContext(), s.testData.auth, filter)
		s.True(ierr.IsValidation(err))
	})
}
