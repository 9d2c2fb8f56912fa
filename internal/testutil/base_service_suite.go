package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/flexprice/fiscal/internal/config"
	"github.com/flexprice/fiscal/internal/domain/company"
	"github.com/flexprice/fiscal/internal/domain/device"
	"github.com/flexprice/fiscal/internal/domain/premise"
	"github.com/flexprice/fiscal/internal/domain/user"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/metrics"
	"github.com/flexprice/fiscal/internal/security"
	"github.com/flexprice/fiscal/internal/types"
	"github.com/flexprice/fiscal/internal/validator"
	"github.com/stretchr/testify/suite"
)

// TestMasterKey is the hex master key used by every test configuration
const TestMasterKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// Stores holds all the repository interfaces for testing
type Stores struct {
	CompanyRepo *InMemoryCompanyStore
	PremiseRepo *InMemoryPremiseStore
	DeviceRepo  *InMemoryDeviceStore
	InvoiceRepo *InMemoryInvoiceStore
	UserRepo    *InMemoryUserStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	stores     Stores
	logger     *logger.Logger
	config     *config.Configuration
	metrics    *metrics.Metrics
	encryption security.EncryptionService
	factory    *FakeAuthorityFactory
	now        time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()
	s.logger = logger.NewNopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.now = time.Now().UTC()

	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = "test-secret"
	cfg.Vault.MasterKey = TestMasterKey
	cfg.Vault.CertificateDir = s.T().TempDir()
	cfg.Authority.Timeout = 200 * time.Millisecond
	cfg.Authority.SoftwareSupplierTaxNumber = 10000000
	s.config = cfg

	encryption, err := security.NewEncryptionService(cfg)
	s.Require().NoError(err)
	s.encryption = encryption

	s.metrics = metrics.NewMetrics()
	s.factory = NewFakeAuthorityFactory()
	s.stores = Stores{
		CompanyRepo: NewInMemoryCompanyStore(),
		PremiseRepo: NewInMemoryPremiseStore(),
		DeviceRepo:  NewInMemoryDeviceStore(),
		InvoiceRepo: NewInMemoryInvoiceStore(),
		UserRepo:    NewInMemoryUserStore(),
	}
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.CompanyRepo.Clear()
	s.stores.PremiseRepo.Clear()
	s.stores.DeviceRepo.Clear()
	s.stores.InvoiceRepo.Clear()
	s.stores.UserRepo.Clear()
}

// CreateCompany stores an active or inactive company. A non empty password
// is sealed into the company's cert key and a certificate file is written.
func (s *BaseServiceTestSuite) CreateCompany(taxID int64, active bool, password string) *company.Company {
	c := &company.Company{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COMPANY),
		Name:      "company " + strconv.FormatInt(taxID, 10),
		TaxID:     taxID,
		IsActive:  active,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}

	envelope, err := s.encryption.Seal(password)
	s.Require().NoError(err)
	c.CertKey = envelope

	if password != "" {
		s.WriteCertificate(taxID)
	}

	s.Require().NoError(s.stores.CompanyRepo.Add(s.ctx, c))
	return c
}

// WriteCertificate creates the certificate file the vault looks for
func (s *BaseServiceTestSuite) WriteCertificate(taxID int64) {
	path := filepath.Join(s.config.Vault.CertificateDir, strconv.FormatInt(taxID, 10)+".p12")
	s.Require().NoError(os.WriteFile(path, []byte("p12"), 0o600))
}

// CreatePremise stores a premise of the given kind and registration status
func (s *BaseServiceTestSuite) CreatePremise(companyID, authorityID string, kind premise.Kind, status types.RegistrationStatus) *premise.Premise {
	p := &premise.Premise{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PREMISE),
		CompanyID:    companyID,
		AuthorityID:  authorityID,
		ValidityFrom: s.now,
		Kind:         kind,
		Registration: premise.Registration{Status: status, UpdatedAt: s.now},
		CreatedAt:    s.now,
	}
	s.Require().NoError(s.stores.PremiseRepo.Add(s.ctx, p))
	return p
}

// CreateDevice stores a device with the given counter
func (s *BaseServiceTestSuite) CreateDevice(premiseID, externalID string, counter int64, active bool) *device.Device {
	d := &device.Device{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DEVICE),
		ExternalID:      externalID,
		PremiseID:       premiseID,
		SequenceCounter: counter,
		IsActive:        active,
		CreatedAt:       s.now,
	}
	s.Require().NoError(s.stores.DeviceRepo.Add(s.ctx, d))
	return d
}

// CreateUser stores an active user with the given role
func (s *BaseServiceTestSuite) CreateUser(companyID string, role types.UserRole) *user.User {
	u := &user.User{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USER),
		Username:  "user",
		Email:     types.GenerateUUID() + "@example.com",
		Role:      role,
		CompanyID: companyID,
		Active:    true,
		CreatedAt: s.now,
	}
	s.Require().NoError(s.stores.UserRepo.Add(s.ctx, u))
	return u
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetMetrics returns the metrics of the current test
func (s *BaseServiceTestSuite) GetMetrics() *metrics.Metrics {
	return s.metrics
}

// GetEncryption returns the encryption service keyed with TestMasterKey
func (s *BaseServiceTestSuite) GetEncryption() security.EncryptionService {
	return s.encryption
}

// GetAuthorityFactory returns the fake authority factory
func (s *BaseServiceTestSuite) GetAuthorityFactory() *FakeAuthorityFactory {
	return s.factory
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}
