package service

import (
	"github.com/flexprice/fiscal/internal/domain/company"
	"github.com/flexprice/fiscal/internal/domain/premise"
	"github.com/flexprice/fiscal/internal/testutil"
	"github.com/flexprice/fiscal/internal/types"
	"github.com/flexprice/fiscal/internal/vault"
)

// serviceSuite wires the services against the in-memory stores and a real vault
type serviceSuite struct {
	testutil.BaseServiceTestSuite
	vault  *vault.Vault
	params ServiceParams
}

func (s *serviceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()

	s.vault = vault.New(
		stores.CompanyRepo,
		s.GetEncryption(),
		s.GetAuthorityFactory(),
		s.GetConfig(),
		s.GetLogger(),
		s.GetMetrics(),
	)
	s.params = ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		Metrics:     s.GetMetrics(),
		Vault:       s.vault,
		CompanyRepo: stores.CompanyRepo,
		PremiseRepo: stores.PremiseRepo,
		DeviceRepo:  stores.DeviceRepo,
		InvoiceRepo: stores.InvoiceRepo,
		UserRepo:    stores.UserRepo,
	}
}

func (s *serviceSuite) loadVault() {
	summary := s.vault.Load(s.GetContext())
	s.Require().Empty(summary.Error)
}

// fiscalCompany creates an active company with a loadable certificate
func (s *serviceSuite) fiscalCompany(taxID int64) *company.Company {
	return s.CreateCompany(taxID, true, "cert-password")
}

func (s *serviceSuite) orgAdmin(companyID string) types.AuthContext {
	return s.CreateUser(companyID, types.UserRoleOrganizationAdmin).AuthContext()
}

func movable() premise.Kind {
	return premise.Movable{Subtype: types.MovablePremiseTypeA}
}
