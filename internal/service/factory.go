package service

import (
	"context"
	"time"

	"github.com/flexprice/fiscal/internal/config"
	"github.com/flexprice/fiscal/internal/domain/company"
	"github.com/flexprice/fiscal/internal/domain/device"
	"github.com/flexprice/fiscal/internal/domain/invoice"
	"github.com/flexprice/fiscal/internal/domain/premise"
	"github.com/flexprice/fiscal/internal/domain/user"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/metrics"
	"github.com/flexprice/fiscal/internal/vault"
)

// CredentialVault is the part of the vault the services depend on
type CredentialVault interface {
	Get(companyID string) (*vault.Handle, error)
	Load(ctx context.Context) vault.LoadSummary
	LoadedAt() time.Time
}

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger  *logger.Logger
	Config  *config.Configuration
	Metrics *metrics.Metrics
	Vault   CredentialVault

	// Repositories
	CompanyRepo company.Repository
	PremiseRepo premise.Repository
	DeviceRepo  device.Repository
	InvoiceRepo invoice.Repository
	UserRepo    user.Repository
}

// NewServiceParams creates a new ServiceParams instance
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	metrics *metrics.Metrics,
	vault *vault.Vault,
	companyRepo company.Repository,
	premiseRepo premise.Repository,
	deviceRepo device.Repository,
	invoiceRepo invoice.Repository,
	userRepo user.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:      logger,
		Config:      config,
		Metrics:     metrics,
		Vault:       vault,
		CompanyRepo: companyRepo,
		PremiseRepo: premiseRepo,
		DeviceRepo:  deviceRepo,
		InvoiceRepo: invoiceRepo,
		UserRepo:    userRepo,
	}
}
