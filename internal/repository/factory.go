package repository

import (
	"github.com/flexprice/fiscal/internal/domain/company"
	"github.com/flexprice/fiscal/internal/domain/device"
	"github.com/flexprice/fiscal/internal/domain/invoice"
	"github.com/flexprice/fiscal/internal/domain/premise"
	"github.com/flexprice/fiscal/internal/domain/user"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/postgres"
	postgresRepo "github.com/flexprice/fiscal/internal/repository/postgres"
)

func NewCompanyRepository(db *postgres.DB, logger *logger.Logger) company.Repository {
	return postgresRepo.NewCompanyRepository(db, logger)
}

func NewPremiseRepository(db *postgres.DB, logger *logger.Logger) premise.Repository {
	return postgresRepo.NewPremiseRepository(db, logger)
}

func NewDeviceRepository(db *postgres.DB, logger *logger.Logger) device.Repository {
	return postgresRepo.NewDeviceRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewUserRepository(db *postgres.DB, logger *logger.Logger) user.Repository {
	return postgresRepo.NewUserRepository(db, logger)
}
