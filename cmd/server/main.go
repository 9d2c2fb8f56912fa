package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flexprice/fiscal/internal/api"
	v1 "github.com/flexprice/fiscal/internal/api/v1"
	"github.com/flexprice/fiscal/internal/auth"
	"github.com/flexprice/fiscal/internal/authority/gateway"
	"github.com/flexprice/fiscal/internal/config"
	"github.com/flexprice/fiscal/internal/domain/user"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/metrics"
	"github.com/flexprice/fiscal/internal/postgres"
	"github.com/flexprice/fiscal/internal/repository"
	"github.com/flexprice/fiscal/internal/security"
	"github.com/flexprice/fiscal/internal/service"
	"github.com/flexprice/fiscal/internal/types"
	"github.com/flexprice/fiscal/internal/validator"
	"github.com/flexprice/fiscal/internal/vault"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

const (
	shutdownTimeout = 15 * time.Second

	// startTimeout covers the vault load and the startup premise registration
	startTimeout = 2 * time.Minute
)

func init() {
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	opts = append(opts,
		fx.Provide(
			config.NewConfig,

			logger.NewLogger,

			metrics.NewMetrics,

			postgres.NewDB,

			repository.NewCompanyRepository,
			repository.NewPremiseRepository,
			repository.NewDeviceRepository,
			repository.NewInvoiceRepository,
			repository.NewUserRepository,

			security.NewEncryptionService,
			gateway.NewFactory,
			vault.New,

			auth.NewTokenVerifier,
		),
	)

	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewInvoiceService,
			service.NewPremiseRegistrar,
			service.NewCertificateService,
		),
	)

	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			validator.NewValidator,
			closeDB,
			startServer,
		),
	)

	opts = append(opts, fx.StartTimeout(startTimeout))

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	v *vault.Vault,
	invoiceService service.InvoiceService,
	registrar service.PremiseRegistrar,
	certificateService service.CertificateService,
) api.Handlers {
	return api.Handlers{
		Health:      v1.NewHealthHandler(v, logger),
		Invoice:     v1.NewInvoiceHandler(invoiceService, logger),
		Premise:     v1.NewPremiseHandler(registrar, logger),
		Certificate: v1.NewCertificateHandler(certificateService, logger),
	}
}

func provideRouter(
	handlers api.Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	m *metrics.Metrics,
	verifier *auth.TokenVerifier,
	users user.Repository,
) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, m, verifier, users)
}

func closeDB(lc fx.Lifecycle, db *postgres.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	v *vault.Vault,
	registrar service.PremiseRegistrar,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		prepareIssuance(lc, v, registrar, log)
		startAPIServer(lc, r, cfg, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

// prepareIssuance fills the vault and registers pending premises before the
// server hook runs, so the first request already sees registered premises.
func prepareIssuance(
	lc fx.Lifecycle,
	v service.CredentialVault,
	registrar service.PremiseRegistrar,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			loaded := v.Load(ctx)
			log.Infow("credential vault ready",
				"loaded", len(loaded.Loaded),
				"skipped", len(loaded.Skipped),
			)

			summary := registrar.RegisterAll(ctx)
			log.Infow("startup premise registration done",
				"registered", summary.Registered,
				"failed", summary.Failed,
				"skipped", summary.Skipped,
			)
			return nil
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	})
}
