package api

import (
	v1 "github.com/flexprice/fiscal/internal/api/v1"
	"github.com/flexprice/fiscal/internal/auth"
	"github.com/flexprice/fiscal/internal/config"
	"github.com/flexprice/fiscal/internal/domain/user"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/metrics"
	"github.com/flexprice/fiscal/internal/rest/middleware"
	"github.com/flexprice/fiscal/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health      *v1.HealthHandler
	Invoice     *v1.InvoiceHandler
	Premise     *v1.PremiseHandler
	Certificate *v1.CertificateHandler
}

func NewRouter(
	handlers Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	metrics *metrics.Metrics,
	verifier *auth.TokenVerifier,
	users user.Repository,
) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.ErrorHandler(logger),
	)

	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1Group := router.Group("/v1")
	v1Group.Use(middleware.AuthenticateMiddleware(verifier, users, logger))

	invoices := v1Group.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.IssueInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/all", middleware.RequireRole(types.UserRoleAdmin), handlers.Invoice.ListAllInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
	}

	premises := v1Group.Group("/premises")
	{
		premises.GET("", handlers.Premise.ListPremises)
		premises.POST("/register", middleware.RequireRole(types.UserRoleAdmin), handlers.Premise.RegisterAll)
		premises.POST("/:id/register", handlers.Premise.RegisterPremise)
		premises.POST("/:id/retry", handlers.Premise.RetryPremise)
	}

	certificates := v1Group.Group("/certificates")
	{
		certificates.POST("/refresh", middleware.RequireRole(types.UserRoleAdmin), handlers.Certificate.RefreshCertificates)
	}

	return router
}
