package service

import (
	"context"

	"github.com/flexprice/fiscal/internal/api/dto"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/types"
)

// CertificateService exposes the credential vault to administrators
type CertificateService interface {
	// Refresh reloads every company credential and reports the new set
	Refresh(ctx context.Context, auth types.AuthContext) (*dto.CertificateRefreshResponse, error)
}

type certificateService struct {
	vault  CredentialVault
	logger *logger.Logger
}

func NewCertificateService(params ServiceParams) CertificateService {
	return &certificateService{
		vault:  params.Vault,
		logger: params.Logger,
	}
}

func (s *certificateService) Refresh(ctx context.Context, auth types.AuthContext) (*dto.CertificateRefreshResponse, error) {
	if err := requireRole(auth, types.UserRoleAdmin); err != nil {
		return nil, err
	}

	s.logger.Infow("refreshing certificates", "user_id", auth.UserID)
	summary := s.vault.Load(ctx)
	return &dto.CertificateRefreshResponse{
		LoadSummary: summary,
		LoadedAt:    s.vault.LoadedAt(),
	}, nil
}
