package dto

import (
	"time"

	"github.com/flexprice/fiscal/internal/vault"
)

// CertificateRefreshResponse reports the credential set after a reload
type CertificateRefreshResponse struct {
	vault.LoadSummary
	LoadedAt time.Time `json:"loaded_at"`
}
