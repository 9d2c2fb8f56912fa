// Package vault keeps the decrypted signing credentials of active companies
// in memory. Decrypted material is never written anywhere.
package vault

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flexprice/fiscal/internal/authority"
	"github.com/flexprice/fiscal/internal/config"
	"github.com/flexprice/fiscal/internal/domain/company"
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/metrics"
	"github.com/flexprice/fiscal/internal/security"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

// Skip reasons reported in LoadSummary and the failure metric
const (
	ReasonCertificateMissing = "certificate_missing"
	ReasonDecryptionFailed   = "decryption_failed"
	ReasonEmptyPassword      = "empty_password"
	ReasonClientFailed       = "client_failed"
)

// Secret is a decrypted certificate password. It formats as a placeholder.
type Secret string

func (Secret) String() string   { return "[REDACTED]" }
func (Secret) GoString() string { return "[REDACTED]" }

// MarshalText keeps the secret out of JSON and structured logs
func (Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Reveal returns the plaintext
func (s Secret) Reveal() string { return string(s) }

// Handle is the live signing credential of one company
type Handle struct {
	CompanyID string
	TaxID     int64
	Secret    Secret
	Client    authority.Client
}

// LoadSummary describes the outcome of a Load
type LoadSummary struct {
	Loaded  []string         `json:"loaded"`
	Skipped []SkippedCompany `json:"skipped"`

	// Error is set when the company list could not be read, the previous
	// generation is kept in that case
	Error string `json:"error,omitempty"`
}

type SkippedCompany struct {
	CompanyID string `json:"company_id"`
	TaxID     int64  `json:"tax_id"`
	Reason    string `json:"reason"`
}

type generation struct {
	handles  map[string]*Handle
	loadedAt time.Time
}

// Vault holds the current generation of credentials. Readers always see a
// complete generation, Load builds a new one and swaps it in.
type Vault struct {
	companies  company.Repository
	encryption security.EncryptionService
	factory    authority.Factory
	cfg        *config.Configuration
	logger     *logger.Logger
	metrics    *metrics.Metrics

	current atomic.Pointer[generation]
	loadMu  sync.Mutex
}

func New(
	companies company.Repository,
	encryption security.EncryptionService,
	factory authority.Factory,
	cfg *config.Configuration,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Vault {
	v := &Vault{
		companies:  companies,
		encryption: encryption,
		factory:    factory,
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
	}
	v.current.Store(&generation{handles: map[string]*Handle{}})
	return v
}

type loadResult struct {
	handle  *Handle
	skipped *SkippedCompany
}

// Load re-scans all active companies and replaces the credential set.
// Per company failures are logged and skipped, Load never fails.
func (v *Vault) Load(ctx context.Context) LoadSummary {
	v.loadMu.Lock()
	defer v.loadMu.Unlock()

	companies, err := v.companies.ListActive(ctx)
	if err != nil {
		v.logger.Errorw("failed to list active companies, keeping current credentials",
			"error", err,
			"loaded", len(v.current.Load().handles),
		)
		return LoadSummary{Loaded: v.List(), Skipped: []SkippedCompany{}, Error: err.Error()}
	}

	p := pool.NewWithResults[loadResult]().WithMaxGoroutines(v.concurrency())
	for _, c := range companies {
		p.Go(func() loadResult {
			return v.loadCompany(ctx, c)
		})
	}
	results := p.Wait()

	next := &generation{handles: make(map[string]*Handle, len(results)), loadedAt: time.Now().UTC()}
	summary := LoadSummary{Loaded: []string{}, Skipped: []SkippedCompany{}}
	for _, r := range results {
		if r.skipped != nil {
			summary.Skipped = append(summary.Skipped, *r.skipped)
			continue
		}
		next.handles[r.handle.CompanyID] = r.handle
	}
	v.current.Store(next)

	summary.Loaded = v.List()
	sort.Slice(summary.Skipped, func(i, j int) bool {
		return summary.Skipped[i].CompanyID < summary.Skipped[j].CompanyID
	})

	if v.metrics != nil {
		v.metrics.CredentialsLoaded.Set(float64(len(next.handles)))
	}
	v.logger.Infow("loaded certificates",
		"loaded", len(summary.Loaded),
		"skipped", len(summary.Skipped),
	)
	return summary
}

func (v *Vault) loadCompany(ctx context.Context, c *company.Company) loadResult {
	skip := func(reason string, err error) loadResult {
		fields := []interface{}{"company_id", c.ID, "tax_id", c.TaxID, "reason", reason}
		if err != nil {
			fields = append(fields, "error", err)
		}
		if reason == ReasonEmptyPassword {
			v.logger.Debugw("skipping company without certificate password", fields...)
		} else {
			v.logger.Warnw("skipping company credential", fields...)
		}
		if v.metrics != nil {
			v.metrics.CredentialLoadFailure.WithLabelValues(reason).Inc()
		}
		return loadResult{skipped: &SkippedCompany{CompanyID: c.ID, TaxID: c.TaxID, Reason: reason}}
	}

	path := v.CertificatePath(c.TaxID)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return skip(ReasonCertificateMissing, err)
	}

	password, err := v.encryption.Open(c.CertKey)
	if err != nil {
		return skip(ReasonDecryptionFailed, err)
	}
	if password == "" {
		return skip(ReasonEmptyPassword, nil)
	}

	client, err := v.factory.NewClient(ctx, authority.Credential{
		CompanyID:       c.ID,
		TaxID:           c.TaxID,
		CertificatePath: path,
		Password:        password,
	})
	if err != nil {
		return skip(ReasonClientFailed, err)
	}

	v.logger.Debugw("loaded certificate", "company_id", c.ID, "tax_id", c.TaxID)
	return loadResult{handle: &Handle{
		CompanyID: c.ID,
		TaxID:     c.TaxID,
		Secret:    Secret(password),
		Client:    client,
	}}
}

// CertificatePath returns where the certificate of a tax id is expected
func (v *Vault) CertificatePath(taxID int64) string {
	return filepath.Join(v.cfg.Vault.CertificateDir, strconv.FormatInt(taxID, 10)+".p12")
}

func (v *Vault) concurrency() int {
	if v.cfg.Vault.LoadConcurrency > 0 {
		return v.cfg.Vault.LoadConcurrency
	}
	return 1
}

// Get returns the handle of a company, ErrNotFound when none is loaded
func (v *Vault) Get(companyID string) (*Handle, error) {
	h, ok := v.current.Load().handles[companyID]
	if !ok {
		return nil, ierr.NewErrorf("no credential loaded for company %s", companyID).
			WithHint("No signing credential is loaded for this company").
			WithReportableDetails(map[string]any{"company_id": companyID}).
			Mark(ierr.ErrNotFound)
	}
	return h, nil
}

// List returns the sorted ids of companies with a loaded credential
func (v *Vault) List() []string {
	ids := lo.Keys(v.current.Load().handles)
	sort.Strings(ids)
	return ids
}

// LoadedAt returns when the current generation was built, zero before the first Load
func (v *Vault) LoadedAt() time.Time {
	return v.current.Load().loadedAt
}
