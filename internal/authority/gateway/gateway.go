// Package gateway implements the authority client over a mutual TLS JSON
// gateway. Each company authenticates with its own PKCS#12 certificate.
package gateway

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/flexprice/fiscal/internal/authority"
	"github.com/flexprice/fiscal/internal/config"
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/flexprice/fiscal/internal/httpclient"
	"github.com/flexprice/fiscal/internal/logger"
	"software.sslmate.com/src/go-pkcs12"
)

const (
	pathDigest         = "/v1/digest"
	pathInvoices       = "/v1/invoices"
	pathMovablePremise = "/v1/premises/movable"
)

type factory struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

// NewFactory returns a factory building gateway clients for the configured environment
func NewFactory(cfg *config.Configuration, logger *logger.Logger) authority.Factory {
	return &factory{cfg: cfg, logger: logger}
}

func (f *factory) NewClient(ctx context.Context, cred authority.Credential) (authority.Client, error) {
	cert, err := loadCertificate(cred.CertificatePath, cred.Password)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout: f.cfg.Authority.Timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			},
		},
	}

	f.logger.Debugw("built authority client",
		"company_id", cred.CompanyID,
		"tax_id", cred.TaxID,
		"production", f.cfg.Authority.Production,
	)

	return newClient(httpclient.NewClient(httpClient), f.cfg.Authority.BaseURL(), cred.TaxID), nil
}

func loadCertificate(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, ierr.WithError(err).
			WithHint("Certificate file could not be read").
			WithReportableDetails(map[string]any{"path": path}).
			Mark(ierr.ErrNotFound)
	}

	// authority bundles carry the issuing CA chain next to the company certificate
	key, leaf, caCerts, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return tls.Certificate{}, ierr.WithError(err).
			WithHint("Certificate could not be opened with the stored password").
			Mark(ierr.ErrDecryption)
	}

	chain := make([][]byte, 0, len(caCerts)+1)
	chain = append(chain, leaf.Raw)
	for _, ca := range caCerts {
		chain = append(chain, ca.Raw)
	}

	return tls.Certificate{
		Certificate: chain,
		PrivateKey:  key,
		Leaf:        leaf,
	}, nil
}

type client struct {
	http    httpclient.Client
	baseURL string
	taxID   int64
}

func newClient(http httpclient.Client, baseURL string, taxID int64) *client {
	return &client{http: http, baseURL: strings.TrimRight(baseURL, "/"), taxID: taxID}
}

type digestPayload struct {
	TaxID              int64  `json:"tax_id"`
	IssuedAt           string `json:"issued_at"`
	InvoiceNumber      string `json:"invoice_number"`
	PremiseAuthorityID string `json:"business_premise_id"`
	DeviceExternalID   string `json:"electronic_device_id"`
	Total              string `json:"invoice_amount"`
}

type digestResponse struct {
	Digest string `json:"zoi"`
}

func (c *client) ComputeDigest(ctx context.Context, req authority.DigestRequest) (string, error) {
	var out digestResponse
	err := c.post(ctx, pathDigest, digestPayload{
		TaxID:              req.TaxID,
		IssuedAt:           formatTime(req.IssuedAt),
		InvoiceNumber:      formatInt(req.Sequence),
		PremiseAuthorityID: req.PremiseAuthorityID,
		DeviceExternalID:   req.DeviceExternalID,
		Total:              req.Total.StringFixed(2),
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Digest == "" {
		return "", emptyField("zoi")
	}
	return out.Digest, nil
}

type submitPayload struct {
	Digest             string              `json:"zoi"`
	TaxID              int64               `json:"tax_number"`
	IssuedAt           string              `json:"issued_date"`
	InvoiceNumber      string              `json:"invoice_number"`
	PremiseAuthorityID string              `json:"business_premise_id"`
	DeviceExternalID   string              `json:"electronic_device_id"`
	Total              string              `json:"invoice_amount"`
	Taxes              []authority.TaxRate `json:"vat"`
	OperatorTaxID      int64               `json:"operator_tax_number"`
	Subsequent         bool                `json:"subsequent_submit"`
}

type submitResponse struct {
	Receipt string `json:"eor"`
}

func (c *client) Submit(ctx context.Context, req authority.SubmitRequest) (string, error) {
	var out submitResponse
	err := c.post(ctx, pathInvoices, submitPayload{
		Digest:             req.Digest,
		TaxID:              req.TaxID,
		IssuedAt:           formatTime(req.IssuedAt),
		InvoiceNumber:      req.InvoiceNumber,
		PremiseAuthorityID: req.PremiseAuthorityID,
		DeviceExternalID:   req.DeviceExternalID,
		Total:              req.Total.StringFixed(2),
		Taxes:              req.Taxes,
		OperatorTaxID:      req.OperatorTaxID,
		Subsequent:         req.Subsequent,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Receipt == "" {
		return "", emptyField("eor")
	}
	return out.Receipt, nil
}

type movablePremisePayload struct {
	TaxID                     int64  `json:"tax_number"`
	PremiseAuthorityID        string `json:"premise_id"`
	Subtype                   string `json:"movable_type"`
	ValidityFrom              string `json:"validity_date"`
	SoftwareSupplierTaxNumber int64  `json:"software_supplier_tax_number"`
	Notes                     string `json:"special_notes"`
}

type movablePremiseResponse struct {
	Accepted bool `json:"accepted"`
}

func (c *client) RegisterMovablePremise(ctx context.Context, req authority.MovablePremiseRegistration) (bool, error) {
	var out movablePremiseResponse
	err := c.post(ctx, pathMovablePremise, movablePremisePayload{
		TaxID:                     req.TaxID,
		PremiseAuthorityID:        req.PremiseAuthorityID,
		Subtype:                   string(req.Subtype),
		ValidityFrom:              formatTime(req.ValidityFrom),
		SoftwareSupplierTaxNumber: req.SoftwareSupplierTaxNumber,
		Notes:                     req.Notes,
	}, &out)
	if err != nil {
		return false, err
	}
	return out.Accepted, nil
}

func (c *client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode authority request").
			Mark(ierr.ErrSystem)
	}

	resp, err := c.http.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + path,
		Body:   body,
		Headers: map[string]string{
			"Accept": "application/json",
		},
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return ierr.WithError(err).
			WithHint("Authority returned an unreadable response").
			Mark(ierr.ErrHTTPClient)
	}
	return nil
}

func emptyField(name string) error {
	return ierr.NewErrorf("authority response is missing %s", name).
		WithHint("Authority returned an incomplete response").
		Mark(ierr.ErrHTTPClient)
}
