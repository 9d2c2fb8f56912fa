package gateway

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flexprice/fiscal/internal/authority"
	"github.com/flexprice/fiscal/internal/config"
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/flexprice/fiscal/internal/httpclient"
	"github.com/flexprice/fiscal/internal/logger"
	"github.com/flexprice/fiscal/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"software.sslmate.com/src/go-pkcs12"
)

func newTestServer(t *testing.T, handler func(path string, body map[string]any) (int, any)) *client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		status, out := handler(r.URL.Path, body)
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(out)
	}))
	t.Cleanup(srv.Close)
	return newClient(httpclient.NewDefaultClient(time.Second), srv.URL+"/", 12345678)
}

func TestComputeDigestAndSubmit(t *testing.T) {
	c := newTestServer(t, func(path string, body map[string]any) (int, any) {
		switch path {
		case pathDigest:
			assert.Equal(t, "6", body["invoice_number"])
			assert.Equal(t, "150.00", body["invoice_amount"])
			return http.StatusOK, map[string]string{"zoi": "zoi-1"}
		case pathInvoices:
			assert.Equal(t, "zoi-1", body["zoi"])
			assert.Equal(t, "PP1-BL1-6", body["invoice_number"])
			assert.Equal(t, true, body["subsequent_submit"])
			assert.Len(t, body["vat"], 1)
			return http.StatusOK, map[string]string{"eor": "eor-1"}
		}
		return http.StatusNotFound, nil
	})

	ctx := context.Background()
	issuedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	digest, err := c.ComputeDigest(ctx, authority.DigestRequest{
		TaxID:              12345678,
		IssuedAt:           issuedAt,
		Sequence:           6,
		PremiseAuthorityID: "PP1",
		DeviceExternalID:   "BL1",
		Total:              decimal.RequireFromString("150"),
	})
	require.NoError(t, err)
	assert.Equal(t, "zoi-1", digest)

	receipt, err := c.Submit(ctx, authority.SubmitRequest{
		Digest:        digest,
		TaxID:         12345678,
		IssuedAt:      issuedAt,
		InvoiceNumber: "PP1-BL1-6",
		Total:         decimal.RequireFromString("150"),
		Taxes: []authority.TaxRate{{
			Rate:          decimal.NewFromInt(22),
			TaxableAmount: decimal.NewFromInt(100),
			TaxAmount:     decimal.NewFromInt(22),
		}},
		Subsequent: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "eor-1", receipt)
}

func TestSubmitRejected(t *testing.T) {
	c := newTestServer(t, func(string, map[string]any) (int, any) {
		return http.StatusBadRequest, map[string]string{"error": "invalid zoi"}
	})

	_, err := c.Submit(context.Background(), authority.SubmitRequest{Digest: "x"})
	require.Error(t, err)
	assert.True(t, ierr.IsHTTPClient(err))
}

func TestSubmitMissingReceipt(t *testing.T) {
	c := newTestServer(t, func(string, map[string]any) (int, any) {
		return http.StatusOK, map[string]string{}
	})

	_, err := c.Submit(context.Background(), authority.SubmitRequest{Digest: "x"})
	require.Error(t, err)
	assert.True(t, ierr.IsHTTPClient(err))
}

func TestRegisterMovablePremise(t *testing.T) {
	c := newTestServer(t, func(path string, body map[string]any) (int, any) {
		assert.Equal(t, pathMovablePremise, path)
		assert.Equal(t, "A", body["movable_type"])
		assert.Equal(t, "None", body["special_notes"])
		return http.StatusOK, map[string]bool{"accepted": true}
	})

	ok, err := c.RegisterMovablePremise(context.Background(), authority.MovablePremiseRegistration{
		TaxID:              12345678,
		PremiseAuthorityID: "PP1",
		Subtype:            types.MovablePremiseTypeA,
		ValidityFrom:       time.Now(),
		Notes:              "None",
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFactoryRejectsBadCertificate(t *testing.T) {
	f := NewFactory(config.GetDefaultConfig(), logger.NewNopLogger())

	_, err := f.NewClient(context.Background(), authority.Credential{
		CertificatePath: filepath.Join(t.TempDir(), "missing.p12"),
	})
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))

	path := filepath.Join(t.TempDir(), "12345678.p12")
	require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

	_, err = f.NewClient(context.Background(), authority.Credential{CertificatePath: path, Password: "pw"})
	require.Error(t, err)
	assert.True(t, ierr.IsDecryption(err))
}

// writeChainedBundle writes a PKCS#12 file holding a company certificate and
// the CA that issued it, the way the authority hands them out
func writeChainedBundle(t *testing.T, password string) (string, *x509.Certificate) {
	t.Helper()

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Tax Authority Test CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	require.NoError(t, err)
	ca, err := x509.ParseCertificate(caDER)
	require.NoError(t, err)

	leafKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "12345678"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTemplate, ca, &leafKey.PublicKey, caKey)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(leafDER)
	require.NoError(t, err)

	data, err := pkcs12.Modern.Encode(leafKey, leaf, []*x509.Certificate{ca}, password)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "12345678.p12")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path, ca
}

func TestLoadCertificateKeepsChain(t *testing.T) {
	path, ca := writeChainedBundle(t, "cert-password")

	cert, err := loadCertificate(path, "cert-password")
	require.NoError(t, err)
	require.Len(t, cert.Certificate, 2)
	assert.Equal(t, "12345678", cert.Leaf.Subject.CommonName)
	assert.Equal(t, ca.Raw, cert.Certificate[1])
	assert.NotNil(t, cert.PrivateKey)

	_, err = loadCertificate(path, "wrong-password")
	require.Error(t, err)
	assert.True(t, ierr.IsDecryption(err))
}

func TestFactoryBuildsClientFromChainedBundle(t *testing.T) {
	path, _ := writeChainedBundle(t, "cert-password")
	f := NewFactory(config.GetDefaultConfig(), logger.NewNopLogger())

	c, err := f.NewClient(context.Background(), authority.Credential{
		CompanyID:       "comp_1",
		TaxID:           12345678,
		CertificatePath: path,
		Password:        "cert-password",
	})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
