package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCollectors(t *testing.T) {
	m := NewMetrics()
	m.SequenceBurned.WithLabelValues("authority").Inc()
	m.CredentialsLoaded.Set(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SequenceBurned.WithLabelValues("authority")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fiscal_sequence_burned_total")
	assert.Contains(t, rec.Body.String(), "fiscal_vault_credentials_loaded 3")
}
