package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fiscal"

// Metrics holds the collectors recorded by the issuance core.
type Metrics struct {
	registry *prometheus.Registry

	InvoicesIssued        *prometheus.CounterVec
	SequenceBurned        *prometheus.CounterVec
	AuthorityDuration     *prometheus.HistogramVec
	CredentialsLoaded     prometheus.Gauge
	CredentialLoadFailure *prometheus.CounterVec
	PremiseRegistrations  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them in a dedicated registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		InvoicesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_issued_total",
			Help:      "Invoices accepted by the authority and stored.",
		}, []string{"subsequent"}),
		SequenceBurned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequence_burned_total",
			Help:      "Sequence numbers consumed by an issuance that did not produce an invoice.",
		}, []string{"reason"}),
		AuthorityDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "authority_request_duration_seconds",
			Help:      "Duration of calls to the tax authority client.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "result"}),
		CredentialsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vault_credentials_loaded",
			Help:      "Companies with a live signing credential in the vault.",
		}),
		CredentialLoadFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vault_credential_load_failures_total",
			Help:      "Companies skipped during a vault load.",
		}, []string{"reason"}),
		PremiseRegistrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "premise_registrations_total",
			Help:      "Premise registration attempts by outcome.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.InvoicesIssued,
		m.SequenceBurned,
		m.AuthorityDuration,
		m.CredentialsLoaded,
		m.CredentialLoadFailure,
		m.PremiseRegistrations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding every collector
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
