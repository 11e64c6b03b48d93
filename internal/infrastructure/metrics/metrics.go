package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. Each Metrics instance carries
// its own registry so parallel tests never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	// Consistency metrics
	ConsistencyChecks      *prometheus.CounterVec
	TrialBalanceMinorUnits prometheus.Gauge

	// Outbox metrics
	OutboxPublished     prometheus.Counter
	OutboxPublishErrors prometheus.Counter
	OutboxLag           prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		// Consistency metrics
		ConsistencyChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookkeep_consistency_checks_total",
				Help: "Total trial balance consistency checks by result",
			},
			[]string{"result"},
		),
		TrialBalanceMinorUnits: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bookkeep_trial_balance_minor_units",
			Help: "Trial balance of the ledger in minor units",
		}),

		// Outbox metrics
		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "bookkeep_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxPublishErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "bookkeep_outbox_publish_errors_total",
			Help: "Total outbox publish errors",
		}),
		OutboxLag: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bookkeep_outbox_lag_events",
			Help: "Unpublished outbox events at last poll",
		}),
	}
}

// Registry returns the metrics registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
