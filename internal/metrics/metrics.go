// Package metrics exposes Prometheus instrumentation for subscription mutations, reaction
// events, and persistence.
package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultIOError  = "io_error"
)

// Metrics tracks registry and reaction activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Mutations       *prometheus.CounterVec
	ReactionEvents  *prometheus.CounterVec
	PersistFailures prometheus.Counter
	Users           prometheus.Gauge
}

// New creates a Metrics instance registered on its own Prometheus registry, so several
// instances can coexist in tests.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subwatch_subscription_mutations_total",
			Help: "Subscription mutations by operation and result",
		}, []string{"op", "result"}),
		ReactionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subwatch_reaction_events_total",
			Help: "Reaction events by kind and outcome",
		}, []string{"kind", "outcome"}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subwatch_persist_failures_total",
			Help: "Failed writes of the subscription state",
		}),
		Users: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "subwatch_registry_users",
			Help: "Users currently present in the subscription registry",
		}),
	}
	reg.MustRegister(m.Mutations, m.ReactionEvents, m.PersistFailures, m.Users)
	return m
}

// ObserveMutation records one registry mutation attempt
func (m *Metrics) ObserveMutation(op, result string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op, result).Inc()
	if result == ResultIOError {
		m.PersistFailures.Inc()
	}
}

// ObserveReaction records how a reaction event was handled
func (m *Metrics) ObserveReaction(kind, outcome string) {
	if m == nil {
		return
	}
	m.ReactionEvents.WithLabelValues(kind, outcome).Inc()
}

// SetUsers records the number of users in the registry
func (m *Metrics) SetUsers(n int) {
	if m == nil {
		return
	}
	m.Users.Set(float64(n))
}

// Gatherer returns the underlying registry for scraping and tests
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Router serves /metrics and /healthz
func (m *Metrics) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) // nolint:errcheck
	})
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return r
}
