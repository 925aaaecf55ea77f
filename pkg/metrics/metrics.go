package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submit outcomes.
const (
	OutcomeReport          = "report"
	OutcomeInvalidAddress  = "invalid_address"
	OutcomeNoChain         = "no_chain"
	OutcomeInternalFault   = "internal_fault"
	OutcomeDispatchOK      = "ok"
	OutcomeDispatchFailure = "error"
)

// Metrics groups the workflow collectors on their own registry.
type Metrics struct {
	Registry   *prometheus.Registry
	Submits    *prometheus.CounterVec
	Backs      prometheus.Counter
	Dispatches *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Submits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quillcheck",
			Name:      "submits_total",
			Help:      "Submit attempts by outcome.",
		}, []string{"outcome"}),
		Backs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quillcheck",
			Name:      "back_total",
			Help:      "Back navigations from a report view.",
		}),
		Dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quillcheck",
			Name:      "dispatches_total",
			Help:      "Report fetches by outcome.",
		}, []string{"outcome"}),
	}
	m.Registry.MustRegister(m.Submits, m.Backs, m.Dispatches)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveSubmit(outcome string) {
	if m == nil {
		return
	}
	m.Submits.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveBack() {
	if m == nil {
		return
	}
	m.Backs.Inc()
}

func (m *Metrics) ObserveDispatch(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Dispatches.WithLabelValues(OutcomeDispatchFailure).Inc()
		return
	}
	m.Dispatches.WithLabelValues(OutcomeDispatchOK).Inc()
}
