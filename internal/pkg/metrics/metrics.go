// Package metrics collects and exposes Prometheus metrics for the platform.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records business-level counters. Services call it on every
// successful lifecycle transition so operators can watch queue throughput.
type Collector struct {
	logins        prometheus.Counter
	transitions   *prometheus.CounterVec
	disbursements *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewCollector creates a Collector with its own registry
func NewCollector() *Collector {
	c := &Collector{
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plafondhub_logins_total",
			Help: "Total successful logins",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plafondhub_application_transitions_total",
			Help: "Application status transitions by target status",
		}, []string{"to_status"}),
		disbursements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plafondhub_disbursement_outcomes_total",
			Help: "Disbursement outcomes by target status",
		}, []string{"to_status"}),
		registry: prometheus.NewRegistry(),
	}

	c.registry.MustRegister(c.logins, c.transitions, c.disbursements)
	return c
}

// RecordLogin increments the successful login counter
func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

// RecordApplicationTransition increments the transition counter for a target status
func (c *Collector) RecordApplicationTransition(toStatus string) {
	c.transitions.WithLabelValues(toStatus).Inc()
}

// RecordDisbursementOutcome increments the disbursement counter for a target status
func (c *Collector) RecordDisbursementOutcome(toStatus string) {
	c.disbursements.WithLabelValues(toStatus).Inc()
}

// Handler returns the HTTP handler exposing the registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
