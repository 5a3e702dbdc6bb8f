// Package metrics provides a Prometheus-backed balance.MetricsCollector.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdrpinto/balance"
)

// PrometheusCollector implements balance.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	expansions prometheus.Counter
	pruned     *prometheus.CounterVec
	openSize   prometheus.Gauge
	outcomes   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ balance.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "balance" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "balance"
	}

	p := &PrometheusCollector{reg: reg, namespace: namespace}
	p.ensureRegistered()

	return p
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.expansions = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "search",
			Name:      "expansions_total",
			Help:      "Search nodes whose successors were generated.",
		})

		p.pruned = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "search",
			Name:      "pruned_total",
			Help:      "Dominated duplicate states discarded, by stage.",
		}, []string{"stage"})

		p.openSize = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "search",
			Name:      "open_nodes",
			Help:      "Nodes waiting in the open set after the latest expansion.",
		})

		p.outcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "search",
			Name:      "outcomes_total",
			Help:      "Finished searches by status.",
		}, []string{"status"})

		p.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of searches by status.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 60, 180},
		}, []string{"status"})

		p.reg.MustRegister(p.expansions, p.pruned, p.openSize, p.outcomes, p.duration)
	})
}

// RecordExpansion increments the expansion counter.
func (p *PrometheusCollector) RecordExpansion() {
	p.expansions.Inc()
}

// RecordPruned increments the pruned counter for stage.
func (p *PrometheusCollector) RecordPruned(stage string) {
	p.pruned.WithLabelValues(stage).Inc()
}

// SetOpenSize sets the open set gauge.
func (p *PrometheusCollector) SetOpenSize(n int) {
	p.openSize.Set(float64(n))
}

// RecordOutcome counts the finished search and observes its duration.
func (p *PrometheusCollector) RecordOutcome(status string, seconds float64) {
	p.outcomes.WithLabelValues(status).Inc()
	p.duration.WithLabelValues(status).Observe(seconds)
}
