package hsp

// metrics.go is a thin abstraction over Prometheus, following the same
// shape the reference cache used: a metricsSink interface so the hot path
// never pays for metric updates unless a caller opts in via WithMetrics.
//
// Metric names follow Prometheus best practices, suffixed with "_total" for
// counters.

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink is internal; Arena only knows about the generic methods here.
type metricsSink interface {
	incClone(cpu int)
	incDestroy(cpu int)
	incRebase(cpu int)
	incSlabContention(cpu int)
	setLiveRefs(value int64)
}

type noopMetrics struct{}

func (noopMetrics) incClone(int)            {}
func (noopMetrics) incDestroy(int)          {}
func (noopMetrics) incRebase(int)           {}
func (noopMetrics) incSlabContention(int)   {}
func (noopMetrics) setLiveRefs(int64)       {}

type promMetrics struct {
	clones      *prometheus.CounterVec
	destroys    *prometheus.CounterVec
	rebases     *prometheus.CounterVec
	contentions *prometheus.CounterVec
	liveRefs    prometheus.Gauge
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	label := []string{"cpu"}

	pm := &promMetrics{
		clones: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hyperSharedPointer",
			Name:      "clones_total",
			Help:      "Number of handles cloned, by attributed CPU slab.",
		}, label),
		destroys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hyperSharedPointer",
			Name:      "destroys_total",
			Help:      "Number of handles destroyed, by attributed CPU slab.",
		}, label),
		rebases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hyperSharedPointer",
			Name:      "slab_rebases_total",
			Help:      "Number of Disabled->Active slab transitions, by CPU slab.",
		}, label),
		contentions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hyperSharedPointer",
			Name:      "slab_contention_total",
			Help:      "Number of times a slab operation lost a CAS race and retried.",
		}, label),
		liveRefs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hyperSharedPointer",
			Name:      "live_references",
			Help:      "Best-effort snapshot of total live references across all slabs.",
		}),
	}

	reg.MustRegister(pm.clones, pm.destroys, pm.rebases, pm.contentions, pm.liveRefs)
	return pm
}

func (m *promMetrics) incClone(cpu int) {
	m.clones.WithLabelValues(strconv.Itoa(cpu)).Inc()
}
func (m *promMetrics) incDestroy(cpu int) {
	m.destroys.WithLabelValues(strconv.Itoa(cpu)).Inc()
}
func (m *promMetrics) incRebase(cpu int) {
	m.rebases.WithLabelValues(strconv.Itoa(cpu)).Inc()
}
func (m *promMetrics) incSlabContention(cpu int) {
	m.contentions.WithLabelValues(strconv.Itoa(cpu)).Inc()
}
func (m *promMetrics) setLiveRefs(value int64) {
	m.liveRefs.Set(float64(value))
}

// WithPrometheusMetrics attaches Prometheus-backed metrics registered
// against reg. Passing a nil registry is equivalent to omitting the option.
func WithPrometheusMetrics(reg *prometheus.Registry) Option {
	return func(c *config) {
		if reg == nil {
			return
		}
		c.metrics = newPromMetrics(reg)
	}
}
