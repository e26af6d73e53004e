// Package metrics provides Prometheus metrics for the sparks service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "sparks"

// Cache tiers reported by CacheLookup.
const (
	TierMemory   = "memory"
	TierDatabase = "database"
	TierStale    = "stale"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// Manager owns the service metrics. A nil *Manager is valid and records
// nothing.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	cacheLookups     *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  prometheus.Histogram
	backgroundTasks  *prometheus.CounterVec
	warmCycles       prometheus.Counter
}

// New creates and registers all metrics.
func New(opts ...Option) *Manager {
	m := &Manager{namespace: defaultNamespace}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	auto := promauto.With(m.registry)

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by tier and result (hit or miss)",
	}, []string{"tier", "result"})

	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "upstream_requests_total",
		Help:      "GitHub search requests by outcome",
	}, []string{"outcome"})

	m.upstreamLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "GitHub search request latency",
		Buckets:   prometheus.DefBuckets,
	})

	m.backgroundTasks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "background_tasks_total",
		Help:      "Detached background tasks by kind and outcome",
	}, []string{"kind", "outcome"})

	m.warmCycles = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "warm_cycles_total",
		Help:      "Completed trending topic warm-up cycles",
	})

	return m
}

// CacheLookup records a lookup against tier.
func (m *Manager) CacheLookup(tier string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(tier, result).Inc()
}

// UpstreamRequest records one search call and its duration.
func (m *Manager) UpstreamRequest(err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.upstreamRequests.WithLabelValues(outcome).Inc()
	m.upstreamLatency.Observe(d.Seconds())
}

// BackgroundTask records the outcome of a detached task.
func (m *Manager) BackgroundTask(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.backgroundTasks.WithLabelValues(kind, outcome).Inc()
}

// WarmCycle records a finished warm-up cycle.
func (m *Manager) WarmCycle() {
	if m == nil {
		return
	}
	m.warmCycles.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
