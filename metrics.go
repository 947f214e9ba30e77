package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics receives one call per cache event.
type Metrics interface {
	Hit()
	Miss()
	Expire()
	Set()
	Remove()
	Clear()
}

type NoopMetrics struct{}

func (NoopMetrics) Hit()    {}
func (NoopMetrics) Miss()   {}
func (NoopMetrics) Expire() {}
func (NoopMetrics) Set()    {}
func (NoopMetrics) Remove() {}
func (NoopMetrics) Clear()  {}

// PrometheusMetrics counts cache events as Prometheus counters.
type PrometheusMetrics struct {
	Hits        prometheus.Counter
	Misses      prometheus.Counter
	Expirations prometheus.Counter
	Sets        prometheus.Counter
	Removals    prometheus.Counter
	Clears      prometheus.Counter
}

// NewPrometheusMetrics registers the cache counters on reg under namespace.
// The cache name is attached as a constant label so several stores can share
// one registry.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace, name string) *PrometheusMetrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"cache": name}
	counter := func(metric, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "cache",
			Name:        metric,
			Help:        help,
			ConstLabels: labels,
		})
	}

	return &PrometheusMetrics{
		Hits:        counter("hits_total", "Total number of reads that found a valid entry"),
		Misses:      counter("misses_total", "Total number of reads that found no valid entry"),
		Expirations: counter("expirations_total", "Total number of entries removed because their TTL elapsed"),
		Sets:        counter("sets_total", "Total number of writes"),
		Removals:    counter("removals_total", "Total number of explicit removals"),
		Clears:      counter("clears_total", "Total number of store-wide clears"),
	}
}

func (m *PrometheusMetrics) Hit()    { m.Hits.Inc() }
func (m *PrometheusMetrics) Miss()   { m.Misses.Inc() }
func (m *PrometheusMetrics) Expire() { m.Expirations.Inc() }
func (m *PrometheusMetrics) Set()    { m.Sets.Inc() }
func (m *PrometheusMetrics) Remove() { m.Removals.Inc() }
func (m *PrometheusMetrics) Clear()  { m.Clears.Inc() }
