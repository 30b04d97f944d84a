package runtime

import "github.com/prometheus/client_golang/prometheus"

// providerMetrics mirrors the teacher's controllerMetrics shape, scaled to
// what the export provider runtime actually does: instantiate parts,
// maintain the boundary cache, and dispose tracked instances.
type providerMetrics struct {
	instantiations   *prometheus.CounterVec
	cacheSize        prometheus.GaugeFunc
	disposeDuration  prometheus.Histogram
	cardinalityError prometheus.Counter
	crossBoundary    prometheus.Counter
}

func newProviderMetrics(cache *boundaryCache) *providerMetrics {
	m := &providerMetrics{
		instantiations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compose",
			Subsystem: "provider",
			Name:      "instantiations_total",
			Help:      "Number of shared part instances created, by sharing boundary.",
		}, []string{"boundary"}),
		disposeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "compose",
			Subsystem: "provider",
			Name:      "dispose_duration_seconds",
			Help:      "Time taken to dispose all tracked disposables.",
			Buckets:   prometheus.DefBuckets,
		}),
		cardinalityError: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "compose",
			Subsystem: "provider",
			Name:      "cardinality_violations_total",
			Help:      "Number of getExports calls that failed cardinality enforcement.",
		}),
		crossBoundary: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "compose",
			Subsystem: "provider",
			Name:      "cross_boundary_violations_total",
			Help:      "Number of resolutions rejected because their sharing boundary was not active.",
		}),
	}
	m.cacheSize = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "compose",
		Subsystem: "provider",
		Name:      "singleton_cache_size",
		Help:      "Number of (boundary, part) cells currently populated.",
	}, func() float64 { return float64(cache.size()) })
	return m
}

func (m *providerMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.instantiations,
		m.cacheSize,
		m.disposeDuration,
		m.cardinalityError,
		m.crossBoundary,
	}
}
