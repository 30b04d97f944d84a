package builder

import "github.com/prometheus/client_golang/prometheus"

// builderMetrics mirrors the shape of the teacher's controllerMetrics: a
// small bundle of Prometheus instruments created once per builder run and
// optionally registered against a caller-supplied Registerer.
type builderMetrics struct {
	configureDuration prometheus.Histogram
	partsTotal        prometheus.Gauge
	edgesTotal        prometheus.Gauge
	cyclesDetected    prometheus.Counter
	validationErrors  prometheus.Counter
}

func newBuilderMetrics() *builderMetrics {
	return &builderMetrics{
		configureDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "compose",
			Subsystem: "builder",
			Name:      "configure_duration_seconds",
			Help:      "Time taken by Create to resolve a catalog into a Configuration.",
			Buckets:   prometheus.DefBuckets,
		}),
		partsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "compose",
			Subsystem: "builder",
			Name:      "parts_total",
			Help:      "Number of parts in the most recently built configuration.",
		}),
		edgesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "compose",
			Subsystem: "builder",
			Name:      "import_edges_total",
			Help:      "Number of resolved import->export edges in the most recently built configuration.",
		}),
		cyclesDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "compose",
			Subsystem: "builder",
			Name:      "cycles_detected_total",
			Help:      "Number of Create calls that failed due to a non-shared import cycle.",
		}),
		validationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "compose",
			Subsystem: "builder",
			Name:      "validation_errors_total",
			Help:      "Number of per-part validation errors aggregated across all Create calls.",
		}),
	}
}

// Collectors returns every instrument for registration, matching the
// teacher's pattern of registering cm/cc against globals.Registerer.
func (m *builderMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.configureDuration,
		m.partsTotal,
		m.edgesTotal,
		m.cyclesDetected,
		m.validationErrors,
	}
}
