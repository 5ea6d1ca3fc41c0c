package preview

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments rebuilds and buffer releases.
type Metrics struct {
	rebuilds        *prometheus.CounterVec
	rebuildDuration prometheus.Histogram
	primitives      prometheus.Gauge
	lights          prometheus.Gauge
	releasedBuffers prometheus.Counter
	releasedGraphs  prometheus.Counter
}

// NewMetrics registers the preview metrics with reg. A nil reg leaves the
// metrics unregistered.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		rebuilds: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rebuilds_total",
				Help:      "Configuration changes handled, by outcome",
			},
			[]string{"status"},
		),
		rebuildDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rebuild_duration_seconds",
				Help:      "Time spent generating a scene graph",
				Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
		),
		primitives: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "installed_primitives",
			Help:      "Primitives in the installed scene graph",
		}),
		lights: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "installed_lights",
			Help:      "Point lights in the installed scene graph",
		}),
		releasedBuffers: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "released_buffers_total",
			Help:      "Geometry buffers freed with superseded scene graphs",
		}),
		releasedGraphs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "released_graphs_total",
			Help:      "Scene graphs whose buffers have been freed",
		}),
	}
}

func (m *Metrics) observe(o Outcome, took time.Duration) {
	m.rebuilds.WithLabelValues(o.Status.String()).Inc()
	if o.Status == StatusInstalled || o.Status == StatusRejected {
		m.rebuildDuration.Observe(took.Seconds())
	}
}

func (m *Metrics) installed(primitives, lights int) {
	m.primitives.Set(float64(primitives))
	m.lights.Set(float64(lights))
}

func (m *Metrics) released(buffers int) {
	m.releasedGraphs.Inc()
	m.releasedBuffers.Add(float64(buffers))
}
