package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

// Endpoint label values.
const (
	endpointHTTP   = "http"
	endpointStream = "stream"
)

// Status label values.
const (
	statusOK       = "ok"
	statusInvalid  = "invalid"
	statusTooLarge = "too_large"
)

// metrics holds the Prometheus collectors of one Server.
type metrics struct {
	diffsTotal    *prometheus.CounterVec
	diffDuration  *prometheus.HistogramVec
	patchesTotal  *prometheus.CounterVec
	activeStreams prometheus.Gauge
	encodedBytes  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, namespace string) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		diffsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diffs_total",
			Help:      "Total number of diff requests by endpoint and status",
		}, []string{"endpoint", "status"}),

		diffDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "diff_duration_seconds",
			Help:      "Time spent computing diffs in seconds",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"endpoint"}),

		patchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patches_total",
			Help:      "Total number of patches emitted by op",
		}, []string{"op"}),

		activeStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_streams",
			Help:      "Number of open WebSocket streams",
		}),

		encodedBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encoded_bytes_total",
			Help:      "Total bytes of encoded patch frames sent",
		}, []string{"endpoint"}),
	}
}

// observeDiff records a completed diff.
func (m *metrics) observeDiff(endpoint string, d time.Duration, patches []vdom.Patch) {
	m.diffsTotal.WithLabelValues(endpoint, statusOK).Inc()
	m.diffDuration.WithLabelValues(endpoint).Observe(d.Seconds())
	for op, n := range vdom.Summarize(patches) {
		m.patchesTotal.WithLabelValues(op.String()).Add(float64(n))
	}
}

// observeFailure records a request that produced no diff.
func (m *metrics) observeFailure(endpoint, status string) {
	m.diffsTotal.WithLabelValues(endpoint, status).Inc()
}

// observeEncoded records bytes of an encoded patch frame.
func (m *metrics) observeEncoded(endpoint string, n int) {
	m.encodedBytes.WithLabelValues(endpoint).Add(float64(n))
}
