// Package metrics exposes Prometheus instruments for storefront requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jamesprial/storefront-mcp/internal/storefront"
)

const namespace = "storefront"

var _ storefront.Observer = (*Recorder)(nil)

// Recorder counts storefront requests and their latency, labelled by
// operation and outcome (ok, transport, decode, api, encode).
type Recorder struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder creates the instruments and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Storefront API requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Storefront API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{r.requests, r.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveRequest implements storefront.Observer.
func (r *Recorder) ObserveRequest(operation, outcome string, duration time.Duration) {
	r.requests.WithLabelValues(operation, outcome).Inc()
	r.duration.WithLabelValues(operation).Observe(duration.Seconds())
}
