package ethermq

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "ethermq"

// drop reasons, used as the "reason" label of the dropped frames counter.
const (
	dropUndersized = "undersized"
	dropMalformed  = "malformed"
	dropLoop       = "loop"
	dropWrite      = "write"
)

// Metrics holds the prometheus collectors for a bridge.
type Metrics struct {
	Registry *prometheus.Registry

	captured  prometheus.Counter
	published prometheus.Counter
	received  prometheus.Counter
	injected  prometheus.Counter
	dropped   *prometheus.CounterVec
}

// NewMetrics returns a Metrics registered on a fresh registry. Queue depth gauges are added for
// each of the given queues.
func NewMetrics(queues ...*Queue) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		Registry: reg,
		captured: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_captured_total",
			Help:      "Frames read from the local interface and queued for the backhaul.",
		}),
		published: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_published_total",
			Help:      "Frames published to the broker.",
		}),
		received: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_received_total",
			Help:      "Frames received from the broker and queued for the local interface.",
		}),
		injected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_injected_total",
			Help:      "Frames written to the local interface.",
		}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_dropped_total",
			Help:      "Frames dropped, by reason.",
		}, []string{"reason"}),
	}

	for _, reason := range []string{dropUndersized, dropMalformed, dropLoop, dropWrite} {
		m.dropped.WithLabelValues(reason)
	}

	for _, q := range queues {
		q := q

		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "queue_depth",
			Help:        "Frames waiting in a bridge queue.",
			ConstLabels: prometheus.Labels{"queue": q.Name()},
		}, func() float64 {
			return float64(q.Len())
		})
	}

	return m
}

func (m *Metrics) drop(reason string) {
	m.dropped.WithLabelValues(reason).Inc()
}
