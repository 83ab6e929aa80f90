package gc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	sweeps    prometheus.Counter
	reclaimed prometheus.Counter
	queued    prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		sweeps: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "spanvault",
			Subsystem: "gc",
			Name:      "sweeps_total",
			Help:      "Total sweep passes run.",
		}),
		reclaimed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "spanvault",
			Subsystem: "gc",
			Name:      "spans_reclaimed_total",
			Help:      "Total spans physically removed by sweeps.",
		}),
		queued: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "spanvault",
			Subsystem: "gc",
			Name:      "garbage_queued",
			Help:      "Handles awaiting reclamation after the last sweep.",
		}),
	}
}
