package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	created  prometheus.Counter
	removed  prometheus.Counter
	recycled prometheus.Counter
	live     prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		created: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "spanvault",
			Subsystem: "store",
			Name:      "spans_created_total",
			Help:      "Total spans created.",
		}),
		removed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "spanvault",
			Subsystem: "store",
			Name:      "spans_removed_total",
			Help:      "Total spans removed.",
		}),
		recycled: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "spanvault",
			Subsystem: "store",
			Name:      "handles_recycled_total",
			Help:      "Total handles reissued from the free list.",
		}),
		live: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "spanvault",
			Subsystem: "store",
			Name:      "spans_live",
			Help:      "Spans currently live in the store.",
		}),
	}
}
