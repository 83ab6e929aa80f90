package encoder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	traces prometheus.Counter
	spans  prometheus.Counter
	bytes  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		traces: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "spanvault",
			Subsystem: "encoder",
			Name:      "traces_encoded_total",
			Help:      "Total traces encoded.",
		}),
		spans: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "spanvault",
			Subsystem: "encoder",
			Name:      "spans_encoded_total",
			Help:      "Total spans encoded.",
		}),
		bytes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "spanvault",
			Subsystem: "encoder",
			Name:      "bytes_encoded_total",
			Help:      "Total encoded bytes produced.",
		}),
	}
}
