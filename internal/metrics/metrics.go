package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "venuepipe"

var (
	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Queue messages handled, by outcome.",
		},
		[]string{"result"},
	)
	RecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Accepted records by kind and write result.",
		},
		[]string{"kind", "result"},
	)
	RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Dropped records by reason and field.",
		},
		[]string{"reason", "field"},
	)
	PersistErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_errors_total",
			Help:      "Persistence failures by stage.",
		},
		[]string{"stage"},
	)
	WriteLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "write_latency_seconds",
			Help:      "Insert plus commit latency per sink.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"destination"},
	)
	LastOffset = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_offset",
			Help:      "Last polled offset per topic/partition.",
		},
		[]string{"topic", "partition"},
	)
)

func init() {
	prometheus.MustRegister(
		MessagesTotal,
		RecordsTotal,
		RejectionsTotal,
		PersistErrorsTotal,
		WriteLatency,
		LastOffset,
	)
}
