package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the transaction ledger.
type Metrics struct {
	// --- Processor ---
	EventsApplied  *prometheus.CounterVec
	EventsRejected *prometheus.CounterVec
	EventDuration  *prometheus.HistogramVec
	Accounts       prometheus.Gauge
	LockedAccounts prometheus.Gauge

	// --- Snapshot ---
	SnapshotRequests prometheus.Counter
	SnapshotDuration prometheus.Histogram
	SnapshotAccounts prometheus.Gauge

	// --- Channel & Backpressure ---
	ChannelSize        *prometheus.GaugeVec
	ChannelCapacity    *prometheus.GaugeVec
	ChannelUtilization *prometheus.GaugeVec
	PublishDrops       prometheus.Counter

	// --- Ingestion ---
	IngestReceived  *prometheus.CounterVec
	IngestMalformed *prometheus.CounterVec

	// --- Persistence ---
	StatementsWritten prometheus.Counter
	RejectionsWritten prometheus.Counter
	PersistBatchSize  prometheus.Histogram
	PersistBatchDur   prometheus.Histogram
	PersistErrors     *prometheus.CounterVec
	PersistRetry      prometheus.Counter

	// --- Query API ---
	QueryRequests *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	applyBuckets := []float64{
		0.000001, 0.000005, 0.00001, 0.000025, 0.00005,
		0.0001, 0.00025, 0.0005, 0.001, 0.002, 0.005, 0.01,
	}

	return &Metrics{
		EventsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "txledger_events_applied_total",
			Help: "Events successfully applied to an account",
		}, []string{"event_type"}),

		EventsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "txledger_events_rejected_total",
			Help: "Events rejected by validation",
		}, []string{"event_type", "reason"}),

		EventDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "txledger_event_apply_duration_seconds",
			Help:    "Time to apply a single event",
			Buckets: applyBuckets,
		}, []string{"event_type"}),

		Accounts: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "txledger_accounts",
			Help: "Number of accounts tracked",
		}),

		LockedAccounts: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "txledger_locked_accounts",
			Help: "Number of accounts frozen by chargebacks",
		}),

		SnapshotRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "txledger_snapshot_requests_total",
			Help: "Snapshot requests served",
		}),

		SnapshotDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "txledger_snapshot_duration_seconds",
			Help:    "Time to build one snapshot",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),

		SnapshotAccounts: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "txledger_snapshot_accounts",
			Help: "Accounts in the last snapshot",
		}),

		ChannelSize: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "txledger_channel_size",
			Help: "Current items in channel",
		}, []string{"name"}),

		ChannelCapacity: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "txledger_channel_capacity",
			Help: "Channel capacity (constant)",
		}, []string{"name"}),

		ChannelUtilization: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "txledger_channel_utilization",
			Help: "Channel size / capacity (0.0-1.0)",
		}, []string{"name"}),

		PublishDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "txledger_publish_drops_total",
			Help: "Rejections dropped due to full publish channel",
		}),

		IngestReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "txledger_ingest_received_total",
			Help: "Events received from a source",
		}, []string{"source", "event_type"}),

		IngestMalformed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "txledger_ingest_malformed_total",
			Help: "Payloads that failed to parse",
		}, []string{"source"}),

		StatementsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "txledger_statements_written_total",
			Help: "Account statement rows upserted to Postgres",
		}),

		RejectionsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "txledger_rejections_written_total",
			Help: "Rejection rows written to Postgres",
		}),

		PersistBatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "txledger_persist_batch_size",
			Help:    "Rows per batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),

		PersistBatchDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "txledger_persist_batch_duration_seconds",
			Help:    "Postgres batch write duration",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		PersistErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "txledger_persist_errors_total",
			Help: "Persistence errors",
		}, []string{"error_type"}),

		PersistRetry: promauto.NewCounter(prometheus.CounterOpts{
			Name: "txledger_persist_retry_total",
			Help: "Persistence retries",
		}),

		QueryRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "txledger_query_requests_total",
			Help: "Query requests",
		}, []string{"endpoint", "status"}),

		QueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "txledger_query_duration_seconds",
			Help:    "Query latency",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"endpoint"}),
	}
}

// SetChannelMetrics updates channel utilization metrics.
func (m *Metrics) SetChannelMetrics(name string, size, capacity int) {
	m.ChannelSize.WithLabelValues(name).Set(float64(size))
	m.ChannelCapacity.WithLabelValues(name).Set(float64(capacity))
	if capacity > 0 {
		m.ChannelUtilization.WithLabelValues(name).Set(float64(size) / float64(capacity))
	}
}
