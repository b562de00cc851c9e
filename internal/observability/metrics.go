// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Market data metrics
	PoolFetchesTotal *prometheus.CounterVec
	PoolFetchLatency prometheus.Histogram
	PollTicksSkipped prometheus.Counter
	HistoryLength    prometheus.Gauge
	LastSnapshotUnix prometheus.Gauge

	// News metrics
	NewsFetchesTotal *prometheus.CounterVec

	// Wallet / chain metrics
	WalletImportsTotal *prometheus.CounterVec
	TransactionsTotal  *prometheus.CounterVec
	RPCCallLatency     *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "megatron"
	}

	return &Metrics{
		PoolFetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "pool_fetches_total",
			Help:      "Total number of pool fetch cycles by outcome",
		}, []string{"outcome"}),
		PoolFetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "pool_fetch_latency_seconds",
			Help:      "Pool fetch cycle latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		PollTicksSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "poll_ticks_skipped_total",
			Help:      "Total number of poll ticks skipped due to an in-flight fetch",
		}),
		HistoryLength: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "history_length",
			Help:      "Current number of points in the chart history series",
		}),
		LastSnapshotUnix: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "last_snapshot_timestamp",
			Help:      "Unix timestamp of the last applied snapshot",
		}),
		NewsFetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "news",
			Name:      "fetches_total",
			Help:      "Total number of news scrape attempts by result",
		}, []string{"result"}),
		WalletImportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "imports_total",
			Help:      "Total number of wallet imports by status",
		}, []string{"status"}),
		TransactionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "transactions_total",
			Help:      "Total number of submitted transactions by kind and status",
		}, []string{"kind", "status"}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordPoolFetch records one completed fetch cycle.
func RecordPoolFetch(outcome string, seconds float64) {
	DefaultMetrics.PoolFetchesTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.PoolFetchLatency.Observe(seconds)
}

// RecordPollSkipped increments the skipped-tick counter.
func RecordPollSkipped() {
	DefaultMetrics.PollTicksSkipped.Inc()
}

// SetHistoryLength updates the history length gauge.
func SetHistoryLength(n int) {
	DefaultMetrics.HistoryLength.Set(float64(n))
}

// SetLastSnapshot updates the last snapshot timestamp gauge.
func SetLastSnapshot(unix int64) {
	DefaultMetrics.LastSnapshotUnix.Set(float64(unix))
}

// RecordNewsFetch records one news scrape attempt.
func RecordNewsFetch(result string) {
	DefaultMetrics.NewsFetchesTotal.WithLabelValues(result).Inc()
}

// RecordWalletImport records a wallet import attempt.
func RecordWalletImport(status string) {
	DefaultMetrics.WalletImportsTotal.WithLabelValues(status).Inc()
}

// RecordTransaction records a submitted transaction.
func RecordTransaction(kind, status string) {
	DefaultMetrics.TransactionsTotal.WithLabelValues(kind, status).Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}
