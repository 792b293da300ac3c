package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	relayerSyncTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "btcbridge",
		Subsystem: "relayer",
		Name:      "sync_total",
		Help:      "Count of relayer sync rounds.",
	}, []string{"network", "status"})

	relayerSyncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "btcbridge",
		Subsystem: "relayer",
		Name:      "sync_duration_seconds",
		Help:      "Duration of a relayer sync round.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	relayerSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "btcbridge",
		Subsystem: "relayer",
		Name:      "submissions_total",
		Help:      "Count of headers and transactions submitted to the bridge.",
	}, []string{"kind", "network", "status"})

	relayerBatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "btcbridge",
		Subsystem: "relayer",
		Name:      "batch_size",
		Help:      "Number of headers relayed per sync round.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"network"})
)

// Relayer tracks metrics for the relayer loop.
type Relayer struct {
	network string
}

// NewRelayer constructs a Relayer collector for network.
func NewRelayer(network string) *Relayer {
	if network == "" {
		network = "unknown"
	}
	return &Relayer{network: network}
}

// ObserveSync records one sync round and the number of headers it relayed.
func (m Relayer) ObserveSync(err error, headers int, started time.Time) {
	s := status(err)
	relayerSyncTotal.WithLabelValues(m.network, s).Inc()
	relayerSyncDuration.WithLabelValues(m.network, s).Observe(time.Since(started).Seconds())
	relayerBatchSize.WithLabelValues(m.network).Observe(float64(headers))
}

// ObserveSubmit counts one submission of kind "header" or "transaction".
func (m Relayer) ObserveSubmit(kind string, err error) {
	relayerSubmissionsTotal.WithLabelValues(kind, m.network, status(err)).Inc()
}
