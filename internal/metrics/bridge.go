// Package metrics exposes application metrics collectors.
package metrics

import (
	"time"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bridgeOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "btcbridge",
		Subsystem: "bridge",
		Name:      "operations_total",
		Help:      "Count of bridge calls by outcome. Rejected calls are labelled with their error kind.",
	}, []string{"operation", "network", "status"})
	bridgeOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "btcbridge",
		Subsystem: "bridge",
		Name:      "operation_duration_seconds",
		Help:      "Duration of bridge calls including the storage commit.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "network"})
	bridgeEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "btcbridge",
		Subsystem: "bridge",
		Name:      "events_total",
		Help:      "Count of committed bridge events.",
	}, []string{"kind", "network"})
	bridgeTipHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "btcbridge",
		Subsystem: "bridge",
		Name:      "tip_height",
		Help:      "Height of the best and confirmed header tips.",
	}, []string{"tip", "network"})
)

// Bridge tracks metrics for calls applied to the bridge state machine.
type Bridge struct {
	network string
}

// NewBridge constructs a Bridge collector for network.
func NewBridge(network string) *Bridge {
	if network == "" {
		network = "unknown"
	}
	return &Bridge{network: network}
}

// ObserveOperation records one call outcome and duration.
func (m Bridge) ObserveOperation(operation string, err error, started time.Time) {
	bridgeOperationsTotal.WithLabelValues(operation, m.network, status(err)).Inc()
	bridgeOperationDuration.WithLabelValues(operation, m.network).Observe(time.Since(started).Seconds())
}

// ObserveEvent counts one committed event.
func (m Bridge) ObserveEvent(kind model.EventKind) {
	bridgeEventsTotal.WithLabelValues(string(kind), m.network).Inc()
}

// SetTips publishes the current best and confirmed heights.
func (m Bridge) SetTips(best, confirmed uint32) {
	bridgeTipHeight.WithLabelValues("best", m.network).Set(float64(best))
	bridgeTipHeight.WithLabelValues("confirmed", m.network).Set(float64(confirmed))
}

func status(err error) string {
	if err == nil {
		return "success"
	}
	if kind := model.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "error"
}
