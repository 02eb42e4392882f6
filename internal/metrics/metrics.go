// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "farmbook"

var (
	interpretCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "voice",
		Name:      "interpretations_total",
		Help:      "Transcripts interpreted, by how the category was resolved.",
	}, []string{"match"})

	recordWriteCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "writes_total",
		Help:      "Document writes by record type, operation and outcome.",
	}, []string{"record_type", "operation", "outcome"})

	snapshotPushCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "view_pushes_total",
		Help:      "Recomputed views pushed to WebSocket clients.",
	}, []string{"view"})

	wsClientsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "websocket_clients",
		Help:      "Connected WebSocket clients.",
	})

	rateLimitedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-tenant rate limiter.",
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(interpretCounter, recordWriteCounter, snapshotPushCounter, wsClientsGauge, rateLimitedCounter)
}

// Interpret match labels
const (
	MatchKeyword = "keyword"
	MatchLabel   = "label"
	MatchNone    = "none"
)

// RecordInterpretation counts one interpreted transcript
func RecordInterpretation(match string) {
	interpretCounter.WithLabelValues(match).Inc()
}

// RecordWrite counts one store write
func RecordWrite(recordType, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	recordWriteCounter.WithLabelValues(recordType, operation, outcome).Inc()
}

// RecordViewPush counts one view event sent to a client
func RecordViewPush(view string) {
	snapshotPushCounter.WithLabelValues(view).Inc()
}

// ClientConnected increments the connected client gauge
func ClientConnected() { wsClientsGauge.Inc() }

// ClientDisconnected decrements the connected client gauge
func ClientDisconnected() { wsClientsGauge.Dec() }

// RecordRateLimited counts one rejected request
func RecordRateLimited(route string) {
	rateLimitedCounter.WithLabelValues(route).Inc()
}
