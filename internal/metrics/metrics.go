// Package metrics exposes Prometheus instrumentation for the relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_received_total",
		Help: "Messages received from the source room",
	})
	MessagesForwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_forwarded_total",
		Help: "Messages forwarded to the target room",
	})
	MessagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_dropped_total",
		Help: "Messages dropped by the keyword filter",
	})
	MessagesRewritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_rewritten_total",
		Help: "Forwarded messages rewritten into close commands",
	})
	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_send_failures_total",
		Help: "Failed sends to the target room",
	})
	Heartbeats = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_heartbeats_total",
		Help: "Keep-alive timer firings",
	})
	HeartbeatFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_heartbeat_failures_total",
		Help: "Keep-alive connection checks that failed",
	})
	ConnectedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_connected",
		Help: "Last connection check result, 1=connected 0=not",
	})
)
