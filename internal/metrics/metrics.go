// Package metrics defines the Prometheus collectors for the sync engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Broadcast hub metrics
var (
	// HubSubscribers tracks current subscribers per broadcast group
	HubSubscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hub_subscribers",
			Help: "Current subscribers per broadcast group",
		},
		[]string{"group"},
	)

	// HubEventsPublished tracks events published per group
	HubEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_events_published_total",
			Help: "Total events published per broadcast group",
		},
		[]string{"group"},
	)

	// HubSlowSubscribersEvicted tracks subscribers dropped for full buffers
	HubSlowSubscribersEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_slow_subscribers_evicted_total",
			Help: "Total subscribers dropped because their outbound buffer was full",
		},
	)
)

// Presence metrics
var (
	// PresenceActiveDevices tracks devices currently presumed connected
	PresenceActiveDevices = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "presence_active_devices",
			Help: "Devices currently presumed connected",
		},
	)

	// PresenceSweepDeactivations tracks devices marked inactive by the sweep
	PresenceSweepDeactivations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "presence_sweep_deactivations_total",
			Help: "Devices marked inactive by the liveness sweep",
		},
	)
)

// Content and websocket metrics
var (
	// ContentActivations tracks content activate transitions
	ContentActivations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "content_activations_total",
			Help: "Total content activate transitions",
		},
	)

	// WebsocketInboundCommands tracks inbound websocket commands by type
	WebsocketInboundCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_inbound_commands_total",
			Help: "Inbound websocket commands by message type",
		},
		[]string{"type"},
	)

	// WebsocketDiscardedMessages tracks inbound messages dropped as malformed
	// or rate-limited
	WebsocketDiscardedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_discarded_messages_total",
			Help: "Inbound websocket messages discarded (malformed or rate-limited)",
		},
	)
)
