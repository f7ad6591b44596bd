package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the realtime subsystem's instrumentation.
type Metrics struct {
	ActiveConnections prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
	BroadcastsTotal   prometheus.Counter
	DeliveryFailures  prometheus.Counter
	RejectedOpens     prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "teamboard_active_connections",
			Help: "Number of websocket connections currently registered across all projects.",
		}),
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "teamboard_connections_total",
			Help: "Total websocket connections accepted and registered.",
		}),
		BroadcastsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "teamboard_broadcasts_total",
			Help: "Total broadcast passes with at least one subscriber.",
		}),
		DeliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "teamboard_delivery_failures_total",
			Help: "Connections pruned because an event could not be delivered to them.",
		}),
		RejectedOpens: factory.NewCounter(prometheus.CounterOpts{
			Name: "teamboard_rejected_opens_total",
			Help: "Websocket opens refused because the project id was invalid.",
		}),
	}
}
