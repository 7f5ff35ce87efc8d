// Package stats exposes a small set of prometheus counters/gauges per
// server.Server (SPEC_FULL.md §4.13).
package stats

import "github.com/prometheus/client_golang/prometheus"

// Collector registers and updates the metrics for one Server instance.
type Collector struct {
	ConnectionsActive prometheus.Gauge
	BytesSent         prometheus.Counter
	PacketsDropped    prometheus.Counter
	ResourcesActive   prometheus.Gauge
}

// NewCollector builds and registers a fresh Collector against reg. Pass
// prometheus.DefaultRegisterer to expose metrics process-wide, or a
// dedicated prometheus.NewRegistry() in tests to avoid collisions.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scenewire_connections_active",
			Help: "Number of committed connections currently attached to the server.",
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scenewire_bytes_sent_total",
			Help: "Total bytes written across all connection sinks.",
		}),
		PacketsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scenewire_packets_dropped_total",
			Help: "Packets discarded for a bad marker or a bad CRC.",
		}),
		ResourcesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scenewire_resources_active",
			Help: "Mesh resource bodies currently defined on the server.",
		}),
	}
	reg.MustRegister(c.ConnectionsActive, c.BytesSent, c.PacketsDropped, c.ResourcesActive)
	return c
}
