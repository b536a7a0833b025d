// Package metrics holds the Prometheus collectors for the chat hub and the
// HTTP surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ConnectionsActive  prometheus.Gauge
	ConnectionsTotal   prometheus.Counter
	ConnectionsDropped prometheus.Counter
	MessagesRelayed    prometheus.Counter
	RequestsTotal      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_connections_active",
			Help: "Number of live websocket connections",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_connections_total",
			Help: "Total number of accepted websocket connections",
		}),
		ConnectionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_connections_dropped_total",
			Help: "Connections removed because their send buffer was full",
		}),
		MessagesRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_relayed_total",
			Help: "Message copies handed to connections",
		}),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
	}

	reg.MustRegister(
		m.ConnectionsActive,
		m.ConnectionsTotal,
		m.ConnectionsDropped,
		m.MessagesRelayed,
		m.RequestsTotal,
	)
	return m
}

// NewRegistry returns a registry with the Go and process collectors
// already registered, plus the handler that serves it.
func NewRegistry() (*prometheus.Registry, http.Handler) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
