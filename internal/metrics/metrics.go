// Package metrics exposes Prometheus instruments for game sessions and path queries.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors recorded by the game service.
type Metrics struct {
	registry prometheus.Gatherer

	SessionsCreated prometheus.Counter
	ActiveSessions  prometheus.Gauge
	StateChanges    *prometheus.CounterVec
	MovesTotal      *prometheus.CounterVec
	PathQueries     prometheus.Counter
	PathLength      prometheus.Histogram
	RequestDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lostknight_sessions_created_total",
			Help: "Total number of game sessions created",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lostknight_sessions_active",
			Help: "Number of sessions held in memory",
		}),
		StateChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lostknight_state_changes_total",
				Help: "Session state transitions by target state",
			},
			[]string{"state"},
		),
		MovesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lostknight_moves_total",
				Help: "Knight moves by outcome",
			},
			[]string{"result"},
		),
		PathQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lostknight_path_queries_total",
			Help: "Shortest-path queries served",
		}),
		PathLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lostknight_path_moves",
			Help:    "Length in moves of returned shortest paths",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		}),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lostknight_http_request_duration_seconds",
				Help:    "Duration of API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
	reg.MustRegister(
		m.SessionsCreated,
		m.ActiveSessions,
		m.StateChanges,
		m.MovesTotal,
		m.PathQueries,
		m.PathLength,
		m.RequestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
