// Package metrics holds the Prometheus collectors for the game server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the server's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	GamesStarted   *prometheus.CounterVec
	Guesses        *prometheus.CounterVec
	GamesWon       *prometheus.CounterVec
	AttemptsToWin  prometheus.Histogram
	ActiveSessions prometheus.Gauge
}

// New builds and registers all collectors under namespace.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GamesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Number of games started, by mode",
		}, []string{"mode"}),
		Guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_total",
			Help:      "Number of guesses, by result (low, high, correct, out_of_range)",
		}, []string{"result"}),
		GamesWon: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_won_total",
			Help:      "Number of games won, by mode",
		}, []string{"mode"}),
		AttemptsToWin: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attempts_to_win",
			Help:      "Attempts taken to find the secret",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live sessions held in memory",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.GamesStarted,
		m.Guesses,
		m.GamesWon,
		m.AttemptsToWin,
		m.ActiveSessions,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry (useful for tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
