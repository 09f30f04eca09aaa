// Package metrics exposes Prometheus counters for the tracker.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tracker"

// Metrics holds the tracker's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	mutations       *prometheus.CounterVec
	syncPushes      *prometheus.CounterVec
	creatureLookups *prometheus.CounterVec
	creditsEarned   prometheus.Gauge
	liveClients     prometheus.Gauge
}

// New registers the tracker collectors plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Record mutations by operation and result.",
		}, []string{"op", "result"}),
		syncPushes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_pushes_total",
			Help:      "Cloud sync pushes by result.",
		}, []string{"result"}),
		creatureLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "creature_lookups_total",
			Help:      "Creature lookups by source (api, cache, fallback).",
		}, []string{"source"}),
		creditsEarned: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "credits_earned",
			Help:      "Total credits earned on the tracked record.",
		}),
		liveClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_clients",
			Help:      "Connected websocket observers.",
		}),
	}
}

// Mutation counts a settled or rejected mutation.
func (m *Metrics) Mutation(op, result string) {
	m.mutations.WithLabelValues(op, result).Inc()
}

// SyncPush counts a cloud sync attempt.
func (m *Metrics) SyncPush(result string) {
	m.syncPushes.WithLabelValues(result).Inc()
}

// CreatureLookup counts where a team member came from.
func (m *Metrics) CreatureLookup(source string) {
	m.creatureLookups.WithLabelValues(source).Inc()
}

// CreditsEarned records the current earned credits.
func (m *Metrics) CreditsEarned(credits int) {
	m.creditsEarned.Set(float64(credits))
}

// LiveClients records the number of connected observers.
func (m *Metrics) LiveClients(n int) {
	m.liveClients.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
