// Package metrics exposes prometheus collectors for cache and request outcomes.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "webform"

// Metrics holds the collectors registered on a single registry.
type Metrics struct {
	registry *prometheus.Registry

	CacheLookups *prometheus.CounterVec
	Requests     *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Form meta cache lookups by namespace and result",
		}, []string{"namespace", "result"}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Public endpoint responses by route and status code",
		}, []string{"route", "code"}),
	}
}

// ObserveCache counts a cache lookup.
func (m *Metrics) ObserveCache(ns string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(ns, result).Inc()
}

// ObserveRequest counts a response.
func (m *Metrics) ObserveRequest(route string, status int) {
	m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Registry returns the backing registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
