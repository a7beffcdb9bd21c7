// Package metrics exposes Prometheus counters for deck sessions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the server's metrics on its own registry, so several
// servers (and tests) can coexist in one process. A nil *Collector is valid
// and records nothing.
type Collector struct {
	registry *prometheus.Registry

	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter
	Keys           prometheus.Counter
	SlideShows     *prometheus.CounterVec
	BookmarkOps    *prometheus.CounterVec
	Reloads        prometheus.Counter
}

// NewCollector creates and registers the metrics under namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of connected deck sessions",
		}),
		SessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of deck sessions opened",
		}),
		Keys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_total",
			Help:      "Total number of key events received",
		}),
		SlideShows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "slide_shows_total",
				Help:      "Slides made current, by slide kind",
			},
			[]string{"kind"},
		),
		BookmarkOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bookmark_operations_total",
				Help:      "Bookmark store operations",
			},
			[]string{"operation", "status"},
		),
		Reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Reload broadcasts triggered by file changes",
		}),
	}

	registry.MustRegister(
		c.SessionsActive,
		c.SessionsTotal,
		c.Keys,
		c.SlideShows,
		c.BookmarkOps,
		c.Reloads,
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.SessionsActive.Inc()
	c.SessionsTotal.Inc()
}

func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.SessionsActive.Dec()
}

func (c *Collector) KeyReceived() {
	if c == nil {
		return
	}
	c.Keys.Inc()
}

func (c *Collector) SlideShown(kind string) {
	if c == nil {
		return
	}
	c.SlideShows.WithLabelValues(kind).Inc()
}

// BookmarkOp records a store operation; err decides the status label.
func (c *Collector) BookmarkOp(op string, err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.BookmarkOps.WithLabelValues(op, status).Inc()
}

func (c *Collector) Reloaded() {
	if c == nil {
		return
	}
	c.Reloads.Inc()
}
