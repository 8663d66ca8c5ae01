package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application.
// A nil *Collector is valid and records nothing.
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	PokemonCreated prometheus.Counter
	PokemonDeleted prometheus.Counter
	SeedRuns       *prometheus.CounterVec

	// Repository metrics
	DBOperations *prometheus.CounterVec
	DBDuration   *prometheus.HistogramVec
}

// NewCollector creates a metrics collector with the given namespace on its
// own registry, so several collectors can coexist in one process (tests).
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		PokemonCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pokemon_created_total",
				Help:      "Total number of pokemon records created",
			},
		),
		PokemonDeleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pokemon_deleted_total",
				Help:      "Total number of pokemon records deleted",
			},
		),
		SeedRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "seed_runs_total",
				Help:      "Total number of seed executions by outcome",
			},
			[]string{"status"},
		),
		DBOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_operations_total",
				Help:      "Total number of database operations",
			},
			[]string{"operation", "status"},
		),
		DBDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_operation_duration_seconds",
				Help:      "Database operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.PokemonCreated,
		c.PokemonDeleted,
		c.SeedRuns,
		c.DBOperations,
		c.DBDuration,
	)
	return c
}

// RecordPokemonCreated adds n to the created counter.
func (c *Collector) RecordPokemonCreated(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.PokemonCreated.Add(float64(n))
}

// RecordPokemonDeleted adds n to the deleted counter.
func (c *Collector) RecordPokemonDeleted(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.PokemonDeleted.Add(float64(n))
}

// RecordSeedRun counts one seed execution with status "success" or "failure".
func (c *Collector) RecordSeedRun(status string) {
	if c == nil {
		return
	}
	c.SeedRuns.WithLabelValues(status).Inc()
}

// RecordDBOperation counts one store call and observes its duration.
func (c *Collector) RecordDBOperation(operation, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.DBOperations.WithLabelValues(operation, status).Inc()
	c.DBDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
