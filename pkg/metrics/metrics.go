// Package metrics exposes Prometheus collectors for component renders and
// partial cache lookups. A Collector satisfies gotemplate.Observer and can be
// passed to gotemplate.WithMetrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name unless WithNamespace overrides it.
const DefaultNamespace = "componentkit"

// Config holds the collector options.
type Config struct {
	// Namespace for all metrics. Default: "componentkit".
	Namespace string

	// Subsystem for all metrics. Optional.
	Subsystem string

	// ConstLabels are attached to every metric.
	ConstLabels prometheus.Labels

	// Buckets for the render duration histogram.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry for metrics. Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metric namespace.
func WithNamespace(ns string) Option {
	return func(c *Config) {
		c.Namespace = ns
	}
}

// WithSubsystem sets the metric subsystem.
func WithSubsystem(sub string) Option {
	return func(c *Config) {
		c.Subsystem = sub
	}
}

// WithConstLabels sets labels attached to every metric.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets for render durations.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the registerer the collectors are registered with.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = reg
	}
}

// Collector records render and cache events.
type Collector struct {
	renders  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	partials *prometheus.CounterVec
}

// New registers the collectors and returns them. Registering twice against
// the same registry panics, as promauto does.
func New(opts ...Option) *Collector {
	config := Config{
		Namespace: DefaultNamespace,
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&config)
		}
	}

	factory := promauto.With(config.Registry)

	return &Collector{
		renders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "component_renders_total",
				Help:        "Total number of component renders",
				ConstLabels: config.ConstLabels,
			},
			[]string{"component", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "component_render_duration_seconds",
				Help:        "Component render duration in seconds",
				ConstLabels: config.ConstLabels,
				Buckets:     config.Buckets,
			},
			[]string{"component"},
		),
		partials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "partial_cache_requests_total",
				Help:        "Total number of partial cache lookups by result",
				ConstLabels: config.ConstLabels,
			},
			[]string{"result"},
		),
	}
}

// ObserveComponent records one component render.
func (c *Collector) ObserveComponent(name string, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.renders.WithLabelValues(name, status).Inc()
	c.duration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// ObservePartial records one partial cache lookup.
func (c *Collector) ObservePartial(_ string, hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.partials.WithLabelValues(result).Inc()
}
