// Package metrics exports store activity to Prometheus and OpenTelemetry.
//
// Both exporters are state.Observers; attach them with state.StoreConfig,
// elevation.Config or Store.Observe.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/odvcencio/elevation/state"
)

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "elevation").
	Namespace string

	// Subsystem is the metrics subsystem (default: "store").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for write duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collector.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "elevation",
		Subsystem: "store",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records store events as Prometheus metrics.
//
// Metrics collected:
//   - elevation_store_sets_total: writes by result (commit, noop, error)
//   - elevation_store_silent_commits_total: commits made with notification off
//   - elevation_store_notifications_total: listener deliveries
//   - elevation_store_changed_keys: histogram of keys changed per commit
//   - elevation_store_set_duration_seconds: histogram of write duration
//   - elevation_store_subscribers: live subscriptions at the last commit
//   - elevation_store_version: last committed version
type Collector struct {
	setsTotal     *prometheus.CounterVec
	silentCommits prometheus.Counter
	notifications prometheus.Counter
	changedKeys   prometheus.Histogram
	setDuration   prometheus.Histogram
	subscribers   prometheus.Gauge
	version       prometheus.Gauge
}

var _ state.Observer = (*Collector)(nil)

// NewCollector registers the store metrics and returns a collector.
// It panics if the metrics are already registered with the registry.
func NewCollector(opts ...MetricsOption) *Collector {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		setsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "sets_total",
			Help:        "Total number of store writes by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		silentCommits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "silent_commits_total",
			Help:        "Total number of commits made without notifying subscribers",
			ConstLabels: config.ConstLabels,
		}),

		notifications: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of listener deliveries",
			ConstLabels: config.ConstLabels,
		}),

		changedKeys: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "changed_keys",
			Help:        "Number of top-level keys changed per commit",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 4, 8, 16, 32},
		}),

		setDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "set_duration_seconds",
			Help:        "Store write duration in seconds, excluding notification",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscribers",
			Help:        "Number of live subscriptions at the last commit",
			ConstLabels: config.ConstLabels,
		}),

		version: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "version",
			Help:        "Last committed store version",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveStore records one store event.
func (c *Collector) ObserveStore(ev state.Event) {
	if c == nil {
		return
	}
	switch ev.Kind {
	case state.EventCommit:
		c.setsTotal.WithLabelValues("commit").Inc()
		c.changedKeys.Observe(float64(len(ev.Changed)))
		c.setDuration.Observe(ev.Duration.Seconds())
		c.subscribers.Set(float64(ev.Subscribers))
		c.version.Set(float64(ev.Version))
		if ev.Silent {
			c.silentCommits.Inc()
		}
	case state.EventNoop:
		c.setsTotal.WithLabelValues("noop").Inc()
		c.setDuration.Observe(ev.Duration.Seconds())
	case state.EventError:
		c.setsTotal.WithLabelValues("error").Inc()
	case state.EventNotify:
		c.notifications.Add(float64(ev.Delivered))
	}
}
