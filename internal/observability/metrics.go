package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the state store and the weather client.
type Metrics struct {
	// Weather provider metrics.
	WeatherRequests    *prometheus.CounterVec // labels: outcome={success,invalid_request,api_error,parse_error,transport_error}
	WeatherAPIDuration prometheus.Histogram

	// State store metrics.
	StateChanges      *prometheus.CounterVec // labels: op={toggle_dark_mode,set_dark_mode,set_location,clear_location,load_weather}
	RefreshesInFlight prometheus.Gauge
	RefreshSkipped    prometheus.Counter
	Subscribers       prometheus.Gauge

	// Publisher metrics.
	EventsPublished    prometheus.Counter
	EventPublishErrors prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.WeatherRequests,
		m.WeatherAPIDuration,
		m.StateChanges,
		m.RefreshesInFlight,
		m.RefreshSkipped,
		m.Subscribers,
		m.EventsPublished,
		m.EventPublishErrors,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics that are not exported anywhere, for
// short-lived commands that have no /metrics endpoint.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_state",
			Name:      "weather_requests_total",
			Help:      "Current-weather lookups by outcome.",
		}, []string{"outcome"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_state",
			Name:      "weather_api_duration_seconds",
			Help:      "Weather provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StateChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_state",
			Name:      "state_changes_total",
			Help:      "State mutations by operation.",
		}, []string{"op"}),
		RefreshesInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_state",
			Name:      "refreshes_in_flight",
			Help:      "Weather refreshes currently waiting on the provider.",
		}),
		RefreshSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_state",
			Name:      "refresh_skipped_total",
			Help:      "Refreshes skipped because no usable coordinate was set.",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_state",
			Name:      "subscribers",
			Help:      "Registered state observers.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_state",
			Name:      "events_published_total",
			Help:      "State change events written to Kafka.",
		}),
		EventPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_state",
			Name:      "event_publish_errors_total",
			Help:      "State change events that failed to publish.",
		}),
	}
}
