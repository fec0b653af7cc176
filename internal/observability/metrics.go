package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the render
// loop and the forecast feed.
type Metrics struct {
	FramesRendered prometheus.Counter
	FrameDuration  prometheus.Histogram
	EngineRunning  prometheus.Gauge
	DriverErrors   prometheus.Counter

	// Forecast feed metrics.
	ForecastRefreshes   *prometheus.CounterVec // labels: outcome={success,error}
	ForecastLastSuccess prometheus.Gauge
	ForecastMessages    *prometheus.CounterVec // labels: result={accepted,rejected}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_matrix",
			Name:      "frames_rendered_total",
			Help:      "Total frames flushed to the LED driver.",
		}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_matrix",
			Name:      "frame_duration_seconds",
			Help:      "Time spent composing and sending one frame, excluding the inter-frame sleep.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.02, 0.033, 0.05, 0.1},
		}),
		EngineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_matrix",
			Name:      "engine_running",
			Help:      "1 while the render loop is active, 0 after shutdown.",
		}),
		DriverErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_matrix",
			Name:      "driver_errors_total",
			Help:      "LED driver render failures.",
		}),
		ForecastRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_matrix",
			Name:      "forecast_refreshes_total",
			Help:      "Forecast refresh attempts by outcome.",
		}, []string{"outcome"}),
		ForecastLastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_matrix",
			Name:      "forecast_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful forecast refresh.",
		}),
		ForecastMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_matrix",
			Name:      "forecast_messages_total",
			Help:      "Forecast messages consumed from Kafka by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.FramesRendered,
		m.FrameDuration,
		m.EngineRunning,
		m.DriverErrors,
		m.ForecastRefreshes,
		m.ForecastLastSuccess,
		m.ForecastMessages,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FramesRendered:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_matrix", Name: "frames_rendered_total"}),
		FrameDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "storm_matrix", Name: "frame_duration_seconds"}),
		EngineRunning:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "storm_matrix", Name: "engine_running"}),
		DriverErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "storm_matrix", Name: "driver_errors_total"}),
		ForecastRefreshes:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "storm_matrix", Name: "forecast_refreshes_total"}, []string{"outcome"}),
		ForecastLastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "storm_matrix", Name: "forecast_last_success_timestamp_seconds"}),
		ForecastMessages:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "storm_matrix", Name: "forecast_messages_total"}, []string{"result"}),
	}
}
