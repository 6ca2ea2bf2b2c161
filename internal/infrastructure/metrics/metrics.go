package metrics

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors. A nil *Metrics is
// valid and records nothing, which keeps services usable without a registry.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	aiCallsTotal    *prometheus.CounterVec
	aiCallDuration  *prometheus.HistogramVec
	ingestedTotal   *prometheus.CounterVec
	tasksStored     prometheus.Gauge
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		aiCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_calls_total",
				Help: "Calls to the language model by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		aiCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_call_duration_seconds",
				Help:    "Language model round trip duration in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"operation"},
		),
		ingestedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_task_descriptors_total",
				Help: "Tool-call task descriptors by ingestion result",
			},
			[]string{"result"},
		),
		tasksStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tasks_stored",
			Help: "Number of tasks in the store",
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.aiCallsTotal,
		m.aiCallDuration,
		m.ingestedTotal,
		m.tasksStored,
	)

	return m
}

// Middleware records request counts and latencies.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			m.requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			m.requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// ObserveAICall records one language model call.
func (m *Metrics) ObserveAICall(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.aiCallsTotal.WithLabelValues(operation, outcome).Inc()
	m.aiCallDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveIngestion records accepted and rejected descriptors of one tool call.
func (m *Metrics) ObserveIngestion(accepted, rejected int) {
	if m == nil {
		return
	}
	m.ingestedTotal.WithLabelValues("accepted").Add(float64(accepted))
	m.ingestedTotal.WithLabelValues("rejected").Add(float64(rejected))
}

// SetTasksStored updates the task count gauge.
func (m *Metrics) SetTasksStored(n int) {
	if m == nil {
		return
	}
	m.tasksStored.Set(float64(n))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
