package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "digmap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "digmap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.05, 0.25, 1, 2.5, 5, 10, 30, 60},
	}, []string{"method", "path"})

	// Pipeline metrics
	SourceFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "digmap",
		Subsystem: "scrape",
		Name:      "fetches_total",
		Help:      "Source fetches by outcome (ok or a failure reason)",
	}, []string{"source", "outcome"})

	SourceFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "digmap",
		Subsystem: "scrape",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of a single source fetch including all stages",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20},
	}, []string{"source"})

	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "digmap",
		Subsystem: "ai",
		Name:      "generations_total",
		Help:      "Narrative generations by mode and outcome",
	}, []string{"mode", "outcome"})

	UpstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "digmap",
		Subsystem: "upstream",
		Name:      "failures_total",
		Help:      "Failures absorbed at a component boundary",
	}, []string{"component", "reason"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "digmap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "digmap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
