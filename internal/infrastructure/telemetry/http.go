package telemetry

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// HTTPMetrics records request counts and latency per route
type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewHTTPMetrics creates the HTTP instruments on meter
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests served"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000))
	if err != nil {
		return nil, err
	}
	return &HTTPMetrics{requests: requests, duration: duration}, nil
}

// Middleware records one measurement per request. Unmatched routes are
// grouped under "unmatched" to keep cardinality bounded.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", c.Writer.Status()),
		)
		ctx := c.Request.Context()
		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
	}
}

// GinMiddlewares returns the tracing, metrics and profiling middlewares for
// the router. Each is only added when its provider was set up.
func (p *Providers) GinMiddlewares(logger *zap.Logger) []gin.HandlerFunc {
	var handlers []gin.HandlerFunc
	if p.Enabled() {
		handlers = append(handlers, otelgin.Middleware(p.cfg.ServiceName,
			otelgin.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/health"
			})))
	}
	if p != nil && p.meter != nil {
		metrics, err := NewHTTPMetrics(p.Meter("billing.http"))
		if err != nil {
			logger.Warn("HTTP metrics unavailable", zap.Error(err))
		} else {
			handlers = append(handlers, metrics.Middleware())
		}
	}
	if p.Profiling() {
		handlers = append(handlers, ProfilingLabels())
	}
	return handlers
}
