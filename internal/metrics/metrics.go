package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPリクエスト数
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podstore_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPリクエスト所要時間
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "podstore_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// 注文数（成功/失敗別）
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podstore_orders_total",
			Help: "Total number of orders",
		},
		[]string{"status"},
	)

	// キャプチャ金額（ドル）
	PaymentAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "podstore_payment_amount_dollars",
			Help:    "Captured payment amounts in dollars",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// サーキットブレーカー状態（0=closed, 1=open, 2=half-open）
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "podstore_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"circuit_name"},
	)

	// サーキットブレーカー失敗数
	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podstore_circuit_breaker_failures_total",
			Help: "Total number of circuit breaker failures",
		},
		[]string{"circuit_name"},
	)

	// キャプチャ済みなのにフルフィルメント未送信の件数
	FulfillmentFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "podstore_fulfillment_failures_total",
			Help: "Total number of post-capture fulfillment submission failures",
		},
	)
)

// Echo用のメトリクスミドルウェア。
func PrometheusMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)

			RequestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				status,
			).Inc()

			RequestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration)

			return err
		}
	}
}
