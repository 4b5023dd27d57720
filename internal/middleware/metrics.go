package middleware

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "titanmarket"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "http_in_flight_requests",
			Help:      "Number of HTTP requests being served",
		},
	)

	listingsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "listings_created_total",
			Help:      "Listings created, by category",
		},
		[]string{"category"},
	)

	messagesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_sent_total",
			Help:      "Chat messages accepted",
		},
	)

	reportsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reports_submitted_total",
			Help:      "Reports submitted, by reason",
		},
		[]string{"reason"},
	)
)

// Metrics records request count and latency per route template
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		c.Next()
		httpInFlight.Dec()

		// route templates keep label cardinality bounded
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RegisterWSClientsGauge exposes the open WebSocket connection count. Call once.
func RegisterWSClientsGauge(count func() int) {
	promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "ws_connected_clients",
			Help:      "Open WebSocket connections on this instance",
		},
		func() float64 { return float64(count()) },
	)
}

// RegisterDBStatsGauges exposes connection pool usage. Call once.
func RegisterDBStatsGauges(stats func() sql.DBStats) {
	promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "db_connections_in_use",
			Help:      "Database connections currently in use",
		},
		func() float64 { return float64(stats().InUse) },
	)
	promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "db_connections_idle",
			Help:      "Idle database connections",
		},
		func() float64 { return float64(stats().Idle) },
	)
}

func CountListingCreated(category string) {
	listingsCreatedTotal.WithLabelValues(category).Inc()
}

func CountMessageSent() {
	messagesSentTotal.Inc()
}

func CountReportSubmitted(reason string) {
	reportsSubmittedTotal.WithLabelValues(reason).Inc()
}
