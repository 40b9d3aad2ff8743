// Package metrics provides Prometheus metrics for the Goblin Bookie portal.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goblin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goblin_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Price API Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goblin_upstream_requests_total",
			Help: "Total number of price API requests by endpoint and result",
		},
		[]string{"endpoint", "result"}, // result: "ok", "not_found", "error"
	)

	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goblin_upstream_latency_seconds",
			Help:    "Price API call latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"endpoint"},
	)

	UpstreamRateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "goblin_upstream_rate_limit_wait_seconds",
			Help:    "Time spent waiting on the outbound rate limiter",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)

	// Card Detail Cache Metrics
	DetailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goblin_detail_cache_hits_total",
			Help: "Card detail cache hit count",
		},
	)

	DetailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goblin_detail_cache_misses_total",
			Help: "Card detail cache miss count",
		},
	)

	DetailSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goblin_detail_source_total",
			Help: "Where card details were served from",
		},
		[]string{"source"}, // "cache", "live", "snapshot"
	)

	// Refresh Worker Metrics
	SnapshotRefreshesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goblin_snapshot_refreshes_total",
			Help: "Total number of stored card snapshots refreshed",
		},
	)

	RefreshQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "goblin_refresh_queue_size",
			Help: "Number of cards waiting in the priority refresh queue",
		},
	)

	RefreshBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "goblin_refresh_batch_duration_seconds",
			Help:    "Time taken to process a snapshot refresh batch",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	StoredSnapshots = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "goblin_stored_snapshots",
			Help: "Number of card snapshots in the database",
		},
	)
)

// GinMiddleware records request count and latency per route template
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
