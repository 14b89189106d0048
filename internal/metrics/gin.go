package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 未匹配任何路由的请求共用一个 path 标签，避免扫描请求撑大基数。
const unmatchedRoute = "unmatched"

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumekit",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP 请求耗时（秒），同步导出会落在较高的桶里。",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumekit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP 请求总数。",
		},
		[]string{"method", "route", "status"},
	)

	responseBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumekit",
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "响应体大小，主要用于观察导出文件体积。",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"route"},
	)

	requestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "resumekit",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "当前正在处理的 HTTP 请求数量。",
		},
	)
)

// GinMiddleware 按路由模板采集请求指标，例如 /v1/resumes/:id/export。
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		requestTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		if size := c.Writer.Size(); size > 0 {
			responseBytes.WithLabelValues(route).Observe(float64(size))
		}
	}
}
