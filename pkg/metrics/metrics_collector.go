package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// 上游（后端 API）指标
	upstreamRequestsTotal   *prometheus.CounterVec
	upstreamRequestDuration *prometheus.HistogramVec
	upstreamErrorsTotal     *prometheus.CounterVec
	upstreamNonJSONTotal    prometheus.Counter

	// 限流指标
	rateLimitedTotal *prometheus.CounterVec
}

// NewMetricsCollector 在给定注册器上创建指标收集器
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(reg)
	return &MetricsCollector{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "endpoint"},
		),

		upstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxy_upstream_requests_total",
				Help: "Total number of requests forwarded to the backend API",
			},
			[]string{"method", "status"},
		),

		upstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "proxy_upstream_duration_seconds",
				Help:    "Backend API round trip duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),

		upstreamErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxy_upstream_errors_total",
				Help: "Total number of forwards that failed before a response",
			},
			[]string{"method"},
		),

		upstreamNonJSONTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "proxy_upstream_non_json_total",
				Help: "Total number of upstream bodies wrapped as raw text",
			},
		),

		rateLimitedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
			[]string{"backend"},
		),
	}
}

var (
	globalCollector *MetricsCollector
	once            sync.Once
)

// GetGlobalCollector 获取注册在默认注册器上的全局收集器
func GetGlobalCollector() *MetricsCollector {
	once.Do(func() {
		globalCollector = NewMetricsCollector(prometheus.DefaultRegisterer)
	})
	return globalCollector
}

// RecordHTTPRequest 记录 HTTP 请求
func (mc *MetricsCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration, responseSize int) {
	mc.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	mc.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	if responseSize >= 0 {
		mc.httpResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
	}
}

// RecordUpstream 记录一次成功拿到响应的转发
func (mc *MetricsCollector) RecordUpstream(method string, status int, duration time.Duration) {
	mc.upstreamRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	mc.upstreamRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordUpstreamError 记录网络层失败的转发
func (mc *MetricsCollector) RecordUpstreamError(method string) {
	mc.upstreamErrorsTotal.WithLabelValues(method).Inc()
}

// RecordNonJSON 记录被包装为 raw 的响应体
func (mc *MetricsCollector) RecordNonJSON() {
	mc.upstreamNonJSONTotal.Inc()
}

// RecordRateLimited 记录被限流的请求
func (mc *MetricsCollector) RecordRateLimited(backend string) {
	mc.rateLimitedTotal.WithLabelValues(backend).Inc()
}
