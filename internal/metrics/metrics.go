package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry 应用私有指标注册表，避免测试重复注册到默认注册表
var Registry = prometheus.NewRegistry()

var (
	// HTTPRequests HTTP 请求计数
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkpost_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration HTTP 请求耗时
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inkpost_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// PostWrites 文章写操作计数
	PostWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkpost_post_writes_total",
			Help: "Post write operations by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	// PostsPublished 定时发布计数
	PostsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkpost_posts_published_total",
			Help: "Scheduled posts flipped to published, by trigger source.",
		},
		[]string{"source"},
	)

	// CacheLookups 文章详情缓存命中统计
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkpost_post_cache_lookups_total",
			Help: "Post detail cache lookups by result.",
		},
		[]string{"result"},
	)

	// LoginAttempts 管理员登录统计
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkpost_admin_login_attempts_total",
			Help: "Admin login attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequests,
		HTTPDuration,
		PostWrites,
		PostsPublished,
		CacheLookups,
		LoginAttempts,
	)
}

// Handler 暴露 Prometheus 指标
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP 记录一次 HTTP 请求
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObservePostWrite 记录文章写操作结果
func ObservePostWrite(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	PostWrites.WithLabelValues(op, outcome).Inc()
}
