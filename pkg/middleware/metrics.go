package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics はPrometheusメトリクスを収集するGinミドルウェアを返す。
// リクエスト数とレイテンシをメソッド・パス・ステータス別に記録する。
// パスにはルート登録時のパターン（例: "/webinar/:id/cert-editor"）を使い、
// 生のURLをラベルにしないことでカーディナリティを抑える。
func Metrics(registry prometheus.Registerer) gin.HandlerFunc {
	factory := promauto.With(registry)

	requestsTotal := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webinarhub",
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests handled by the gateway.",
	}, []string{"method", "path", "status"})

	requestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "webinarhub",
		Subsystem: "gateway",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			// NoRouteで処理されるページリクエストはひとつのラベルにまとめる
			path = "page"
		}

		requestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
