// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordUserCreated()
	RecordBlogCreated()
	RecordHTTPRequest(statusCode int, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	usersCreated    prometheus.Counter
	blogsCreated    prometheus.Counter
	httpRequests    *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bloglist_users_created_total",
			Help: "作成されたユーザーの合計数",
		}),
		blogsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bloglist_blogs_created_total",
			Help: "作成されたブログの合計数",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloglist_http_requests_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloglist_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.usersCreated,
		c.blogsCreated,
		c.httpRequests,
		c.requestDuration,
	)

	return c
}

// RecordUserCreated はユーザー作成を記録する。
func (c *Collector) RecordUserCreated() {
	c.usersCreated.Inc()
}

// RecordBlogCreated はブログ作成を記録する。
func (c *Collector) RecordBlogCreated() {
	c.blogsCreated.Inc()
}

// RecordHTTPRequest はHTTPステータスコードと処理時間を記録する。
func (c *Collector) RecordHTTPRequest(statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.requestDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var _ MetricsCollector = (*Collector)(nil)
