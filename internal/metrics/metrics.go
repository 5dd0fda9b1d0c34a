// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ソース名のラベル値。アダプタとオーケストレータで共通に使用する。
const (
	SourceTasks   = "tasks"
	SourceNews    = "news"
	SourceWeather = "weather"
)

// Collector はメトリクス収集のインターフェース。
// オーケストレータ・各アダプタ・配送層から利用する。
type Collector interface {
	RecordRun()
	RecordSourceFailure(source string)
	RecordFetchLatency(source string, duration time.Duration)
	RecordDelivery(success bool)
}

// PromCollector はPrometheusメトリクスを収集するCollector実装。
type PromCollector struct {
	runs         prometheus.Counter
	sourceFail   *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	deliveries   *prometheus.CounterVec
}

// NewCollector は新しいPromCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *PromCollector {
	c := &PromCollector{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "morningpost_digest_runs_total",
			Help: "ダイジェスト生成実行の合計数",
		}),
		sourceFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "morningpost_source_failure_total",
			Help: "ソース別の取得失敗の合計数",
		}, []string{"source"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "morningpost_fetch_latency_seconds",
			Help:    "ソース別のフェッチレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "morningpost_delivery_total",
			Help: "メール配送結果別の合計数",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.runs,
		c.sourceFail,
		c.fetchLatency,
		c.deliveries,
	)

	return c
}

// RecordRun はダイジェスト生成実行を記録する。
func (c *PromCollector) RecordRun() {
	c.runs.Inc()
}

// RecordSourceFailure はソース取得失敗を記録する。
func (c *PromCollector) RecordSourceFailure(source string) {
	c.sourceFail.WithLabelValues(source).Inc()
}

// RecordFetchLatency はソース別のフェッチレイテンシを記録する。
func (c *PromCollector) RecordFetchLatency(source string, duration time.Duration) {
	c.fetchLatency.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordDelivery はメール配送結果を記録する。
func (c *PromCollector) RecordDelivery(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.deliveries.WithLabelValues(outcome).Inc()
}

// Nop は何も記録しないCollector実装。テストで使用する。
type Nop struct{}

// RecordRun は何もしない。
func (Nop) RecordRun() {}

// RecordSourceFailure は何もしない。
func (Nop) RecordSourceFailure(source string) {}

// RecordFetchLatency は何もしない。
func (Nop) RecordFetchLatency(source string, duration time.Duration) {}

// RecordDelivery は何もしない。
func (Nop) RecordDelivery(success bool) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
