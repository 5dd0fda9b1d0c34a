// Package digest は各ソースの並行取得とダイジェストの組み立て・実行を行う。
package digest

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/morningpost/internal/metrics"
	"github.com/hitoshi/morningpost/internal/model"
	"github.com/hitoshi/morningpost/internal/task"
)

// TaskFetcher はタスク取得のインターフェース。
// 失敗は実装側で吸収され、空リストが返る。
type TaskFetcher interface {
	FetchTasks(ctx context.Context) []model.Task
}

// NewsFetcher はニュース取得のインターフェース。
type NewsFetcher interface {
	FetchNews(ctx context.Context, date time.Time, categories string, limit int) model.News
}

// WeatherFetcher は天気取得（フォールバックチェーン込み）のインターフェース。
type WeatherFetcher interface {
	Fetch(ctx context.Context, city, country string) model.Weather
}

// Options はダイジェスト構築の設定。
type Options struct {
	City           string
	Country        string
	NewsCategories string
	NewsLimit      int
	FetchTimeout   time.Duration
}

// Builder は3つのソースを並行に取得してDigestを組み立てるオーケストレータ。
// 各ソースの失敗はそれぞれの取得不可バリアントとしてモデル内に表現され、
// 他のソースの取得を妨げない。ソース間に共有可変状態はなく、
// 各ゴルーチンは自身が所有する結果だけを書き込むためロックは不要。
type Builder struct {
	tasks     TaskFetcher
	news      NewsFetcher
	weather   WeatherFetcher
	logger    *slog.Logger
	collector metrics.Collector
	opts      Options
}

// NewBuilder はBuilderの新しいインスタンスを生成する。
func NewBuilder(tasks TaskFetcher, news NewsFetcher, weather WeatherFetcher, logger *slog.Logger, collector metrics.Collector, opts Options) *Builder {
	return &Builder{
		tasks:     tasks,
		news:      news,
		weather:   weather,
		logger:    logger,
		collector: collector,
		opts:      opts,
	}
}

// Build は1回分のダイジェストを構築する。
// タスク・ニュース・天気の3つのフェッチを並行に実行し、全結果が揃ってから
// Digestを組み立てる。ニュースと天気はどちらも純粋なI/O待ちのため、
// 合計レイテンシは両者の和ではなく最大値に近づく。
// 部分的なダイジェストを途中で出力することはない。
//
// GeneratedAtは実行開始時点で1回だけ確定し、実行内のすべての日付比較に
// 一貫して使用する。実行が日付をまたいでも「今日」は再評価されない。
func (b *Builder) Build(ctx context.Context) model.Digest {
	generatedAt := time.Now()
	runID := uuid.NewString()

	b.collector.RecordRun()
	b.logger.Info("ダイジェスト構築を開始します",
		slog.String("run_id", runID),
	)

	var (
		tasks   []model.Task
		news    model.News
		weather model.Weather
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tasks = b.fetchTasks(gctx)
		return nil
	})
	g.Go(func() error {
		news = b.fetchNews(gctx, generatedAt)
		return nil
	})
	g.Go(func() error {
		weather = b.fetchWeather(gctx)
		return nil
	})

	// 各フェッチは失敗をバリアントとして返すためエラーは発生しない。
	_ = g.Wait()

	dueToday, dueTomorrow := task.Classify(tasks, generatedAt)

	b.logger.Info("ダイジェスト構築が完了しました",
		slog.String("run_id", runID),
		slog.Int("articles", len(news.Articles)),
		slog.Bool("weather_available", weather.Available),
		slog.Int("tasks_today", len(dueToday)),
		slog.Int("tasks_tomorrow", len(dueTomorrow)),
	)

	return model.Digest{
		RunID:         runID,
		Articles:      news.Articles,
		Weather:       weather,
		TasksToday:    dueToday,
		TasksTomorrow: dueTomorrow,
		GeneratedAt:   generatedAt,
	}
}

// fetchTasks はタイムアウト付きでタスクを取得し、レイテンシを記録する。
func (b *Builder) fetchTasks(ctx context.Context) []model.Task {
	tctx, cancel := context.WithTimeout(ctx, b.opts.FetchTimeout)
	defer cancel()

	start := time.Now()
	tasks := b.tasks.FetchTasks(tctx)
	b.collector.RecordFetchLatency(metrics.SourceTasks, time.Since(start))
	return tasks
}

// fetchNews はタイムアウト付きでニュースを取得し、レイテンシを記録する。
func (b *Builder) fetchNews(ctx context.Context, date time.Time) model.News {
	nctx, cancel := context.WithTimeout(ctx, b.opts.FetchTimeout)
	defer cancel()

	start := time.Now()
	news := b.news.FetchNews(nctx, date, b.opts.NewsCategories, b.opts.NewsLimit)
	b.collector.RecordFetchLatency(metrics.SourceNews, time.Since(start))
	return news
}

// fetchWeather は天気を取得し、レイテンシを記録する。
// プロバイダ呼び出しごとのタイムアウトはチェーン側で適用される。
func (b *Builder) fetchWeather(ctx context.Context) model.Weather {
	start := time.Now()
	weather := b.weather.Fetch(ctx, b.opts.City, b.opts.Country)
	b.collector.RecordFetchLatency(metrics.SourceWeather, time.Since(start))
	return weather
}
