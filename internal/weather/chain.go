package weather

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/morningpost/internal/metrics"
	"github.com/hitoshi/morningpost/internal/model"
)

// Chain は一次・二次プロバイダを順に試すフォールバックチェーン。
// リトライループではない: 各プロバイダは1回の実行につきちょうど1回だけ試行され、
// 二次プロバイダの成功後に一次プロバイダへ再試行することもない。
// プロバイダの試行順序は固定（常に一次が先）。
type Chain struct {
	primary   Provider
	secondary Provider
	logger    *slog.Logger
	collector metrics.Collector
	timeout   time.Duration // プロバイダ呼び出し1回ごとのタイムアウト
}

// NewChain はChainの新しいインスタンスを生成する。
// timeoutはチェーン全体ではなくプロバイダ呼び出し1回ごとに適用される。
// 一次プロバイダのタイムアウトが二次プロバイダの時間を食い潰すことはない。
func NewChain(primary, secondary Provider, logger *slog.Logger, collector metrics.Collector, timeout time.Duration) *Chain {
	return &Chain{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
		collector: collector,
		timeout:   timeout,
	}
}

// Fetch は一次プロバイダを試し、失敗した場合のみ二次プロバイダを試す。
// 一次プロバイダが成功した場合、二次プロバイダは呼び出されない。
// 両方失敗した場合は両方の失敗理由を含む取得不可バリアントを返す。
// エラーを送出することはない。
func (c *Chain) Fetch(ctx context.Context, city, country string) model.Weather {
	report, primaryErr := c.attempt(ctx, c.primary, city, country)
	if primaryErr == nil {
		return model.AvailableWeather(report)
	}

	c.logger.Warn("一次天気プロバイダが失敗したため二次プロバイダにフォールバックします",
		slog.String("provider", c.primary.Name()),
		slog.String("error", primaryErr.Error()),
	)

	report, secondaryErr := c.attempt(ctx, c.secondary, city, country)
	if secondaryErr == nil {
		return model.AvailableWeather(report)
	}

	c.logger.Error("天気情報を取得できませんでした",
		slog.String("primary_error", primaryErr.Error()),
		slog.String("secondary_error", secondaryErr.Error()),
	)
	c.collector.RecordSourceFailure(metrics.SourceWeather)

	reason := fmt.Sprintf("%s: %v; %s: %v",
		c.primary.Name(), primaryErr,
		c.secondary.Name(), secondaryErr,
	)
	return model.UnavailableWeather(reason)
}

// attempt は1つのプロバイダをタイムアウト付きで1回だけ試行する。
func (c *Chain) attempt(ctx context.Context, p Provider, city, country string) (model.WeatherReport, error) {
	pctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return p.Fetch(pctx, city, country)
}
