// Package weather は天気プロバイダからの現在天気取得を提供する。
// 一次・二次プロバイダのフォールバックチェーンと、プロバイダごとに異なる
// 単位系のメートル法（°C、km/h）への正規化を含む。
package weather

import (
	"context"

	"github.com/hitoshi/morningpost/internal/model"
)

// Provider は天気プロバイダの抽象。
// Fetchは正規化済みのWeatherReportを返すか、失敗理由を示すエラーを返す。
// 実装はリトライを行わない。1回の呼び出しで1回だけプロバイダを叩く。
type Provider interface {
	// Name はレポートのsourceNameに使用されるプロバイダ名を返す。
	Name() string
	// Fetch は指定地点の現在天気を取得して正規化する。
	Fetch(ctx context.Context, city, country string) (model.WeatherReport, error)
}

// observationTimeLayout は両プロバイダが観測時刻に使用する形式。
const observationTimeLayout = "2006-01-02 15:04"

// msToKph は風速をm/sからkm/hに換算する。
// 一次プロバイダはm/s、二次プロバイダはkm/hで風速を返すため、
// メートル法（km/h）への正規化はアダプタ層の必須の変換となる。
func msToKph(ms float64) float64 {
	return ms * 3.6
}
