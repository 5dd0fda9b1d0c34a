// Package model はドメインモデルを定義する。
package model

import "time"

// Article はニュースプロバイダから取得した記事を表す。
// 生成後は変更しないイミュータブルなスナップショット。
type Article struct {
	Title       string
	Description string
	URL         string
}

// News はニュース取得結果のタグ付きバリアント。
// 取得成功時はArticlesが有効、失敗・0件時はUnavailable=trueとなりReasonのみ有効。
// 消費側は必ずUnavailableで分岐し、失敗時にArticlesを参照してはならない。
type News struct {
	Articles    []Article
	Unavailable bool
	Reason      string
}

// AvailableNews は取得成功のNewsを生成する。
func AvailableNews(articles []Article) News {
	if articles == nil {
		articles = []Article{}
	}
	return News{Articles: articles}
}

// UnavailableNews は取得不可のNewsを生成する。
func UnavailableNews(reason string) News {
	return News{Articles: []Article{}, Unavailable: true, Reason: reason}
}

// WeatherReport は正規化済みの現在天気を表す。
// 単位はメートル法（気温°C、風速km/h）に統一されている。
type WeatherReport struct {
	SourceName   string
	City         string
	Country      string
	TemperatureC float64
	Condition    string
	HumidityPct  int
	WindKph      float64
	FeelsLikeC   float64
	LastUpdated  time.Time
}

// Weather は天気取得結果のタグ付きバリアント。
// 1回の取得につき成功か取得不可のどちらか一方だけが生成される。
// 消費側は必ずAvailableで分岐し、失敗時にReportのフィールドを参照してはならない。
type Weather struct {
	Available bool
	Report    WeatherReport
	Reason    string
}

// AvailableWeather は取得成功のWeatherを生成する。
func AvailableWeather(report WeatherReport) Weather {
	return Weather{Available: true, Report: report}
}

// UnavailableWeather は取得不可のWeatherを生成する。
func UnavailableWeather(reason string) Weather {
	return Weather{Reason: reason}
}

// Task はToDoプロバイダから取得した未完了タスクを表す。
// 取得時点のスナップショットであり、以後のプロバイダ側の状態とは無関係。
type Task struct {
	ID      string
	Content string
	DueDate *time.Time // カレンダー日付粒度。期日なしはnil
}

// Digest は1回の実行で生成されるダイジェスト全体の集約ルート。
// Orchestratorが実行ごとに1回だけ生成し、Rendererが消費する。
// 実行をまたいだキャッシュや再利用は行わない。
type Digest struct {
	RunID         string
	Articles      []Article // 長さは設定上限以下。nil要素を含まない
	Weather       Weather
	TasksToday    []Task
	TasksTomorrow []Task
	GeneratedAt   time.Time // 実行開始時点で固定。実行中の日付比較はすべてこの値を基準にする
}
