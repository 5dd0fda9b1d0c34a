// Package render はダイジェストのHTML・プレーンテキスト描画を提供する。
// コアのダイジェストモデルを読み取り専用で消費し、プロバイダへ一切アクセスしない。
package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/hitoshi/morningpost/internal/model"
)

// taskEmojis はタスクの装飾マーカーに使用する絵文字。
// 表示上の飾りであり、タスクのインデックスに応じて順番に巡回する。
var taskEmojis = []string{"🚀", "💻", "📚", "🎨", "🔧", "📝", "🔬", "🏋️", "🧘", "🎵"}

// TaskEmoji はi番目のタスクに付ける装飾絵文字を返す。
// 状態を持たず、同じインデックスに対して常に同じ絵文字を返す。
func TaskEmoji(i int) string {
	return taskEmojis[i%len(taskEmojis)]
}

// Renderer はダイジェストをメール本文に描画する。
type Renderer struct {
	tmpl *template.Template
}

// New はRendererの新しいインスタンスを生成する。
func New() (*Renderer, error) {
	tmpl, err := template.New("digest").Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("テンプレートのパースに失敗しました: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// taskView はテンプレートに渡すタスクの表示用データ。
type taskView struct {
	Emoji   string
	Content string
}

// viewData はテンプレートに渡すダイジェスト全体の表示用データ。
type viewData struct {
	GeneratedAt      string
	Articles         []model.Article
	WeatherAvailable bool
	Weather          model.WeatherReport
	WeatherUpdated   string
	WeatherReason    string
	TasksToday       []taskView
	TasksTomorrow    []taskView
	TodayCount       int
	TodayLabel       string
	ProgressPct      int
}

// newViewData はダイジェストから表示用データを組み立てる。
func newViewData(d model.Digest) viewData {
	v := viewData{
		GeneratedAt:      d.GeneratedAt.Format("2006-01-02"),
		Articles:         d.Articles,
		WeatherAvailable: d.Weather.Available,
		WeatherReason:    d.Weather.Reason,
		TodayCount:       len(d.TasksToday),
	}

	if d.Weather.Available {
		v.Weather = d.Weather.Report
		if !d.Weather.Report.LastUpdated.IsZero() {
			v.WeatherUpdated = d.Weather.Report.LastUpdated.Format("2006-01-02 15:04")
		}
	}

	for i, t := range d.TasksToday {
		v.TasksToday = append(v.TasksToday, taskView{Emoji: TaskEmoji(i), Content: t.Content})
	}
	for i, t := range d.TasksTomorrow {
		v.TasksTomorrow = append(v.TasksTomorrow, taskView{Emoji: TaskEmoji(i), Content: t.Content})
	}

	v.TodayLabel = "task"
	if v.TodayCount > 1 {
		v.TodayLabel = "tasks"
	}

	// 今日のタスク1件あたり10%でプログレスバーを埋める。100%で頭打ち。
	v.ProgressPct = v.TodayCount * 10
	if v.ProgressPct > 100 {
		v.ProgressPct = 100
	}

	return v
}

// RenderHTML はダイジェストをHTMLメール本文に描画する。
func (r *Renderer) RenderHTML(d model.Digest) (string, error) {
	var buf strings.Builder
	if err := r.tmpl.Execute(&buf, newViewData(d)); err != nil {
		return "", fmt.Errorf("テンプレートの実行に失敗しました: %w", err)
	}
	return buf.String(), nil
}

// RenderText はダイジェストをプレーンテキストのフォールバック本文に描画する。
func (r *Renderer) RenderText(d model.Digest) string {
	var b strings.Builder

	b.WriteString("Good morning! Here's your update for " + d.GeneratedAt.Format("2006-01-02") + ".\n\n")

	b.WriteString("---- NEWS ----\n")
	if len(d.Articles) == 0 {
		b.WriteString("No news found.\n")
	}
	for _, a := range d.Articles {
		fmt.Fprintf(&b, "%s\n%s\n%s\n\n", a.Title, a.Description, a.URL)
	}

	b.WriteString("\n---- WEATHER ----\n")
	if d.Weather.Available {
		w := d.Weather.Report
		fmt.Fprintf(&b, "Weather in %s, %s: %.1f°C, %s. Feels like %.1f°C, humidity %d%%, wind %.1f km/h.\n",
			w.City, w.Country, w.TemperatureC, w.Condition, w.FeelsLikeC, w.HumidityPct, w.WindKph)
	} else {
		b.WriteString("Weather information is unavailable.\n")
	}

	b.WriteString("\n---- TO-DO LIST ----\n")
	if len(d.TasksToday) == 0 && len(d.TasksTomorrow) == 0 {
		b.WriteString("Nothing due today or tomorrow.\n")
	}
	if len(d.TasksToday) > 0 {
		b.WriteString("Today:\n")
		for _, t := range d.TasksToday {
			fmt.Fprintf(&b, "  - %s\n", t.Content)
		}
	}
	if len(d.TasksTomorrow) > 0 {
		b.WriteString("Tomorrow:\n")
		for _, t := range d.TasksTomorrow {
			fmt.Fprintf(&b, "  - %s\n", t.Content)
		}
	}

	return b.String()
}
