package task

import (
	"time"

	"github.com/hitoshi/morningpost/internal/model"
)

// Classify はタスクを期日で「今日」「明日」の2バケットに分類する。
// 期日が過去・明後日以降・期日なしのタスクはどちらのバケットにも含めない
// （明後日以降のタスクは省略以外の表示を行わない）。
// 副作用もI/Oも持たない純粋関数で、同じ入力に対して常に同じ結果を返す。
// todayは実行開始時点で固定された日付であり、分類中に再評価しない。
func Classify(tasks []model.Task, today time.Time) (dueToday, dueTomorrow []model.Task) {
	dueToday = []model.Task{}
	dueTomorrow = []model.Task{}

	todayKey := dateKey(today)
	tomorrowKey := dateKey(today.AddDate(0, 0, 1))

	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		switch dateKey(*t.DueDate) {
		case todayKey:
			dueToday = append(dueToday, t)
		case tomorrowKey:
			dueTomorrow = append(dueTomorrow, t)
		}
	}

	return dueToday, dueTomorrow
}

// dateKey はカレンダー日付を比較可能な整数に変換する。
// タイムゾーンの異なるtime.Time同士でも、それぞれのロケールでの
// カレンダー日付として比較できる。
func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
