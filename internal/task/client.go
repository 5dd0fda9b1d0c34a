// Package task はToDoプロバイダからのタスク取得と期日分類を提供する。
// Todoist REST APIの呼び出しと、純粋関数としての期日バケット分類を含む。
package task

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/morningpost/internal/metrics"
	"github.com/hitoshi/morningpost/internal/model"
)

// defaultEndpoint はTodoist REST APIの未完了タスク一覧エンドポイント。
const defaultEndpoint = "https://api.todoist.com/rest/v2/tasks"

// dueDateLayout はプロバイダが返す期日の形式。カレンダー日付粒度で時刻は持たない。
const dueDateLayout = "2006-01-02"

// Client はToDoプロバイダのクライアント。
// プロバイダ側のあらゆる失敗（認証・ネットワーク・不正レスポンス）を吸収し、
// 呼び出し元には空リストを返す。エラーを送出することはない。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	collector  metrics.Collector
	apiKey     string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, collector metrics.Collector, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		collector:  collector,
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
	}
}

// SetEndpoint はプロバイダのエンドポイントを差し替える。
// ステージング環境や結合テストで使用する。
func (c *Client) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

// todoistTask はプロバイダのタスクレコード。
type todoistTask struct {
	ID      string      `json:"id"`
	Content string      `json:"content"`
	Due     *todoistDue `json:"due"`
}

// todoistDue はプロバイダの期日フィールド。
type todoistDue struct {
	Date string `json:"date"`
}

// FetchTasks は未完了タスクの一覧を取得して正規化する。
// 部分的な結果は返さない: 正規化済みの全リストか、失敗時の空リストのどちらか。
func (c *Client) FetchTasks(ctx context.Context) []model.Task {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return c.unavailable("リクエスト作成失敗", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.unavailable("HTTPリクエスト失敗", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("ToDoプロバイダがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		c.collector.RecordSourceFailure(metrics.SourceTasks)
		return []model.Task{}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.unavailable("レスポンスボディの読み取り失敗", err)
	}

	var records []todoistTask
	if err := json.Unmarshal(body, &records); err != nil {
		return c.unavailable("レスポンスJSONのパース失敗", err)
	}

	tasks := make([]model.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, model.Task{
			ID:      r.ID,
			Content: r.Content,
			DueDate: c.parseDueDate(r.ID, r.Due),
		})
	}

	c.logger.Info("タスクを取得しました", slog.Int("count", len(tasks)))
	return tasks
}

// parseDueDate はプロバイダの期日フィールドを正規化する。
// 期日なし・解釈できない期日はnil（期日なし）として扱う。
func (c *Client) parseDueDate(taskID string, due *todoistDue) *time.Time {
	if due == nil || due.Date == "" {
		return nil
	}
	d, err := time.Parse(dueDateLayout, due.Date)
	if err != nil {
		c.logger.Warn("期日を解釈できないため期日なしとして扱います",
			slog.String("task_id", taskID),
			slog.String("due_date", due.Date),
		)
		return nil
	}
	return &d
}

// unavailable は取得失敗をログとメトリクスに記録し、空リストを返す。
func (c *Client) unavailable(reason string, err error) []model.Task {
	c.logger.Error("タスク取得に失敗しました",
		slog.String("reason", reason),
		slog.String("error", err.Error()),
	)
	c.collector.RecordSourceFailure(metrics.SourceTasks)
	return []model.Task{}
}
