// Package news はニュースプロバイダからの記事取得と正規化を提供する。
// mediastack APIの呼び出し、欠落フィールドの既定値補完、
// プロバイダ由来マークアップの除去を含む。
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/morningpost/internal/metrics"
	"github.com/hitoshi/morningpost/internal/model"
)

// defaultEndpoint はmediastackのニュース検索APIのエンドポイント。
const defaultEndpoint = "http://api.mediastack.com/v1/news"

// 欠落フィールドの既定値。
const (
	defaultTitle       = "No title"
	defaultDescription = "No description"
	defaultURL         = "#"
)

// Client はニュースプロバイダのクライアント。
// 当日公開の記事を新しい順に取得し、構造化された記事として正規化する。
// 取得失敗・0件の場合は取得不可バリアントを返し、エラーを送出することはない。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	collector  metrics.Collector
	apiKey     string
	endpoint   string // テスト用にエンドポイントを差し替え可能
	sanitizer  *bluemonday.Policy
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, collector metrics.Collector, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		collector:  collector,
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

// SetEndpoint はプロバイダのエンドポイントを差し替える。
// ステージング環境や結合テストで使用する。
func (c *Client) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

// mediastackResponse はプロバイダのレスポンス。
type mediastackResponse struct {
	Data []mediastackArticle `json:"data"`
}

// mediastackArticle はプロバイダの記事レコード。
// title/description/urlはいずれも欠落しうる。
type mediastackArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// FetchNews はdateの日に公開された記事を新しい順に最大limit件取得する。
// 個別記事の欠落フィールドは既定値で補完し、フェッチ全体は失敗させない。
func (c *Client) FetchNews(ctx context.Context, date time.Time, categories string, limit int) model.News {
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return c.unavailable("エンドポイントURLのパース失敗", err)
	}

	q := reqURL.Query()
	q.Set("access_key", c.apiKey)
	q.Set("languages", "en")
	q.Set("categories", categories)
	q.Set("sort", "published_desc")
	q.Set("date", date.Format("2006-01-02"))
	q.Set("limit", strconv.Itoa(limit))
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return c.unavailable("リクエスト作成失敗", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.unavailable("HTTPリクエスト失敗", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("ニュースプロバイダがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		c.collector.RecordSourceFailure(metrics.SourceNews)
		return model.UnavailableNews(fmt.Sprintf("news provider returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.unavailable("レスポンスボディの読み取り失敗", err)
	}

	var payload mediastackResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.unavailable("レスポンスJSONのパース失敗", err)
	}

	if len(payload.Data) == 0 {
		c.logger.Info("当日公開の記事がありませんでした")
		return model.UnavailableNews("no news found")
	}

	// プロバイダは新しい順で返す。上限を超える分は切り捨てる。
	if len(payload.Data) > limit {
		payload.Data = payload.Data[:limit]
	}

	articles := make([]model.Article, 0, len(payload.Data))
	for _, a := range payload.Data {
		articles = append(articles, model.Article{
			Title:       c.normalize(a.Title, defaultTitle),
			Description: c.normalize(a.Description, defaultDescription),
			URL:         firstNonEmpty(a.URL, defaultURL),
		})
	}

	c.logger.Info("記事を取得しました", slog.Int("count", len(articles)))
	return model.AvailableNews(articles)
}

// normalize はプロバイダ由来のテキストからマークアップを除去し、
// 空の場合は既定値で補完する。サニタイズ後のエンティティ参照は
// プレーンテキストに戻す（最終的なエスケープはレンダラーが行う）。
func (c *Client) normalize(s, defaultVal string) string {
	s = strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(s)))
	if s == "" {
		return defaultVal
	}
	return s
}

func firstNonEmpty(s, defaultVal string) string {
	if strings.TrimSpace(s) == "" {
		return defaultVal
	}
	return s
}

// unavailable は取得失敗をログとメトリクスに記録し、取得不可バリアントを返す。
func (c *Client) unavailable(reason string, err error) model.News {
	c.logger.Error("ニュース取得に失敗しました",
		slog.String("reason", reason),
		slog.String("error", err.Error()),
	)
	c.collector.RecordSourceFailure(metrics.SourceNews)
	return model.UnavailableNews(reason + ": " + err.Error())
}
