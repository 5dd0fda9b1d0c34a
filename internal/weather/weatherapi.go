package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hitoshi/morningpost/internal/model"
)

// weatherAPIEndpoint はWeatherAPIの現在天気APIのエンドポイント。
const weatherAPIEndpoint = "https://api.weatherapi.com/v1/current.json"

// WeatherAPIProvider は二次天気プロバイダ（WeatherAPI）のクライアント。
// 風速は最初からkm/hで返されるため、換算は不要。
type WeatherAPIProvider struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewWeatherAPIProvider はWeatherAPIProviderの新しいインスタンスを生成する。
func NewWeatherAPIProvider(httpClient *http.Client, logger *slog.Logger, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		httpClient: httpClient,
		logger:     logger,
		apiKey:     apiKey,
		endpoint:   weatherAPIEndpoint,
	}
}

// Name はプロバイダ名を返す。
func (p *WeatherAPIProvider) Name() string {
	return "weatherapi"
}

// SetEndpoint はプロバイダのエンドポイントを差し替える。
// ステージング環境や結合テストで使用する。
func (p *WeatherAPIProvider) SetEndpoint(endpoint string) {
	p.endpoint = endpoint
}

// weatherAPIResponse はプロバイダのレスポンス。
type weatherAPIResponse struct {
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		TempC       float64 `json:"temp_c"`
		FeelsLikeC  float64 `json:"feelslike_c"`
		Humidity    float64 `json:"humidity"`
		WindKph     float64 `json:"wind_kph"`
		LastUpdated string  `json:"last_updated"` // "2006-01-02 15:04" 現地時刻
		Condition   struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

// Fetch は現在天気を取得して正規化する。
func (p *WeatherAPIProvider) Fetch(ctx context.Context, city, country string) (model.WeatherReport, error) {
	reqURL, err := url.Parse(p.endpoint)
	if err != nil {
		return model.WeatherReport{}, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("key", p.apiKey)
	q.Set("q", city)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return model.WeatherReport{}, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return model.WeatherReport{}, fmt.Errorf("HTTPリクエストに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.WeatherReport{}, fmt.Errorf("weatherapi がステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.WeatherReport{}, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var payload weatherAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return model.WeatherReport{}, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	if payload.Location.Name == "" {
		return model.WeatherReport{}, fmt.Errorf("weatherapi のレスポンスに地点情報が含まれていません")
	}

	// 観測時刻は現地時刻で返される。解釈できない場合はゼロ値のまま進める。
	lastUpdated, err := time.ParseInLocation(observationTimeLayout, payload.Current.LastUpdated, time.Local)
	if err != nil {
		p.logger.Warn("観測時刻を解釈できませんでした",
			slog.String("last_updated", payload.Current.LastUpdated),
		)
	}

	return model.WeatherReport{
		SourceName:   p.Name(),
		City:         payload.Location.Name,
		Country:      payload.Location.Country,
		TemperatureC: payload.Current.TempC,
		Condition:    payload.Current.Condition.Text,
		HumidityPct:  int(payload.Current.Humidity),
		WindKph:      payload.Current.WindKph,
		FeelsLikeC:   payload.Current.FeelsLikeC,
		LastUpdated:  lastUpdated,
	}, nil
}
