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

// weatherbitEndpoint はWeatherbitの現在天気APIのエンドポイント。
const weatherbitEndpoint = "https://api.weatherbit.io/v2.0/current"

// WeatherbitProvider は一次天気プロバイダ（Weatherbit）のクライアント。
// 風速はm/sで返されるため、km/hへ換算して正規化する。
type WeatherbitProvider struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewWeatherbitProvider はWeatherbitProviderの新しいインスタンスを生成する。
func NewWeatherbitProvider(httpClient *http.Client, logger *slog.Logger, apiKey string) *WeatherbitProvider {
	return &WeatherbitProvider{
		httpClient: httpClient,
		logger:     logger,
		apiKey:     apiKey,
		endpoint:   weatherbitEndpoint,
	}
}

// Name はプロバイダ名を返す。
func (p *WeatherbitProvider) Name() string {
	return "weatherbit"
}

// SetEndpoint はプロバイダのエンドポイントを差し替える。
// ステージング環境や結合テストで使用する。
func (p *WeatherbitProvider) SetEndpoint(endpoint string) {
	p.endpoint = endpoint
}

// weatherbitResponse はプロバイダのレスポンス。
type weatherbitResponse struct {
	Data []weatherbitObservation `json:"data"`
}

// weatherbitObservation はプロバイダの観測レコード。
type weatherbitObservation struct {
	CityName    string  `json:"city_name"`
	CountryCode string  `json:"country_code"`
	Temp        float64 `json:"temp"`     // °C
	AppTemp     float64 `json:"app_temp"` // 体感温度 °C
	RH          float64 `json:"rh"`       // 相対湿度 %
	WindSpd     float64 `json:"wind_spd"` // m/s
	ObTime      string  `json:"ob_time"`  // "2006-01-02 15:04" UTC
	Weather     struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Fetch は現在天気を取得してメートル法に正規化する。
func (p *WeatherbitProvider) Fetch(ctx context.Context, city, country string) (model.WeatherReport, error) {
	reqURL, err := url.Parse(p.endpoint)
	if err != nil {
		return model.WeatherReport{}, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("city", city)
	q.Set("country", country)
	q.Set("key", p.apiKey)
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
		return model.WeatherReport{}, fmt.Errorf("weatherbit がステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.WeatherReport{}, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var payload weatherbitResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return model.WeatherReport{}, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	if len(payload.Data) == 0 {
		return model.WeatherReport{}, fmt.Errorf("weatherbit のレスポンスに観測データが含まれていません")
	}

	obs := payload.Data[0]

	// 観測時刻はUTCで返される。解釈できない場合はゼロ値のまま進める。
	lastUpdated, err := time.ParseInLocation(observationTimeLayout, obs.ObTime, time.UTC)
	if err != nil {
		p.logger.Warn("観測時刻を解釈できませんでした",
			slog.String("ob_time", obs.ObTime),
		)
	}

	return model.WeatherReport{
		SourceName:   p.Name(),
		City:         obs.CityName,
		Country:      obs.CountryCode,
		TemperatureC: obs.Temp,
		Condition:    obs.Weather.Description,
		HumidityPct:  int(obs.RH),
		WindKph:      msToKph(obs.WindSpd),
		FeelsLikeC:   obs.AppTemp,
		LastUpdated:  lastUpdated,
	}, nil
}
