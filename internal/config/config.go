// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hitoshi/morningpost/internal/model"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// 各アダプタとオーケストレータへは明示的に受け渡す。
type Config struct {
	// Providers
	TodoistAPIKey    string
	NewsAPIKey       string
	WeatherbitAPIKey string // 一次天気プロバイダ
	WeatherAPIKey    string // 二次天気プロバイダ

	// Mail
	Sender         string
	SenderPassword string
	Recipient      string
	SMTPHost       string
	SMTPPort       int
	MailSubject    string

	// Location
	City    string
	Country string

	// News
	NewsCategories string
	NewsLimit      int

	// Fetch
	FetchTimeout time.Duration

	// Endpoint overrides（ステージング・結合テスト用。空なら各プロバイダの既定値）
	TodoistEndpoint    string
	NewsEndpoint       string
	WeatherbitEndpoint string
	WeatherAPIEndpoint string

	// Server
	ServerPort string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が1つでも未設定の場合は、欠落している変数名をすべて列挙した
// 設定エラーを返す。ネットワークアクセスより前に呼び出されることを前提とする。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	required := []struct {
		name string
		dst  *string
	}{
		{"TODOIST_API_KEY", &cfg.TodoistAPIKey},
		{"NEWS_API_KEY", &cfg.NewsAPIKey},
		{"WEATHERBIT_API_KEY", &cfg.WeatherbitAPIKey},
		{"WEATHERAPI_API_KEY", &cfg.WeatherAPIKey},
		{"EMAIL_SENDER", &cfg.Sender},
		{"EMAIL_PASSWORD", &cfg.SenderPassword},
		{"SMTP_HOST", &cfg.SMTPHost},
		{"CITY", &cfg.City},
		{"COUNTRY", &cfg.Country},
	}
	for _, r := range required {
		*r.dst = os.Getenv(r.name)
		if *r.dst == "" {
			missing = append(missing, r.name)
		}
	}

	smtpPort := os.Getenv("SMTP_PORT")
	if smtpPort == "" {
		missing = append(missing, "SMTP_PORT")
	}

	if len(missing) > 0 {
		return nil, model.NewMissingConfigError(missing)
	}

	port, err := strconv.Atoi(smtpPort)
	if err != nil || port <= 0 {
		return nil, model.NewInvalidConfigError("SMTP_PORT", fmt.Sprintf("整数として解釈できません: %q", smtpPort))
	}
	cfg.SMTPPort = port

	// Optional fields with defaults
	// 宛先未指定の場合は送信者自身に送る
	cfg.Recipient = getEnvString("EMAIL_RECIPIENT", cfg.Sender)
	cfg.MailSubject = getEnvString("MAIL_SUBJECT", "Your Morning Update 🚀")
	cfg.NewsCategories = getEnvString("NEWS_CATEGORIES", "technology,science,health")
	cfg.NewsLimit = getEnvInt("NEWS_LIMIT", 3)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.TodoistEndpoint = os.Getenv("TODOIST_ENDPOINT")
	cfg.NewsEndpoint = os.Getenv("NEWS_ENDPOINT")
	cfg.WeatherbitEndpoint = os.Getenv("WEATHERBIT_ENDPOINT")
	cfg.WeatherAPIEndpoint = os.Getenv("WEATHERAPI_ENDPOINT")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
