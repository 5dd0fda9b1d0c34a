// Package app はアプリケーションの初期化・配線・起動を行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/morningpost/internal/config"
	"github.com/hitoshi/morningpost/internal/digest"
	"github.com/hitoshi/morningpost/internal/handler"
	"github.com/hitoshi/morningpost/internal/logger"
	"github.com/hitoshi/morningpost/internal/mail"
	"github.com/hitoshi/morningpost/internal/metrics"
	"github.com/hitoshi/morningpost/internal/middleware"
	"github.com/hitoshi/morningpost/internal/news"
	"github.com/hitoshi/morningpost/internal/render"
	"github.com/hitoshi/morningpost/internal/security"
	"github.com/hitoshi/morningpost/internal/task"
	"github.com/hitoshi/morningpost/internal/weather"
)

// runOnceTimeout は一回実行モードでのサイクル全体のタイムアウト。
const runOnceTimeout = 2 * time.Minute

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数からConfigを読み込む。
// 必須設定の欠落はここで検出され、ネットワークアクセスは一切発生しない。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("city", cfg.City),
		slog.String("country", cfg.Country),
	)

	switch cmd {
	case CommandRun:
		return runOnce(cfg, os.Stdout)
	default:
		return runServe(cfg)
	}
}

// buildService は全依存関係を配線してダイジェストサービスを生成する。
func buildService(cfg *config.Config, collector metrics.Collector) (*digest.Service, error) {
	log := slog.Default()

	// 1. アウトバウンドHTTPクライアント
	outbound := security.NewOutbound()
	client := outbound.NewClient(cfg.FetchTimeout)

	// 2. 各ソースアダプタ
	taskClient := task.NewClient(client, log, collector, cfg.TodoistAPIKey)
	newsClient := news.NewClient(client, log, collector, cfg.NewsAPIKey)
	primary := weather.NewWeatherbitProvider(client, log, cfg.WeatherbitAPIKey)
	secondary := weather.NewWeatherAPIProvider(client, log, cfg.WeatherAPIKey)

	// エンドポイント上書きの適用（検証してから反映）
	overrides := []struct {
		endpoint string
		name     string
		apply    func(string)
	}{
		{cfg.TodoistEndpoint, "TODOIST_ENDPOINT", taskClient.SetEndpoint},
		{cfg.NewsEndpoint, "NEWS_ENDPOINT", newsClient.SetEndpoint},
		{cfg.WeatherbitEndpoint, "WEATHERBIT_ENDPOINT", primary.SetEndpoint},
		{cfg.WeatherAPIEndpoint, "WEATHERAPI_ENDPOINT", secondary.SetEndpoint},
	}
	for _, o := range overrides {
		if o.endpoint == "" {
			continue
		}
		if err := outbound.ValidateEndpoint(o.endpoint); err != nil {
			return nil, fmt.Errorf("invalid endpoint override %s: %w", o.name, err)
		}
		o.apply(o.endpoint)
	}

	weatherChain := weather.NewChain(primary, secondary, log, collector, cfg.FetchTimeout)

	// 3. オーケストレータ
	builder := digest.NewBuilder(taskClient, newsClient, weatherChain, log, collector, digest.Options{
		City:           cfg.City,
		Country:        cfg.Country,
		NewsCategories: cfg.NewsCategories,
		NewsLimit:      cfg.NewsLimit,
		FetchTimeout:   cfg.FetchTimeout,
	})

	// 4. レンダラーと配送
	renderer, err := render.New()
	if err != nil {
		return nil, fmt.Errorf("failed to build renderer: %w", err)
	}
	sender := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.Sender, cfg.SenderPassword, log)

	return digest.NewService(builder, renderer, sender, log, collector, digest.MailConfig{
		From:    cfg.Sender,
		To:      cfg.Recipient,
		Subject: cfg.MailSubject,
	}), nil
}

// runServe はHTTPトリガーサーバーモードで起動する。
// GET / で1サイクルを同期実行する。SIGINTまたはSIGTERMシグナルを
// 受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	svc, err := buildService(cfg, collector)
	if err != nil {
		return err
	}

	router := handler.NewRouter(&handler.RouterDeps{
		Runner:      svc,
		RateLimiter: middleware.NewRateLimiter(middleware.DefaultTriggerRate, 2),
		Logger:      slog.Default(),
		Gatherer:    reg,
	})

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
		// 1サイクルは外部API3つ＋SMTPを同期で待つため、書き込みタイムアウトは長めにとる
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("trigger server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down trigger server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("trigger server stopped gracefully")
	return nil
}

// runOnce はダイジェストサイクルを1回実行して終了する。
// 成否を問わず人間可読のステータス行をちょうど1行outに出力する。
// 配送に失敗した場合はエラーを返し、終了コードで失敗を伝える。
func runOnce(cfg *config.Config, out io.Writer) error {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	svc, err := buildService(cfg, collector)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), runOnceTimeout)
	defer cancel()

	result := svc.RunOnce(ctx)
	fmt.Fprintln(out, result.Status)

	if !result.Delivered {
		return fmt.Errorf("digest cycle %s ended with delivery failure", result.RunID)
	}
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
