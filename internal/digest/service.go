package digest

import (
	"context"
	"log/slog"

	"github.com/hitoshi/morningpost/internal/mail"
	"github.com/hitoshi/morningpost/internal/metrics"
	"github.com/hitoshi/morningpost/internal/model"
)

// 実行結果のステータス行。実行は必ずこのどちらかの1行で終わる。
const (
	statusSent = "Email sent successfully."
)

// Renderer はダイジェストの描画インターフェース。
type Renderer interface {
	RenderHTML(d model.Digest) (string, error)
	RenderText(d model.Digest) string
}

// MailConfig はダイジェストメールの宛先設定。
type MailConfig struct {
	From    string
	To      string
	Subject string
}

// Result は1サイクルの実行結果。
// Statusは人間可読のステータス行で、成功・失敗を問わず必ず1行生成される。
type Result struct {
	RunID     string
	Delivered bool
	Status    string
}

// Service はダイジェスト1サイクル（構築→描画→送信）を実行する。
type Service struct {
	builder   *Builder
	renderer  Renderer
	sender    mail.Sender
	logger    *slog.Logger
	collector metrics.Collector
	mailCfg   MailConfig
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(builder *Builder, renderer Renderer, sender mail.Sender, logger *slog.Logger, collector metrics.Collector, mailCfg MailConfig) *Service {
	return &Service{
		builder:   builder,
		renderer:  renderer,
		sender:    sender,
		logger:    logger,
		collector: collector,
		mailCfg:   mailCfg,
	}
}

// RunOnce はダイジェストサイクルを1回実行する。
// ソースの失敗はダイジェスト内に取得不可として表現済みのため配送を妨げない。
// 配送の失敗は実行の最終結果としては失敗だが、クラッシュではなく
// 構造化されたResultとして報告する。
func (s *Service) RunOnce(ctx context.Context) Result {
	d := s.builder.Build(ctx)

	html, err := s.renderer.RenderHTML(d)
	if err != nil {
		// テンプレートは埋め込み定数のため通常到達しない
		s.logger.Error("ダイジェストの描画に失敗しました",
			slog.String("run_id", d.RunID),
			slog.String("error", err.Error()),
		)
		s.collector.RecordDelivery(false)
		return Result{
			RunID:  d.RunID,
			Status: "Failed to send email: " + err.Error(),
		}
	}

	msg := mail.Message{
		From:    s.mailCfg.From,
		To:      s.mailCfg.To,
		Subject: s.mailCfg.Subject,
		Text:    s.renderer.RenderText(d),
		HTML:    html,
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		s.collector.RecordDelivery(false)
		return Result{
			RunID:  d.RunID,
			Status: "Failed to send email: " + err.Error(),
		}
	}

	s.collector.RecordDelivery(true)
	return Result{
		RunID:     d.RunID,
		Delivered: true,
		Status:    statusSent,
	}
}
