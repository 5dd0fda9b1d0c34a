// Package mail はダイジェストメールの組み立てと送信を提供する。
package mail

import (
	"context"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/hitoshi/morningpost/internal/model"
)

// Message は送信するメールを表す。
// プレーンテキストのフォールバックとHTML本文の両方を含むマルチパートとして送信される。
type Message struct {
	From    string
	To      string
	Subject string
	Text    string // プレーンテキストのフォールバック
	HTML    string
}

// Sender はメール送信のインターフェース。
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender は認証付きSMTPサブミッションでメールを送信するSender実装。
// STARTTLSを必須とする。
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	logger   *slog.Logger
}

// NewSMTPSender はSMTPSenderの新しいインスタンスを生成する。
func NewSMTPSender(host string, port int, username, password string, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		logger:   logger,
	}
}

// Send はメッセージを組み立てて送信する。
// 失敗時は配送エラーを返す。クラッシュさせず、構造化された失敗として報告する。
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := buildMessage(msg)
	if err != nil {
		return model.NewDeliveryFailedError(err.Error())
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return model.NewDeliveryFailedError(err.Error())
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		s.logger.Error("SMTPサブミッションに失敗しました",
			slog.String("host", s.host),
			slog.Int("port", s.port),
			slog.String("error", err.Error()),
		)
		return model.NewDeliveryFailedError(err.Error())
	}

	s.logger.Info("ダイジェストメールを送信しました",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}

// buildMessage はMessageからマルチパート（text/plain + text/html）のメールを組み立てる。
func buildMessage(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, err
	}
	if err := m.To(msg.To); err != nil {
		return nil, err
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	return m, nil
}
