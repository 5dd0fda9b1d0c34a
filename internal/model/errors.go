package model

import (
	"fmt"
	"strings"
)

// AppError は致命的エラーの統一フォーマットを表す。
// ソース取得の失敗はエラーではなくデータ（取得不可バリアント）として扱うため、
// ここに含まれるのは設定エラーと配送エラーのみ。
type AppError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: config, delivery
	Action   string // 運用者向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingConfig  = "CONFIG_MISSING"
	ErrCodeInvalidConfig  = "CONFIG_INVALID"
	ErrCodeDeliveryFailed = "DELIVERY_FAILED"
)

// NewMissingConfigError は必須設定の欠落エラーを生成する。
// ネットワークアクセスを一切行う前に検出されることを前提とする。
func NewMissingConfigError(names []string) *AppError {
	return &AppError{
		Code:     ErrCodeMissingConfig,
		Message:  fmt.Sprintf("必須環境変数が設定されていません: %s", strings.Join(names, ", ")),
		Category: "config",
		Action:   "欠落している環境変数をすべて設定してから再起動してください。",
	}
}

// NewInvalidConfigError は設定値の形式エラーを生成する。
func NewInvalidConfigError(name, reason string) *AppError {
	return &AppError{
		Code:     ErrCodeInvalidConfig,
		Message:  fmt.Sprintf("環境変数 %s の値が不正です: %s", name, reason),
		Category: "config",
		Action:   fmt.Sprintf("%s に正しい形式の値を設定してください。", name),
	}
}

// NewDeliveryFailedError はメール配送失敗エラーを生成する。
// 実行の最終結果としては致命的だが、クラッシュではなく構造化された失敗として報告する。
func NewDeliveryFailedError(reason string) *AppError {
	return &AppError{
		Code:     ErrCodeDeliveryFailed,
		Message:  fmt.Sprintf("ダイジェストメールの送信に失敗しました: %s", reason),
		Category: "delivery",
		Action:   "SMTPホスト・ポート・送信者の認証情報を確認してください。",
	}
}
