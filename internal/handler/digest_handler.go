// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/morningpost/internal/digest"
)

// DigestRunner はダイジェスト1サイクル実行のインターフェース。
type DigestRunner interface {
	RunOnce(ctx context.Context) digest.Result
}

// DigestHandler はダイジェストトリガーのHTTPハンドラー。
// 外部スケジューラ（cron等）からのGETで1サイクルを同期実行する。
type DigestHandler struct {
	runner DigestRunner
}

// NewDigestHandler はDigestHandlerを生成する。
func NewDigestHandler(runner DigestRunner) *DigestHandler {
	return &DigestHandler{runner: runner}
}

// triggerResponse はトリガーエンドポイントのレスポンス。
type triggerResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	RunID   string `json:"run_id"`
}

// Trigger はダイジェストサイクルを1回実行し、結果のステータスを返す。
// 配送失敗は502として報告する。設定エラーは起動時に検出済みのためここには到達しない。
func (h *DigestHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	result := h.runner.RunOnce(r.Context())

	code := http.StatusOK
	if !result.Delivered {
		code = http.StatusBadGateway
		slog.Error("ダイジェストサイクルが配送失敗で終了しました",
			slog.String("run_id", result.RunID),
			slog.String("status", result.Status),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(triggerResponse{
		Message: "daily digest processed",
		Status:  result.Status,
		RunID:   result.RunID,
	})
}
