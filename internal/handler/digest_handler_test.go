package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/morningpost/internal/digest"
	"github.com/hitoshi/morningpost/internal/middleware"
)

// stubRunner はテスト用のDigestRunner。
type stubRunner struct {
	result digest.Result
}

func (s *stubRunner) RunOnce(ctx context.Context) digest.Result {
	return s.result
}

func newTestRouter(runner DigestRunner) http.Handler {
	var buf bytes.Buffer
	return NewRouter(&RouterDeps{
		Runner:      runner,
		RateLimiter: middleware.NewRateLimiter(middleware.DefaultTriggerRate, 2),
		Logger:      slog.New(slog.NewJSONHandler(&buf, nil)),
		Gatherer:    prometheus.NewRegistry(),
	})
}

func TestTrigger_DeliverySuccess_Returns200(t *testing.T) {
	runner := &stubRunner{result: digest.Result{
		RunID:     "run-1",
		Delivered: true,
		Status:    "Email sent successfully.",
	}}
	router := newTestRouter(runner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	var resp struct {
		Message string `json:"message"`
		Status  string `json:"status"`
		RunID   string `json:"run_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("レスポンスがJSONとして解釈できない: %v", err)
	}
	if resp.Message != "daily digest processed" {
		t.Errorf("message = %q, want %q", resp.Message, "daily digest processed")
	}
	if resp.Status != "Email sent successfully." {
		t.Errorf("status = %q, want %q", resp.Status, "Email sent successfully.")
	}
	if resp.RunID != "run-1" {
		t.Errorf("run_id = %q, want %q", resp.RunID, "run-1")
	}
}

func TestTrigger_DeliveryFailure_Returns502(t *testing.T) {
	runner := &stubRunner{result: digest.Result{
		RunID:  "run-2",
		Status: "Failed to send email: smtp connection refused",
	}}
	router := newTestRouter(runner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("レスポンスがJSONとして解釈できない: %v", err)
	}
	if !strings.HasPrefix(resp.Status, "Failed to send email: ") {
		t.Errorf("status = %q, want prefix %q", resp.Status, "Failed to send email: ")
	}
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter(&stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", string(body), "ok")
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(&stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_TriggerRateLimited(t *testing.T) {
	runner := &stubRunner{result: digest.Result{Delivered: true, Status: "Email sent successfully."}}
	router := newTestRouter(runner)

	// バースト2回分を消費したあとは429
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("リクエスト %d 回目: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}

	// ヘルスチェックはレート制限の対象外
	healthRec := httptest.NewRecorder()
	router.ServeHTTP(healthRec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if healthRec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", healthRec.Code)
	}
}
