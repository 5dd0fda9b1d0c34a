package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
)

// RateLimiter はトリガーエンドポイントのレート制限を管理する。
// ダイジェスト1サイクルは外部APIを3〜4回叩いてメールを1通送るため、
// 多重トリガーはプロバイダのクォータを浪費する。単一利用者前提の
// サービスのため、クライアント識別は行わずグローバルに制限する。
type RateLimiter struct {
	limiter *rate.Limiter
}

// DefaultTriggerRate はトリガーエンドポイントのデフォルトレート。
// 毎分1回＋バースト2回まで許可する。
var DefaultTriggerRate = rate.Limit(1.0 / 60.0)

// NewRateLimiter は新しいRateLimiterを生成する。
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(r, burst),
	}
}

// Middleware はレート制限ミドルウェアを返す。
// 制限超過時は429とRetry-Afterヘッダを返す。
func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.limiter.Allow() {
				retryAfter := int(math.Ceil(1.0 / float64(rl.limiter.Limit())))
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
