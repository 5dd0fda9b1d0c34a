// Package security は外部プロバイダへのアウトバウンドHTTPアクセスの安全性機能を提供する。
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// allowedSchemes はアウトバウンドアクセスで許可されるURLスキーム。
// mediastackのみhttpエンドポイントを公開しているため、httpも許可する。
var allowedSchemes = []string{"http", "https"}

// Outbound は外部APIアクセス用のHTTPクライアントファクトリ。
// プロバイダのエンドポイントは設定・テストで差し替え可能なため、
// クライアント側でプライベートIPやループバックへのアクセスをブロックし、
// 意図しない内部ネットワークへのリクエストを防ぐ。
type Outbound struct{}

// NewOutbound はOutboundの新しいインスタンスを生成する。
func NewOutbound() *Outbound {
	return &Outbound{}
}

// NewClient はsafeurlでラップされたアウトバウンド用HTTPクライアントを生成する。
// プライベートIP・ループバック・リンクローカル・メタデータIPへのリクエストは
// ブロックされる。DNS解決後のIPアドレスもDialerレベルで検証される。
func (o *Outbound) NewClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// ValidateEndpoint はプロバイダのエンドポイントURLを静的に検証する。
// 起動時の配線で1回だけ呼び、スキームと空ホストの問題を早期に検出する。
// DNS再バインディング等の動的な検証はNewClientが生成するクライアントに委ねる。
func (o *Outbound) ValidateEndpoint(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	allowed := false
	for _, s := range allowedSchemes {
		if scheme == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("disallowed scheme: %s (allowed: %v)", scheme, allowedSchemes)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("blocked host: %s", host)
	}
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()) {
		return fmt.Errorf("blocked IP address: %s", ip.String())
	}

	return nil
}
