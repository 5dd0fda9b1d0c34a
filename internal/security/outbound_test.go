package security

import (
	"testing"
	"time"
)

func TestOutbound_NewClient_ReturnsNonNil(t *testing.T) {
	o := NewOutbound()
	client := o.NewClient(10 * time.Second)
	if client == nil {
		t.Fatal("NewClient は nil を返してはならない")
	}
}

func TestOutbound_ValidateEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		wantErr bool
	}{
		{
			name:   "httpsの外部ホスト",
			rawURL: "https://api.weatherbit.io/v2.0/current",
		},
		{
			name:   "httpの外部ホスト",
			rawURL: "http://api.mediastack.com/v1/news",
		},
		{
			name:    "空URL",
			rawURL:  "",
			wantErr: true,
		},
		{
			name:    "サポート外スキーム",
			rawURL:  "ftp://example.com/feed",
			wantErr: true,
		},
		{
			name:    "スキームなし",
			rawURL:  "example.com/api",
			wantErr: true,
		},
		{
			name:    "ホストなし",
			rawURL:  "https://",
			wantErr: true,
		},
		{
			name:    "localhost",
			rawURL:  "http://localhost:8080/api",
			wantErr: true,
		},
		{
			name:    "大文字のlocalhost",
			rawURL:  "http://LOCALHOST/api",
			wantErr: true,
		},
		{
			name:    "ループバックIP",
			rawURL:  "http://127.0.0.1/api",
			wantErr: true,
		},
		{
			name:    "プライベートIP",
			rawURL:  "http://192.168.1.10/api",
			wantErr: true,
		},
		{
			name:    "リンクローカルIP",
			rawURL:  "http://169.254.169.254/latest/meta-data",
			wantErr: true,
		},
		{
			name:    "未指定アドレス",
			rawURL:  "http://0.0.0.0/api",
			wantErr: true,
		},
	}

	o := NewOutbound()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := o.ValidateEndpoint(tt.rawURL)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEndpoint(%q) error = %v, wantErr %v", tt.rawURL, err, tt.wantErr)
			}
		})
	}
}
