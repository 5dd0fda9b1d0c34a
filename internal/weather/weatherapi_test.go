package weather

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWeatherAPIProvider_Fetch_NormalizesObservation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("key"); got != "test-key" {
			t.Errorf("key = %q, want %q", got, "test-key")
		}
		// WeatherAPIのqパラメータは都市名のみ
		if got := q.Get("q"); got != "Chennai" {
			t.Errorf("q = %q, want %q", got, "Chennai")
		}

		w.Write([]byte(`{
			"location": {"name": "Chennai", "country": "India"},
			"current": {
				"temp_c": 32.1,
				"feelslike_c": 37.0,
				"humidity": 70,
				"wind_kph": 20.5,
				"last_updated": "2026-08-25 09:00",
				"condition": {"text": "Partly cloudy"}
			}
		}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	p := NewWeatherAPIProvider(server.Client(), newTestLogger(&buf), "test-key")
	p.SetEndpoint(server.URL)

	report, err := p.Fetch(context.Background(), "Chennai", "IN")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if report.SourceName != "weatherapi" {
		t.Errorf("SourceName = %q, want %q", report.SourceName, "weatherapi")
	}
	if report.City != "Chennai" || report.Country != "India" {
		t.Errorf("地点 = %s/%s, want Chennai/India", report.City, report.Country)
	}
	if report.TemperatureC != 32.1 {
		t.Errorf("TemperatureC = %v, want 32.1", report.TemperatureC)
	}
	if report.HumidityPct != 70 {
		t.Errorf("HumidityPct = %d, want 70", report.HumidityPct)
	}

	// 風速は最初からkm/hで返されるため換算しない
	if report.WindKph != 20.5 {
		t.Errorf("WindKph = %v, want 20.5", report.WindKph)
	}

	wantTime := time.Date(2026, 8, 25, 9, 0, 0, 0, time.Local)
	if !report.LastUpdated.Equal(wantTime) {
		t.Errorf("LastUpdated = %v, want %v", report.LastUpdated, wantTime)
	}
}

func TestWeatherAPIProvider_Fetch_ProviderError(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "エラーステータス",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		},
		{
			name: "地点情報なし",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"location": {"name": ""}, "current": {}}`))
			},
		},
		{
			name: "不正なJSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>error</html>`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			var buf bytes.Buffer
			p := NewWeatherAPIProvider(server.Client(), newTestLogger(&buf), "test-key")
			p.SetEndpoint(server.URL)

			if _, err := p.Fetch(context.Background(), "Chennai", "IN"); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
