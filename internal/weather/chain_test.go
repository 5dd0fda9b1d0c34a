package weather

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/morningpost/internal/metrics"
	"github.com/hitoshi/morningpost/internal/model"
)

// fakeProvider はテスト用の天気プロバイダ。呼び出し回数を記録する。
type fakeProvider struct {
	name   string
	report model.WeatherReport
	err    error
	calls  int
}

func (f *fakeProvider) Name() string {
	return f.name
}

func (f *fakeProvider) Fetch(ctx context.Context, city, country string) (model.WeatherReport, error) {
	f.calls++
	if f.err != nil {
		return model.WeatherReport{}, f.err
	}
	return f.report, nil
}

func TestChain_Fetch_PrimarySucceeds_SecondaryNotCalled(t *testing.T) {
	primary := &fakeProvider{
		name:   "fake-primary",
		report: model.WeatherReport{SourceName: "fake-primary", City: "Chennai", TemperatureC: 30},
	}
	secondary := &fakeProvider{name: "fake-secondary"}

	var buf bytes.Buffer
	chain := NewChain(primary, secondary, newTestLogger(&buf), metrics.Nop{}, time.Second)

	result := chain.Fetch(context.Background(), "Chennai", "IN")

	if !result.Available {
		t.Fatalf("天気が取得不可になった: %s", result.Reason)
	}
	if result.Report.SourceName != "fake-primary" {
		t.Errorf("SourceName = %q, want %q", result.Report.SourceName, "fake-primary")
	}
	if primary.calls != 1 {
		t.Errorf("一次プロバイダの呼び出し回数 = %d, want 1", primary.calls)
	}
	if secondary.calls != 0 {
		t.Errorf("一次成功時に二次プロバイダが %d 回呼ばれた。want 0", secondary.calls)
	}
}

func TestChain_Fetch_PrimaryFails_FallsBackToSecondary(t *testing.T) {
	primary := &fakeProvider{
		name: "fake-primary",
		err:  errors.New("rate limit exceeded"),
	}
	secondary := &fakeProvider{
		name:   "fake-secondary",
		report: model.WeatherReport{SourceName: "fake-secondary", City: "Chennai", TemperatureC: 31},
	}

	var buf bytes.Buffer
	chain := NewChain(primary, secondary, newTestLogger(&buf), metrics.Nop{}, time.Second)

	result := chain.Fetch(context.Background(), "Chennai", "IN")

	if !result.Available {
		t.Fatalf("二次プロバイダ成功時は取得可でなければならない: %s", result.Reason)
	}
	if result.Report.SourceName != "fake-secondary" {
		t.Errorf("SourceName = %q, want %q", result.Report.SourceName, "fake-secondary")
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("呼び出し回数 = (%d, %d), want (1, 1)", primary.calls, secondary.calls)
	}
}

func TestChain_Fetch_BothFail_ReturnsUnavailableWithBothReasons(t *testing.T) {
	primary := &fakeProvider{name: "fake-primary", err: errors.New("primary down")}
	secondary := &fakeProvider{name: "fake-secondary", err: errors.New("secondary down")}

	var buf bytes.Buffer
	chain := NewChain(primary, secondary, newTestLogger(&buf), metrics.Nop{}, time.Second)

	result := chain.Fetch(context.Background(), "Chennai", "IN")

	if result.Available {
		t.Fatal("両方失敗時は取得不可バリアントを返すこと")
	}
	if !strings.Contains(result.Reason, "primary down") {
		t.Errorf("Reason に一次の失敗理由が含まれない: %s", result.Reason)
	}
	if !strings.Contains(result.Reason, "secondary down") {
		t.Errorf("Reason に二次の失敗理由が含まれない: %s", result.Reason)
	}
	// どちらも1回だけ試行される（リトライループではない）
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("呼び出し回数 = (%d, %d), want (1, 1)", primary.calls, secondary.calls)
	}
}

// slowProvider はコンテキストのキャンセルまでブロックするプロバイダ。
type slowProvider struct {
	name  string
	calls int
}

func (s *slowProvider) Name() string {
	return s.name
}

func (s *slowProvider) Fetch(ctx context.Context, city, country string) (model.WeatherReport, error) {
	s.calls++
	<-ctx.Done()
	return model.WeatherReport{}, ctx.Err()
}

// TestChain_Fetch_SlowPrimary_DoesNotStarveSecondary は一次プロバイダの
// タイムアウトが二次プロバイダの試行時間を食い潰さないことを検証する。
func TestChain_Fetch_SlowPrimary_DoesNotStarveSecondary(t *testing.T) {
	primary := &slowProvider{name: "fake-slow"}
	secondary := &fakeProvider{
		name:   "fake-secondary",
		report: model.WeatherReport{SourceName: "fake-secondary"},
	}

	var buf bytes.Buffer
	chain := NewChain(primary, secondary, newTestLogger(&buf), metrics.Nop{}, 50*time.Millisecond)

	result := chain.Fetch(context.Background(), "Chennai", "IN")

	if !result.Available {
		t.Fatalf("一次タイムアウト後も二次プロバイダで成功すること: %s", result.Reason)
	}
	if result.Report.SourceName != "fake-secondary" {
		t.Errorf("SourceName = %q, want %q", result.Report.SourceName, "fake-secondary")
	}
	if secondary.calls != 1 {
		t.Errorf("二次プロバイダの呼び出し回数 = %d, want 1", secondary.calls)
	}
}
