package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"ThemeSentinel/internal/breakout"
	"ThemeSentinel/internal/calculator"
	"ThemeSentinel/internal/collector"
	"ThemeSentinel/internal/dataset"
	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/recorder"
	"ThemeSentinel/internal/snapshot"
	"ThemeSentinel/internal/strategy"
	"ThemeSentinel/internal/trend"
)

type fakeSender struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, text)
	return nil
}

type fakeRecorder struct {
	recorder.NoopRecorder
	snapshots []model.Snapshot
	trends    []trend.Comparison
}

func (r *fakeRecorder) RecordSnapshot(s model.Snapshot) error {
	r.snapshots = append(r.snapshots, s)
	return nil
}

func (r *fakeRecorder) RecordTrend(c trend.Comparison) error {
	r.trends = append(r.trends, c)
	return nil
}

type staticSource struct{ d *dataset.Dataset }

func (s staticSource) Load() (*dataset.Dataset, error) { return s.d, nil }

func day(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }

func newScheduler(t *testing.T) (*Scheduler, *fakeSender, *fakeRecorder) {
	t.Helper()
	history := []model.Snapshot{
		{Date: day(1), Records: []model.MetricRecord{
			{Theme: "AI_Agents", CompositeScore: 0.1, Cohesion: 2},
			{Theme: "Meme_Coins", CompositeScore: 0.05, Cohesion: 2},
		}},
		{Date: day(10), Records: []model.MetricRecord{
			{Theme: "AI_Agents", CompositeScore: 0.3, Momentum: 0.2, Cohesion: 4},
			{Theme: "Meme_Coins", CompositeScore: 0.01, Cohesion: 1},
		}},
	}
	members := []model.Membership{
		{Theme: "AI_Agents", Symbol: "FET", Company: "Fetch.ai", Weight: 1},
		{Theme: "Meme_Coins", Symbol: "DOGE", Company: "Dogecoin", Weight: 1},
	}
	d := dataset.Build(strategy.DefaultTierClassifier(), history, members, snapshot.FilterSet{}, snapshot.FilterSet{}, 5)
	holder := dataset.NewHolder(staticSource{d})

	pts := make([]model.PricePoint, 230)
	for i := range pts {
		pts[i] = model.PricePoint{Date: day(1).AddDate(0, 0, i-230), Close: 10}
	}
	pts[229].Close = 25
	fetcher := &collector.MockFetcher{Series: map[string]model.PriceSeries{
		"FET":  {Symbol: "FET", Points: pts},
		"DOGE": {Symbol: "DOGE", Points: pts[:100]},
	}}
	rec := &fakeRecorder{}
	svc := breakout.NewService(holder, collector.NewScanner(fetcher, calculator.DefaultBandParams(), 2), nil, 10)
	sender := &fakeSender{}
	s := NewScheduler(context.Background(), holder, svc, sender, rec, Settings{
		TrendLookbackDays: 7,
		ReportDir:         filepath.Join(t.TempDir(), "reports"),
	})
	return s, sender, rec
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newScheduler(t)
	if err := s.RegisterAll("0 */30 * * * *", "0 0 1 * * *", "0 0 9 * * 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(s.Cron.Entries()); n != 3 {
		t.Errorf("expected 3 entries, got %d", n)
	}
	if err := s.RegisterAll("bad", "0 0 1 * * *", "0 0 9 * * 1"); err == nil {
		t.Error("expected error for invalid cron")
	}
}

func TestRefreshTask_RecordsSnapshot(t *testing.T) {
	s, _, rec := newScheduler(t)
	s.RunRefreshNow()
	if len(rec.snapshots) != 1 || !rec.snapshots[0].Date.Equal(day(10)) {
		t.Errorf("expected latest snapshot recorded, got %+v", rec.snapshots)
	}
}

func TestScanTask_SendsDigest(t *testing.T) {
	s, sender, _ := newScheduler(t)
	s.scanTask()
	if len(sender.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.msgs))
	}
	if !strings.Contains(sender.msgs[0], "<b>FET</b>") || !strings.Contains(sender.msgs[0], "out of 2 scanned") {
		t.Errorf("unexpected digest:\n%s", sender.msgs[0])
	}
}

func TestTrendTask_RecordsReportsAndSends(t *testing.T) {
	s, sender, rec := newScheduler(t)
	s.trendTask()

	if len(rec.trends) != 1 {
		t.Fatalf("expected 1 trend recorded, got %d", len(rec.trends))
	}
	if _, err := os.Stat(filepath.Join(s.Settings.ReportDir, "cohesion_report_20260110.md")); err != nil {
		t.Errorf("expected report file: %v", err)
	}
	if len(sender.msgs) != 1 || !strings.Contains(sender.msgs[0], "AI_Agents: 2.00 → 4.00 (+100.0%)") {
		t.Errorf("unexpected trend digest: %v", sender.msgs)
	}
}

func TestHandleCommand(t *testing.T) {
	s, _, _ := newScheduler(t)
	ctx := context.Background()

	tests := []struct {
		cmd  string
		want string
	}{
		{"/trend", "Theme Cohesion Trend"},
		{"/trend@SentinelBot", "Theme Cohesion Trend"},
		{"/breakout", "Super Trend Breakouts"},
		{"/tiers", "Theme Tiers"},
		{"/search fetch", "Fetch.ai (FET)"},
		{"/search   ", "Usage"},
		{"/search zzzz", "No match"},
		{"hello", "Available commands"},
	}
	for _, tt := range tests {
		if got := s.HandleCommand(ctx, tt.cmd); !strings.Contains(got, tt.want) {
			t.Errorf("HandleCommand(%q): expected %q in reply, got %q", tt.cmd, tt.want, got)
		}
	}
}

func TestTrySend_NilNotifier(t *testing.T) {
	s, _, _ := newScheduler(t)
	s.Notifier = nil
	s.trySend("ignored")
}
