package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"

	"ThemeSentinel/internal/breakout"
	"ThemeSentinel/internal/dataset"
	"ThemeSentinel/internal/network"
	"ThemeSentinel/internal/notifier"
	"ThemeSentinel/internal/recorder"
	"ThemeSentinel/internal/report"
	"ThemeSentinel/internal/strategy"
)

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Settings tune the periodic jobs.
type Settings struct {
	TrendLookbackDays int
	TopN              int
	SearchLimit       int
	ReportDir         string
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Data      *dataset.Holder
	Breakouts *breakout.Service
	Notifier  Sender
	Recorder  recorder.Recorder
	Settings  Settings
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. A nil sender disables notifications.
func NewScheduler(ctx context.Context, data *dataset.Holder, svc *breakout.Service, tn Sender, rec recorder.Recorder, st Settings) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if st.TopN <= 0 {
		st.TopN = report.TopN
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Data:      data,
		Breakouts: svc,
		Notifier:  tn,
		Recorder:  rec,
		Settings:  st,
		Ctx:       ctx,
	}
}

// RegisterAll registers the refresh, scan and trend tasks.
func (s *Scheduler) RegisterAll(refreshCron, scanCron, trendCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	if _, err := s.Cron.AddFunc(trendCron, s.trendTask); err != nil {
		return fmt.Errorf("register trend task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow reloads the dataset immediately (for RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] refreshing dataset")
	d, err := s.Data.Reload()
	if err != nil {
		log.Printf("[ERROR] refresh dataset: %v", err)
		return
	}
	if err := s.Recorder.RecordSnapshot(d.Latest); err != nil {
		log.Printf("[ERROR] record snapshot: %v", err)
	}
}

func (s *Scheduler) scanTask() {
	log.Println("[INFO] running breakout scan")
	res, err := s.Breakouts.Run(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] breakout scan: %v", err)
		s.trySend(fmt.Sprintf("❌ Breakout scan failed: %v", err))
		return
	}
	s.trySend(notifier.FormatBreakoutDigest(s.top(res), res.Scanned, res.At))
}

func (s *Scheduler) trendTask() {
	log.Println("[INFO] running cohesion trend")
	d, err := s.Data.Get()
	if err != nil {
		log.Printf("[ERROR] trend dataset: %v", err)
		return
	}
	cmp, ok := d.Trend(s.Settings.TrendLookbackDays)
	if !ok {
		log.Println("[WARN] cohesion trend needs at least two snapshots")
		return
	}
	if err := s.Recorder.RecordTrend(cmp); err != nil {
		log.Printf("[ERROR] record trend: %v", err)
	}
	if s.Settings.ReportDir != "" {
		if path, err := report.WriteCohesion(s.Settings.ReportDir, cmp); err != nil {
			log.Printf("[ERROR] write cohesion report: %v", err)
		} else {
			log.Printf("[INFO] cohesion report written: %s", path)
		}
	}
	s.trySend(notifier.FormatTrendDigest(cmp, s.Settings.TopN))
}

func (s *Scheduler) top(res *breakout.Result) []strategy.BreakoutCandidate {
	c := res.Candidates
	if len(c) > s.Settings.TopN*2 {
		c = c[:s.Settings.TopN*2]
	}
	return c
}

const helpText = "Available commands:\n• /trend - cohesion changes\n• /breakout - band breakouts\n• /tiers - tier overview\n• /search &lt;query&gt; - tickers and themes"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	name, arg, _ := strings.Cut(strings.TrimSpace(command), " ")
	// "/trend@SentinelBot" in group chats
	name, _, _ = strings.Cut(name, "@")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/trend":
		d, err := s.Data.Get()
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		cmp, ok := d.Trend(s.Settings.TrendLookbackDays)
		if !ok {
			return "Not enough snapshots for a trend comparison."
		}
		return notifier.FormatTrendDigest(cmp, s.Settings.TopN)
	case "/breakout":
		res, err := s.Breakouts.Latest(ctx)
		if err != nil {
			return fmt.Sprintf("❌ Breakout scan failed: %v", err)
		}
		return notifier.FormatBreakoutDigest(s.top(res), res.Scanned, res.At)
	case "/tiers":
		d, err := s.Data.Get()
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatTierSummary(d.Summary(), d.ThemeHealth(), s.Settings.TopN)
	case "/search":
		if arg == "" {
			return "Usage: /search &lt;ticker, company or theme&gt;"
		}
		d, err := s.Data.Get()
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		limit := s.Settings.SearchLimit
		if limit <= 0 {
			limit = network.DefaultSearchLimit
		}
		return notifier.FormatSearch(d.Index.Search(arg, limit))
	default:
		return helpText
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
