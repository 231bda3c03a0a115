// Package breakout runs band scans over the theme universe and joins the
// breakouts with their theme metrics.
package breakout

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"ThemeSentinel/internal/collector"
	"ThemeSentinel/internal/dataset"
	"ThemeSentinel/internal/recorder"
	"ThemeSentinel/internal/strategy"
)

// Result is one completed scan.
type Result struct {
	RunID      string                       `json:"run_id"`
	At         time.Time                    `json:"at"`
	Source     string                       `json:"source"`
	Scanned    int                          `json:"scanned"`
	Failed     int                          `json:"failed"`
	Candidates []strategy.BreakoutCandidate `json:"candidates"`
}

// Service scans on demand and keeps the last result for MaxAge.
type Service struct {
	Data     *dataset.Holder
	Scanner  *collector.Scanner
	Recorder recorder.Recorder
	Limit    int
	MaxAge   time.Duration
	Timeout  time.Duration // bounds a shared scan, independent of any caller

	group singleflight.Group
	mu    sync.RWMutex
	last  *Result
}

// NewService creates a Service. A nil recorder disables persistence.
func NewService(data *dataset.Holder, scanner *collector.Scanner, rec recorder.Recorder, limit int) *Service {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Service{Data: data, Scanner: scanner, Recorder: rec, Limit: limit, MaxAge: time.Hour, Timeout: 10 * time.Minute}
}

// Universe is the symbol list to scan: the fetcher's own listing when it has
// one, otherwise every ticker of the membership table.
func (s *Service) Universe(d *dataset.Dataset) ([]string, error) {
	if lister, ok := s.Scanner.Fetcher.(collector.SymbolLister); ok {
		return lister.Symbols()
	}
	return d.Index.Symbols(), nil
}

// Run always performs a fresh scan. Concurrent callers share one scan,
// which keeps running when the caller that started it goes away; each
// caller stops waiting when its own ctx is done.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	ch := s.group.DoChan("scan", func() (interface{}, error) {
		scanCtx := context.WithoutCancel(ctx)
		if s.Timeout > 0 {
			var cancel context.CancelFunc
			scanCtx, cancel = context.WithTimeout(scanCtx, s.Timeout)
			defer cancel()
		}
		return s.run(scanCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Result), nil
	}
}

// Latest returns the cached result while it is younger than MaxAge and
// scans otherwise.
func (s *Service) Latest(ctx context.Context) (*Result, error) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()
	if last != nil && time.Since(last.At) < s.MaxAge {
		return last, nil
	}
	return s.Run(ctx)
}

func (s *Service) run(ctx context.Context) (*Result, error) {
	d, err := s.Data.Get()
	if err != nil {
		return nil, err
	}
	symbols, err := s.Universe(d)
	if err != nil {
		return nil, fmt.Errorf("scan universe: %w", err)
	}
	scan, err := s.Scanner.Scan(ctx, symbols, s.Limit)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:      recorder.NewRunID(),
		At:         scan.StartedAt,
		Source:     scan.Source,
		Scanned:    scan.Scanned,
		Failed:     scan.Failed,
		Candidates: strategy.SuperTrendCandidates(scan.Breakouts, d.BySymbol(), d.GreenSet()),
	}
	if err := s.Recorder.RecordScan(&recorder.ScanRun{
		ID:        res.RunID,
		Source:    scan.Source,
		StartedAt: scan.StartedAt,
		Duration:  scan.Duration,
		Scanned:   scan.Scanned,
		Failed:    scan.Failed,
		Breakouts: scan.Breakouts,
	}); err != nil {
		log.Printf("[ERROR] record scan %s: %v", res.RunID, err)
	}

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	return res, nil
}
