package collector

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ThemeSentinel/internal/calculator"
	"ThemeSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Series map[string]model.PriceSeries
	Errors map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, symbol string, days int) (model.PriceSeries, error) {
	if err, ok := m.Errors[symbol]; ok {
		return model.PriceSeries{}, err
	}
	if s, ok := m.Series[symbol]; ok {
		return s, nil
	}
	return model.PriceSeries{Symbol: symbol, Points: mockPoints(m.Price, days), FetchedAt: time.Now()}, nil
}

// mockPoints is a gentle uptrend around basePrice ending today.
func mockPoints(basePrice float64, count int) []model.PricePoint {
	if basePrice <= 0 {
		basePrice = 100
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	points := make([]model.PricePoint, count)
	for i := range points {
		points[i] = model.PricePoint{
			Date:  today.AddDate(0, 0, i-count+1),
			Close: basePrice * (1 + float64(i-count/2)*0.001),
		}
	}
	return points
}

// ScanResult summarizes one batch band scan.
type ScanResult struct {
	Source    string
	StartedAt time.Time
	Duration  time.Duration
	Scanned   int
	Failed    int
	Breakouts []model.BandSignal // ranked, above the upper band
}

// Scanner fetches series for many symbols in parallel and runs the band
// crossover detector on each.
type Scanner struct {
	Fetcher Fetcher
	Params  calculator.BandParams
	Workers int
	Days    int
}

// NewScanner creates a Scanner. Days defaults to the band window plus a margin.
func NewScanner(fetcher Fetcher, params calculator.BandParams, workers int) *Scanner {
	if workers <= 0 {
		workers = 8
	}
	return &Scanner{Fetcher: fetcher, Params: params, Workers: workers, Days: params.Window + 80}
}

// Scan evaluates every symbol and returns the top limit breakouts. Symbols
// that fail to fetch or lack enough history are skipped. Only a cancelled
// context aborts the scan.
func (s *Scanner) Scan(ctx context.Context, symbols []string, limit int) (ScanResult, error) {
	res := ScanResult{Source: s.Fetcher.Name(), StartedAt: time.Now()}

	var (
		mu      sync.Mutex
		signals []model.BandSignal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for _, sym := range symbols {
		sym := sym // per-iteration copy (go directive is 1.21)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			series, err := s.Fetcher.FetchSeries(gctx, sym, s.Days)
			mu.Lock()
			defer mu.Unlock()
			res.Scanned++
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				res.Failed++
				log.Printf("[WARN] skip %s: %v", sym, err)
				return nil
			}
			if sig, ok := calculator.DetectBandCrossover(series, s.Params); ok {
				signals = append(signals, sig)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("band scan: %w", err)
	}

	res.Breakouts = calculator.RankBreakouts(signals, limit)
	res.Duration = time.Since(res.StartedAt)
	log.Printf("[INFO] band scan via %s: %d scanned, %d failed, %d breakouts in %s",
		res.Source, res.Scanned, res.Failed, len(res.Breakouts), res.Duration.Round(time.Millisecond))
	return res, nil
}
