package calculator

import (
	"math"
	"sort"
	"time"

	"ThemeSentinel/internal/model"
)

// BandParams configures the upper-band breakout detector.
type BandParams struct {
	Window     int
	Multiplier float64
	MinPrice   float64
	MinDate    time.Time // zero disables the freshness cutoff
}

// DefaultBandParams returns BB(220, 2.0) with a 5.0 price floor.
func DefaultBandParams() BandParams {
	return BandParams{Window: 220, Multiplier: 2.0, MinPrice: 5.0}
}

// DetectBandCrossover evaluates the latest close of series against its rolling
// upper band. It returns false when the symbol must be skipped: stale series,
// fewer than Window valid closes, price under MinPrice, or a zero band.
func DetectBandCrossover(series model.PriceSeries, p BandParams) (model.BandSignal, bool) {
	if p.Window < 2 {
		return model.BandSignal{}, false
	}
	last, ok := series.LastDate()
	if !ok {
		return model.BandSignal{}, false
	}
	if !p.MinDate.IsZero() && last.Before(p.MinDate) {
		return model.BandSignal{}, false
	}

	points := validPoints(series.Points)
	n := len(points)
	if n < p.Window {
		return model.BandSignal{}, false
	}
	closes := extractCloses(points)

	upper, err := CalculateUpperBand(closes, p.Window, p.Multiplier)
	if err != nil || upper == 0 || math.IsNaN(upper) {
		return model.BandSignal{}, false
	}
	cur := closes[n-1]
	if cur < p.MinPrice {
		return model.BandSignal{}, false
	}

	sig := model.BandSignal{
		Symbol:       series.Symbol,
		LastDate:     points[n-1].Date,
		Close:        cur,
		UpperBand:    upper,
		DeviationPct: (cur - upper) / upper * 100,
		AboveUpper:   cur > upper,
	}

	if n >= 2 {
		prev := closes[n-2]
		sig.ChangePct = (cur - prev) / prev * 100
		// the previous band needs its own full window
		if prevUpper, err := CalculateUpperBand(closes[:n-1], p.Window, p.Multiplier); err == nil {
			sig.CrossedAbove = prev <= prevUpper && sig.AboveUpper
		}
	}
	return sig, true
}

// RankBreakouts keeps signals above their upper band, strongest deviation
// first, truncated to limit. A non-positive limit keeps everything.
func RankBreakouts(signals []model.BandSignal, limit int) []model.BandSignal {
	out := make([]model.BandSignal, 0, len(signals))
	for _, s := range signals {
		if s.AboveUpper {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DeviationPct != out[j].DeviationPct {
			return out[i].DeviationPct > out[j].DeviationPct
		}
		return out[i].Symbol < out[j].Symbol
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
