package network

import (
	"math"

	"ThemeSentinel/internal/trend"
)

const (
	ThemeNodeSize  = 25
	SymbolNodeSize = 30
	CenterNodeSize = 45

	// UnscoredBuyPct is shown for symbols without a composite score.
	UnscoredBuyPct = 50.0
)

// Signal is the buy-strength band of a symbol.
type Signal string

const (
	SignalStrongBuy Signal = "strong_buy"
	SignalBuy       Signal = "buy"
	SignalNeutral   Signal = "neutral"
	SignalAvoid     Signal = "avoid"
)

var signalColors = map[Signal]string{
	SignalStrongBuy: "#059669",
	SignalBuy:       "#10b981",
	SignalNeutral:   "#f59e0b",
	SignalAvoid:     "#ef4444",
}

var levelColors = map[trend.Level]string{
	trend.LevelVeryStrong: "#10b981",
	trend.LevelStrong:     "#3b82f6",
	trend.LevelModerate:   "#f59e0b",
	trend.LevelWeak:       "#ef4444",
}

// ThemeColor colors a theme by its cohesion level.
func ThemeColor(cohesion float64) string {
	return levelColors[trend.ClassifyLevel(cohesion)]
}

// BuyPct scales a composite score into a 0-100 buy percentage.
func BuyPct(score float64) float64 {
	return math.Min(100, math.Max(0, zeroIfNaN(score)*500))
}

// SignalFor buckets a buy percentage.
func SignalFor(buyPct float64) Signal {
	switch {
	case buyPct >= 70:
		return SignalStrongBuy
	case buyPct >= 50:
		return SignalBuy
	case buyPct >= 30:
		return SignalNeutral
	default:
		return SignalAvoid
	}
}

// SignalColor returns the node color of a signal band.
func SignalColor(s Signal) string {
	if c, ok := signalColors[s]; ok {
		return c
	}
	return signalColors[SignalAvoid]
}

// symbolSignal derives the buy percentage and band of a ticker. Unscored
// tickers are shown as neutral at UnscoredBuyPct.
func (ix *Index) symbolSignal(symbol string) (float64, Signal) {
	score, ok := ix.Score(symbol)
	if !ok {
		return UnscoredBuyPct, SignalNeutral
	}
	buy := BuyPct(score)
	return buy, SignalFor(buy)
}
