package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ThemeSentinel/internal/breakout"
	"ThemeSentinel/internal/dataset"
	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/network"
	"ThemeSentinel/internal/recorder"
	"ThemeSentinel/internal/strategy"
	"ThemeSentinel/internal/trend"
)

func TestRenderSummary(t *testing.T) {
	out := renderSummary(dataset.Summary{
		Date:          time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		TotalThemes:   4,
		TotalSymbols:  12,
		TierCounts:    map[model.Tier]int{model.Tier1: 1, model.Tier4: 3},
		Sentiment:     dataset.SentimentBullish,
		SignalQuality: 25,
	})
	assert.Contains(t, out, "2026-03-02")
	assert.Contains(t, out, "Bullish")
	assert.Contains(t, out, "Tier 1: 1")
	assert.Contains(t, out, "Tier 4: 3")
	assert.NotContains(t, out, "Green filter")
}

func TestRenderThemeHealth(t *testing.T) {
	out := renderThemeHealth([]dataset.ThemeHealth{
		{Theme: "AI_Agents", Sector: "AI", Tier: model.Tier1, Action: "AGGRESSIVE BUY", Cohesion: 8, Level: trend.LevelVeryStrong, NumSymbols: 3},
	}, strategy.DefaultTierClassifier())
	assert.Contains(t, out, "AI_Agents")
	assert.Contains(t, out, "AGGRESSIVE BUY")
	assert.Contains(t, out, "VERY_STRONG")
}

func TestRenderTierRules(t *testing.T) {
	tiers, err := strategy.NewTierClassifier([]strategy.TierRule{
		{Tier: model.Tier1, MinScore: 0.3, MinCohesion: 9},
		{Tier: model.Tier2, MinScore: 0.1, MinCohesion: 2},
	}, nil)
	require.NoError(t, err)

	out := renderTierRules(tiers)
	assert.Contains(t, out, "score ≥ 0.30 or cohesion ≥ 9.00")
	assert.Contains(t, out, "ACCUMULATE")
	assert.Contains(t, out, "Tier 3")
	assert.Contains(t, out, "otherwise")
	assert.NotContains(t, out, "Tier 4")
}

func TestRenderBreakouts(t *testing.T) {
	tiers := strategy.DefaultTierClassifier()
	empty := renderBreakouts(&breakout.Result{Source: "csv", Scanned: 10}, tiers)
	assert.Contains(t, empty, "10 scanned")
	assert.Contains(t, empty, "No symbol is above its upper band.")

	out := renderBreakouts(&breakout.Result{
		Source:  "mock",
		Scanned: 2,
		Candidates: []strategy.BreakoutCandidate{{
			Candidate: model.Candidate{Symbol: "FET", Theme: "AI_Agents", Tier: model.Tier1, InGreen: true},
			Band:      model.BandSignal{Symbol: "FET", Close: 20, UpperBand: 11.4, DeviationPct: 75.4, CrossedAbove: true},
		}},
	}, tiers)
	assert.Contains(t, out, "FET")
	assert.Contains(t, out, "+75.4%")
	assert.Contains(t, out, "new")
}

func TestRenderTrend(t *testing.T) {
	cmp := trend.Comparison{
		LatestDate:  time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		CompareDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Records: []trend.Record{
			{Theme: "Up", PrevCohesion: 1, Cohesion: 2, CohesionPctChange: 100, Status: trend.StatusEnhanced},
			{Theme: "Down", PrevCohesion: 2, Cohesion: 1, CohesionPctChange: -50, Status: trend.StatusDeclining},
		},
	}
	out := renderTrend(cmp, 1)
	assert.Contains(t, out, "2026-03-09 vs 2026-03-02")
	assert.Contains(t, out, "ENHANCED 1")
	assert.Contains(t, out, "+100.0%")
	assert.Contains(t, out, "-50.0%")
	assert.Less(t, strings.Index(out, "Top enhanced"), strings.Index(out, "Top declining"))
}

func TestRenderSearchAndHistory(t *testing.T) {
	assert.Contains(t, renderSearch(network.SearchResult{Query: "zzz"}), `No match for "zzz"`)

	out := renderSearch(network.SearchResult{
		Query:   "fet",
		Symbols: []network.SymbolHit{{Symbol: "FET", Company: "Fetch.ai", Signal: network.SignalBuy, BuyPct: 80}},
		Themes:  []network.ThemeHit{{Theme: "AI_Agents", Tier: model.Tier1, Cohesion: 8}},
	})
	assert.Contains(t, out, "Fetch.ai")
	assert.Contains(t, out, "80%")
	assert.Contains(t, out, "AI_Agents")

	assert.Contains(t, renderCohesionHistory("DePIN", nil), "No recorded snapshots for DePIN.")
	assert.Contains(t, renderScans(nil), "No recorded scans.")

	scans := renderScans([]recorder.ScanRun{{
		Source:    "csv",
		StartedAt: time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC),
		Scanned:   40,
		Breakouts: []model.BandSignal{{Symbol: "A"}, {Symbol: "B"}, {Symbol: "C"}, {Symbol: "D"}},
	}})
	assert.Contains(t, scans, "A, B, C")
	assert.NotContains(t, scans, "D")
}
