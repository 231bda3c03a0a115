package strategy

import (
	"testing"

	"ThemeSentinel/internal/model"
)

func TestBuildAndFilterCandidates(t *testing.T) {
	records := []model.MetricRecord{
		{Theme: "AI Agents", CompositeScore: 0.25},
		{Theme: "AI Agents", Symbol: "FET", Company: "Fetch.ai", CompositeScore: 0.25, Momentum: 0.15, BullRatio: 0.7, Tier: model.Tier1},
		{Theme: "Layer 2", Symbol: "ARB", CompositeScore: 0.08, Momentum: 0.07, Tier: model.Tier3},
		{Theme: "Memes", Symbol: "DOGE", CompositeScore: 0.01, Momentum: -0.2, Tier: model.Tier4},
	}
	cands := BuildCandidates(records, model.NewSymbolSet("FET"), model.NewSymbolSet("ARB"))
	if len(cands) != 3 {
		t.Fatalf("expected 3 symbol candidates, got %d", len(cands))
	}

	byTicker := map[string]model.Candidate{}
	for _, c := range cands {
		byTicker[c.Symbol] = c
	}
	if c := byTicker["FET"]; c.Stage != model.StageSuperTrend || c.Score != 25 || c.Strategy != "Bull Quiet" {
		t.Errorf("FET: unexpected %+v", c)
	}
	if c := byTicker["ARB"]; c.Stage != model.StageEarlyBreakout || c.Priority != model.PriorityMedium || c.Strategy != "Ranging" {
		t.Errorf("ARB: unexpected %+v", c)
	}
	if c := byTicker["DOGE"]; c.Priority != model.PriorityAvoid || c.Strategy != "-" {
		t.Errorf("DOGE: unexpected %+v", c)
	}

	tests := []struct {
		name   string
		filter CandidateFilter
		want   []string
	}{
		{"no filter sorted by score", CandidateFilter{}, []string{"FET", "ARB", "DOGE"}},
		{"stage substring", CandidateFilter{Stage: "breakout"}, []string{"ARB"}},
		{"priority", CandidateFilter{Priority: "high"}, []string{"FET"}},
		{"min score", CandidateFilter{MinScore: 5}, []string{"FET", "ARB"}},
		{"theme substring", CandidateFilter{Theme: "layer"}, []string{"ARB"}},
		{"limit", CandidateFilter{Limit: 1}, []string{"FET"}},
	}
	for _, tt := range tests {
		got := FilterCandidates(cands, tt.filter)
		if len(got) != len(tt.want) {
			t.Errorf("%s: expected %d results, got %d", tt.name, len(tt.want), len(got))
			continue
		}
		for i, sym := range tt.want {
			if got[i].Symbol != sym {
				t.Errorf("%s: position %d expected %q, got %q", tt.name, i, sym, got[i].Symbol)
			}
		}
	}
}

func TestSuperTrendCandidates(t *testing.T) {
	signals := []model.BandSignal{
		{Symbol: "SOL", DeviationPct: 30, AboveUpper: true},
		{Symbol: "XYZ", DeviationPct: 4.5, AboveUpper: true},
	}
	enrich := map[string]model.MetricRecord{
		"SOL": {Theme: "Layer 1", Symbol: "SOL", Tier: model.Tier2},
	}
	got := SuperTrendCandidates(signals, enrich, model.NewSymbolSet("XYZ"))
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Score != 100 || got[0].Strategy != "Transition" || got[0].Theme != "Layer 1" {
		t.Errorf("SOL: unexpected %+v", got[0])
	}
	if got[1].Score != 22 || got[1].Strategy != "Breakout" || !got[1].InGreen {
		t.Errorf("XYZ: unexpected %+v", got[1])
	}
	if got[1].Stage != model.StageSuperTrend || got[1].Priority != model.PriorityHigh {
		t.Errorf("XYZ: expected Super Trend HIGH, got %s %s", got[1].Stage, got[1].Priority)
	}
}
