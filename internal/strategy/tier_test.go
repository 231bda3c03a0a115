package strategy

import (
	"errors"
	"math"
	"testing"

	"ThemeSentinel/internal/model"
)

func TestClassify_AllBoundaries(t *testing.T) {
	tc := DefaultTierClassifier()
	tests := []struct {
		score    float64
		cohesion float64
		tier     model.Tier
	}{
		{0.35, 0, model.Tier1},
		{0.20, 0, model.Tier1},
		{0.1999, 7.49, model.Tier2},
		{0, 7.5, model.Tier1},
		{0.10, 0, model.Tier2},
		{0, 3.0, model.Tier2},
		{0.0999, 2.99, model.Tier3},
		{0.05, 0, model.Tier3},
		{0, 1.0, model.Tier3},
		{0.0499, 0.99, model.Tier4},
		{-0.3, 0, model.Tier4},
		{math.NaN(), math.NaN(), model.Tier4},
		{math.NaN(), 8, model.Tier1},
		{0, math.Inf(1), model.Tier1},
		{math.Inf(1), 0, model.Tier1},
		{math.Inf(-1), 0.5, model.Tier4},
	}
	for _, tt := range tests {
		got := tc.Classify(tt.score, tt.cohesion)
		if got != tt.tier {
			t.Errorf("score %.4f cohesion %.2f: expected %q, got %q", tt.score, tt.cohesion, tt.tier, got)
		}
	}
}

func TestClassify_TotalAndMonotonic(t *testing.T) {
	tc := DefaultTierClassifier()
	scores := []float64{math.Inf(-1), -1, 0, 0.04, 0.05, 0.07, 0.1, 0.15, 0.2, 0.5, math.Inf(1)}
	cohesions := []float64{0, 0.5, 1, 2, 3, 5, 7.5, 10, math.Inf(1)}
	for i, s := range scores {
		for j, c := range cohesions {
			got := tc.Classify(s, c)
			if got < model.Tier1 || got > model.Tier4 {
				t.Fatalf("score %.2f cohesion %.2f: tier %d out of range", s, c, got)
			}
			// a smaller tier number is a better tier
			if i+1 < len(scores) && tc.Classify(scores[i+1], c) > got {
				t.Errorf("raising score from %.2f worsened tier at cohesion %.2f", s, c)
			}
			if j+1 < len(cohesions) && tc.Classify(s, cohesions[j+1]) > got {
				t.Errorf("raising cohesion from %.2f worsened tier at score %.2f", c, s)
			}
		}
	}
}

func TestNewTierClassifier_RejectsBadRules(t *testing.T) {
	tests := []struct {
		name  string
		rules []TierRule
	}{
		{"increasing score", []TierRule{{model.Tier1, 0.1, 7.5}, {model.Tier2, 0.2, 3}}},
		{"increasing cohesion", []TierRule{{model.Tier1, 0.2, 1}, {model.Tier2, 0.1, 3}}},
		{"skipped tier", []TierRule{{model.Tier1, 0.2, 7.5}, {model.Tier3, 0.05, 1}}},
		{"too many rules", []TierRule{{model.Tier1, 4, 4}, {model.Tier2, 3, 3}, {model.Tier3, 2, 2}, {model.Tier4, 1, 1}}},
		{"nan threshold", []TierRule{{model.Tier1, math.NaN(), 1}}},
	}
	for _, tt := range tests {
		if _, err := NewTierClassifier(tt.rules, nil); !errors.Is(err, ErrInvalidTierRules) {
			t.Errorf("%s: expected ErrInvalidTierRules, got %v", tt.name, err)
		}
	}
}

func TestNewTierClassifier_CustomRulesAndProfiles(t *testing.T) {
	tc, err := NewTierClassifier(
		[]TierRule{{model.Tier1, 0.5, 10}},
		map[model.Tier]TierProfile{model.Tier1: {Action: "GO"}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tc.Classify(0.3, 2); got != model.Tier4 {
		t.Errorf("expected Tier 4 with a single rule, got %q", got)
	}
	p := tc.Profile(model.Tier1)
	if p.Action != "GO" || p.Color != "#059669" {
		t.Errorf("expected merged profile, got %+v", p)
	}
	if tc.Profile(model.TierUnknown).Action != "MONITOR" {
		t.Error("unknown tier should fall back to the Tier 4 profile")
	}
}

func TestClassifyRecord(t *testing.T) {
	tc := DefaultTierClassifier()
	r := tc.ClassifyRecord(model.MetricRecord{Theme: "AI", CompositeScore: 0.12, Cohesion: 0.4})
	if r.Tier != model.Tier2 || r.Action != "ACCUMULATE" {
		t.Errorf("expected Tier 2 ACCUMULATE, got %s %s", r.Tier, r.Action)
	}

	counts := TierCounts(tc.ClassifyAll([]model.MetricRecord{
		{CompositeScore: 0.3}, {CompositeScore: 0.3}, {Cohesion: 1.2},
	}))
	if counts[model.Tier1] != 2 || counts[model.Tier3] != 1 || counts[model.Tier4] != 0 {
		t.Errorf("unexpected tier counts %v", counts)
	}
}

func TestSectorOf(t *testing.T) {
	tests := []struct {
		theme string
		want  string
	}{
		{"AI_Agents", "AI"},
		{"DeFAI", "AI"},
		{"Lending_Protocols", "DeFi"},
		{"Meme_Coins", "Memes"},
		{"DePIN", "Infrastructure"},
		{"Solana_Ecosystem", "Ecosystem"},
		{"Tokenized_Gold", "RWA"},
		{"Something Else", SectorOther},
	}
	for _, tt := range tests {
		if got := SectorOf(tt.theme); got != tt.want {
			t.Errorf("SectorOf(%q): expected %q, got %q", tt.theme, tt.want, got)
		}
	}
}
