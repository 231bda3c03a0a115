package strategy

import (
	"errors"
	"fmt"
	"math"

	"ThemeSentinel/internal/model"
)

// TierRule is one row of the tier table. A record qualifies when its composite
// score OR its cohesion reaches the row's threshold.
type TierRule struct {
	Tier        model.Tier `yaml:"tier" validate:"min=1,max=3"`
	MinScore    float64    `yaml:"min_score"`
	MinCohesion float64    `yaml:"min_cohesion" validate:"gte=0"`
}

// TierProfile is the static presentation of a tier.
type TierProfile struct {
	Action      string `yaml:"action" json:"action"`
	Color       string `yaml:"color" json:"color"`
	Description string `yaml:"description" json:"description"`
}

// DefaultTierRules is evaluated top-down; Tier4 is the fallback.
var DefaultTierRules = []TierRule{
	{Tier: model.Tier1, MinScore: 0.20, MinCohesion: 7.5},
	{Tier: model.Tier2, MinScore: 0.10, MinCohesion: 3.0},
	{Tier: model.Tier3, MinScore: 0.05, MinCohesion: 1.0},
}

// DefaultTierProfiles maps each tier to its action and color.
var DefaultTierProfiles = map[model.Tier]TierProfile{
	model.Tier1: {Action: "AGGRESSIVE BUY", Color: "#059669", Description: "Strong signal, immediate action"},
	model.Tier2: {Action: "ACCUMULATE", Color: "#10b981", Description: "Good signal, build position"},
	model.Tier3: {Action: "RESEARCH", Color: "#f59e0b", Description: "Moderate signal, watch closely"},
	model.Tier4: {Action: "MONITOR", Color: "#ef4444", Description: "Weak signal, low priority"},
}

// ErrInvalidTierRules is returned for a rule table that is out of order.
var ErrInvalidTierRules = errors.New("invalid tier rules")

// TierClassifier maps (composite score, cohesion) to a tier. It is immutable
// and safe for concurrent use.
type TierClassifier struct {
	rules    []TierRule
	profiles map[model.Tier]TierProfile
}

// NewTierClassifier validates the rule table and fills missing profiles from
// the defaults. Rules must name Tier1, Tier2, ... in order with non-increasing
// thresholds, otherwise raising an input could move a record to a worse tier.
func NewTierClassifier(rules []TierRule, profiles map[model.Tier]TierProfile) (*TierClassifier, error) {
	if len(rules) > len(model.AllTiers)-1 {
		return nil, fmt.Errorf("%w: at most %d rules, got %d", ErrInvalidTierRules, len(model.AllTiers)-1, len(rules))
	}
	for i, r := range rules {
		if r.Tier != model.Tier(i+1) {
			return nil, fmt.Errorf("%w: rule %d is %s, expected %s", ErrInvalidTierRules, i, r.Tier, model.Tier(i+1))
		}
		if math.IsNaN(r.MinScore) || math.IsNaN(r.MinCohesion) {
			return nil, fmt.Errorf("%w: %s has a NaN threshold", ErrInvalidTierRules, r.Tier)
		}
		if i > 0 {
			prev := rules[i-1]
			if r.MinScore > prev.MinScore || r.MinCohesion > prev.MinCohesion {
				return nil, fmt.Errorf("%w: %s thresholds exceed %s", ErrInvalidTierRules, r.Tier, prev.Tier)
			}
		}
	}

	merged := make(map[model.Tier]TierProfile, len(model.AllTiers))
	for _, t := range model.AllTiers {
		p := DefaultTierProfiles[t]
		if o, ok := profiles[t]; ok {
			if o.Action != "" {
				p.Action = o.Action
			}
			if o.Color != "" {
				p.Color = o.Color
			}
			if o.Description != "" {
				p.Description = o.Description
			}
		}
		merged[t] = p
	}

	return &TierClassifier{rules: append([]TierRule(nil), rules...), profiles: merged}, nil
}

// DefaultTierClassifier uses DefaultTierRules and DefaultTierProfiles.
func DefaultTierClassifier() *TierClassifier {
	tc, err := NewTierClassifier(DefaultTierRules, nil)
	if err != nil {
		panic(err)
	}
	return tc
}

// Rules returns a copy of the rule table.
func (tc *TierClassifier) Rules() []TierRule {
	return append([]TierRule(nil), tc.rules...)
}

// Classify returns the first tier whose score or cohesion threshold is met.
// NaN inputs count as 0.
func (tc *TierClassifier) Classify(score, cohesion float64) model.Tier {
	score, cohesion = nanToZero(score), nanToZero(cohesion)
	for _, r := range tc.rules {
		if score >= r.MinScore || cohesion >= r.MinCohesion {
			return r.Tier
		}
	}
	return model.Tier4
}

// Profile returns the presentation of t; unknown tiers get the Tier4 profile.
func (tc *TierClassifier) Profile(t model.Tier) TierProfile {
	if p, ok := tc.profiles[t]; ok {
		return p
	}
	return tc.profiles[model.Tier4]
}

// ClassifyRecord returns a copy of r with Tier and Action derived from its metrics.
func (tc *TierClassifier) ClassifyRecord(r model.MetricRecord) model.MetricRecord {
	r.Tier = tc.Classify(r.CompositeScore, r.Cohesion)
	r.Action = tc.Profile(r.Tier).Action
	return r
}

// ClassifyAll classifies every record into a new slice.
func (tc *TierClassifier) ClassifyAll(records []model.MetricRecord) []model.MetricRecord {
	out := make([]model.MetricRecord, len(records))
	for i, r := range records {
		out[i] = tc.ClassifyRecord(r)
	}
	return out
}

// TierCounts tallies records per tier. Every tier is present in the result.
func TierCounts(records []model.MetricRecord) map[model.Tier]int {
	counts := make(map[model.Tier]int, len(model.AllTiers))
	for _, t := range model.AllTiers {
		counts[t] = 0
	}
	for _, r := range records {
		counts[r.Tier]++
	}
	return counts
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// nanToZero leaves infinities alone so threshold comparisons stay monotone.
func nanToZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
