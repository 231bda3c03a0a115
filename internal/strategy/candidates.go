package strategy

import (
	"math"
	"sort"
	"strings"

	"ThemeSentinel/internal/model"
)

// StrategyLabel names the playbook for a symbol; fallback is used when
// neither the tier nor momentum suggests one.
func StrategyLabel(t model.Tier, momentum float64, fallback string) string {
	switch {
	case t == model.Tier1:
		return "Bull Quiet"
	case t == model.Tier2:
		return "Transition"
	case momentum > 0:
		return "Ranging"
	default:
		return fallback
	}
}

// NewCandidate classifies one symbol-level record.
func NewCandidate(r model.MetricRecord, green, tstop model.SymbolSet) model.Candidate {
	in := StageInput{
		Momentum:  r.Momentum,
		BullRatio: r.BullRatio,
		InGreen:   green.Has(r.Symbol),
		InTstop:   tstop.Has(r.Symbol),
	}
	stage, priority := ClassifyStage(in)
	return model.Candidate{
		Theme:     r.Theme,
		Symbol:    r.Symbol,
		Company:   r.Company,
		Score:     int(finite(r.CompositeScore) * 100),
		Momentum:  r.Momentum,
		BullRatio: r.BullRatio,
		Cohesion:  r.Cohesion,
		Tier:      r.Tier,
		Action:    r.Action,
		Stage:     stage,
		Priority:  priority,
		Strategy:  StrategyLabel(r.Tier, r.Momentum, "-"),
		InGreen:   in.InGreen,
		InTstop:   in.InTstop,
	}
}

// BuildCandidates classifies every symbol-level record.
func BuildCandidates(records []model.MetricRecord, green, tstop model.SymbolSet) []model.Candidate {
	out := make([]model.Candidate, 0, len(records))
	for _, r := range records {
		if r.IsTheme() {
			continue
		}
		out = append(out, NewCandidate(r, green, tstop))
	}
	return out
}

// CandidateFilter narrows a candidate list. Zero values disable a filter.
type CandidateFilter struct {
	Stage    string // case-insensitive substring
	Priority string // case-insensitive exact
	MinScore int
	Theme    string // case-insensitive substring
	Limit    int
}

// FilterCandidates applies f and returns the highest scores first.
func FilterCandidates(cands []model.Candidate, f CandidateFilter) []model.Candidate {
	stage := strings.ToLower(f.Stage)
	theme := strings.ToLower(f.Theme)
	out := make([]model.Candidate, 0, len(cands))
	for _, c := range cands {
		if stage != "" && !strings.Contains(strings.ToLower(string(c.Stage)), stage) {
			continue
		}
		if f.Priority != "" && !strings.EqualFold(string(c.Priority), f.Priority) {
			continue
		}
		if f.MinScore > 0 && c.Score < f.MinScore {
			continue
		}
		if theme != "" && !strings.Contains(strings.ToLower(c.Theme), theme) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// BreakoutCandidate is a symbol above its upper band, enriched with its metrics.
type BreakoutCandidate struct {
	model.Candidate
	Band model.BandSignal `json:"band"`
}

// SuperTrendCandidates turns ranked band signals into candidates. Every
// breakout is a Super Trend; its score scales the deviation into 0-100.
func SuperTrendCandidates(signals []model.BandSignal, bySymbol map[string]model.MetricRecord, green model.SymbolSet) []BreakoutCandidate {
	out := make([]BreakoutCandidate, 0, len(signals))
	for _, s := range signals {
		r := bySymbol[s.Symbol]
		out = append(out, BreakoutCandidate{
			Candidate: model.Candidate{
				Theme:     r.Theme,
				Symbol:    s.Symbol,
				Company:   r.Company,
				Score:     int(math.Min(s.DeviationPct*5, 100)),
				Momentum:  r.Momentum,
				BullRatio: r.BullRatio,
				Cohesion:  r.Cohesion,
				Tier:      r.Tier,
				Action:    r.Action,
				Stage:     model.StageSuperTrend,
				Priority:  model.PriorityHigh,
				Strategy:  StrategyLabel(r.Tier, r.Momentum, "Breakout"),
				InGreen:   green.Has(s.Symbol),
			},
			Band: s,
		})
	}
	return out
}
