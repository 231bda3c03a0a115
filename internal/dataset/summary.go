package dataset

import (
	"math"
	"sort"
	"time"

	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/strategy"
	"ThemeSentinel/internal/trend"
)

// Sentiment is the market-wide reading derived from theme averages.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
	SentimentNeutral Sentiment = "Neutral"
)

// ClassifySentiment labels the market from average theme momentum and bull ratio.
func ClassifySentiment(avgMomentum, avgBullRatio float64) Sentiment {
	switch {
	case avgMomentum > 0.05 && avgBullRatio > 0.3:
		return SentimentBullish
	case avgMomentum < -0.02 || avgBullRatio < 0.1:
		return SentimentBearish
	default:
		return SentimentNeutral
	}
}

// Summary is the market overview.
type Summary struct {
	Date          time.Time          `json:"date"`
	TotalThemes   int                `json:"total_themes"`
	TotalSymbols  int                `json:"total_symbols"`
	TierCounts    map[model.Tier]int `json:"tier_counts"`
	AvgMomentum   float64            `json:"avg_momentum"`
	AvgCohesion   float64            `json:"avg_cohesion"`
	AvgScore      float64            `json:"avg_score"`
	AvgBullRatio  float64            `json:"avg_bull_ratio"`
	Sentiment     Sentiment          `json:"sentiment"`
	SignalQuality int                `json:"signal_quality"`
	GreenCount    int                `json:"green_count"`
	TstopCount    int                `json:"tstop_count"`
}

// Summary computes the overview from the latest theme records.
func (d *Dataset) Summary() Summary {
	themes := d.Latest.Records
	s := Summary{
		Date:         d.Latest.Date,
		TotalThemes:  len(themes),
		TotalSymbols: d.Index.SymbolCount(),
		TierCounts:   strategy.TierCounts(themes),
		GreenCount:   len(d.GreenSet()),
		TstopCount:   len(d.TstopSet()),
	}
	if len(themes) == 0 {
		s.Sentiment = SentimentNeutral
		return s
	}
	for _, r := range themes {
		s.AvgMomentum += r.Momentum
		s.AvgCohesion += r.Cohesion
		s.AvgScore += r.CompositeScore
		s.AvgBullRatio += r.BullRatio
	}
	n := float64(len(themes))
	s.AvgMomentum /= n
	s.AvgCohesion /= n
	s.AvgScore /= n
	s.AvgBullRatio /= n
	s.Sentiment = ClassifySentiment(s.AvgMomentum, s.AvgBullRatio)

	strong := s.TierCounts[model.Tier1] + s.TierCounts[model.Tier2]
	s.SignalQuality = int(math.Min(100, float64(strong)/n*100))
	return s
}

// ThemeHealth is one row of the theme health table.
type ThemeHealth struct {
	Theme      string      `json:"theme"`
	Sector     string      `json:"sector"`
	Tier       model.Tier  `json:"tier"`
	Action     string      `json:"action"`
	Score      float64     `json:"score"`
	Momentum   float64     `json:"momentum"`
	Cohesion   float64     `json:"cohesion"`
	BullRatio  float64     `json:"bull_ratio"`
	NumSymbols int         `json:"num_symbols"`
	Level      trend.Level `json:"level"`
}

// ThemeHealth lists every theme, strongest tier first and by cohesion within a tier.
func (d *Dataset) ThemeHealth() []ThemeHealth {
	out := make([]ThemeHealth, 0, len(d.Latest.Records))
	for _, r := range d.Latest.Records {
		n := r.NumSymbols
		if n == 0 {
			n = len(d.Index.Members(r.Theme))
		}
		out = append(out, ThemeHealth{
			Theme:      r.Theme,
			Sector:     strategy.SectorOf(r.Theme),
			Tier:       r.Tier,
			Action:     r.Action,
			Score:      r.CompositeScore,
			Momentum:   r.Momentum,
			Cohesion:   r.Cohesion,
			BullRatio:  r.BullRatio,
			NumSymbols: n,
			Level:      trend.ClassifyLevel(r.Cohesion),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tier != out[j].Tier {
			return out[i].Tier < out[j].Tier
		}
		return out[i].Cohesion > out[j].Cohesion
	})
	return out
}

// TierBucket aggregates the symbol rows of one tier.
type TierBucket struct {
	Tier          model.Tier `json:"tier"`
	Action        string     `json:"action"`
	Color         string     `json:"color"`
	Rows          int        `json:"rows"`
	UniqueSymbols int        `json:"unique_symbols"`
	Themes        []string   `json:"themes"`
	AvgMomentum   float64    `json:"avg_momentum"`
	AvgCohesion   float64    `json:"avg_cohesion"`
}

// TierBreakdown groups symbol rows by tier, Tier 1 first.
func (d *Dataset) TierBreakdown(tiers *strategy.TierClassifier) []TierBucket {
	out := make([]TierBucket, 0, len(model.AllTiers))
	for _, t := range model.AllTiers {
		p := tiers.Profile(t)
		b := TierBucket{Tier: t, Action: p.Action, Color: p.Color, Themes: []string{}}
		syms := make(map[string]struct{})
		themes := make(map[string]struct{})
		for _, r := range d.Symbols {
			if r.Tier != t {
				continue
			}
			b.Rows++
			b.AvgMomentum += r.Momentum
			b.AvgCohesion += r.Cohesion
			syms[r.Symbol] = struct{}{}
			if _, ok := themes[r.Theme]; !ok {
				themes[r.Theme] = struct{}{}
				b.Themes = append(b.Themes, r.Theme)
			}
		}
		if b.Rows > 0 {
			b.AvgMomentum /= float64(b.Rows)
			b.AvgCohesion /= float64(b.Rows)
		}
		b.UniqueSymbols = len(syms)
		sort.Strings(b.Themes)
		out = append(out, b)
	}
	return out
}

// FunnelStage is one step of the signal filter funnel.
type FunnelStage struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// Funnel narrows the symbol rows step by step down to Tier 1.
func (d *Dataset) Funnel() []FunnelStage {
	var momentum, cohesion, t13, t12, t1 int
	for _, r := range d.Symbols {
		if r.Momentum > 0 {
			momentum++
		}
		if r.Cohesion >= 0.5 {
			cohesion++
		}
		switch r.Tier {
		case model.Tier1:
			t1++
			fallthrough
		case model.Tier2:
			t12++
			fallthrough
		case model.Tier3:
			t13++
		}
	}
	return []FunnelStage{
		{"All Themes", len(d.Latest.Records)},
		{"Theme Signals", len(d.Symbols)},
		{"Momentum Pass", momentum},
		{"Cohesion Pass", cohesion},
		{"Tier 1-3", t13},
		{"Tier 1-2", t12},
		{"Tier 1", t1},
	}
}
