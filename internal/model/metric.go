package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tier is an ordinal conviction level; Tier1 is the strongest.
type Tier int

const (
	TierUnknown Tier = iota
	Tier1
	Tier2
	Tier3
	Tier4
)

// AllTiers lists the tiers from strongest to weakest.
var AllTiers = []Tier{Tier1, Tier2, Tier3, Tier4}

func (t Tier) String() string {
	if t < Tier1 || t > Tier4 {
		return "Unknown"
	}
	return fmt.Sprintf("Tier %d", int(t))
}

// MarshalText renders the tier as its label in JSON output.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts a label ("Tier 2") or a bare number ("2").
func (t *Tier) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if strings.EqualFold(s, "Unknown") {
		*t = TierUnknown
		return nil
	}
	if len(s) >= 4 && strings.EqualFold(s[:4], "tier") {
		s = strings.TrimSpace(s[4:])
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < int(Tier1) || n > int(Tier4) {
		return fmt.Errorf("invalid tier %q", string(text))
	}
	*t = Tier(n)
	return nil
}

// MetricRecord is one theme, or one (theme, symbol) pair, as of one snapshot date.
// Tier and Action are derived by the tier classifier and never set from input.
type MetricRecord struct {
	Date           time.Time `json:"date"`
	Theme          string    `json:"theme"`
	Symbol         string    `json:"symbol,omitempty"`
	Company        string    `json:"company,omitempty"`
	CompositeScore float64   `json:"composite_score"`
	Momentum       float64   `json:"momentum"`
	Cohesion       float64   `json:"cohesion"`
	BullRatio      float64   `json:"bull_ratio"`
	WeightInTheme  float64   `json:"weight_in_theme"`
	NumSymbols     int       `json:"num_symbols,omitempty"`
	Tier           Tier      `json:"tier"`
	Action         string    `json:"action"`
}

// IsTheme reports whether the record describes a whole theme.
func (r MetricRecord) IsTheme() bool { return r.Symbol == "" }

// Snapshot is the complete set of metric records for one date.
type Snapshot struct {
	Date    time.Time
	Source  string
	Records []MetricRecord
}

// ThemeRecords returns one theme-level record per theme, keeping the first seen.
func (s Snapshot) ThemeRecords() []MetricRecord {
	seen := make(map[string]bool, len(s.Records))
	out := make([]MetricRecord, 0, len(s.Records))
	for _, r := range s.Records {
		if !r.IsTheme() || seen[r.Theme] {
			continue
		}
		seen[r.Theme] = true
		out = append(out, r)
	}
	return out
}

// Membership is one row of the theme/symbol table.
type Membership struct {
	Theme   string  `json:"theme"`
	Symbol  string  `json:"symbol"`
	Company string  `json:"company"`
	Weight  float64 `json:"weight"`
}
