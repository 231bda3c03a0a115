package model

import "time"

// Stage is a breakout-lifecycle label.
type Stage string

const (
	StageSuperTrend    Stage = "Super Trend"
	StageEarlyBreakout Stage = "Early Breakout"
	StageBurgeoning    Stage = "Burgeoning"
	StageBuilding      Stage = "Building"
	StageBearVolatile  Stage = "Bear Volatile"
	StageConsolidation Stage = "Consolidation"
)

// AllStages lists stages in display order.
var AllStages = []Stage{
	StageSuperTrend, StageEarlyBreakout, StageBurgeoning,
	StageBuilding, StageConsolidation, StageBearVolatile,
}

// Priority ranks how urgently a stage deserves attention.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
	PriorityAvoid  Priority = "AVOID"
)

// AllPriorities lists priorities from most to least urgent.
var AllPriorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow, PriorityAvoid}

// BandSignal is the band-crossover result for one symbol.
type BandSignal struct {
	Symbol       string    `json:"symbol"`
	LastDate     time.Time `json:"last_date"`
	Close        float64   `json:"close"`
	UpperBand    float64   `json:"upper_band"`
	DeviationPct float64   `json:"deviation_pct"`
	ChangePct    float64   `json:"change_pct"`
	CrossedAbove bool      `json:"crossed_above"`
	AboveUpper   bool      `json:"above_upper"`
}

// Candidate is a symbol enriched with its tier, stage and filter flags.
type Candidate struct {
	Theme     string   `json:"theme"`
	Symbol    string   `json:"symbol"`
	Company   string   `json:"company"`
	Score     int      `json:"score"`
	Momentum  float64  `json:"momentum"`
	BullRatio float64  `json:"bull_ratio"`
	Cohesion  float64  `json:"cohesion"`
	Tier      Tier     `json:"tier"`
	Action    string   `json:"action"`
	Stage     Stage    `json:"stage"`
	Priority  Priority `json:"priority"`
	Strategy  string   `json:"strategy"`
	InGreen   bool     `json:"in_green"`
	InTstop   bool     `json:"in_tstop"`
}

// SymbolSet is a set of normalized tickers.
type SymbolSet map[string]struct{}

// NewSymbolSet builds a set from tickers.
func NewSymbolSet(symbols ...string) SymbolSet {
	s := make(SymbolSet, len(symbols))
	for _, sym := range symbols {
		s[sym] = struct{}{}
	}
	return s
}

// Has reports membership; a nil set contains nothing.
func (s SymbolSet) Has(symbol string) bool {
	_, ok := s[symbol]
	return ok
}
