package strategy

import "ThemeSentinel/internal/model"

// StageInput carries the signals the stage tree branches on. Filter-set
// membership is resolved by the caller.
type StageInput struct {
	Momentum  float64
	BullRatio float64
	InGreen   bool
	InTstop   bool
}

// StageRule pairs a predicate with the stage it yields.
type StageRule struct {
	Name     string
	Match    func(StageInput) bool
	Stage    model.Stage
	Priority model.Priority
}

func strongTrend(in StageInput) bool { return in.Momentum > 0.10 && in.BullRatio >= 0.50 }

// StageRules is evaluated top-down and the first match wins. The momentum
// ranges overlap, so the order is part of the contract.
var StageRules = []StageRule{
	{"strong trend confirmed green", func(in StageInput) bool { return strongTrend(in) && in.InGreen }, model.StageSuperTrend, model.PriorityHigh},
	{"strong trend", strongTrend, model.StageEarlyBreakout, model.PriorityHigh},
	{"rising with trailing stop", func(in StageInput) bool { return in.Momentum > 0.05 && in.InTstop }, model.StageEarlyBreakout, model.PriorityMedium},
	{"rising", func(in StageInput) bool { return in.Momentum > 0.05 }, model.StageBurgeoning, model.PriorityMedium},
	{"positive", func(in StageInput) bool { return in.Momentum > 0 }, model.StageBuilding, model.PriorityLow},
	{"falling", func(in StageInput) bool { return in.Momentum < -0.05 }, model.StageBearVolatile, model.PriorityAvoid},
}

// ClassifyStage walks StageRules and falls back to Consolidation.
func ClassifyStage(in StageInput) (model.Stage, model.Priority) {
	in.Momentum, in.BullRatio = nanToZero(in.Momentum), nanToZero(in.BullRatio)
	for _, r := range StageRules {
		if r.Match(in) {
			return r.Stage, r.Priority
		}
	}
	return model.StageConsolidation, model.PriorityLow
}

// Tally is one bucket of a distribution.
type Tally struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// StageDistribution counts candidates per stage and per priority. Buckets
// follow model.AllStages and model.AllPriorities; empty ones are left out.
func StageDistribution(cands []model.Candidate) (stages, priorities []Tally) {
	sc := make(map[model.Stage]int)
	pc := make(map[model.Priority]int)
	for _, c := range cands {
		sc[c.Stage]++
		pc[c.Priority]++
	}
	for _, st := range model.AllStages {
		if n := sc[st]; n > 0 {
			stages = append(stages, Tally{Name: string(st), Count: n})
		}
	}
	for _, p := range model.AllPriorities {
		if n := pc[p]; n > 0 {
			priorities = append(priorities, Tally{Name: string(p), Count: n})
		}
	}
	return stages, priorities
}
