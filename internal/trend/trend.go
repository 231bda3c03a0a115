// Package trend compares cohesion between two dated snapshots.
package trend

import (
	"sort"
	"time"

	"ThemeSentinel/internal/model"
)

const (
	// DefaultLookbackDays is the target distance between compared snapshots.
	DefaultLookbackDays = 7

	// ZeroCohesionDivisor replaces a previous cohesion of 0 when computing the
	// percentage change. The result is then the absolute change times 100,
	// not a true percentage.
	ZeroCohesionDivisor = 1.0
)

// ChangeStatus buckets the percentage change of cohesion.
type ChangeStatus string

const (
	StatusEnhanced  ChangeStatus = "ENHANCED"
	StatusImproving ChangeStatus = "IMPROVING"
	StatusStable    ChangeStatus = "STABLE"
	StatusWeakening ChangeStatus = "WEAKENING"
	StatusDeclining ChangeStatus = "DECLINING"
)

// AllStatuses lists change statuses from best to worst.
var AllStatuses = []ChangeStatus{StatusEnhanced, StatusImproving, StatusStable, StatusWeakening, StatusDeclining}

// Level buckets the absolute cohesion of a theme.
type Level string

const (
	LevelVeryStrong Level = "VERY_STRONG"
	LevelStrong     Level = "STRONG"
	LevelModerate   Level = "MODERATE"
	LevelWeak       Level = "WEAK"
)

// ClassifyChange is evaluated top-down; the bands are inclusive.
func ClassifyChange(pct float64) ChangeStatus {
	switch {
	case pct >= 20:
		return StatusEnhanced
	case pct >= 5:
		return StatusImproving
	case pct <= -20:
		return StatusDeclining
	case pct <= -5:
		return StatusWeakening
	default:
		return StatusStable
	}
}

// ClassifyLevel maps absolute cohesion to a level. These bands are distinct
// from the tier thresholds.
func ClassifyLevel(cohesion float64) Level {
	switch {
	case cohesion >= 3.0:
		return LevelVeryStrong
	case cohesion >= 1.5:
		return LevelStrong
	case cohesion >= 0.5:
		return LevelModerate
	default:
		return LevelWeak
	}
}

// Record is the comparison of one theme across the two snapshots.
type Record struct {
	Theme             string       `json:"theme"`
	Cohesion          float64      `json:"cohesion"`
	PrevCohesion      float64      `json:"prev_cohesion"`
	CohesionChange    float64      `json:"cohesion_change"`
	CohesionPctChange float64      `json:"cohesion_pct_change"`
	Momentum          float64      `json:"momentum"`
	MomentumChange    float64      `json:"momentum_change"`
	Score             float64      `json:"composite_score"`
	ScoreChange       float64      `json:"score_change"`
	Tier              model.Tier   `json:"tier"`
	Level             Level        `json:"cohesion_level"`
	Status            ChangeStatus `json:"change_status"`
}

// Comparison holds every theme present in both snapshots.
type Comparison struct {
	LatestDate  time.Time `json:"latest_date"`
	CompareDate time.Time `json:"compare_date"`
	Records     []Record  `json:"records"`
}

// SelectPair picks the newest snapshot and the newest one strictly older than
// latest minus lookbackDays, falling back to the snapshot right after latest
// in date order. It reports false with fewer than two snapshots.
func SelectPair(snapshots []model.Snapshot, lookbackDays int) (latest, prev model.Snapshot, ok bool) {
	if len(snapshots) < 2 {
		return model.Snapshot{}, model.Snapshot{}, false
	}
	sorted := append([]model.Snapshot(nil), snapshots...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	latest = sorted[0]
	target := latest.Date.AddDate(0, 0, -lookbackDays)
	for _, s := range sorted[1:] {
		if s.Date.Before(target) {
			return latest, s, true
		}
	}
	return latest, sorted[1], true
}

// Compare joins the theme records of the selected pair on theme name.
func Compare(snapshots []model.Snapshot, lookbackDays int) (Comparison, bool) {
	latest, prev, ok := SelectPair(snapshots, lookbackDays)
	if !ok {
		return Comparison{}, false
	}

	prevByTheme := make(map[string]model.MetricRecord)
	for _, r := range prev.ThemeRecords() {
		prevByTheme[r.Theme] = r
	}

	cmp := Comparison{LatestDate: latest.Date, CompareDate: prev.Date}
	for _, cur := range latest.ThemeRecords() {
		old, found := prevByTheme[cur.Theme]
		if !found {
			continue
		}
		cmp.Records = append(cmp.Records, compareRecord(cur, old))
	}
	return cmp, true
}

func compareRecord(cur, old model.MetricRecord) Record {
	change := cur.Cohesion - old.Cohesion
	divisor := old.Cohesion
	if divisor == 0 {
		divisor = ZeroCohesionDivisor
	}
	pct := change / divisor * 100
	return Record{
		Theme:             cur.Theme,
		Cohesion:          cur.Cohesion,
		PrevCohesion:      old.Cohesion,
		CohesionChange:    change,
		CohesionPctChange: pct,
		Momentum:          cur.Momentum,
		MomentumChange:    cur.Momentum - old.Momentum,
		Score:             cur.CompositeScore,
		ScoreChange:       cur.CompositeScore - old.CompositeScore,
		Tier:              cur.Tier,
		Level:             ClassifyLevel(cur.Cohesion),
		Status:            ClassifyChange(pct),
	}
}

// TopEnhanced returns up to n records with the largest percentage change.
func (c Comparison) TopEnhanced(n int) []Record {
	return c.sorted(n, func(a, b Record) bool { return a.CohesionPctChange > b.CohesionPctChange })
}

// TopDeclining returns up to n records with the smallest percentage change.
func (c Comparison) TopDeclining(n int) []Record {
	return c.sorted(n, func(a, b Record) bool { return a.CohesionPctChange < b.CohesionPctChange })
}

// ByCohesion returns every record, strongest current cohesion first.
func (c Comparison) ByCohesion() []Record {
	return c.sorted(0, func(a, b Record) bool { return a.Cohesion > b.Cohesion })
}

// StatusCounts tallies records per change status.
func (c Comparison) StatusCounts() map[ChangeStatus]int {
	counts := make(map[ChangeStatus]int, len(AllStatuses))
	for _, s := range AllStatuses {
		counts[s] = 0
	}
	for _, r := range c.Records {
		counts[r.Status]++
	}
	return counts
}

func (c Comparison) sorted(n int, less func(a, b Record) bool) []Record {
	out := append([]Record(nil), c.Records...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
