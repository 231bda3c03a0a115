// Package dataset assembles snapshots, memberships and filter sets into one
// immutable, classified view and publishes it to concurrent readers.
package dataset

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/network"
	"ThemeSentinel/internal/snapshot"
	"ThemeSentinel/internal/strategy"
	"ThemeSentinel/internal/trend"
)

// Sources locates the files a dataset is built from.
type Sources struct {
	RankingDir      string
	RankingPrefix   string
	MembershipPath  string
	GreenFilterPath string
	TstopFilterPath string
	FilterLookback  int
}

// Dataset is one loaded generation of data. It is never mutated after Build.
type Dataset struct {
	LoadedAt    time.Time
	Latest      model.Snapshot   // classified, theme-level
	History     []model.Snapshot // classified, newest first
	Memberships []model.Membership
	Symbols     []model.MetricRecord // one per membership row, best score first
	Green       snapshot.FilterSet
	Tstop       snapshot.FilterSet
	Index       *network.Index

	filterLookback int
	bySymbol       map[string]model.MetricRecord
	themes         map[string]model.MetricRecord
}

// Loader reads Sources from disk.
type Loader struct {
	src   Sources
	tiers *strategy.TierClassifier
}

// NewLoader creates a Loader.
func NewLoader(src Sources, tiers *strategy.TierClassifier) *Loader {
	if src.RankingPrefix == "" {
		src.RankingPrefix = "combined_score_ranking"
	}
	return &Loader{src: src, tiers: tiers}
}

// Load reads every ranking snapshot, the membership table and both filter
// sets. Unreadable snapshots are skipped; no readable snapshot at all is
// snapshot.ErrNoData.
func (l *Loader) Load() (*Dataset, error) {
	files, err := snapshot.Discover(l.src.RankingDir, l.src.RankingPrefix)
	if err != nil {
		return nil, err
	}
	var history []model.Snapshot
	for _, f := range files {
		snap, err := snapshot.ReadRankings(f.Path, f.Date)
		if err != nil {
			log.Printf("[WARN] skip snapshot %s: %v", f.Path, err)
			continue
		}
		history = append(history, snap)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: no readable snapshot in %s", snapshot.ErrNoData, l.src.RankingDir)
	}

	var members []model.Membership
	if l.src.MembershipPath != "" {
		members, err = snapshot.ReadMembership(l.src.MembershipPath)
		if err != nil {
			return nil, fmt.Errorf("load membership: %w", err)
		}
	}

	green, err := snapshot.ReadFilterSet(l.src.GreenFilterPath, snapshot.FilterGreen)
	if err != nil {
		log.Printf("[WARN] green filter unavailable: %v", err)
	}
	tstop, err := snapshot.ReadFilterSet(l.src.TstopFilterPath, snapshot.FilterTstop)
	if err != nil {
		log.Printf("[WARN] tstop filter unavailable: %v", err)
	}

	d := Build(l.tiers, history, members, green, tstop, l.src.FilterLookback)
	log.Printf("[INFO] dataset loaded: %d snapshots, %d themes, %d symbol rows (latest %s)",
		len(d.History), len(d.Latest.Records), len(d.Symbols), d.Latest.Date.Format("2006-01-02"))
	return d, nil
}

// Build classifies history and joins the membership table with the latest
// theme metrics. Themes missing from the latest snapshot contribute zero
// metrics. history must not be empty.
func Build(tiers *strategy.TierClassifier, history []model.Snapshot, members []model.Membership, green, tstop snapshot.FilterSet, filterLookback int) *Dataset {
	if filterLookback <= 0 {
		filterLookback = snapshot.DefaultFilterLookback
	}
	sorted := make([]model.Snapshot, len(history))
	for i, s := range history {
		s.Records = tiers.ClassifyAll(s.Records)
		sorted[i] = s
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	latest := sorted[0]
	latest.Records = latest.ThemeRecords()

	d := &Dataset{
		LoadedAt:       time.Now(),
		Latest:         latest,
		History:        sorted,
		Memberships:    members,
		Green:          green,
		Tstop:          tstop,
		filterLookback: filterLookback,
		bySymbol:       make(map[string]model.MetricRecord),
		themes:         make(map[string]model.MetricRecord, len(latest.Records)),
	}
	for _, r := range latest.Records {
		d.themes[r.Theme] = r
	}

	for _, m := range members {
		t := d.themes[m.Theme]
		rec := tiers.ClassifyRecord(model.MetricRecord{
			Date:           latest.Date,
			Theme:          m.Theme,
			Symbol:         m.Symbol,
			Company:        m.Company,
			CompositeScore: t.CompositeScore,
			Momentum:       t.Momentum,
			Cohesion:       t.Cohesion,
			BullRatio:      t.BullRatio,
			WeightInTheme:  m.Weight,
		})
		d.Symbols = append(d.Symbols, rec)
	}
	sort.SliceStable(d.Symbols, func(i, j int) bool { return d.Symbols[i].CompositeScore > d.Symbols[j].CompositeScore })

	scores := make(map[string]float64)
	for _, r := range d.Symbols {
		if _, ok := d.bySymbol[r.Symbol]; !ok {
			d.bySymbol[r.Symbol] = r
			scores[r.Symbol] = r.CompositeScore
		}
	}
	d.Index = network.NewIndex(members, latest.Records, scores)
	return d
}

// Theme returns the latest metrics of one theme, matched case-insensitively.
func (d *Dataset) Theme(name string) (model.MetricRecord, bool) {
	if r, ok := d.themes[name]; ok {
		return r, true
	}
	for _, r := range d.Latest.Records {
		if strings.EqualFold(r.Theme, name) {
			return r, true
		}
	}
	return model.MetricRecord{}, false
}

// SymbolRecord returns the best-scoring record of a ticker.
func (d *Dataset) SymbolRecord(symbol string) (model.MetricRecord, bool) {
	r, ok := d.bySymbol[strings.ToUpper(symbol)]
	return r, ok
}

// BySymbol returns a copy of the best-scoring record per ticker.
func (d *Dataset) BySymbol() map[string]model.MetricRecord {
	out := make(map[string]model.MetricRecord, len(d.bySymbol))
	for k, v := range d.bySymbol {
		out[k] = v
	}
	return out
}

// GreenSet is the newest non-empty green filter set.
func (d *Dataset) GreenSet() model.SymbolSet { return d.Green.Latest(d.filterLookback) }

// TstopSet is the newest non-empty trailing-stop filter set.
func (d *Dataset) TstopSet() model.SymbolSet { return d.Tstop.Latest(d.filterLookback) }

// Candidates classifies every symbol row into a stage and applies f.
func (d *Dataset) Candidates(f strategy.CandidateFilter) []model.Candidate {
	all := strategy.BuildCandidates(d.Symbols, d.GreenSet(), d.TstopSet())
	return strategy.FilterCandidates(all, f)
}

// Trend compares the latest snapshot with the one about lookbackDays older.
func (d *Dataset) Trend(lookbackDays int) (trend.Comparison, bool) {
	return trend.Compare(d.History, lookbackDays)
}
