// Package network builds theme/symbol relationship graphs and answers
// fuzzy searches over them.
package network

import (
	"errors"
	"math"
	"sort"
	"strings"

	"ThemeSentinel/internal/model"
)

// ErrNotFound is returned when a theme or symbol has no membership rows.
var ErrNotFound = errors.New("not found")

// ThemeInfo is the latest theme-level metrics used for styling.
type ThemeInfo struct {
	Name     string
	Cohesion float64
	Tier     model.Tier
	Score    float64
	Momentum float64
}

// Index is an immutable lookup structure over the membership table, theme
// metrics and symbol scores. It is built once per dataset load and shared
// by concurrent readers.
type Index struct {
	themes     map[string]ThemeInfo
	themeOrder []string
	themeFold  map[string]string

	byTheme     map[string][]model.Membership // weight desc
	bySymbol    map[string][]model.Membership // input order
	symbolOrder []string

	scores map[string]float64
}

// NewIndex builds an index. themes are theme-level records that already carry
// their tier; scores maps upper-case tickers to composite scores. Themes only
// present in memberships get zero metrics and Tier4.
func NewIndex(memberships []model.Membership, themes []model.MetricRecord, scores map[string]float64) *Index {
	ix := &Index{
		themes:    make(map[string]ThemeInfo),
		themeFold: make(map[string]string),
		byTheme:   make(map[string][]model.Membership),
		bySymbol:  make(map[string][]model.Membership),
		scores:    make(map[string]float64, len(scores)),
	}

	for _, r := range themes {
		if r.Theme == "" || !r.IsTheme() {
			continue
		}
		if _, dup := ix.themes[r.Theme]; dup {
			continue
		}
		ix.addTheme(ThemeInfo{
			Name:     r.Theme,
			Cohesion: zeroIfNaN(r.Cohesion),
			Tier:     r.Tier,
			Score:    zeroIfNaN(r.CompositeScore),
			Momentum: zeroIfNaN(r.Momentum),
		})
	}

	seenPair := make(map[[2]string]bool)
	for _, m := range memberships {
		m.Symbol = strings.ToUpper(strings.TrimSpace(m.Symbol))
		if m.Symbol == "" || m.Theme == "" {
			continue
		}
		key := [2]string{m.Theme, m.Symbol}
		if seenPair[key] {
			continue
		}
		seenPair[key] = true
		m.Weight = zeroIfNaN(m.Weight)

		if _, ok := ix.themes[m.Theme]; !ok {
			ix.addTheme(ThemeInfo{Name: m.Theme, Tier: model.Tier4})
		}
		if _, ok := ix.bySymbol[m.Symbol]; !ok {
			ix.symbolOrder = append(ix.symbolOrder, m.Symbol)
		}
		ix.byTheme[m.Theme] = append(ix.byTheme[m.Theme], m)
		ix.bySymbol[m.Symbol] = append(ix.bySymbol[m.Symbol], m)
	}

	for theme, rows := range ix.byTheme {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Weight > rows[j].Weight })
		ix.byTheme[theme] = rows
	}
	for sym, s := range scores {
		ix.scores[strings.ToUpper(sym)] = zeroIfNaN(s)
	}
	return ix
}

func (ix *Index) addTheme(info ThemeInfo) {
	ix.themes[info.Name] = info
	ix.themeOrder = append(ix.themeOrder, info.Name)
	fold := strings.ToLower(info.Name)
	if _, ok := ix.themeFold[fold]; !ok {
		ix.themeFold[fold] = info.Name
	}
}

// Theme returns the metrics of a theme by exact name.
func (ix *Index) Theme(name string) (ThemeInfo, bool) {
	info, ok := ix.themes[name]
	return info, ok
}

// ResolveTheme finds the canonical name of a theme, case-insensitively.
func (ix *Index) ResolveTheme(name string) (string, bool) {
	if _, ok := ix.themes[name]; ok {
		return name, true
	}
	canon, ok := ix.themeFold[strings.ToLower(strings.TrimSpace(name))]
	return canon, ok
}

// Themes lists every theme name in first-seen order.
func (ix *Index) Themes() []string {
	return append([]string(nil), ix.themeOrder...)
}

// Members returns the theme's rows, highest weight first.
func (ix *Index) Members(theme string) []model.Membership {
	return append([]model.Membership(nil), ix.byTheme[theme]...)
}

// SymbolThemes returns the membership rows of an upper-case ticker.
func (ix *Index) SymbolThemes(symbol string) []model.Membership {
	return append([]model.Membership(nil), ix.bySymbol[strings.ToUpper(symbol)]...)
}

// Company returns the first company name recorded for a ticker.
func (ix *Index) Company(symbol string) string {
	rows := ix.bySymbol[strings.ToUpper(symbol)]
	if len(rows) == 0 {
		return ""
	}
	return rows[0].Company
}

// Score returns the composite score of a ticker, if known.
func (ix *Index) Score(symbol string) (float64, bool) {
	s, ok := ix.scores[strings.ToUpper(symbol)]
	return s, ok
}

// Symbols lists every distinct ticker in first-seen order.
func (ix *Index) Symbols() []string {
	return append([]string(nil), ix.symbolOrder...)
}

// SymbolCount is the number of distinct tickers in the membership table.
func (ix *Index) SymbolCount() int { return len(ix.symbolOrder) }

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
