package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"ThemeSentinel/internal/model"
)

// FilterKind names a per-date symbol filter.
type FilterKind string

const (
	FilterGreen FilterKind = "green"
	FilterTstop FilterKind = "tstop"
)

// DefaultFilterLookback is how many recent dates Latest inspects.
const DefaultFilterLookback = 5

// FilterSet holds symbol sets keyed by date string.
type FilterSet struct {
	Kind  FilterKind
	dates []string // newest first
	sets  map[string]model.SymbolSet
}

// Latest returns the newest non-empty set among the n most recent dates.
func (f FilterSet) Latest(n int) model.SymbolSet {
	if n <= 0 {
		n = DefaultFilterLookback
	}
	for i, d := range f.dates {
		if i >= n {
			break
		}
		if s := f.sets[d]; len(s) > 0 {
			return s
		}
	}
	return model.SymbolSet{}
}

// ReadFilterSet loads a filter file. A missing file is an empty set.
func ReadFilterSet(path string, kind FilterKind) (FilterSet, error) {
	if path == "" {
		return FilterSet{Kind: kind, sets: map[string]model.SymbolSet{}}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FilterSet{Kind: kind, sets: map[string]model.SymbolSet{}}, nil
		}
		return FilterSet{}, fmt.Errorf("read filter %s: %w", path, err)
	}
	fs, err := ParseFilterSet(data, kind)
	if err != nil {
		return FilterSet{}, fmt.Errorf("parse filter %s: %w", path, err)
	}
	return fs, nil
}

// ParseFilterSet accepts three layouts:
//
//	{"2026-01-20": {"turn_green": ["BINANCE:BTC-USD"]}}
//	{"2026-01-20": ["BTC-USD"]}
//	[{"date": "2026-01-20", "tickers": ["BTC-USD"]}]
func ParseFilterSet(data []byte, kind FilterKind) (FilterSet, error) {
	fs := FilterSet{Kind: kind, sets: make(map[string]model.SymbolSet)}

	var list []struct {
		Date    string   `json:"date"`
		Tickers []string `json:"tickers"`
	}
	if err := json.Unmarshal(data, &list); err == nil {
		for _, item := range list {
			if item.Date != "" {
				fs.add(item.Date, item.Tickers)
			}
		}
		fs.sortDates()
		return fs, nil
	}

	var byDate map[string]json.RawMessage
	if err := json.Unmarshal(data, &byDate); err != nil {
		return FilterSet{}, err
	}
	for date, raw := range byDate {
		var tickers []string
		if err := json.Unmarshal(raw, &tickers); err == nil {
			fs.add(date, tickers)
			continue
		}
		var entry struct {
			TurnGreen []string `json:"turn_green"`
			Tickers   []string `json:"tickers"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		if kind == FilterGreen || len(entry.Tickers) == 0 {
			tickers = entry.TurnGreen
		} else {
			tickers = entry.Tickers
		}
		fs.add(date, tickers)
	}
	fs.sortDates()
	return fs, nil
}

func (f *FilterSet) add(date string, tickers []string) {
	set, ok := f.sets[date]
	if !ok {
		set = make(model.SymbolSet, len(tickers))
		f.sets[date] = set
		f.dates = append(f.dates, date)
	}
	for _, t := range tickers {
		if sym := NormalizeTicker(t); sym != "" {
			set[sym] = struct{}{}
		}
	}
}

func (f *FilterSet) sortDates() {
	sort.Sort(sort.Reverse(sort.StringSlice(f.dates)))
}
