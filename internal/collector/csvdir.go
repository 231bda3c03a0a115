package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ThemeSentinel/internal/calculator"
	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/snapshot"
)

// CSVFetcher reads one price file per symbol from a directory, named
// <SYMBOL><Suffix>, e.g. BTC-USD.csv.
type CSVFetcher struct {
	Dir    string
	Suffix string
}

// NewCSVFetcher creates a fetcher over dir using the -USD.csv naming.
func NewCSVFetcher(dir string) *CSVFetcher {
	return &CSVFetcher{Dir: dir, Suffix: "-USD.csv"}
}

func (f *CSVFetcher) Name() string { return "csv" }

// FetchSeries reads the whole file and keeps the tail holding days valid
// closes, so gaps of zero rows do not eat into the band window.
func (f *CSVFetcher) FetchSeries(ctx context.Context, symbol string, days int) (model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return model.PriceSeries{}, err
	}
	symbol = strings.ToUpper(symbol)
	s, err := snapshot.ReadPriceCSV(filepath.Join(f.Dir, symbol+f.Suffix), symbol)
	if err != nil {
		return model.PriceSeries{}, err
	}
	s.Points = calculator.TrailingValid(s.Points, days)
	return s, nil
}

// Symbols lists every symbol with a price file, sorted.
func (f *CSVFetcher) Symbols() ([]string, error) {
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return nil, fmt.Errorf("list price dir %s: %w", f.Dir, err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, f.Suffix) {
			continue
		}
		if sym := strings.TrimSuffix(name, f.Suffix); sym != "" {
			out = append(out, strings.ToUpper(sym))
		}
	}
	sort.Strings(out)
	return out, nil
}
