package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"ThemeSentinel/internal/model"
)

// ParseFloat converts a cell to a float. Empty, invalid and non-finite
// values become 0 so one bad cell never rejects a row.
func ParseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NormalizeTicker strips exchange prefixes and the -USD quote suffix.
func NormalizeTicker(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.ToUpper(s)
	return strings.TrimSuffix(s, "-USD")
}

// table is a parsed CSV with a case-insensitive header lookup.
type table struct {
	cols map[string]int
	rows [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return parseTable(f, path)
}

func parseTable(r io.Reader, name string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}
	t := &table{cols: make(map[string]int, len(header))}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := t.cols[key]; !dup {
			t.cols[key] = i
		}
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// col returns the index of the first alias present in the header, or -1.
func (t *table) col(aliases ...string) int {
	for _, a := range aliases {
		if i, ok := t.cols[a]; ok {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ReadRankings reads one theme-level ranking snapshot. Theme, score and
// cohesion columns accept their historical aliases.
func ReadRankings(path string, date time.Time) (model.Snapshot, error) {
	t, err := readTable(path)
	if err != nil {
		return model.Snapshot{}, err
	}
	theme := t.col("theme", "category", "sector")
	if theme < 0 {
		return model.Snapshot{}, fmt.Errorf("%s: missing theme column", path)
	}
	score := t.col("combined_score", "composite_score", "score")
	momentum := t.col("momentum")
	cohesion := t.col("fiedler", "cohesion")
	bull := t.col("bull_ratio")
	count := t.col("n_tickers", "num_tickers", "ticker_count", "n_stocks")

	snap := model.Snapshot{Date: date, Source: path}
	for _, row := range t.rows {
		name := cell(row, theme)
		if name == "" {
			continue
		}
		snap.Records = append(snap.Records, model.MetricRecord{
			Date:           date,
			Theme:          name,
			CompositeScore: ParseFloat(cell(row, score)),
			Momentum:       ParseFloat(cell(row, momentum)),
			Cohesion:       math.Max(0, ParseFloat(cell(row, cohesion))),
			BullRatio:      math.Min(1, math.Max(0, ParseFloat(cell(row, bull)))),
			NumSymbols:     int(ParseFloat(cell(row, count))),
		})
	}
	return snap, nil
}

// ReadMembership reads the theme/symbol table. Weight defaults to 1 and the
// company name to the ticker.
func ReadMembership(path string) ([]model.Membership, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	theme := t.col("theme", "category")
	ticker := t.col("ticker_clean", "ticker", "symbol")
	if theme < 0 || ticker < 0 {
		return nil, fmt.Errorf("%s: missing theme or ticker column", path)
	}
	company := t.col("company", "name")
	weight := t.col("weight", "weight_in_theme")

	out := make([]model.Membership, 0, len(t.rows))
	for _, row := range t.rows {
		sym := NormalizeTicker(cell(row, ticker))
		th := cell(row, theme)
		if sym == "" || th == "" {
			continue
		}
		m := model.Membership{Theme: th, Symbol: sym, Company: cell(row, company), Weight: 1}
		if m.Company == "" {
			m.Company = sym
		}
		if weight >= 0 {
			m.Weight = math.Max(0, ParseFloat(cell(row, weight)))
		}
		out = append(out, m)
	}
	return out, nil
}

var priceDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
	"20060102",
}

func parsePriceDate(s string) (time.Time, bool) {
	for _, layout := range priceDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// ReadPriceCSV reads a daily price file whose first column is the date.
// Rows with an unreadable date are dropped; bad closes become 0 and are
// filtered by the band detector.
func ReadPriceCSV(path, symbol string) (model.PriceSeries, error) {
	t, err := readTable(path)
	if err != nil {
		return model.PriceSeries{}, err
	}
	closeCol := t.col("close", "adj close", "adj_close")
	if closeCol < 0 {
		return model.PriceSeries{}, fmt.Errorf("%s: missing close column", path)
	}
	series := model.PriceSeries{Symbol: symbol, FetchedAt: time.Now()}
	for _, row := range t.rows {
		d, ok := parsePriceDate(cell(row, 0))
		if !ok {
			continue
		}
		series.Points = append(series.Points, model.PricePoint{Date: d, Close: ParseFloat(cell(row, closeCol))})
	}
	sort.SliceStable(series.Points, func(i, j int) bool { return series.Points[i].Date.Before(series.Points[j].Date) })
	return series, nil
}
