package calculator

import (
	"math"
	"testing"
	"time"

	"ThemeSentinel/internal/model"
)

var day0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func makeSeries(symbol string, closes ...float64) model.PriceSeries {
	points := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = model.PricePoint{Date: day0.AddDate(0, 0, i), Close: c}
	}
	return model.PriceSeries{Symbol: symbol, Points: points}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestCalculateSampleStdDev(t *testing.T) {
	std, err := CalculateSampleStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// population stddev is 2, sample stddev is sqrt(32/7)
	want := math.Sqrt(32.0 / 7.0)
	if math.Abs(std-want) > 1e-12 {
		t.Errorf("expected %.6f, got %.6f", want, std)
	}
	if _, err := CalculateSampleStdDev([]float64{1, 2}, 3); err == nil {
		t.Error("expected error for short input")
	}
	if _, err := CalculateSampleStdDev([]float64{1, 2}, 1); err == nil {
		t.Error("expected error for period 1")
	}
}

func TestDetectBandCrossover_WindowBoundary(t *testing.T) {
	p := DefaultBandParams()

	if _, ok := DetectBandCrossover(makeSeries("AAA", repeat(100, 219)...), p); ok {
		t.Error("219 closes: expected skip")
	}
	sig, ok := DetectBandCrossover(makeSeries("AAA", repeat(100, 220)...), p)
	if !ok {
		t.Fatal("220 closes: expected a result")
	}
	// flat series: close equals the band exactly
	if sig.UpperBand != 100 {
		t.Errorf("expected upper band 100, got %f", sig.UpperBand)
	}
	if sig.AboveUpper {
		t.Error("close equal to upper band must not count as above")
	}
	if sig.CrossedAbove {
		t.Error("no previous band with exactly one window of data")
	}
}

func TestDetectBandCrossover_CrossAndHold(t *testing.T) {
	p := DefaultBandParams()

	cross := append(repeat(100, 220), 200)
	sig, ok := DetectBandCrossover(makeSeries("CRS", cross...), p)
	if !ok {
		t.Fatal("expected a result")
	}
	if !sig.AboveUpper || !sig.CrossedAbove {
		t.Errorf("expected fresh crossover, got above=%v crossed=%v", sig.AboveUpper, sig.CrossedAbove)
	}
	if math.Abs(sig.ChangePct-100) > 1e-9 {
		t.Errorf("expected change 100%%, got %f", sig.ChangePct)
	}
	wantDev := (200 - sig.UpperBand) / sig.UpperBand * 100
	if math.Abs(sig.DeviationPct-wantDev) > 1e-9 || sig.DeviationPct <= 0 {
		t.Errorf("unexpected deviation %f", sig.DeviationPct)
	}
	if !sig.LastDate.Equal(day0.AddDate(0, 0, 220)) {
		t.Errorf("unexpected last date %v", sig.LastDate)
	}

	hold := append(repeat(100, 219), 200, 210)
	sig, ok = DetectBandCrossover(makeSeries("HLD", hold...), p)
	if !ok {
		t.Fatal("expected a result")
	}
	if !sig.AboveUpper {
		t.Error("expected close above band")
	}
	if sig.CrossedAbove {
		t.Error("previous close was already above its band: expected hold")
	}
}

func TestDetectBandCrossover_Skips(t *testing.T) {
	p := DefaultBandParams()

	tests := []struct {
		name   string
		series model.PriceSeries
		params BandParams
	}{
		{"below min price", makeSeries("LOW", repeat(4, 230)...), p},
		{"invalid closes dropped", makeSeries("GAP", append(repeat(100, 219), 0, math.NaN())...), p},
		{"stale series", makeSeries("OLD", repeat(100, 230)...), BandParams{Window: 220, Multiplier: 2, MinDate: day0.AddDate(1, 0, 0)}},
		{"empty series", model.PriceSeries{Symbol: "NIL"}, p},
		{"degenerate window", makeSeries("WIN", repeat(100, 10)...), BandParams{Window: 1, Multiplier: 2}},
	}
	for _, tt := range tests {
		if _, ok := DetectBandCrossover(tt.series, tt.params); ok {
			t.Errorf("%s: expected skip", tt.name)
		}
	}
}

func TestDetectBandCrossover_ZeroClosesIgnored(t *testing.T) {
	closes := append([]float64{0, 0, math.NaN()}, repeat(100, 220)...)
	if _, ok := DetectBandCrossover(makeSeries("ZRO", closes...), DefaultBandParams()); !ok {
		t.Error("expected 220 valid closes to produce a result")
	}
}

func TestRankBreakouts(t *testing.T) {
	signals := []model.BandSignal{
		{Symbol: "A", DeviationPct: 5, AboveUpper: true},
		{Symbol: "B", DeviationPct: -1, AboveUpper: false},
		{Symbol: "C", DeviationPct: 12, AboveUpper: true},
		{Symbol: "D", DeviationPct: 8, AboveUpper: true},
	}
	got := RankBreakouts(signals, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Symbol != "C" || got[1].Symbol != "D" {
		t.Errorf("expected [C D], got [%s %s]", got[0].Symbol, got[1].Symbol)
	}
	if all := RankBreakouts(signals, 0); len(all) != 3 {
		t.Errorf("expected 3 results without limit, got %d", len(all))
	}
}

func TestTrailingValid(t *testing.T) {
	closes := append(repeat(100, 5), 0, 0, 100, 100, 0)
	points := makeSeries("GAP", closes...).Points

	got := TrailingValid(points, 3)
	if len(got) != 6 {
		t.Fatalf("expected tail of 6 points, got %d", len(got))
	}
	if !got[len(got)-1].Date.Equal(points[len(points)-1].Date) {
		t.Error("trailing invalid row should be kept")
	}
	if n := len(validPoints(got)); n != 3 {
		t.Errorf("expected 3 valid closes, got %d", n)
	}
	if all := TrailingValid(points, 50); len(all) != len(points) {
		t.Errorf("expected full series when short, got %d", len(all))
	}
	if all := TrailingValid(points, 0); len(all) != len(points) {
		t.Errorf("expected full series for n=0, got %d", len(all))
	}
}
