package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/trend"
)

func comparison() trend.Comparison {
	cmp := trend.Comparison{
		LatestDate:  time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		CompareDate: time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC),
	}
	for i := 0; i < 7; i++ {
		pct := float64(i*10 - 30)
		cmp.Records = append(cmp.Records, trend.Record{
			Theme:             string(rune('A' + i)),
			Cohesion:          float64(i),
			CohesionPctChange: pct,
			Tier:              model.Tier3,
			Level:             trend.ClassifyLevel(float64(i)),
			Status:            trend.ClassifyChange(pct),
		})
	}
	return cmp
}

func TestRenderCohesion(t *testing.T) {
	md := RenderCohesion(comparison(), time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"# Theme Cohesion Report",
		"- Latest snapshot: 2026-01-20",
		"- Compared with: 2026-01-13",
		"- Themes compared: 7",
		"| ENHANCED | 2 |",
		"| DECLINING | 2 |",
		"## Top enhanced",
		"## All themes by cohesion",
		"| 1 | G | 6.00 | VERY_STRONG | +30.0% |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}

	enhanced := md[strings.Index(md, "## Top enhanced"):strings.Index(md, "## Top declining")]
	if rows := strings.Count(enhanced, "\n| ") - 1; rows != TopN {
		t.Errorf("expected %d enhanced rows, got %d", TopN, rows)
	}
}

func TestRenderCohesion_Empty(t *testing.T) {
	md := RenderCohesion(trend.Comparison{}, time.Now())
	if strings.Count(md, "_none_") != 2 {
		t.Errorf("expected both mover sections empty:\n%s", md)
	}
}

func TestWriteCohesion(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := WriteCohesion(dir, comparison())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "cohesion_report_20260120.md" {
		t.Errorf("unexpected file name %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Theme Cohesion Report") {
		t.Error("report content not written")
	}
}
