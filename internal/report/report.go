// Package report renders the cohesion trend comparison as markdown.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ThemeSentinel/internal/trend"
)

// TopN is the length of the enhanced and declining sections.
const TopN = 5

// RenderCohesion builds the markdown report.
func RenderCohesion(cmp trend.Comparison, generated time.Time) string {
	var b strings.Builder
	latest, prev := cmp.LatestDate.Format("2006-01-02"), cmp.CompareDate.Format("2006-01-02")

	fmt.Fprintf(&b, "# Theme Cohesion Report\n\n")
	fmt.Fprintf(&b, "- Generated: %s\n", generated.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "- Latest snapshot: %s\n", latest)
	fmt.Fprintf(&b, "- Compared with: %s\n", prev)
	fmt.Fprintf(&b, "- Themes compared: %d\n\n", len(cmp.Records))

	counts := cmp.StatusCounts()
	b.WriteString("## Status distribution\n\n| Status | Themes |\n|---|---|\n")
	for _, s := range trend.AllStatuses {
		fmt.Fprintf(&b, "| %s | %d |\n", s, counts[s])
	}

	b.WriteString("\n## Top enhanced\n\n")
	writeMovers(&b, cmp.TopEnhanced(TopN))
	b.WriteString("\n## Top declining\n\n")
	writeMovers(&b, cmp.TopDeclining(TopN))

	b.WriteString("\n## All themes by cohesion\n\n")
	b.WriteString("| # | Theme | Cohesion | Level | Change | Momentum | Tier |\n|---|---|---|---|---|---|---|\n")
	for i, r := range cmp.ByCohesion() {
		fmt.Fprintf(&b, "| %d | %s | %.2f | %s | %+.1f%% | %+.3f | %s |\n",
			i+1, cell(r.Theme), r.Cohesion, r.Level, r.CohesionPctChange, r.Momentum, r.Tier)
	}
	return b.String()
}

func writeMovers(b *strings.Builder, recs []trend.Record) {
	if len(recs) == 0 {
		b.WriteString("_none_\n")
		return
	}
	b.WriteString("| Theme | Previous | Current | Change | Status |\n|---|---|---|---|---|\n")
	for _, r := range recs {
		fmt.Fprintf(b, "| %s | %.2f | %.2f | %+.1f%% | %s |\n",
			cell(r.Theme), r.PrevCohesion, r.Cohesion, r.CohesionPctChange, r.Status)
	}
}

func cell(s string) string { return strings.ReplaceAll(s, "|", `\|`) }

// WriteCohesion renders cmp into dir/cohesion_report_YYYYMMDD.md and returns the path.
func WriteCohesion(dir string, cmp trend.Comparison) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("cohesion_report_%s.md", cmp.LatestDate.Format("20060102")))
	if err := os.WriteFile(path, []byte(RenderCohesion(cmp, time.Now())), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
