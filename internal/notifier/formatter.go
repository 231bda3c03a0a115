package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"ThemeSentinel/internal/dataset"
	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/network"
	"ThemeSentinel/internal/strategy"
	"ThemeSentinel/internal/trend"
)

const dateFmt = "2006-01-02"

var statusIcon = map[trend.ChangeStatus]string{
	trend.StatusEnhanced:  "🟢",
	trend.StatusImproving: "🔼",
	trend.StatusStable:    "⚪",
	trend.StatusWeakening: "🔽",
	trend.StatusDeclining: "🔴",
}

var tierIcon = map[model.Tier]string{
	model.Tier1: "🥇",
	model.Tier2: "🥈",
	model.Tier3: "🥉",
	model.Tier4: "👀",
}

// FormatBreakoutDigest formats the ranked super-trend breakouts.
func FormatBreakoutDigest(cands []strategy.BreakoutCandidate, scanned int, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚀 <b>Super Trend Breakouts</b> | %s\n", at.Format(dateFmt)))
	b.WriteString(fmt.Sprintf("%d above BB upper band out of %d scanned\n\n", len(cands), scanned))
	if len(cands) == 0 {
		b.WriteString("No symbol closed above its upper band.")
		return b.String()
	}
	for i, c := range cands {
		mark := ""
		if c.Band.CrossedAbove {
			mark = " ✨new"
		}
		if c.InGreen {
			mark += " 🟩"
		}
		b.WriteString(fmt.Sprintf("%d. <b>%s</b> %+.1f%% over band, close %.4g (%+.1f%% 1d)%s\n",
			i+1, html.EscapeString(c.Symbol), c.Band.DeviationPct, c.Band.Close, c.Band.ChangePct, mark))
		if c.Theme != "" {
			b.WriteString(fmt.Sprintf("   %s · %s · %s\n",
				html.EscapeString(c.Theme), c.Tier, html.EscapeString(c.Strategy)))
		}
	}
	return b.String()
}

// FormatTrendDigest formats the cohesion comparison: top movers both ways
// and the status distribution.
func FormatTrendDigest(cmp trend.Comparison, topN int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>Theme Cohesion Trend</b> | %s vs %s\n\n",
		cmp.LatestDate.Format(dateFmt), cmp.CompareDate.Format(dateFmt)))

	counts := cmp.StatusCounts()
	parts := make([]string, 0, len(trend.AllStatuses))
	for _, s := range trend.AllStatuses {
		parts = append(parts, fmt.Sprintf("%s %d", statusIcon[s], counts[s]))
	}
	b.WriteString(strings.Join(parts, "  "))
	b.WriteString("\n\n<b>Top enhanced:</b>\n")
	for _, r := range cmp.TopEnhanced(topN) {
		b.WriteString(trendLine(r))
	}
	b.WriteString("\n<b>Top declining:</b>\n")
	for _, r := range cmp.TopDeclining(topN) {
		b.WriteString(trendLine(r))
	}
	return b.String()
}

func trendLine(r trend.Record) string {
	return fmt.Sprintf("%s %s: %.2f → %.2f (%+.1f%%)\n",
		statusIcon[r.Status], html.EscapeString(r.Theme), r.PrevCohesion, r.Cohesion, r.CohesionPctChange)
}

// FormatTierSummary formats the market overview and the strongest themes.
func FormatTierSummary(sum dataset.Summary, health []dataset.ThemeHealth, topN int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧭 <b>Theme Tiers</b> | %s\n\n", sum.Date.Format(dateFmt)))
	b.WriteString(fmt.Sprintf("Sentiment: <b>%s</b> · signal quality %d%%\n", sum.Sentiment, sum.SignalQuality))
	b.WriteString(fmt.Sprintf("%d themes · %d symbols · avg momentum %+.3f · avg cohesion %.2f\n\n",
		sum.TotalThemes, sum.TotalSymbols, sum.AvgMomentum, sum.AvgCohesion))
	for _, t := range model.AllTiers {
		b.WriteString(fmt.Sprintf("%s %s: %d\n", tierIcon[t], t, sum.TierCounts[t]))
	}
	if len(health) > topN {
		health = health[:topN]
	}
	if len(health) > 0 {
		b.WriteString("\n<b>Leading themes:</b>\n")
		for _, h := range health {
			b.WriteString(fmt.Sprintf("%s %s (%s) score %.3f · cohesion %.2f · %s\n",
				tierIcon[h.Tier], html.EscapeString(h.Theme), h.Sector, h.Score, h.Cohesion, h.Action))
		}
	}
	return b.String()
}

// FormatSearch formats a search result.
func FormatSearch(res network.SearchResult) string {
	if len(res.Symbols) == 0 && len(res.Themes) == 0 {
		return fmt.Sprintf("🔍 No match for <b>%s</b>", html.EscapeString(res.Query))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔍 <b>%s</b>\n", html.EscapeString(res.Query)))
	if len(res.Symbols) > 0 {
		b.WriteString("\n<b>Tickers:</b>\n")
		for _, s := range res.Symbols {
			b.WriteString(fmt.Sprintf("• %s · buy %.0f%% · %s\n", html.EscapeString(s.Name), s.BuyPct, s.Signal))
		}
	}
	if len(res.Themes) > 0 {
		b.WriteString("\n<b>Themes:</b>\n")
		for _, t := range res.Themes {
			b.WriteString(fmt.Sprintf("• %s · %s · cohesion %.2f\n", html.EscapeString(t.Theme), t.Tier, t.Cohesion))
		}
	}
	return b.String()
}
