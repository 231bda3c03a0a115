package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"ThemeSentinel/internal/breakout"
	"ThemeSentinel/internal/dataset"
	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/network"
	"ThemeSentinel/internal/recorder"
	"ThemeSentinel/internal/strategy"
	"ThemeSentinel/internal/trend"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6")).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 2)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	tableHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
)

var statusStyles = map[trend.ChangeStatus]lipgloss.Style{
	trend.StatusEnhanced:  successStyle,
	trend.StatusImproving: lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
	trend.StatusStable:    dimStyle,
	trend.StatusWeakening: lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
	trend.StatusDeclining: errorStyle,
}

var sentimentStyles = map[dataset.Sentiment]lipgloss.Style{
	dataset.SentimentBullish: successStyle,
	dataset.SentimentBearish: errorStyle,
	dataset.SentimentNeutral: warnStyle,
}

// newTable returns a bordered table; style colors individual cells when set.
func newTable(headers []string, rows [][]string, style func(row, col int) (lipgloss.Style, bool)) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeader
			}
			if style != nil {
				if s, ok := style(row, col); ok {
					return s.Padding(0, 1)
				}
			}
			return cellStyle
		})
	return t.String()
}

func tierStyle(tiers *strategy.TierClassifier, t model.Tier) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(tiers.Profile(t).Color)).Bold(t == model.Tier1)
}

func pct(v float64) string { return fmt.Sprintf("%+.1f%%", v) }

func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func date(t time.Time) string { return t.Format("2006-01-02") }

func renderSummary(s dataset.Summary) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Market overview %s", date(s.Date))))
	b.WriteString("\n")

	sentiment := sentimentStyles[s.Sentiment].Render(string(s.Sentiment))
	fmt.Fprintf(&b, "Themes %d · Tickers %d · Sentiment %s · Signal quality %d%%\n",
		s.TotalThemes, s.TotalSymbols, sentiment, s.SignalQuality)
	fmt.Fprintf(&b, "Avg momentum %s · Avg cohesion %s · Avg score %s · Avg bull ratio %s\n",
		f2(s.AvgMomentum), f2(s.AvgCohesion), f2(s.AvgScore), f2(s.AvgBullRatio))

	tiers := make([]string, 0, len(model.AllTiers))
	for _, t := range model.AllTiers {
		tiers = append(tiers, fmt.Sprintf("%s: %d", t, s.TierCounts[t]))
	}
	b.WriteString(strings.Join(tiers, " · "))
	if s.GreenCount > 0 || s.TstopCount > 0 {
		fmt.Fprintf(&b, "\nGreen filter %d · Trailing stop %d", s.GreenCount, s.TstopCount)
	}
	return b.String()
}

func renderThemeHealth(rows []dataset.ThemeHealth, tiers *strategy.TierClassifier) string {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			r.Theme, r.Sector, r.Tier.String(), r.Action,
			f2(r.Score), f2(r.Momentum), f2(r.Cohesion), string(r.Level),
			strconv.Itoa(r.NumSymbols),
		})
	}
	return titleStyle.Render("Theme health") + "\n" + newTable(
		[]string{"Theme", "Sector", "Tier", "Action", "Score", "Momentum", "Cohesion", "Level", "Tickers"},
		data,
		func(row, col int) (lipgloss.Style, bool) {
			if col == 2 || col == 3 {
				return tierStyle(tiers, rows[row].Tier), true
			}
			return lipgloss.Style{}, false
		},
	)
}

// renderTierRules lists the active thresholds; the last tier is the fallback.
func renderTierRules(tiers *strategy.TierClassifier) string {
	rules := tiers.Rules()
	rowTiers := make([]model.Tier, 0, len(rules)+1)
	data := make([][]string, 0, len(rules)+1)
	for _, r := range rules {
		rowTiers = append(rowTiers, r.Tier)
		data = append(data, []string{
			r.Tier.String(), tiers.Profile(r.Tier).Action,
			fmt.Sprintf("score ≥ %s or cohesion ≥ %s", f2(r.MinScore), f2(r.MinCohesion)),
		})
	}
	fallback := model.Tier(len(rules) + 1)
	rowTiers = append(rowTiers, fallback)
	data = append(data, []string{fallback.String(), tiers.Profile(fallback).Action, "otherwise"})

	return titleStyle.Render("Tier rules") + "\n" + newTable(
		[]string{"Tier", "Action", "Qualifies when"},
		data,
		func(row, col int) (lipgloss.Style, bool) {
			if col < 2 {
				return tierStyle(tiers, rowTiers[row]), true
			}
			return lipgloss.Style{}, false
		},
	)
}

func renderBreakouts(res *breakout.Result, tiers *strategy.TierClassifier) string {
	head := fmt.Sprintf("Band breakouts via %s · %d scanned · %d failed · %s",
		res.Source, res.Scanned, res.Failed, res.At.Format("2006-01-02 15:04"))
	if len(res.Candidates) == 0 {
		return headerStyle.Render(head) + "\n" + dimStyle.Render("No symbol is above its upper band.")
	}

	data := make([][]string, 0, len(res.Candidates))
	for i, c := range res.Candidates {
		crossed := ""
		if c.Band.CrossedAbove {
			crossed = "new"
		}
		green := ""
		if c.InGreen {
			green = "✓"
		}
		theme := c.Theme
		if theme == "" {
			theme = "-"
		}
		data = append(data, []string{
			strconv.Itoa(i + 1), c.Symbol, theme, c.Tier.String(),
			f2(c.Band.Close), f2(c.Band.UpperBand), pct(c.Band.DeviationPct),
			crossed, green, c.Strategy,
		})
	}
	return headerStyle.Render(head) + "\n" + newTable(
		[]string{"#", "Ticker", "Theme", "Tier", "Close", "Upper", "Deviation", "Cross", "Green", "Strategy"},
		data,
		func(row, col int) (lipgloss.Style, bool) {
			switch col {
			case 3:
				return tierStyle(tiers, res.Candidates[row].Tier), true
			case 6:
				return successStyle, true
			}
			return lipgloss.Style{}, false
		},
	)
}

func renderTrend(cmp trend.Comparison, top int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Cohesion %s vs %s", date(cmp.LatestDate), date(cmp.CompareDate))))
	b.WriteString("\n")

	counts := cmp.StatusCounts()
	parts := make([]string, 0, len(trend.AllStatuses))
	for _, st := range trend.AllStatuses {
		parts = append(parts, statusStyles[st].Render(fmt.Sprintf("%s %d", st, counts[st])))
	}
	b.WriteString(strings.Join(parts, " · "))
	b.WriteString("\n")

	section := func(title string, recs []trend.Record) {
		b.WriteString(titleStyle.Render(title))
		b.WriteString("\n")
		data := make([][]string, 0, len(recs))
		for _, r := range recs {
			data = append(data, []string{
				r.Theme, f2(r.PrevCohesion), f2(r.Cohesion), pct(r.CohesionPctChange), string(r.Status),
			})
		}
		b.WriteString(newTable(
			[]string{"Theme", "Before", "Now", "Change", "Status"},
			data,
			func(row, col int) (lipgloss.Style, bool) {
				if col == 3 || col == 4 {
					return statusStyles[recs[row].Status], true
				}
				return lipgloss.Style{}, false
			},
		))
		b.WriteString("\n")
	}
	section("Top enhanced", cmp.TopEnhanced(top))
	section("Top declining", cmp.TopDeclining(top))
	return strings.TrimRight(b.String(), "\n")
}

func renderSearch(res network.SearchResult) string {
	if len(res.Symbols) == 0 && len(res.Themes) == 0 {
		return dimStyle.Render(fmt.Sprintf("No match for %q.", res.Query))
	}
	var b strings.Builder
	if len(res.Symbols) > 0 {
		data := make([][]string, 0, len(res.Symbols))
		for _, h := range res.Symbols {
			data = append(data, []string{h.Symbol, h.Company, string(h.Signal), fmt.Sprintf("%.0f%%", h.BuyPct)})
		}
		b.WriteString(titleStyle.Render("Tickers"))
		b.WriteString("\n")
		b.WriteString(newTable([]string{"Ticker", "Company", "Signal", "Buy"}, data, nil))
		b.WriteString("\n")
	}
	if len(res.Themes) > 0 {
		data := make([][]string, 0, len(res.Themes))
		for _, h := range res.Themes {
			data = append(data, []string{h.Theme, h.Tier.String(), f2(h.Cohesion)})
		}
		b.WriteString(titleStyle.Render("Themes"))
		b.WriteString("\n")
		b.WriteString(newTable([]string{"Theme", "Tier", "Cohesion"}, data, nil))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCohesionHistory(theme string, recs []model.MetricRecord) string {
	if len(recs) == 0 {
		return dimStyle.Render(fmt.Sprintf("No recorded snapshots for %s.", theme))
	}
	data := make([][]string, 0, len(recs))
	for _, r := range recs {
		data = append(data, []string{date(r.Date), f2(r.CompositeScore), f2(r.Momentum), f2(r.Cohesion), r.Tier.String()})
	}
	return titleStyle.Render("Cohesion history: "+theme) + "\n" +
		newTable([]string{"Date", "Score", "Momentum", "Cohesion", "Tier"}, data, nil)
}

func renderScans(runs []recorder.ScanRun) string {
	if len(runs) == 0 {
		return dimStyle.Render("No recorded scans.")
	}
	data := make([][]string, 0, len(runs))
	for _, r := range runs {
		top := make([]string, 0, 3)
		for i, s := range r.Breakouts {
			if i == 3 {
				break
			}
			top = append(top, s.Symbol)
		}
		data = append(data, []string{
			r.StartedAt.Format("2006-01-02 15:04"), r.Source,
			strconv.Itoa(r.Scanned), strconv.Itoa(r.Failed), strconv.Itoa(len(r.Breakouts)),
			strings.Join(top, ", "), r.Duration.Round(time.Millisecond).String(),
		})
	}
	return titleStyle.Render("Recent scans") + "\n" + newTable(
		[]string{"Started", "Source", "Scanned", "Failed", "Breakouts", "Top", "Took"}, data, nil)
}
