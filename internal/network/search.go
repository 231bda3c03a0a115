package network

import (
	"fmt"
	"sort"
	"strings"

	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/trend"
)

// DefaultSearchLimit caps each result category.
const DefaultSearchLimit = 15

// FuzzyMatch reports whether query is a case-insensitive substring of target,
// or, for multi-word queries, whether every word is. Word order is ignored.
func FuzzyMatch(query, target string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	t := strings.ToLower(target)
	if strings.Contains(t, q) {
		return true
	}
	words := strings.Fields(q)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if !strings.Contains(t, w) {
			return false
		}
	}
	return true
}

// SymbolHit is a ticker matched by search.
type SymbolHit struct {
	Symbol  string  `json:"ticker"`
	Company string  `json:"company"`
	Name    string  `json:"name"`
	BuyPct  float64 `json:"buy_pct"`
	Signal  Signal  `json:"signal"`
}

// ThemeHit is a theme matched by search.
type ThemeHit struct {
	Theme    string     `json:"theme"`
	Tier     model.Tier `json:"tier"`
	Cohesion float64    `json:"cohesion"`
}

// SearchResult groups symbol and theme matches.
type SearchResult struct {
	Query   string      `json:"query"`
	Symbols []SymbolHit `json:"stocks"`
	Themes  []ThemeHit  `json:"themes"`
}

// Search matches tickers (by ticker or company) and themes (by name). Each
// category is capped at limit; themes are then ordered by cohesion.
func (ix *Index) Search(query string, limit int) SearchResult {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	res := SearchResult{Query: query, Symbols: []SymbolHit{}, Themes: []ThemeHit{}}
	if strings.TrimSpace(query) == "" {
		return res
	}

	for _, sym := range ix.symbolOrder {
		if len(res.Symbols) >= limit {
			break
		}
		company := ix.Company(sym)
		if !FuzzyMatch(query, sym) && !FuzzyMatch(query, company) {
			continue
		}
		buy, sig := ix.symbolSignal(sym)
		res.Symbols = append(res.Symbols, SymbolHit{
			Symbol:  sym,
			Company: company,
			Name:    displayName(sym, company),
			BuyPct:  buy,
			Signal:  sig,
		})
	}

	for _, name := range ix.themeOrder {
		if len(res.Themes) >= limit {
			break
		}
		if !FuzzyMatch(query, name) {
			continue
		}
		info := ix.themes[name]
		res.Themes = append(res.Themes, ThemeHit{Theme: name, Tier: info.Tier, Cohesion: info.Cohesion})
	}
	sort.SliceStable(res.Themes, func(i, j int) bool { return res.Themes[i].Cohesion > res.Themes[j].Cohesion })
	return res
}

// ThemeMembership is one theme of a ticker.
type ThemeMembership struct {
	Theme         string      `json:"theme"`
	Cohesion      float64     `json:"cohesion"`
	Level         trend.Level `json:"cohesion_level"`
	Tier          model.Tier  `json:"tier"`
	WeightInTheme float64     `json:"weight_in_theme"`
}

// StockThemes is the theme list of one ticker.
type StockThemes struct {
	Symbol string            `json:"ticker"`
	Name   string            `json:"stock_name"`
	Themes []ThemeMembership `json:"themes"`
}

// StockThemes resolves name as an exact ticker, then as a company substring,
// and lists the ticker's themes by cohesion.
func (ix *Index) StockThemes(name string) (StockThemes, error) {
	sym := strings.ToUpper(strings.TrimSpace(name))
	if _, ok := ix.bySymbol[sym]; !ok {
		sym = ""
		needle := strings.ToLower(strings.TrimSpace(name))
		for _, s := range ix.symbolOrder {
			if needle != "" && strings.Contains(strings.ToLower(ix.Company(s)), needle) {
				sym = s
				break
			}
		}
	}
	if sym == "" {
		return StockThemes{}, fmt.Errorf("%w: stock %q", ErrNotFound, name)
	}

	rows := ix.bySymbol[sym]
	out := StockThemes{Symbol: sym, Name: displayName(sym, rows[0].Company)}
	for _, m := range rows {
		info := ix.themes[m.Theme]
		out.Themes = append(out.Themes, ThemeMembership{
			Theme:         m.Theme,
			Cohesion:      info.Cohesion,
			Level:         trend.ClassifyLevel(info.Cohesion),
			Tier:          info.Tier,
			WeightInTheme: m.Weight,
		})
	}
	sort.SliceStable(out.Themes, func(i, j int) bool { return out.Themes[i].Cohesion > out.Themes[j].Cohesion })
	return out, nil
}

// SignalSplit is the buy/neutral/sell breakdown shown for a ticker.
type SignalSplit struct {
	Buy     float64 `json:"buy"`
	Neutral float64 `json:"neutral"`
	Sell    float64 `json:"sell"`
}

// ThemeStock is one constituent of a theme.
type ThemeStock struct {
	Symbol string      `json:"ticker"`
	Name   string      `json:"name"`
	Weight float64     `json:"weight"`
	Signal Signal      `json:"signal"`
	BuyPct float64     `json:"buy_pct"`
	Split  SignalSplit `json:"signal_probability"`
}

// ThemeStocks lists the constituents of one theme.
type ThemeStocks struct {
	Theme      string       `json:"theme"`
	Cohesion   float64      `json:"cohesion"`
	Level      trend.Level  `json:"cohesion_level"`
	Tier       model.Tier   `json:"tier"`
	StockCount int          `json:"stock_count"`
	Stocks     []ThemeStock `json:"stocks"`
}

// ThemeStocks resolves theme case-insensitively and returns up to limit
// constituents by weight.
func (ix *Index) ThemeStocks(theme string, limit int) (ThemeStocks, error) {
	canon, ok := ix.ResolveTheme(theme)
	if !ok || len(ix.byTheme[canon]) == 0 {
		return ThemeStocks{}, fmt.Errorf("%w: theme %q", ErrNotFound, theme)
	}
	info := ix.themes[canon]
	rows := ix.byTheme[canon]
	out := ThemeStocks{
		Theme:      canon,
		Cohesion:   info.Cohesion,
		Level:      trend.ClassifyLevel(info.Cohesion),
		Tier:       info.Tier,
		StockCount: len(rows),
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for _, m := range rows {
		buy, sig := ix.symbolSignal(m.Symbol)
		out.Stocks = append(out.Stocks, ThemeStock{
			Symbol: m.Symbol,
			Name:   displayName(m.Symbol, m.Company),
			Weight: m.Weight,
			Signal: sig,
			BuyPct: buy,
			Split:  splitFor(ix, m.Symbol, buy),
		})
	}
	return out, nil
}

func splitFor(ix *Index, symbol string, buy float64) SignalSplit {
	if _, ok := ix.Score(symbol); !ok {
		return SignalSplit{Buy: buy, Neutral: 25, Sell: 25}
	}
	sell := max(0, 100-buy-20)
	return SignalSplit{Buy: buy, Neutral: 100 - buy - sell, Sell: sell}
}

func displayName(symbol, company string) string {
	if company == "" || company == symbol {
		return symbol
	}
	return company + " (" + symbol + ")"
}
