package network

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ThemeSentinel/internal/model"
)

func fixtureIndex() *Index {
	memberships := []model.Membership{
		{Theme: "AI Tokenized Assets", Symbol: "FET", Company: "Fetch.ai", Weight: 0.9},
		{Theme: "AI Tokenized Assets", Symbol: "RNDR", Company: "Render", Weight: 0.7},
		{Theme: "AI Tokenized Assets", Symbol: "TAO", Company: "Bittensor", Weight: 0.8},
		{Theme: "DePIN", Symbol: "RNDR", Company: "Render", Weight: 0.6},
		{Theme: "DePIN", Symbol: "FET", Company: "Fetch.ai", Weight: 0.2},
		{Theme: "DePIN", Symbol: "HNT", Company: "Helium", Weight: 0.9},
		{Theme: "Layer 1", Symbol: "SOL", Company: "Solana", Weight: 1.0},
		{Theme: "Layer 1", Symbol: "TAO", Company: "Bittensor", Weight: 0.1},
		{Theme: "Layer 1", Symbol: "sol", Company: "Solana", Weight: 1.0},
	}
	themes := []model.MetricRecord{
		{Theme: "AI Tokenized Assets", Cohesion: 3.4, Tier: model.Tier1},
		{Theme: "DePIN", Cohesion: 1.6, Tier: model.Tier2},
		{Theme: "Layer 1", Cohesion: 0.2, Tier: model.Tier4},
	}
	scores := map[string]float64{"FET": 0.2, "RNDR": 0.11, "SOL": 0.07, "TAO": 0.01}
	return NewIndex(memberships, themes, scores)
}

func nodeByID(g model.Graph, id string) (model.GraphNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return model.GraphNode{}, false
}

func TestFuzzyMatch(t *testing.T) {
	assert.True(t, FuzzyMatch("ai token", "AI Tokenized Assets"))
	assert.True(t, FuzzyMatch("token ai", "AI Tokenized Assets"))
	assert.True(t, FuzzyMatch("ai token", "Token AI"))
	assert.True(t, FuzzyMatch("  DEPIN ", "DePIN"))
	assert.False(t, FuzzyMatch("ai gaming", "AI Tokenized Assets"))
	assert.False(t, FuzzyMatch("xyz", "AI Tokenized Assets"))
	assert.False(t, FuzzyMatch("", "anything"))
}

func TestIndex_DeduplicatesMemberships(t *testing.T) {
	ix := fixtureIndex()
	assert.Equal(t, 5, ix.SymbolCount())
	assert.Len(t, ix.Members("Layer 1"), 2)

	members := ix.Members("AI Tokenized Assets")
	require.Len(t, members, 3)
	assert.Equal(t, "FET", members[0].Symbol)
	assert.Equal(t, "TAO", members[1].Symbol)

	canon, ok := ix.ResolveTheme("depin")
	assert.True(t, ok)
	assert.Equal(t, "DePIN", canon)
}

func TestSearch(t *testing.T) {
	ix := fixtureIndex()

	res := ix.Search("ai token", 10)
	assert.Empty(t, res.Symbols)
	require.Len(t, res.Themes, 1)
	assert.Equal(t, "AI Tokenized Assets", res.Themes[0].Theme)

	res = ix.Search("render", 10)
	require.Len(t, res.Symbols, 1)
	hit := res.Symbols[0]
	assert.Equal(t, "RNDR", hit.Symbol)
	assert.Equal(t, "Render (RNDR)", hit.Name)
	assert.InDelta(t, 55.0, hit.BuyPct, 1e-9)
	assert.Equal(t, SignalBuy, hit.Signal)

	// themes are capped in first-seen order, then sorted by cohesion
	res = ix.Search("e", 2)
	require.Len(t, res.Themes, 2)
	assert.Equal(t, "AI Tokenized Assets", res.Themes[0].Theme)
	assert.Equal(t, "DePIN", res.Themes[1].Theme)
	assert.Len(t, res.Symbols, 2)

	res = ix.Search("xyz", 10)
	assert.NotNil(t, res.Symbols)
	assert.Empty(t, res.Symbols)
	assert.Empty(t, res.Themes)
}

func TestStyling(t *testing.T) {
	assert.Equal(t, "#10b981", ThemeColor(3.0))
	assert.Equal(t, "#3b82f6", ThemeColor(1.5))
	assert.Equal(t, "#f59e0b", ThemeColor(0.5))
	assert.Equal(t, "#ef4444", ThemeColor(0.49))

	assert.Equal(t, 100.0, BuyPct(0.5))
	assert.Equal(t, 0.0, BuyPct(-0.1))
	assert.Equal(t, SignalStrongBuy, SignalFor(70))
	assert.Equal(t, SignalBuy, SignalFor(50))
	assert.Equal(t, SignalNeutral, SignalFor(30))
	assert.Equal(t, SignalAvoid, SignalFor(29.9))
	assert.Equal(t, "#059669", SignalColor(SignalStrongBuy))
}

func TestSymbolGraph(t *testing.T) {
	b := NewBuilder(fixtureIndex(), DefaultOptions())

	g, err := b.SymbolGraph("rndr")
	require.NoError(t, err)
	assert.Equal(t, ModeSymbol, g.Mode)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Edges, 2)

	center, ok := nodeByID(g, "symbol:RNDR")
	require.True(t, ok)
	assert.True(t, center.IsCenter)
	assert.Equal(t, CenterNodeSize, center.Size)

	theme, ok := nodeByID(g, "theme:DePIN")
	require.True(t, ok)
	assert.Equal(t, "#3b82f6", theme.Color)
	assert.Equal(t, ThemeNodeSize, theme.Size)

	_, err = b.SymbolGraph("NOPE")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestThemeGraph(t *testing.T) {
	b := NewBuilder(fixtureIndex(), Options{TopK: 2, FanOut: 5, MinShared: 2})

	g, err := b.ThemeGraph("AI Tokenized Assets", 1)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Edges, 2)
	_, hasRender := nodeByID(g, "symbol:RNDR")
	assert.False(t, hasRender, "top-2 by weight should exclude RNDR")

	g2, err := b.ThemeGraph("AI Tokenized Assets", 2)
	require.NoError(t, err)
	// FET -> DePIN, TAO -> Layer 1
	assert.Len(t, g2.Nodes, 5)
	assert.Len(t, g2.Edges, 4)
	assert.Equal(t, 3, g2.Stats.Themes)
	assert.Equal(t, 2, g2.Stats.Symbols)

	again, err := b.ThemeGraph("AI Tokenized Assets", 2)
	require.NoError(t, err)
	assert.Equal(t, g2, again)

	deep, err := b.ThemeGraph("AI Tokenized Assets", 9)
	require.NoError(t, err)
	assert.Equal(t, g2, deep)

	_, err = b.ThemeGraph("Unknown", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestThemeGraph_FanOutCap(t *testing.T) {
	var rows []model.Membership
	for _, th := range []string{"Hub", "A", "B", "C", "D", "E", "F", "G"} {
		rows = append(rows, model.Membership{Theme: th, Symbol: "X", Weight: 1})
	}
	b := NewBuilder(NewIndex(rows, nil, nil), Options{TopK: 15, FanOut: 3, MinShared: 2})
	g, err := b.ThemeGraph("Hub", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Stats.Themes)
	assert.Len(t, g.Edges, 4)
}

func TestGlobalGraph(t *testing.T) {
	g := NewBuilder(fixtureIndex(), DefaultOptions()).GlobalGraph()
	assert.Equal(t, 3, g.Stats.Themes)
	require.Len(t, g.Edges, 1)

	e := g.Edges[0]
	assert.Equal(t, "theme:AI Tokenized Assets", e.From)
	assert.Equal(t, "theme:DePIN", e.To)
	assert.Equal(t, 2.0, e.Weight)

	// AI/Layer 1 share only TAO
	loose := NewBuilder(fixtureIndex(), Options{MinShared: 1}).GlobalGraph()
	assert.Len(t, loose.Edges, 2)
}

func TestStockAndThemeLookups(t *testing.T) {
	ix := fixtureIndex()

	st, err := ix.StockThemes("helium")
	require.NoError(t, err)
	assert.Equal(t, "HNT", st.Symbol)
	require.Len(t, st.Themes, 1)

	st, err = ix.StockThemes("fet")
	require.NoError(t, err)
	require.Len(t, st.Themes, 2)
	assert.Equal(t, "AI Tokenized Assets", st.Themes[0].Theme)
	assert.Equal(t, 0.2, st.Themes[1].WeightInTheme)

	_, err = ix.StockThemes("nothing")
	assert.ErrorIs(t, err, ErrNotFound)

	ts, err := ix.ThemeStocks("depin", 2)
	require.NoError(t, err)
	assert.Equal(t, "DePIN", ts.Theme)
	assert.Equal(t, 3, ts.StockCount)
	require.Len(t, ts.Stocks, 2)
	assert.Equal(t, "HNT", ts.Stocks[0].Symbol)
	assert.Equal(t, SignalNeutral, ts.Stocks[0].Signal)
	assert.Equal(t, SignalSplit{Buy: 50, Neutral: 25, Sell: 25}, ts.Stocks[0].Split)

	rndr := ts.Stocks[1]
	assert.InDelta(t, 55.0, rndr.Split.Buy, 1e-9)
	assert.InDelta(t, 25.0, rndr.Split.Sell, 1e-9)
	assert.InDelta(t, 20.0, rndr.Split.Neutral, 1e-9)

	_, err = ix.ThemeStocks("missing", 5)
	assert.ErrorIs(t, err, ErrNotFound)
}
