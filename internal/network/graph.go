package network

import (
	"fmt"
	"sort"
	"strings"

	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/trend"
)

// Graph modes.
const (
	ModeSymbol = "symbol"
	ModeTheme  = "theme"
	ModeGlobal = "global"
)

// MaxDepth bounds theme-centered expansion: center theme, its symbols, and
// the symbols' other themes.
const MaxDepth = 2

// Options bound the size of built graphs.
type Options struct {
	TopK      int `yaml:"top_k" validate:"gte=1"`      // symbols per center theme
	FanOut    int `yaml:"fan_out" validate:"gte=0"`    // extra themes per symbol at depth 2
	MinShared int `yaml:"min_shared" validate:"gte=1"` // shared symbols for a theme-theme edge
}

// DefaultOptions returns TopK 15, FanOut 5, MinShared 2.
func DefaultOptions() Options {
	return Options{TopK: 15, FanOut: 5, MinShared: 2}
}

// Builder builds graphs from an Index. It holds no mutable state.
type Builder struct {
	ix   *Index
	opts Options
}

// NewBuilder fills zero options from DefaultOptions.
func NewBuilder(ix *Index, opts Options) *Builder {
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.FanOut < 0 {
		opts.FanOut = def.FanOut
	}
	if opts.MinShared <= 0 {
		opts.MinShared = def.MinShared
	}
	return &Builder{ix: ix, opts: opts}
}

// ThemeNodeID is the node id of a theme.
func ThemeNodeID(name string) string { return "theme:" + name }

// SymbolNodeID is the node id of a ticker.
func SymbolNodeID(symbol string) string { return "symbol:" + strings.ToUpper(symbol) }

// EdgeID is independent of endpoint order, so an undirected edge has one id.
func EdgeID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "edge:" + a + "|" + b
}

// assembly accumulates nodes and edges; the first add of an id wins.
type assembly struct {
	ix    *Index
	graph model.Graph
	seen  map[string]bool
}

func newAssembly(ix *Index, mode, center string) *assembly {
	return &assembly{
		ix:    ix,
		graph: model.Graph{Mode: mode, Center: center, Nodes: []model.GraphNode{}, Edges: []model.GraphEdge{}},
		seen:  make(map[string]bool),
	}
}

func (a *assembly) addTheme(name string, center bool) string {
	id := ThemeNodeID(name)
	if a.seen[id] {
		return id
	}
	a.seen[id] = true
	info, _ := a.ix.Theme(name)
	size := ThemeNodeSize
	if center {
		size = CenterNodeSize
	}
	a.graph.Nodes = append(a.graph.Nodes, model.GraphNode{
		ID:       id,
		Kind:     model.NodeTheme,
		Label:    name,
		Color:    ThemeColor(info.Cohesion),
		Size:     size,
		IsCenter: center,
		Cohesion: info.Cohesion,
		Level:    string(trend.ClassifyLevel(info.Cohesion)),
		Tier:     info.Tier,
	})
	a.graph.Stats.Themes++
	return id
}

func (a *assembly) addSymbol(symbol, company string, center bool) string {
	id := SymbolNodeID(symbol)
	if a.seen[id] {
		return id
	}
	a.seen[id] = true
	score, _ := a.ix.Score(symbol)
	buy, sig := a.ix.symbolSignal(symbol)
	size := SymbolNodeSize
	if center {
		size = CenterNodeSize
	}
	a.graph.Nodes = append(a.graph.Nodes, model.GraphNode{
		ID:       id,
		Kind:     model.NodeSymbol,
		Label:    strings.ToUpper(symbol),
		Color:    SignalColor(sig),
		Size:     size,
		IsCenter: center,
		Company:  company,
		Score:    score,
		BuyPct:   buy,
		Signal:   string(sig),
	})
	a.graph.Stats.Symbols++
	return id
}

func (a *assembly) addEdge(from, to string, weight float64) {
	if from == to {
		return
	}
	id := EdgeID(from, to)
	if a.seen[id] {
		return
	}
	a.seen[id] = true
	a.graph.Edges = append(a.graph.Edges, model.GraphEdge{ID: id, From: from, To: to, Weight: weight})
	a.graph.Stats.Edges++
}

// SymbolGraph centers on one ticker and links it to each of its themes.
func (b *Builder) SymbolGraph(symbol string) (model.Graph, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	rows := b.ix.bySymbol[sym]
	if len(rows) == 0 {
		return model.Graph{}, fmt.Errorf("%w: stock %q", ErrNotFound, symbol)
	}
	a := newAssembly(b.ix, ModeSymbol, sym)
	center := a.addSymbol(sym, rows[0].Company, true)
	for _, m := range rows {
		a.addEdge(center, a.addTheme(m.Theme, false), 0)
	}
	return a.graph, nil
}

// ThemeGraph centers on one theme. Depth 1 adds its TopK symbols by weight;
// depth 2 also adds up to FanOut other themes per symbol. Expansion is a
// breadth-first walk that alternates theme and symbol levels.
func (b *Builder) ThemeGraph(theme string, depth int) (model.Graph, error) {
	canon, ok := b.ix.ResolveTheme(theme)
	if !ok || len(b.ix.byTheme[canon]) == 0 {
		return model.Graph{}, fmt.Errorf("%w: theme %q", ErrNotFound, theme)
	}
	depth = min(max(depth, 1), MaxDepth)

	a := newAssembly(b.ix, ModeTheme, canon)
	a.addTheme(canon, true)

	type frontierItem struct {
		theme  string // set for theme nodes
		symbol string // set for symbol nodes
	}
	frontier := []frontierItem{{theme: canon}}
	for level := 1; level <= depth && len(frontier) > 0; level++ {
		var next []frontierItem
		for _, item := range frontier {
			if item.theme != "" {
				from := ThemeNodeID(item.theme)
				for _, m := range b.topSymbols(item.theme) {
					to := a.addSymbol(m.Symbol, m.Company, false)
					a.addEdge(from, to, m.Weight)
					next = append(next, frontierItem{symbol: m.Symbol})
				}
				continue
			}
			from := SymbolNodeID(item.symbol)
			for _, other := range b.otherThemes(item.symbol, canon) {
				a.addEdge(from, a.addTheme(other, false), 0)
				next = append(next, frontierItem{theme: other})
			}
		}
		frontier = next
	}
	return a.graph, nil
}

func (b *Builder) topSymbols(theme string) []model.Membership {
	rows := b.ix.byTheme[theme]
	if len(rows) > b.opts.TopK {
		rows = rows[:b.opts.TopK]
	}
	return rows
}

func (b *Builder) otherThemes(symbol, exclude string) []string {
	var out []string
	for _, m := range b.ix.bySymbol[symbol] {
		if len(out) >= b.opts.FanOut {
			break
		}
		if m.Theme != exclude {
			out = append(out, m.Theme)
		}
	}
	return out
}

// GlobalGraph has every theme as a node and links two themes when they share
// at least MinShared symbols, weighted by the shared count.
func (b *Builder) GlobalGraph() model.Graph {
	a := newAssembly(b.ix, ModeGlobal, "")
	themes := b.ix.Themes()
	sort.SliceStable(themes, func(i, j int) bool {
		ci, cj := b.ix.themes[themes[i]].Cohesion, b.ix.themes[themes[j]].Cohesion
		if ci != cj {
			return ci > cj
		}
		return themes[i] < themes[j]
	})

	members := make(map[string]map[string]struct{}, len(themes))
	for _, t := range themes {
		a.addTheme(t, false)
		set := make(map[string]struct{})
		for _, m := range b.ix.byTheme[t] {
			set[m.Symbol] = struct{}{}
		}
		members[t] = set
	}

	for i, t1 := range themes {
		for _, t2 := range themes[i+1:] {
			shared := sharedCount(members[t1], members[t2])
			if shared >= b.opts.MinShared {
				a.addEdge(ThemeNodeID(t1), ThemeNodeID(t2), float64(shared))
			}
		}
	}
	return a.graph
}

func sharedCount(x, y map[string]struct{}) int {
	if len(y) < len(x) {
		x, y = y, x
	}
	n := 0
	for k := range x {
		if _, ok := y[k]; ok {
			n++
		}
	}
	return n
}
