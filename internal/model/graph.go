package model

// NodeKind distinguishes theme nodes from symbol nodes.
type NodeKind string

const (
	NodeTheme  NodeKind = "theme"
	NodeSymbol NodeKind = "symbol"
)

// GraphNode is a styled vertex of the theme/symbol graph.
type GraphNode struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"type"`
	Label    string   `json:"label"`
	Color    string   `json:"color"`
	Size     int      `json:"size"`
	IsCenter bool     `json:"is_center,omitempty"`

	// theme attributes
	Cohesion float64 `json:"cohesion,omitempty"`
	Level    string  `json:"level,omitempty"`
	Tier     Tier    `json:"tier,omitempty"`

	// symbol attributes
	Company string  `json:"company,omitempty"`
	Score   float64 `json:"score,omitempty"`
	BuyPct  float64 `json:"buy_pct,omitempty"`
	Signal  string  `json:"signal,omitempty"`
}

// GraphEdge is an undirected connection between two nodes.
type GraphEdge struct {
	ID     string  `json:"id"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight,omitempty"`
}

// GraphStats summarises a built graph.
type GraphStats struct {
	Themes  int `json:"themes"`
	Symbols int `json:"symbols"`
	Edges   int `json:"edges"`
}

// Graph is the result of one graph build.
type Graph struct {
	Mode   string      `json:"mode"`
	Center string      `json:"center,omitempty"`
	Nodes  []GraphNode `json:"nodes"`
	Edges  []GraphEdge `json:"edges"`
	Stats  GraphStats  `json:"stats"`
}
