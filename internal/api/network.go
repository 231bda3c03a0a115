package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ThemeSentinel/internal/dataset"
	"ThemeSentinel/internal/model"
	"ThemeSentinel/internal/network"
)

// NetworkHandler serves search, lookups and relationship graphs.
type NetworkHandler struct {
	data        *dataset.Holder
	opts        network.Options
	searchLimit int
}

func NewNetworkHandler(deps Deps) *NetworkHandler {
	limit := deps.SearchLimit
	if limit <= 0 {
		limit = network.DefaultSearchLimit
	}
	return &NetworkHandler{data: deps.Data, opts: deps.Graph, searchLimit: limit}
}

func (h *NetworkHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/network")
	{
		api.GET("/search", h.Search)
		api.GET("/graph-data", h.GraphData)
		api.GET("/stock-themes", h.StockThemes)
		api.GET("/theme-stocks", h.ThemeStocks)
	}
}

func (h *NetworkHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		badRequest(c, "q is required")
		return
	}
	limit, ok := intQuery(c, "limit", h.searchLimit)
	if !ok {
		return
	}
	d, ok := current(c, h.data)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d.Index.Search(q, limit))
}

// GraphData builds a symbol graph when stock is set, a theme graph when
// theme is set, and the global theme graph otherwise.
func (h *NetworkHandler) GraphData(c *gin.Context) {
	depth, ok := intQuery(c, "depth", 1)
	if !ok {
		return
	}
	d, ok := current(c, h.data)
	if !ok {
		return
	}
	b := network.NewBuilder(d.Index, h.opts)

	var (
		g   model.Graph
		err error
	)
	switch stock, theme := c.Query("stock"), c.Query("theme"); {
	case stock != "":
		g, err = b.SymbolGraph(stock)
	case theme != "":
		g, err = b.ThemeGraph(theme, depth)
	default:
		g = b.GlobalGraph()
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *NetworkHandler) StockThemes(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		name = c.Query("ticker")
	}
	if strings.TrimSpace(name) == "" {
		badRequest(c, "name is required")
		return
	}
	d, ok := current(c, h.data)
	if !ok {
		return
	}
	st, err := d.Index.StockThemes(name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *NetworkHandler) ThemeStocks(c *gin.Context) {
	theme := c.Query("theme")
	if theme == "" {
		theme = c.Query("name")
	}
	if strings.TrimSpace(theme) == "" {
		badRequest(c, "theme is required")
		return
	}
	limit, ok := intQuery(c, "limit", 20)
	if !ok {
		return
	}
	d, ok := current(c, h.data)
	if !ok {
		return
	}
	ts, err := d.Index.ThemeStocks(theme, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ts)
}
