package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ThemeSentinel/internal/dataset"
)

// OverviewHandler serves the market summary and theme health table.
type OverviewHandler struct {
	data *dataset.Holder
}

func NewOverviewHandler(deps Deps) *OverviewHandler {
	return &OverviewHandler{data: deps.Data}
}

func (h *OverviewHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/overview")
	{
		api.GET("/summary", h.Summary)
		api.GET("/theme-health", h.ThemeHealth)
	}
}

// Summary returns tier counts, averages and sentiment.
func (h *OverviewHandler) Summary(c *gin.Context) {
	d, ok := current(c, h.data)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d.Summary())
}

// ThemeHealth returns every theme, best tier first.
func (h *OverviewHandler) ThemeHealth(c *gin.Context) {
	d, ok := current(c, h.data)
	if !ok {
		return
	}
	rows := d.ThemeHealth()
	c.JSON(http.StatusOK, gin.H{"date": d.Latest.Date, "count": len(rows), "themes": rows})
}
