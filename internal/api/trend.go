package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ThemeSentinel/internal/dataset"
	"ThemeSentinel/internal/report"
)

type TrendHandler struct {
	data     *dataset.Holder
	lookback int
}

func NewTrendHandler(deps Deps) *TrendHandler {
	lookback := deps.TrendLookbackDays
	if lookback <= 0 {
		lookback = 7
	}
	return &TrendHandler{data: deps.Data, lookback: lookback}
}

func (h *TrendHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/trend/cohesion", h.Cohesion)
}

// Cohesion compares the latest snapshot with one lookback_days older.
func (h *TrendHandler) Cohesion(c *gin.Context) {
	lookback, ok := intQuery(c, "lookback_days", h.lookback)
	if !ok {
		return
	}
	top, ok := intQuery(c, "top", report.TopN)
	if !ok {
		return
	}
	d, ok := current(c, h.data)
	if !ok {
		return
	}
	cmp, ok := d.Trend(lookback)
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "at least two snapshots are required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"latest_date":   cmp.LatestDate,
		"compare_date":  cmp.CompareDate,
		"status_counts": cmp.StatusCounts(),
		"top_enhanced":  cmp.TopEnhanced(top),
		"top_declining": cmp.TopDeclining(top),
		"themes":        cmp.ByCohesion(),
	})
}
