package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ThemeSentinel/internal/dataset"
	"ThemeSentinel/internal/strategy"
)

type SignalsHandler struct {
	data  *dataset.Holder
	tiers *strategy.TierClassifier
}

func NewSignalsHandler(deps Deps) *SignalsHandler {
	return &SignalsHandler{data: deps.Data, tiers: deps.Tiers}
}

func (h *SignalsHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/signals")
	{
		api.GET("/tier-breakdown", h.TierBreakdown)
		api.GET("/funnel", h.Funnel)
	}
}

func (h *SignalsHandler) TierBreakdown(c *gin.Context) {
	d, ok := current(c, h.data)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": d.Latest.Date, "tiers": d.TierBreakdown(h.tiers)})
}

func (h *SignalsHandler) Funnel(c *gin.Context) {
	d, ok := current(c, h.data)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": d.Latest.Date, "funnel": d.Funnel()})
}
