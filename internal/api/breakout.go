package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ThemeSentinel/internal/breakout"
	"ThemeSentinel/internal/dataset"
	"ThemeSentinel/internal/strategy"
)

// BreakoutHandler serves stage-classified candidates and band breakouts.
type BreakoutHandler struct {
	data *dataset.Holder
	svc  *breakout.Service
}

func NewBreakoutHandler(deps Deps) *BreakoutHandler {
	return &BreakoutHandler{data: deps.Data, svc: deps.Breakouts}
}

func (h *BreakoutHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/breakout")
	{
		api.GET("/candidates", h.Candidates)
		api.GET("/stages", h.Stages)
		api.GET("/supertrend", h.SuperTrend)
	}
}

// Candidates filters by stage, priority, min_score and theme.
func (h *BreakoutHandler) Candidates(c *gin.Context) {
	minScore, ok := intQuery(c, "min_score", 0)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", 100)
	if !ok {
		return
	}
	d, ok := current(c, h.data)
	if !ok {
		return
	}
	cands := d.Candidates(strategy.CandidateFilter{
		Stage:    c.Query("stage"),
		Priority: c.Query("priority"),
		MinScore: minScore,
		Theme:    c.Query("theme"),
		Limit:    limit,
	})
	c.JSON(http.StatusOK, gin.H{
		"date":        d.Latest.Date,
		"count":       len(cands),
		"green_count": len(d.GreenSet()),
		"candidates":  cands,
	})
}

// Stages returns the stage and priority distribution of all candidates.
func (h *BreakoutHandler) Stages(c *gin.Context) {
	d, ok := current(c, h.data)
	if !ok {
		return
	}
	cands := d.Candidates(strategy.CandidateFilter{})
	stages, priorities := strategy.StageDistribution(cands)
	c.JSON(http.StatusOK, gin.H{"total": len(cands), "stages": stages, "priorities": priorities})
}

// SuperTrend returns the latest band scan; refresh=true forces a new scan.
func (h *BreakoutHandler) SuperTrend(c *gin.Context) {
	if h.svc == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "price data source not configured"})
		return
	}
	limit, ok := intQuery(c, "limit", 50)
	if !ok {
		return
	}
	var (
		res *breakout.Result
		err error
	)
	if c.Query("refresh") == "true" {
		res, err = h.svc.Run(c.Request.Context())
	} else {
		res, err = h.svc.Latest(c.Request.Context())
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	cands := res.Candidates
	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":     res.RunID,
		"scanned_at": res.At,
		"source":     res.Source,
		"scanned":    res.Scanned,
		"count":      len(cands),
		"candidates": cands,
	})
}
