// Package api serves the dataset over HTTP.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ThemeSentinel/internal/breakout"
	"ThemeSentinel/internal/dataset"
	"ThemeSentinel/internal/network"
	"ThemeSentinel/internal/snapshot"
	"ThemeSentinel/internal/strategy"
)

// Deps are the services the handlers read from.
type Deps struct {
	Data              *dataset.Holder
	Tiers             *strategy.TierClassifier
	Breakouts         *breakout.Service // nil disables /api/breakout/supertrend
	Graph             network.Options
	SearchLimit       int
	TrendLookbackDays int
}

// NewRouter builds the engine with every handler registered.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/api/health", func(c *gin.Context) {
		status := gin.H{"status": "ok", "time": time.Now().UTC()}
		if d, err := deps.Data.Get(); err == nil {
			status["latest_snapshot"] = d.Latest.Date.Format("2006-01-02")
			status["loaded_at"] = d.LoadedAt.UTC()
		} else {
			status["status"] = "degraded"
		}
		c.JSON(http.StatusOK, status)
	})

	NewOverviewHandler(deps).RegisterRoutes(router)
	NewSignalsHandler(deps).RegisterRoutes(router)
	NewBreakoutHandler(deps).RegisterRoutes(router)
	NewTrendHandler(deps).RegisterRoutes(router)
	NewNetworkHandler(deps).RegisterRoutes(router)
	return router
}

// Server runs the router until its context is cancelled.
type Server struct {
	srv *http.Server
}

// NewServer binds the router to addr.
func NewServer(addr string, router http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] api listening on %s", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("[INFO] api stopped")
	return nil
}

// abortWithError maps domain errors onto HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, snapshot.ErrNoData):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "no data available"})
	case errors.Is(err, network.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	default:
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// intQuery reads a non-negative integer query parameter.
func intQuery(c *gin.Context, key string, def int) (int, bool) {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil || v < 0 {
		badRequest(c, "invalid "+key)
		return 0, false
	}
	return v, true
}

// current fetches the current generation or writes the error response.
func current(c *gin.Context, h *dataset.Holder) (*dataset.Dataset, bool) {
	d, err := h.Get()
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return d, true
}
