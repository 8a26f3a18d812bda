package http

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"minesweeper/internal/config"
	"minesweeper/internal/http/handlers"
	"minesweeper/internal/http/middleware"
	"minesweeper/internal/service"
	"minesweeper/internal/ws"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, svc *service.GameService, hub *ws.Hub, cfg *config.Config, version string) {
	h := handlers.NewHandler(svc)

	var redisPing func(context.Context) error
	if cfg.RedisAddr != "" {
		redisPing = middleware.RedisPing
	}
	healthHandler := handlers.NewHealthHandler(svc, redisPing, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit("api", cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, h, middleware.RateLimit("game", cfg.GameRateLimit, cfg.GameRateWindow))

	r.GET("/ws", ws.HandleWS(hub, cfg.AllowedOrigin))

	// Frontend static files
	if cfg.StaticDir != "" {
		r.StaticFS("/assets", gin.Dir(cfg.StaticDir, false))
		index := filepath.Join(cfg.StaticDir, "index.html")
		r.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.File(index)
		})
	}
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, gameRL gin.HandlerFunc) {
	api.GET("/difficulties", h.Difficulties)

	api.POST("/game/new", h.NewGame)
	api.POST("/game/restart", h.Restart)
	api.GET("/game/state", h.State)
	api.GET("/game/board", h.Board)

	// actions share the per-IP game limiter
	api.POST("/game/reveal", gameRL, h.Reveal)
	api.POST("/game/flag", gameRL, h.Flag)
	api.POST("/game/tick", gameRL, h.Tick)
}
