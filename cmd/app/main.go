package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minesweeper/internal/config"
	httpServer "minesweeper/internal/http"
	"minesweeper/internal/http/middleware"
	"minesweeper/internal/logger"
	"minesweeper/internal/service"
	"minesweeper/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		logger.Fatal("difficulty catalog", "error", err)
	}
	svc, err := service.NewGameService(catalog, service.NewTokenIssuer(cfg.JWTSecret), cfg.DefaultDifficulty,
		service.WithTickInterval(cfg.TickInterval))
	if err != nil {
		logger.Fatal("game service", "error", err)
	}
	defer svc.Close()

	hub := ws.NewHub(svc)
	defer hub.Close()

	if err := middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		logger.Warn("redis unavailable, rate limiting in memory", "addr", cfg.RedisAddr, "error", err)
	}
	defer middleware.CloseRedis()

	r := gin.Default()
	r.Use(middleware.CORS(cfg.AllowedOrigin))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, svc, hub, cfg, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "difficulty", cfg.DefaultDifficulty)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
