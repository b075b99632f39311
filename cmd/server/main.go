package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/whoscooking/execmeter/internal/adapters"
	"github.com/whoscooking/execmeter/internal/analysis"
	"github.com/whoscooking/execmeter/internal/config"
	"github.com/whoscooking/execmeter/internal/database"
	"github.com/whoscooking/execmeter/internal/errors"
	"github.com/whoscooking/execmeter/internal/leaderboard"
	"github.com/whoscooking/execmeter/internal/monitoring"
	"github.com/whoscooking/execmeter/internal/syncer"
)

const version = "1.0.0"

// server bundles the handler dependencies so routes can be built the
// same way in main and in tests.
type server struct {
	cfg    *config.Config
	board  *leaderboard.Service
	orch   *syncer.Orchestrator
	github *adapters.GitHubClient
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := monitoring.NewLogger(cfg.LogLevel)

	db, err := database.NewDB(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	if err := repo.Seed(); err != nil {
		slog.Error("Failed to seed roster", "error", err)
		os.Exit(1)
	}

	github := adapters.NewGitHubClient(cfg.GitHubToken)
	aggregator := analysis.NewAggregator(github)

	s := &server{
		cfg:    cfg,
		board:  leaderboard.NewServiceWithCache(repo, leaderboard.NewCache(cfg.LeaderboardCacheTTL)),
		orch:   syncer.NewOrchestrator(repo, aggregator, logger),
		github: github,
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: newRouter(s),
	}

	go func() {
		slog.Info("Server listening", "addr", cfg.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
}

func newRouter(s *server) *gin.Engine {
	r := gin.New()

	r.Use(errors.RecoveryHandler())
	r.Use(errors.ErrorHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(monitoring.MetricsHandler()))

	// The original cron trigger used GET; POST is accepted for
	// schedulers that insist on it. Both are idempotent per day.
	r.GET("/api/cron/sync", s.handleSync)
	r.POST("/api/cron/sync", s.handleSync)

	r.GET("/api/leaderboard", s.handleLeaderboard)
	r.GET("/api/executives/:id/history", s.handleHistory)

	return r
}

func (s *server) handleHealth(c *gin.Context) {
	remaining, reset := s.github.RateLimit()

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   version,
		"timestamp": time.Now().Format(time.RFC3339),
		"rate_limit": gin.H{
			"remaining": remaining,
			"reset":     reset.Format(time.RFC3339),
		},
	})
}

// handleSync runs the daily batch. Both auth and the upstream
// credential are validated before any subject is touched.
func (s *server) handleSync(c *gin.Context) {
	if s.cfg.CronSecret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "CRON_SECRET not configured"})
		return
	}
	if c.GetHeader("Authorization") != "Bearer "+s.cfg.CronSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if s.cfg.GitHubToken == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "GITHUB_TOKEN not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.SyncTimeout)
	defer cancel()

	report, err := s.orch.SyncAll(ctx)
	if err != nil {
		c.Error(errors.NewInternalError("sync run failed", err))
		return
	}

	s.board.Invalidate()

	c.JSON(http.StatusOK, gin.H{
		"synced":  report.Synced,
		"date":    report.Date,
		"results": report.Results,
	})
}

func (s *server) handleLeaderboard(c *gin.Context) {
	response, err := s.board.Leaderboard()
	if err != nil {
		c.Error(errors.NewInternalError("failed to load leaderboard", err))
		return
	}

	c.JSON(http.StatusOK, response)
}

func (s *server) handleHistory(c *gin.Context) {
	response, err := s.board.History(c.Param("id"))
	if err != nil {
		c.Error(errors.NewInternalError("failed to load history", err))
		return
	}

	c.JSON(http.StatusOK, response)
}
