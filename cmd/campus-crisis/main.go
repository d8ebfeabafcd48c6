package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/campuscrisis/platform/internal/api"
	"github.com/campuscrisis/platform/internal/config"
	"github.com/campuscrisis/platform/internal/lifecycle"
	"github.com/campuscrisis/platform/internal/logging"
	"github.com/campuscrisis/platform/internal/moderation"
	"github.com/campuscrisis/platform/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	filter := moderation.NewDefaultFilter()
	if cfg.Moderate.LexiconPath != "" {
		terms, err := moderation.LoadLexicon(cfg.Moderate.LexiconPath)
		if err != nil {
			logging.Fatalf("Failed to load lexicon: %v", err)
		}
		filter = moderation.NewFilter(terms)
		slog.Info("lexicon override loaded", "path", cfg.Moderate.LexiconPath, "terms", len(terms))
	}

	coord := lifecycle.NewCoordinator(db, db.Alerts(), db.Forum(), db.Resources(), filter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reconciler *lifecycle.Reconciler
	if cfg.Reconcile.Enabled {
		reconciler = lifecycle.NewReconciler(db, db.Alerts(), cfg.Reconcile.Interval)
		reconciler.Start(ctx)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Admin-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.RateLimit.RPS))

	store := cookie.NewStore([]byte(cfg.Auth.SessionSecret))
	router.Use(sessions.Sessions("ccp_session", store))

	handler := api.NewHandler(coord, db.Users(), cfg.Auth.AdminToken, cfg.Forum.PublicPageSize)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	if reconciler != nil {
		reconciler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
