package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stigscousin/millerlite-leaderboard/internal/api"
	"github.com/stigscousin/millerlite-leaderboard/internal/app"
	"github.com/stigscousin/millerlite-leaderboard/internal/services"
	"github.com/stigscousin/millerlite-leaderboard/pkg/config"
	"github.com/stigscousin/millerlite-leaderboard/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	log := logger.InitLogger(logger.Options{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
		Format:      cfg.LogFormat,
	})
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	pool, err := config.LoadPool(cfg.PoolFile)
	if err != nil {
		log.Fatalf("Failed to load pool bundle: %v", err)
	}
	logger.WithTournamentContext(log, pool.Tournament.ID, 0).WithFields(logrus.Fields{
		"tournament": pool.Tournament.Name,
		"members":    len(pool.Members),
		"payouts":    len(pool.Payouts),
	}).Info("Loaded pool bundle")

	if cfg.SportradarAPIKey == "" {
		log.Error("SPORTRADAR_API_KEY is not set; every tournament refresh will fail")
	}

	// Initialize services
	client := app.NewGolfClient(cfg, log)
	source, err := app.NewSnapshotSource(cfg, pool, client, log)
	if err != nil {
		log.Fatalf("Failed to create snapshot source: %v", err)
	}

	ctx := context.Background()
	store, closeStore, err := app.OpenSnapshotStore(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}
	defer closeStore()

	cache, err := app.NewTournamentCache(cfg, source, store, log)
	if err != nil {
		log.Fatalf("Failed to create tournament cache: %v", err)
	}

	if cfg.EnableCacheWarmer {
		warmer := services.NewCacheWarmer(cache, cfg.CacheWarmerSchedule, cfg.ExternalAPITimeout*4, log)
		if err := warmer.Start(); err != nil {
			log.Errorf("Failed to start cache warmer: %v", err)
		}
		defer warmer.Stop()
	}

	router := api.NewRouter(cache, pool.Members, cfg.CorsOrigins, log)

	for _, route := range router.Routes() {
		log.Debugf("%s %s", route.Method, route.Path)
	}

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
