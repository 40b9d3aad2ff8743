package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"github.com/codyseavey/goblin-bookie/internal/api"
	"github.com/codyseavey/goblin-bookie/internal/config"
	"github.com/codyseavey/goblin-bookie/internal/database"
	"github.com/codyseavey/goblin-bookie/internal/logging"
	"github.com/codyseavey/goblin-bookie/internal/services"
)

func main() {
	configPath := flag.String("config", os.Getenv("GOBLIN_CONFIG"), "path to a TOML config file")
	port := flag.Int("port", 0, "listen port (overrides config)")
	host := flag.String("host", "", "listen host (overrides config)")
	flag.Parse()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	config.ApplyFlagOverrides(cfg, *port, *host)

	logging.Setup(cfg.Logging)
	gin.SetMode(gin.ReleaseMode)

	// Initialize database
	if err := database.Initialize(cfg.Database.Path, cfg.Logging.Level); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	// Initialize services
	clientCfg := services.ClientConfig{
		BaseURL:           cfg.API.URL,
		Timeout:           cfg.API.Timeout.Duration,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
	}
	goblinService := services.NewGoblinService(clientCfg)

	sampleCfg := clientCfg
	sampleCfg.BaseURL = cfg.API.SampleURL
	sampleService := services.NewSampleService(sampleCfg)

	cardService := services.NewCardService(goblinService, database.GetDB(), services.CacheConfig{
		Size: cfg.Cache.Size,
		TTL:  cfg.Cache.TTL.Duration,
	})

	refreshWorker := services.NewRefreshWorker(cardService, services.WorkerConfig{
		Interval:  cfg.Worker.Interval.Duration,
		BatchSize: cfg.Worker.BatchSize,
	})

	log.Info().Str("api", goblinService.BaseURL()).Int64("snapshots", cardService.SnapshotCount()).Msg("Services initialized")

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start refresh worker in background with panic recovery
	if cfg.Worker.Enabled {
		go func() {
			for {
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Error().Str("panic", fmt.Sprint(r)).Msg("PANIC in refresh worker - restarting in 30 seconds")
						}
					}()
					refreshWorker.Start(ctx)
				}()

				select {
				case <-ctx.Done():
					return // Graceful shutdown
				case <-time.After(30 * time.Second):
					log.Info().Msg("Refresh worker restarting after panic recovery...")
				}
			}
		}()
	} else {
		log.Info().Msg("Refresh worker disabled")
	}

	// Setup router
	router := api.SetupRouter(api.Deps{
		Cards:              cardService,
		Samples:            sampleService,
		Worker:             refreshWorker,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RecentCards:        cfg.Server.RecentCards,
	})

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Cancel the context to stop the refresh worker
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
