// Command server runs the Monte Carlo simulation service.
//
// Startup order:
//  1. Load configuration from environment (.env supported)
//  2. Initialize structured logging
//  3. Open the quote cache database and ensure its schema
//  4. Wire the market data resolver (Yahoo Finance behind a TTL cache)
//  5. Build the simulation engine and HTTP handlers
//  6. Start the cache cleanup scheduler
//  7. Serve HTTP until SIGINT/SIGTERM, then shut down gracefully
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fintool/quantsvc/internal/clientdata"
	"github.com/fintool/quantsvc/internal/clients/yahoo"
	"github.com/fintool/quantsvc/internal/config"
	"github.com/fintool/quantsvc/internal/database"
	"github.com/fintool/quantsvc/internal/marketdata"
	"github.com/fintool/quantsvc/internal/scheduler"
	"github.com/fintool/quantsvc/internal/server"
	"github.com/fintool/quantsvc/internal/simulation"
	simhandlers "github.com/fintool/quantsvc/internal/simulation/handlers"
	"github.com/fintool/quantsvc/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting quantsvc")

	// Quote cache database. Losing it only costs refetches, so the
	// connection runs with the cache-profile pragmas.
	cacheDB, err := database.New(database.Config{
		Path: cfg.CacheDBPath(),
		Name: "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	cacheRepo := clientdata.NewRepository(cacheDB.Conn())
	if err := cacheRepo.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache schema")
	}

	// Market data: Yahoo Finance chart API behind the TTL cache.
	yahooOpts := []yahoo.Option{yahoo.WithTimeout(cfg.QuoteTimeout)}
	if cfg.QuoteBaseURL != "" {
		yahooOpts = append(yahooOpts, yahoo.WithBaseURL(cfg.QuoteBaseURL))
	}
	yahooClient := yahoo.NewClient(log, yahooOpts...)

	resolver := marketdata.NewResolver(marketdata.NewYahooSource(yahooClient), cacheRepo, log)
	resolver.SetTTL(cfg.QuoteCacheTTL)

	engine := simulation.NewEngine(resolver, log)

	srv := server.New(server.Config{
		Log:                log,
		Port:               cfg.Port,
		DevMode:            cfg.DevMode,
		RequestTimeout:     cfg.RequestTimeout,
		CacheDB:            cacheDB,
		SimulationHandlers: simhandlers.NewHandler(engine, log),
	})

	// Background maintenance: purge expired cache rows daily.
	sched := scheduler.New(log)
	if err := sched.AddJob("@daily", clientdata.NewCleanupJob(cacheRepo, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache cleanup job")
	}
	sched.Start()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Block until SIGINT (Ctrl+C) or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
