package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/NijasTp/trainup-sub002/docs"

	"github.com/NijasTp/trainup-sub002/internal/config"
	"github.com/NijasTp/trainup-sub002/internal/db"
	"github.com/NijasTp/trainup-sub002/internal/logger"
	"github.com/NijasTp/trainup-sub002/internal/notification"
	"github.com/NijasTp/trainup-sub002/internal/server"

	"github.com/redis/go-redis/v9"
)

const sweepInterval = 5 * time.Minute

// @title TrainUp API
// @version 1.0
// @description Trainer-client booking, messaging plans and realtime gateway.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting TrainUp application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.New(database, rdb, cfg)

	worker := notification.NewWorker(rdb, notification.NewRepository(database), srv.Gateway().Registry())
	go worker.Start(ctx)

	// Periodic sweeps: completed/expired slots and lapsed plans.
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := srv.BookingService.Sweep(ctx); err != nil {
					logger.Errorf("Slot sweep failed: %v", err)
				}
				if err := srv.PlanService.Sweep(ctx); err != nil {
					logger.Errorf("Plan sweep failed: %v", err)
				}
			}
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
