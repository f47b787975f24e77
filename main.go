package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bridgesim/adapters/api"
	"bridgesim/adapters/rng"
	"bridgesim/app"
	"bridgesim/internal"
	"bridgesim/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level))
	internal.DefaultLogger = logger

	service := app.NewSimulationService(rng.NewSeededAdapter(), appConfig.Simulation, logger)
	server := api.NewServer(service, appConfig, logger)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	logger.Info("bridgesim %s ready: %d trials per run by default, seed %d, stress unit %s",
		app.CodeVersion, appConfig.Simulation.Trials, appConfig.Simulation.Seed, appConfig.Simulation.StressUnit)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server exited")
}
