package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"statbasket/adapters/stats/moments"
	"statbasket/app"
	"statbasket/internal"
	"statbasket/internal/api"
	"statbasket/internal/config"
	"statbasket/internal/scores"

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
	logger := internal.NewLogger(appConfig.LogLevel)

	engine := scores.NewEngine()
	baskets := app.NewBasketService(moments.NewCalculator(), engine)
	server := api.NewServer(appConfig, baskets, engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
