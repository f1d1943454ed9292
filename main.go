package main

import (
	"context"
	"log"
	"time"

	"gokeyword/adapters/postgres"
	"gokeyword/app"
	"gokeyword/internal"
	"gokeyword/internal/config"
	"gokeyword/internal/database"
	"gokeyword/ports"
	"gokeyword/ui"

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

	// The reference table is optional: without it rows are generated but
	// never categorized.
	var regionRepo ports.RegionRepository
	if appConfig.Database.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		db, err := database.Open(ctx, appConfig.Database, logger)
		cancel()
		if err != nil {
			logger.Warn("reference database unavailable, starting without it: %v", err)
		} else {
			defer db.Close()
			regionRepo = postgres.NewRegionRepository(db, appConfig.Database.Table)
		}
	} else {
		logger.Info("DATABASE_URL not set, regions will not be categorized")
	}

	service := app.NewKeywordService(regionRepo, app.KeywordServiceConfig{
		MaxRows:         appConfig.Generate.MaxRows,
		DedupeReference: appConfig.Generate.DedupeReference,
	}, logger)

	server, err := ui.NewServer(service, appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
