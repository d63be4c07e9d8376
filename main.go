package main

import (
	"log"

	"github.com/joho/godotenv"

	"facturier/cmd"
	"facturier/internal/config"
	"facturier/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Commands report configuration errors themselves; fall back to the
	// default logger so they can.
	cfg, err := config.Load()
	if err != nil {
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting facturier")

	cmd.Execute()

	log.Debug().Msg("facturier shutdown")
}
