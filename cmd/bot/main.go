package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kopilka/internal/config"
	"kopilka/internal/console"
	"kopilka/internal/database"
	"kopilka/internal/dialogue"
	"kopilka/internal/ledger"
	"kopilka/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to open ledger database: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	store := ledger.NewStore(dbManager.DB())
	controller := dialogue.NewController(store)
	adapter := console.New(controller, appConfig.ConsoleUserID, os.Stdin, os.Stdout)

	log.Infof("Kopilka started for user %d (ledger %s)", appConfig.ConsoleUserID, appConfig.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return adapter.Run(ctx)
}
