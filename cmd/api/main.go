package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"govigil/adapters/api"
	"govigil/adapters/postgres"
	"govigil/app"
	"govigil/domain/signal"
	"govigil/internal"
	"govigil/internal/config"
	"govigil/ports"
)

func main() {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	log := internal.DefaultLogger

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration error: %v", err)
		os.Exit(1)
	}

	service, err := app.NewFusionService(signal.DefaultScoringConfig())
	if err != nil {
		log.Error("failed to build scoring service: %v", err)
		os.Exit(1)
	}

	var ledger ports.LedgerPort
	if cfg.Database.Enabled {
		db, err := postgres.Open(cfg.Database.URL)
		if err != nil {
			log.Error("failed to open result ledger: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(context.Background(), db); err != nil {
			log.Error("failed to migrate result ledger: %v", err)
			os.Exit(1)
		}
		ledger = postgres.NewResultLedger(db)
		log.Info("result ledger enabled")
	}

	server := api.NewServer(service, ledger)

	addr := ":" + cfg.Server.Port
	log.Info("scoring API listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Handler()); err != nil {
		log.Error("server stopped: %v", err)
		os.Exit(1)
	}
}
