package main

import (
	"context"
	"log"

	"viralizaai-be/internal/config"
	"viralizaai-be/internal/pkg/logger"
	"viralizaai-be/internal/repository/unitofwork"
	"viralizaai-be/internal/service"
	"viralizaai-be/pkg/database"
	"viralizaai-be/pkg/entitlement"
)

// One-shot revocation of lapsed plan access, for running from cron when the
// in-process purger is disabled (ACCESS_PURGE_INTERVAL=0).
func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	accessService := service.NewAccessService(unitofwork.NewRepositoryFactory(db), entitlement.DefaultMatrix(), nil, sysLogger)
	n, err := accessService.PurgeExpired(context.Background())
	if err != nil {
		log.Fatalf("Purge failed: %v", err)
	}
	log.Printf("Revoked %d expired access grants", n)
}
