package main

import (
	"context"
	"log"

	"github.com/ymori/futalog/internal/config"
	"github.com/ymori/futalog/internal/db"
	"github.com/ymori/futalog/internal/logging"
	"github.com/ymori/futalog/internal/seed"
	"github.com/ymori/futalog/internal/service"
	"github.com/ymori/futalog/internal/store"
	"github.com/ymori/futalog/internal/web"
	"github.com/ymori/futalog/internal/web/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	lidStore := store.NewLidStore(database)
	ownershipStore := store.NewOwnershipStore(database)
	accountStore := store.NewAccountStore(database)
	sessionStore := store.NewSessionStore(database)
	draftStore := store.NewDraftStore(database)

	if cfg.SeedPath != "" {
		if _, err := seed.Load(context.Background(), cfg.SeedPath, lidStore, logger); err != nil {
			logger.Error("failed to seed catalog", "error", err)
			return
		}
	}

	if err := sessionStore.DeleteExpired(context.Background()); err != nil {
		logger.Warn("failed to prune expired sessions", "error", err)
	}

	ownershipService := service.NewOwnershipService(lidStore, ownershipStore, accountStore, draftStore, logger)
	accountService := service.NewAccountService(accountStore, sessionStore, cfg.SessionTTL, logger)

	server := web.NewServer(ownershipService, accountService, templates.FS, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}
