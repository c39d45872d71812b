package main

import (
	"os"

	engine "auction-live/internal/auctionEngine"
	"auction-live/internal/broadcast"
	"auction-live/internal/config"
	"auction-live/internal/repository"
	"auction-live/internal/server"
	"auction-live/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}
	gin.SetMode(cfg.GinMode)

	repo, err := openRepository(cfg)
	if err != nil {
		utils.Fatal("failed to open storage", map[string]any{
			"driver": cfg.StorageDriver,
			"error":  err.Error(),
		})
	}

	caster := broadcast.NewBroadcaster(cfg.SubscriberBuffer)
	defer caster.Close()

	eng := engine.NewEngine(repo, caster, cfg.LockWait)
	router := server.SetupRouter(eng, repo, caster)

	utils.Info("starting auction server", map[string]any{
		"addr":   cfg.Addr(),
		"driver": cfg.StorageDriver,
	})
	if err := router.Run(cfg.Addr()); err != nil {
		utils.Error("server stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

// openRepository selects the AuctionDB implementation from config.
func openRepository(cfg *config.Config) (repository.AuctionDB, error) {
	if cfg.StorageDriver == config.DriverPostgres {
		return repository.NewGormRepo(cfg.PostgresDSN)
	}
	return repository.NewMemoryRepo(), nil
}
