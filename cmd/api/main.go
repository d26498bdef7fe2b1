package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/ledger"
	"server/internal/registry"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store   registry.Store
		led     ledger.Ledger
		catalog domain.ArtifactCatalog
	)
	if cfg.DatabaseURL != "" {
		if err := infra.Migrate(cfg.DatabaseURL, logger); err != nil {
			logger.Fatal().Err(err).Msg("api: migrations failed")
		}
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: db connection failed")
		}
		defer pool.Close()

		store = repo.NewTaskRepository(pool)
		led = ledger.NewPG(pool, logger)
		catalog = repo.NewCatalogRepository(pool)
	} else {
		logger.Warn().
			Str("snapshot_path", cfg.SnapshotPath).
			Msg("api: DATABASE_URL not set, using snapshot store and in-memory ledger")
		snapshot, err := registry.NewSnapshotStore(cfg.SnapshotPath, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: snapshot store failed")
		}
		store = snapshot
		led = ledger.NewMemory(cfg.DevCreditsGrant)
	}

	reg := registry.New(store, logger)
	// Rehydrate before the router is mounted: callbacks and status polls
	// must never observe a cold registry.
	if err := reg.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("api: registry rehydration failed")
	}

	app := handlers.NewApp(reg, led, catalog, logger)
	router := httpapi.NewRouter(app, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("api: listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("api: http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: shutdown failed")
	}
	logger.Info().Msg("api: stopped")
}
