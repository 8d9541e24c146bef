package main

import (
	"context"
	"debatematch/backend/internal/api/handler"
	"debatematch/backend/internal/chathub"
	"debatematch/backend/internal/config"
	"debatematch/backend/internal/credential"
	"debatematch/backend/internal/storage"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// dependencies holds the connections opened at startup.
type dependencies struct {
	store  storage.RoomStore
	redis  *redis.Client
	events *storage.RedisEvents
	close  func()
}

func setupDependencies(ctx context.Context, cfg *config.Config) (*dependencies, error) {
	deps := &dependencies{close: func() {}}

	// 1. Redis (store, pub/sub or both)
	if cfg.NeedsRedis() {
		rdb, err := storage.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect Redis: %w", err)
		}
		deps.redis = rdb
		deps.close = func() { rdb.Close() }
	}

	// 2. Room store
	switch cfg.StoreDriver {
	case config.StorePostgres:
		svc, err := storage.OpenPostgres(cfg.PostgresURL(), cfg.Mode == "debug")
		if err != nil {
			deps.close()
			return nil, fmt.Errorf("failed to connect PostgreSQL: %w", err)
		}
		deps.store = svc
		closeRedis := deps.close
		deps.close = func() {
			if err := svc.Close(); err != nil {
				log.Warn().Err(err).Str("module", "main").Msg("failed to close PostgreSQL pool")
			}
			closeRedis()
		}
	case config.StoreRedis:
		deps.store = storage.NewRedisStore(deps.redis)
	case config.StoreMemory:
		log.Warn().Str("module", "main").Msg("using in-memory room store, rooms are lost on restart")
		deps.store = storage.NewMemoryStore()
	}

	// 3. Cross-instance events
	if cfg.EventsDriver == config.EventsRedis {
		deps.events = storage.NewRedisEvents(deps.redis)
	}

	log.Info().Str("module", "main").Str("store", cfg.StoreDriver).Str("events", cfg.EventsDriver).
		Msg("dependencies initialized")
	return deps, nil
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.SetupLogger(cfg.Mode, cfg.LogLevel)
	log.Info().Str("module", "main").Msg("Starting DebateMatch backend...")

	deps, err := setupDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	issuer := credential.NewIssuer(cfg.AppID, cfg.AppCertificate, cfg.TokenTTL)
	if !issuer.Configured() {
		// Matching still works; every allocation answers with a credential error.
		log.Warn().Str("module", "main").Msg("AGORA_APP_ID or AGORA_APP_CERT not set, credentials cannot be issued")
	}

	hub := chathub.NewEventHub()
	var publisher chathub.EventPublisher = hub
	if deps.events != nil {
		publisher = deps.events
	}

	matcher := chathub.NewMatcherService(deps.store, issuer, publisher)
	matcher.MaxAttempts = cfg.MatchAttempts
	lifecycle := chathub.NewLifecycleService(deps.store, publisher)

	h := handler.NewHandler(matcher, lifecycle, deps.store, hub)
	r := handler.SetupRouter(h, cfg.Mode)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)

	// Main event dispatcher
	g.Go(func() error { return hub.Run(gctx) })

	if deps.events != nil {
		pubsub := deps.events.SubscribeRoomEvents(gctx)
		g.Go(func() error { return hub.Forward(gctx, pubsub) })
	}

	g.Go(func() error {
		log.Info().Str("module", "main").Str("addr", addr).Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Str("module", "main").Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Str("module", "main").Msg("Server exited gracefully")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Str("module", "main").Msg("server stopped")
		os.Exit(1)
	}
}
