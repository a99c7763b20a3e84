package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tbraun92/gamehub/internal/config"
	"github.com/tbraun92/gamehub/internal/hub"
	"github.com/tbraun92/gamehub/internal/logging"
	"github.com/tbraun92/gamehub/internal/presence"
	"github.com/tbraun92/gamehub/internal/registry"
	"github.com/tbraun92/gamehub/internal/server"
	"github.com/tbraun92/gamehub/internal/stats"
	"github.com/tbraun92/gamehub/internal/store"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupStore(cfg *config.Config) *store.Store {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	return st
}

func runGracefulShutdown(srv *server.Server, tracker *presence.Tracker, h *hub.Hub, st *store.Store) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		tracker.Stop()
		h.Stop()

		if err := st.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	st := setupStore(cfg)

	contentRepo := store.NewContentRepo(st)
	deviceRepo := store.NewDeviceRepo(st)
	sessionRepo := store.NewSessionRepo(st)

	broadcastHub := hub.New(cfg.MaxClientsPerGroup, hub.DefaultQueueSize)

	contentRegistry := registry.New(contentRepo, broadcastHub, clock)

	// The aggregator counts devices through the tracker and the tracker
	// reports presence changes to the aggregator, so the callback closes
	// over a variable assigned after both exist.
	var aggregator *stats.Aggregator
	onPresenceChange := func(ctx context.Context, newDevice bool) {
		aggregator.OnPresenceChange(ctx, newDevice)
	}

	tracker, err := presence.New(context.Background(), deviceRepo, clock, cfg.PresenceStaleAfter, onPresenceChange)
	if err != nil {
		slog.Error("Failed to initialize presence tracker", "error", err)
		os.Exit(1)
	}
	aggregator = stats.New(sessionRepo, tracker, broadcastHub, clock)

	tracker.Start(cfg.PresenceSweepInterval)

	srv, err := server.NewServer(cfg, contentRegistry, tracker, aggregator, broadcastHub, st, clock)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv, tracker, broadcastHub, st)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
