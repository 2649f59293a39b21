package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/DevDaysSpring2024-29/project/cliparse"
	"github.com/DevDaysSpring2024-29/project/db"
	"github.com/DevDaysSpring2024-29/project/engine"
	"github.com/DevDaysSpring2024-29/project/middleware"
	"github.com/DevDaysSpring2024-29/project/providers"
	"github.com/DevDaysSpring2024-29/project/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := providers.FromConfig(cfg)
	opts := []engine.Option{engine.WithChunkSize(cfg.ChunkSize)}

	// Connect to the snapshot database, if configured
	dbConn, err := db.Open(cfg)
	switch {
	case errors.Is(err, db.ErrNoDatabase):
		slog.Info("No database configured, rooms are kept in memory only")
	case err != nil:
		slog.Error("database setup failed", "error", err)
		os.Exit(1)
	default:
		defer dbConn.Close()
		slog.Info("Database schema ready", "type", cfg.DatabaseType)
	}

	var store *db.SnapshotStore
	if dbConn != nil {
		store = db.NewSnapshotStore(dbConn, cfg.DatabaseType)
		opts = append(opts, engine.WithStore(store))
	}

	reg := engine.NewRegistry(catalog, opts...)

	if store != nil {
		restoreRooms(ctx, reg, store)
	}

	if cfg.RoomIdleTimeout > 0 {
		go sweepIdleRooms(ctx, reg, cfg.RoomIdleTimeout)
	}

	// Create router
	mux := router.NewRouter(reg, catalog)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "providers", catalog.Names())
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// restoreRooms re-inserts every stored room. Snapshots that no longer
// validate are dropped from the store.
func restoreRooms(ctx context.Context, reg *engine.Registry, store *db.SnapshotStore) {
	snaps, err := store.LoadRooms(ctx)
	if err != nil {
		slog.Error("failed to load room snapshots", "error", err)
		return
	}

	restored := 0
	for _, snap := range snaps {
		if err := reg.Restore(snap); err != nil {
			slog.Error("dropping room snapshot", "room_id", snap.ID, "error", err)
			if err := store.DeleteRoom(ctx, snap.ID); err != nil {
				slog.Error("failed to delete room snapshot", "room_id", snap.ID, "error", err)
			}
			continue
		}
		restored++
	}
	slog.Info("Rooms restored", "count", restored)
}

// sweepIdleRooms closes abandoned rooms until ctx is done. It checks four
// times per timeout period.
func sweepIdleRooms(ctx context.Context, reg *engine.Registry, maxIdle time.Duration) {
	ticker := time.NewTicker(max(maxIdle/4, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := reg.SweepIdle(ctx, maxIdle); n > 0 {
				slog.Info("idle rooms closed", "count", n, "live", reg.Len())
			}
		}
	}
}
