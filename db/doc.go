// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db persists room snapshots so live rooms survive a restart.

# Connecting

Open picks the driver from the configured database type, pings, and
creates the schema:

	conn, err := db.Open(cfg)
	if errors.Is(err, db.ErrNoDatabase) {
		// rooms live in memory only
	}

Supported types:

  - sqlite (default): modernc.org/sqlite, DATABASE_URL is a file path
  - postgres: lib/pq, DATABASE_URL is a connection string

# Schema Creation

CreateSchema is safe to call multiple times - uses IF NOT EXISTS for all
tables and indexes.

# Tables

  - room_snapshot: one row per live room (id, status, JSON payload,
    updated_at)

Closed rooms are deleted rather than stored.

# Snapshot Store

SnapshotStore implements engine.Store:

	store := db.NewSnapshotStore(conn, cfg.DatabaseType)
	reg := engine.NewRegistry(catalog, engine.WithStore(store))

	snaps, err := store.LoadRooms(ctx)
	for _, snap := range snaps {
		reg.Restore(snap)
	}

Queries are written with ? placeholders and rebound to $n for PostgreSQL.
*/
package db
