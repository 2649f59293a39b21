// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/DevDaysSpring2024-29/project/models"
)

// SnapshotStore persists room snapshots as JSON, one row per live room.
type SnapshotStore struct {
	db     *sql.DB
	driver string
}

// NewSnapshotStore wraps an open connection. dbType is the configured
// database type ("sqlite" or "postgres").
func NewSnapshotStore(db *sql.DB, dbType string) *SnapshotStore {
	driver, err := driverFor(dbType)
	if err != nil {
		driver = DriverSQLite
	}
	return &SnapshotStore{db: db, driver: driver}
}

// SaveRoom inserts or replaces the snapshot for snap.ID.
func (s *SnapshotStore) SaveRoom(ctx context.Context, snap models.RoomSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode room %s: %w", snap.ID, err)
	}

	_, err = s.db.ExecContext(ctx, rebind(s.driver, `
		INSERT INTO room_snapshot (id, status, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`), snap.ID, snap.Status, string(payload), snap.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save room %s: %w", snap.ID, err)
	}

	return nil
}

func (s *SnapshotStore) DeleteRoom(ctx context.Context, roomID string) error {
	_, err := s.db.ExecContext(ctx, rebind(s.driver, `DELETE FROM room_snapshot WHERE id = ?`), roomID)
	if err != nil {
		return fmt.Errorf("failed to delete room %s: %w", roomID, err)
	}
	return nil
}

// LoadRooms returns every stored snapshot, oldest first. Rows that fail to
// decode are logged and skipped.
func (s *SnapshotStore) LoadRooms(ctx context.Context) ([]models.RoomSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM room_snapshot ORDER BY updated_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query room snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.RoomSnapshot
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan room snapshot: %w", err)
		}

		var snap models.RoomSnapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			slog.Error("skipping unreadable room snapshot", "room_id", id, "error", err)
			continue
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read room snapshots: %w", err)
	}

	return snaps, nil
}
