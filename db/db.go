// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/DevDaysSpring2024-29/project/cliparse"
)

// Driver names registered by lib/pq and modernc.org/sqlite.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var ErrNoDatabase = errors.New("no database configured")

// Open connects to the configured database, verifies the connection, and
// creates the schema. It returns ErrNoDatabase when DatabaseURL is empty.
func Open(cfg cliparse.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, ErrNoDatabase
	}

	driver, err := driverFor(cfg.DatabaseType)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite serializes writers; one connection avoids SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

func driverFor(dbType string) (string, error) {
	switch dbType {
	case "", "sqlite":
		return DriverSQLite, nil
	case "postgres":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database type %q", dbType)
	}
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
