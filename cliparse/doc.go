// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Snapshot database; empty keeps rooms in memory only
  - DatabaseType: sqlite (default) or postgres
  - EnvFile: .env file loaded before reading the environment
  - ChunkSize: Schedule shuffle chunk size (default: 10)
  - RoomIdleTimeout: Idle rooms are closed after this long (default: 2h, 0 disables)
  - KinopoiskToken: Enables the kinopoisk provider
  - OverpassURL: Overpass interpreter for city/country/restaurant providers

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	-env              Path to .env file
	-chunk            Schedule chunk size
	-idle             Room idle timeout
	-kinopoisk-token  Kinopoisk API token
	-overpass-url     Overpass interpreter URL

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	ENV_FILE            → -env
	SCHEDULE_CHUNK_SIZE → -chunk
	ROOM_IDLE_TIMEOUT   → -idle
	KINOPOISK_TOKEN     → -kinopoisk-token
	OVERPASS_URL        → -overpass-url

Variables missing from the environment are read from the .env file
(github.com/joho/godotenv). A missing file is not an error. CLI flags take
precedence over environment variables, which take precedence over the file.

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	catalog := providers.FromConfig(cfg)
	reg := engine.NewRegistry(catalog, engine.WithChunkSize(cfg.ChunkSize))
	mux := router.NewRouter(reg, catalog)
*/
package cliparse
