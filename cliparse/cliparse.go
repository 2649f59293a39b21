// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort            = 3318
	DefaultChunkSize       = 10
	DefaultRoomIdleTimeout = 2 * time.Hour
	DefaultOverpassURL     = "https://maps.mail.ru/osm/tools/overpass/api/interpreter"
	DefaultEnvFile         = ".env"
)

type Config struct {
	Port            int
	DatabaseURL     string
	DatabaseType    string
	EnvFile         string
	ChunkSize       int
	RoomIdleTimeout time.Duration
	KinopoiskToken  string
	OverpassURL     string
}

// ParseFlags reads flags, then the env file, then environment variables.
// Flags win over the environment, and the environment wins over the file.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var idle string

	fs := flag.NewFlagSet("quo", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL for room snapshots (empty = memory only)")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.EnvFile, "env", "", "Path to .env file")
	fs.IntVar(&cfg.ChunkSize, "chunk", 0, "Schedule shuffle chunk size")
	fs.StringVar(&idle, "idle", "", "Idle room timeout, e.g. 90m (0 disables)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.KinopoiskToken, "kinopoisk-token", "", "Kinopoisk API token (prefer env)")
	fs.StringVar(&cfg.OverpassURL, "overpass-url", "", "Overpass API interpreter URL")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.EnvFile == "" {
		cfg.EnvFile = os.Getenv("ENV_FILE")
	}
	if cfg.EnvFile == "" {
		cfg.EnvFile = DefaultEnvFile
	}
	// godotenv never overrides variables that are already set
	if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", cfg.EnvFile, err)
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", DefaultPort)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.ChunkSize == 0 {
		size, err := envInt("SCHEDULE_CHUNK_SIZE", DefaultChunkSize)
		if err != nil {
			return Config{}, err
		}
		cfg.ChunkSize = size
	}
	if cfg.ChunkSize <= 0 {
		return Config{}, errors.New("chunk size must be positive")
	}

	if idle == "" {
		idle = os.Getenv("ROOM_IDLE_TIMEOUT")
	}
	cfg.RoomIdleTimeout = DefaultRoomIdleTimeout
	if idle != "" {
		d, err := time.ParseDuration(idle)
		if err != nil {
			return Config{}, fmt.Errorf("invalid room idle timeout: %w", err)
		}
		if d < 0 {
			return Config{}, errors.New("room idle timeout must not be negative")
		}
		cfg.RoomIdleTimeout = d
	}

	if cfg.KinopoiskToken == "" {
		cfg.KinopoiskToken = os.Getenv("KINOPOISK_TOKEN")
	}
	if cfg.OverpassURL == "" {
		cfg.OverpassURL = os.Getenv("OVERPASS_URL")
	}
	if cfg.OverpassURL == "" {
		cfg.OverpassURL = DefaultOverpassURL
	}

	return cfg, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}
