// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quo API server.

Quo lets a group agree on one option by swiping: everyone in a room sees
the same candidates in their own order and likes or skips each one. The
first option every current participant likes is the match.

# Starting the Server

No configuration is required; rooms live in memory by default:

	go run .

Or with flags:

	go run . -p 3318 -d quo.db -idle 90m

# Configuration

All settings may come from flags, environment variables, or a .env file
(flags win over the environment, the environment wins over the file):

  - PORT (-p): Server port (default: 3318)
  - DATABASE_URL (-d): Snapshot database; empty keeps rooms in memory only
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - ENV_FILE (-env): Path to the .env file (default: .env)
  - SCHEDULE_CHUNK_SIZE (-chunk): Options shuffled together (default: 10)
  - ROOM_IDLE_TIMEOUT (-idle): Close rooms idle this long (default: 2h, 0 disables)
  - KINOPOISK_TOKEN (-kinopoisk-token): Enables the kinopoisk provider
  - OVERPASS_URL (-overpass-url): Overpass interpreter for city, country, restaurants

# Architecture

The server uses a handler-based architecture with dependency injection:

  - engine: Rooms, schedules, match detection, and the room registry
  - providers: Catalog providers (dummy, city, country, restaurants, kinopoisk)
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, request logging, JSON helpers
  - models: Domain, request, and response types
  - auth: Participant identity and room codes
  - db: Snapshot persistence (SQLite or PostgreSQL)
  - cliparse: Configuration parsing

On start-up stored rooms are restored, and a background sweeper closes
rooms with no activity for ROOM_IDLE_TIMEOUT.

See package documentation for each component.
*/
package main
