// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quo API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(reg, catalog)

# Endpoints

Health and discovery:

	GET /health
	GET /providers

Membership (all room routes require X-Participant-ID):

	POST /rooms           - Create room, caller becomes owner
	POST /rooms/{id}/join - Join an open room
	POST /rooms/leave     - Leave the current room
	GET  /rooms/me        - Current room view

Setup:

	POST /rooms/me/entries - Add a manual entry (owner, open only)
	POST /rooms/me/start   - Start voting (owner)
	GET  /rooms/me/wait    - Long-poll until voting starts

Voting:

	GET    /rooms/me/current - Option at the caller's cursor
	POST   /rooms/me/votes   - Swipe {liked}
	GET    /rooms/me/match   - Decided option, if any
	DELETE /rooms/me/match   - Clear the match and approvals

Notifications:

	GET /rooms/me/events - Server-sent event stream

# Handler Initialization

The router creates the room handler with dependency injection:

	roomHandler := handlers.NewRoomHandler(reg, catalog)
*/
package router
