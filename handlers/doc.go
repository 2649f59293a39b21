// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quo API.

# Handler Types

RoomHandler serves every room and voting endpoint. It is created with the
room registry and the provider catalog:

	roomHandler := handlers.NewRoomHandler(reg, catalog)

# Identity

Callers identify themselves with the X-Participant-ID header. The value is
opaque (a chat user id, a device id); a missing or malformed header is a
400. Room routes under /rooms/me act on the caller's current room, so a
participant only ever needs the room code once, to join.

# Room Lifecycle

Rooms progress through three states: open → voting → closed

	POST /rooms              → CreateRoom (caller becomes owner)
	POST /rooms/{id}/join    → JoinRoom (open only)
	POST /rooms/me/entries   → AddEntry (owner, open only)
	POST /rooms/me/start     → StartVote (owner; fetches provider entries)
	POST /rooms/leave        → LeaveRoom (last one out closes the room)

# Voting Flow

	GET    /rooms/me/current → CurrentOption (plus match, if decided)
	POST   /rooms/me/votes   → Vote {liked}
	GET    /rooms/me/match   → GetMatch
	DELETE /rooms/me/match   → ResetMatch

# Waiting and Events

GET /rooms/me/wait long-polls until voting starts (timeout query
parameter, default 30s, capped at 2m). GET /rooms/me/events streams room
events as server-sent events:

	id: 6f1c...
	event: match
	data: {"id":"6f1c...","kind":"match","room_id":"K7TQ2M",...}

# Error Mapping

Engine and provider errors map to status codes in errors.go:

  - 404: room not found, not in a room, participant not found
  - 403: not the owner
  - 409: already voting, not voting
  - 422: no options, invalid entry
  - 400: unknown provider, bad JSON, missing identity
  - 502 / 503: provider returned garbage / provider unreachable
*/
package handlers
