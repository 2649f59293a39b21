// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the value types shared by the engine, the catalog
providers, persistence, and the HTTP layer.

# Domain Types

  - Entry: one candidate option (name, description, rating, price, picture)
  - RoomParams: provider name plus filters captured at room creation
  - Filters: provider-specific key/value pairs
  - FetchRequest: filters and names to exclude, sent to a provider
  - Schedule: a participant's permutation of option indices and cursor
  - RoomSnapshot: full serializable room state
  - Event: a room state change delivered to subscribers

# Request Types

  - CreateRoomRequest: provider_name, filters
  - AddEntryRequest: an Entry
  - VoteRequest: liked

# Response Types

  - CreateRoomResponse: room_id
  - RoomView: room summary with participants and match
  - CurrentOptionResponse: option at the cursor plus match
  - VoteResponse, MatchResponse: match (if any)
  - WaitResponse: status after a wait
  - ErrorResponse: error, message

# Constants

Status values:

	StatusOpen   = "open"
	StatusVoting = "voting"
	StatusClosed = "closed"

Event kinds: joined, left, owner_changed, entry_added, voting_started,
match, match_reset, closed.
*/
package models
