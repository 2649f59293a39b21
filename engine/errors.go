// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrNotInRoom           = errors.New("participant is not in a room")
	ErrParticipantNotFound = errors.New("participant not found in room")
	ErrForbidden           = errors.New("only the room owner may do this")
	ErrAlreadyVoting       = errors.New("voting already started")
	ErrNotVoting           = errors.New("voting has not started")
	ErrNoOptions           = errors.New("room has no options")
	ErrUnknownProvider     = errors.New("unknown provider")
	ErrInvalidEntry        = errors.New("invalid entry")
	ErrInvalidSnapshot     = errors.New("invalid room snapshot")
)
