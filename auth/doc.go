// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides room code generation and participant identity
extraction.

# Room Codes

GenerateRoomCode returns a six character code from an alphabet without
look-alike characters, suitable for typing into a chat:

	code, err := auth.GenerateRoomCode() // e.g. "K7QX2M"

Uniqueness is not guaranteed here; the engine retries until it finds a
code it has never issued.
NormalizeRoomCode upper-cases and trims user input before lookup.

# Participant Identity

Identity management is out of scope. The chat layer hands in an opaque
participant id in the X-Participant-ID header:

	participant, err := auth.ParticipantID(r)

Errors:

  - ErrMissingParticipant: header absent or blank
  - ErrInvalidParticipant: longer than 128 bytes or not valid UTF-8
*/
package auth
