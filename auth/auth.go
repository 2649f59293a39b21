// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// ParticipantHeader carries the caller's opaque participant identity.
const ParticipantHeader = "X-Participant-ID"

// RoomCodeLength is the length of codes produced by GenerateRoomCode.
const RoomCodeLength = 6

const maxParticipantIDLen = 128

var (
	ErrMissingParticipant = errors.New("participant id required")
	ErrInvalidParticipant = errors.New("invalid participant id")
)

// GenerateRoomCode creates a short random room code that is easy to type
// into a chat. Codes use digits and upper-case letters without the
// look-alikes 0/O and 1/I.
func GenerateRoomCode() (string, error) {
	const alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

	b := make([]byte, RoomCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate room code: %w", err)
	}
	// len(alphabet) is 32, so the modulo keeps the distribution uniform
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b), nil
}

// NormalizeRoomCode upper-cases and trims a code typed by a user.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParticipantID extracts the participant identity from the request header.
// The value is opaque; it is only checked for presence and sanity.
func ParticipantID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(ParticipantHeader))
	if id == "" {
		return "", ErrMissingParticipant
	}
	if len(id) > maxParticipantIDLen || !utf8.ValidString(id) {
		return "", ErrInvalidParticipant
	}
	return id, nil
}
