// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Room status constants
const (
	StatusOpen   = "open"
	StatusVoting = "voting"
	StatusClosed = "closed"
)

// Room event kinds
const (
	EventJoined        = "joined"
	EventLeft          = "left"
	EventOwnerChanged  = "owner_changed"
	EventEntryAdded    = "entry_added"
	EventVotingStarted = "voting_started"
	EventMatch         = "match"
	EventMatchReset    = "match_reset"
	EventClosed        = "closed"
)

// Domain types

// Entry is one candidate option. Only Name is required.
type Entry struct {
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Rating      *float64 `json:"rating,omitempty"` // 0.0 to 1.0
	Price       *int64   `json:"price,omitempty"`  // smallest currency unit
	PictureURL  *string  `json:"picture_url,omitempty"`
}

// Filters are provider-specific key/value pairs. Values arrive as JSON
// strings or numbers; numbers are kept as their decimal text.
type Filters map[string]string

// UnmarshalJSON accepts string and number values. A null value is dropped.
func (f *Filters) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*f = nil
		return nil
	}

	out := make(Filters, len(raw))
	for key, val := range raw {
		val = bytes.TrimSpace(val)
		switch {
		case bytes.Equal(val, []byte("null")):
			continue
		case len(val) > 0 && val[0] == '"':
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return fmt.Errorf("filter %q: %w", key, err)
			}
			out[key] = s
		default:
			var n json.Number
			if err := json.Unmarshal(val, &n); err != nil {
				return fmt.Errorf("filter %q must be a string or a number", key)
			}
			out[key] = numberText(n)
		}
	}
	*f = out
	return nil
}

// Int returns the integer value of key, or def if absent or malformed.
func (f Filters) Int(key string, def int) int {
	v, ok := f[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// numberText renders integral numbers such as 5.0 or 1e3 without a
// fraction or exponent, so Filters.Int can read them.
func numberText(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return n.String()
}

// String returns the value of key, or def if absent or empty.
func (f Filters) String(key, def string) string {
	if v := f[key]; v != "" {
		return v
	}
	return def
}

type RoomParams struct {
	ProviderName string  `json:"provider_name"`
	Filters      Filters `json:"filters,omitempty"`
}

// FetchRequest is what a catalog provider receives at vote start.
type FetchRequest struct {
	Filters      Filters  `json:"filters"`
	ExcludeNames []string `json:"exclude_names"`
}

// Schedule is one participant's traversal order over option indices.
type Schedule struct {
	Order  []int `json:"order"`
	Cursor int   `json:"cursor"`
}

// RoomSnapshot is the serializable state of a room.
type RoomSnapshot struct {
	ID           string              `json:"id"`
	Owner        string              `json:"owner"`
	Status       string              `json:"status"`
	Params       RoomParams          `json:"params"`
	Participants []string            `json:"participants"`
	Options      []Entry             `json:"options"`
	Schedules    map[string]Schedule `json:"schedules,omitempty"`
	Approvals    [][]string          `json:"approvals,omitempty"` // indexed by option
	Match        *int                `json:"match,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Event is published to room subscribers after a state change.
type Event struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	RoomID      string    `json:"room_id"`
	Participant string    `json:"participant,omitempty"`
	Entry       *Entry    `json:"entry,omitempty"`
	At          time.Time `json:"at"`
}

// Request types

type CreateRoomRequest struct {
	ProviderName string  `json:"provider_name"`
	Filters      Filters `json:"filters"`
}

type AddEntryRequest struct {
	Entry
}

type VoteRequest struct {
	Liked bool `json:"liked"`
}

// Response types

type CreateRoomResponse struct {
	RoomID string `json:"room_id"`
}

// EntryView is an Entry plus display helpers for the chat layer.
type EntryView struct {
	Entry
	PriceText string `json:"price_text,omitempty"`
}

type RoomView struct {
	ID           string     `json:"id"`
	Owner        string     `json:"owner"`
	Status       string     `json:"status"`
	ProviderName string     `json:"provider_name"`
	Participants []string   `json:"participants"`
	OptionCount  int        `json:"option_count"`
	Match        *EntryView `json:"match,omitempty"`
}

type CurrentOptionResponse struct {
	Option EntryView  `json:"option"`
	Match  *EntryView `json:"match,omitempty"`
}

type VoteResponse struct {
	Match *EntryView `json:"match,omitempty"`
}

type MatchResponse struct {
	Match *EntryView `json:"match"`
}

type WaitResponse struct {
	Status string `json:"status"`
}

type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
