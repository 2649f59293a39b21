// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/DevDaysSpring2024-29/project/middleware"
	"github.com/DevDaysSpring2024-29/project/models"
)

const (
	defaultWaitTimeout = 30 * time.Second
	maxWaitTimeout     = 2 * time.Minute
	heartbeatInterval  = 25 * time.Second
)

// WaitVoting handles GET /rooms/me/wait?timeout=30s
//
// Long-polls until the owner starts voting. On timeout it still answers 200
// with the current status so clients can simply poll again.
func (h *RoomHandler) WaitVoting(w http.ResponseWriter, r *http.Request) {
	p, ok := participant(w, r)
	if !ok {
		return
	}

	timeout := defaultWaitTimeout
	if raw := r.URL.Query().Get("timeout"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "timeout must be a positive duration")
			return
		}
		timeout = min(d, maxWaitTimeout)
	}

	room, err := h.reg.RoomOf(p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	err = room.WaitVoting(ctx)
	switch {
	case err == nil, errors.Is(err, context.DeadlineExceeded):
		middleware.JSONResponse(w, http.StatusOK, models.WaitResponse{Status: room.Status()})
	case errors.Is(err, context.Canceled):
		// client went away
	default:
		writeError(w, r, err)
	}
}

// Events handles GET /rooms/me/events
//
// Streams room events as server-sent events until the client disconnects
// or the room is closed.
func (h *RoomHandler) Events(w http.ResponseWriter, r *http.Request) {
	p, ok := participant(w, r)
	if !ok {
		return
	}

	room, err := h.reg.RoomOf(p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	events, unsubscribe := room.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		slog.Error("event stream cannot flush", "error", err)
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				slog.Error("failed to encode event", "room_id", ev.RoomID, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Kind, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
