// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/DevDaysSpring2024-29/project/middleware"
	"github.com/DevDaysSpring2024-29/project/models"
)

// CurrentOption handles GET /rooms/me/current
func (h *RoomHandler) CurrentOption(w http.ResponseWriter, r *http.Request) {
	p, ok := participant(w, r)
	if !ok {
		return
	}

	option, match, err := h.reg.CurrentOption(p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CurrentOptionResponse{
		Option: entryView(option),
		Match:  matchView(match),
	})
}

// Vote handles POST /rooms/me/votes
func (h *RoomHandler) Vote(w http.ResponseWriter, r *http.Request) {
	p, ok := participant(w, r)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	match, err := h.reg.Vote(r.Context(), p, req.Liked)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{Match: matchView(match)})
}

// GetMatch handles GET /rooms/me/match
func (h *RoomHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	p, ok := participant(w, r)
	if !ok {
		return
	}

	match, err := h.reg.GetMatch(p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MatchResponse{Match: matchView(match)})
}

// ResetMatch handles DELETE /rooms/me/match
func (h *RoomHandler) ResetMatch(w http.ResponseWriter, r *http.Request) {
	p, ok := participant(w, r)
	if !ok {
		return
	}

	if err := h.reg.ResetMatch(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
