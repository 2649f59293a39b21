// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/DevDaysSpring2024-29/project/auth"
	"github.com/DevDaysSpring2024-29/project/engine"
	"github.com/DevDaysSpring2024-29/project/middleware"
	"github.com/DevDaysSpring2024-29/project/models"
	"github.com/DevDaysSpring2024-29/project/providers"
)

// ProviderLister names the categories a room can be created with.
type ProviderLister interface {
	Names() []string
}

type RoomHandler struct {
	reg     *engine.Registry
	catalog ProviderLister
}

func NewRoomHandler(reg *engine.Registry, catalog ProviderLister) *RoomHandler {
	return &RoomHandler{reg: reg, catalog: catalog}
}

// participant resolves the caller or writes a 400.
func participant(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, err := auth.ParticipantID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return p, true
}

// ListProviders handles GET /providers
func (h *RoomHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.ProvidersResponse{
		Providers: h.catalog.Names(),
	})
}

// CreateRoom handles POST /rooms
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	p, ok := participant(w, r)
	if !ok {
		return
	}

	var req models.CreateRoomRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ProviderName == "" {
		req.ProviderName = providers.Custom
	}

	roomID, err := h.reg.CreateRoom(r.Context(), p, models.RoomParams{
		ProviderName: req.ProviderName,
		Filters:      req.Filters,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateRoomResponse{RoomID: roomID})
}

// JoinRoom handles POST /rooms/{id}/join
func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	p, ok := participant(w, r)
	if !ok {
		return
	}

	roomID := auth.NormalizeRoomCode(r.PathValue("id"))
	if roomID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "room_id is required")
		return
	}

	if err := h.reg.JoinRoom(r.Context(), p, roomID); err != nil {
		writeError(w, r, err)
		return
	}

	room, err := h.reg.Room(roomID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, roomView(room.Snapshot()))
}

// LeaveRoom handles POST /rooms/leave
func (h *RoomHandler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	p, ok := participant(w, r)
	if !ok {
		return
	}

	if err := h.reg.LeaveRoom(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRoom handles GET /rooms/me
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	p, ok := participant(w, r)
	if !ok {
		return
	}

	room, err := h.reg.RoomOf(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, roomView(room.Snapshot()))
}

// AddEntry handles POST /rooms/me/entries
func (h *RoomHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	p, ok := participant(w, r)
	if !ok {
		return
	}

	var req models.AddEntryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.reg.AddEntry(r.Context(), p, req.Entry); err != nil {
		writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, entryView(req.Entry))
}

// StartVote handles POST /rooms/me/start
func (h *RoomHandler) StartVote(w http.ResponseWriter, r *http.Request) {
	p, ok := participant(w, r)
	if !ok {
		return
	}

	if err := h.reg.StartVote(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}

	room, err := h.reg.RoomOf(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, roomView(room.Snapshot()))
}
