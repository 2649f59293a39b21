// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/DevDaysSpring2024-29/project/engine"
	"github.com/DevDaysSpring2024-29/project/handlers"
	"github.com/DevDaysSpring2024-29/project/middleware"
)

func NewRouter(reg *engine.Registry, catalog handlers.ProviderLister) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	roomHandler := handlers.NewRoomHandler(reg, catalog)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /providers", middleware.WithLogging(roomHandler.ListProviders))

	// Room membership
	mux.HandleFunc("POST /rooms", middleware.WithLogging(roomHandler.CreateRoom))
	mux.HandleFunc("POST /rooms/{id}/join", middleware.WithLogging(roomHandler.JoinRoom))
	mux.HandleFunc("POST /rooms/leave", middleware.WithLogging(roomHandler.LeaveRoom))
	mux.HandleFunc("GET /rooms/me", middleware.WithLogging(roomHandler.GetRoom))

	// Setup (owner only, before voting)
	mux.HandleFunc("POST /rooms/me/entries", middleware.WithLogging(roomHandler.AddEntry))
	mux.HandleFunc("POST /rooms/me/start", middleware.WithLogging(roomHandler.StartVote))
	mux.HandleFunc("GET /rooms/me/wait", middleware.WithLogging(roomHandler.WaitVoting))

	// Voting
	mux.HandleFunc("GET /rooms/me/current", middleware.WithLogging(roomHandler.CurrentOption))
	mux.HandleFunc("POST /rooms/me/votes", middleware.WithLogging(roomHandler.Vote))
	mux.HandleFunc("GET /rooms/me/match", middleware.WithLogging(roomHandler.GetMatch))
	mux.HandleFunc("DELETE /rooms/me/match", middleware.WithLogging(roomHandler.ResetMatch))

	// Notifications
	mux.HandleFunc("GET /rooms/me/events", middleware.WithLogging(roomHandler.Events))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quo API v1"))
	})

	return mux
}
