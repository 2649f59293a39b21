// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/DevDaysSpring2024-29/project/auth"
	"github.com/DevDaysSpring2024-29/project/engine"
	"github.com/DevDaysSpring2024-29/project/middleware"
	"github.com/DevDaysSpring2024-29/project/providers"
)

// statusFor maps engine and provider errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrRoomNotFound),
		errors.Is(err, engine.ErrNotInRoom),
		errors.Is(err, engine.ErrParticipantNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrAlreadyVoting),
		errors.Is(err, engine.ErrNotVoting):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNoOptions),
		errors.Is(err, engine.ErrInvalidEntry):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrUnknownProvider),
		errors.Is(err, auth.ErrMissingParticipant),
		errors.Is(err, auth.ErrInvalidParticipant):
		return http.StatusBadRequest
	case errors.Is(err, providers.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, providers.ErrProviderError):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as a JSON error. Unmapped errors are logged and
// reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"request_id", middleware.RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		middleware.ErrorResponse(w, status, "Internal error")
		return
	}
	if status >= http.StatusBadGateway {
		slog.Warn("provider failed",
			"request_id", middleware.RequestID(r.Context()),
			"error", err,
		)
	}
	middleware.ErrorResponse(w, status, err.Error())
}
