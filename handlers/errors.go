// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/univote/univote/identity"
	"github.com/univote/univote/middleware"
	"github.com/univote/univote/otp"
	"github.com/univote/univote/tally"
	"github.com/univote/univote/voting"
)

// writeCoreError translates a typed failure from the core into an HTTP
// response. Anything unrecognized is logged and reported as a generic 500
// so raw storage errors never reach the user.
func writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voting.ErrInvalidArgument):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing required identifier")
	case errors.Is(err, otp.ErrUserNotFound), errors.Is(err, identity.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
	case errors.Is(err, tally.ErrElectionNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
	case errors.Is(err, otp.ErrNotLinked):
		middleware.ErrorResponse(w, http.StatusConflict, "No Telegram account linked")
	case errors.Is(err, otp.ErrRateLimited):
		middleware.ErrorResponse(w, http.StatusTooManyRequests, "Too many code requests. Please wait a few minutes and try again.")
	case errors.Is(err, otp.ErrDeliveryFailed):
		middleware.ErrorResponse(w, http.StatusBadGateway, "Could not deliver the code")
	case errors.Is(err, otp.ErrNoChallenge):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Request a code first")
	case errors.Is(err, otp.ErrConsumed):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Code already used")
	case errors.Is(err, otp.ErrExpired):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Code expired")
	case errors.Is(err, otp.ErrCodeMismatch):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Wrong code")
	case errors.Is(err, voting.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusConflict, "You already voted in this election")
	default:
		slog.Error("unexpected core error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}
