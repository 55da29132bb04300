// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/univote/univote/audit"
	"github.com/univote/univote/middleware"
	"github.com/univote/univote/models"
	"github.com/univote/univote/otp"
	"github.com/univote/univote/voting"
)

type VoteHandler struct {
	verifier *otp.Verifier
	engine   *voting.Engine
	audit    *audit.Recorder
}

func NewVoteHandler(verifier *otp.Verifier, engine *voting.Engine, recorder *audit.Recorder) *VoteHandler {
	return &VoteHandler{verifier: verifier, engine: engine, audit: recorder}
}

// RequestOtp handles POST /elections/:id/otp
//
// Voters who already hold a receipt for the election are turned away here,
// before a code is generated, so no delivery quota is burned on a vote that
// can never be cast.
func (h *VoteHandler) RequestOtp(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	var req models.RequestOtpRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	voted, err := h.engine.HasVoted(electionID, req.UserID)
	if err != nil {
		slog.Error("failed to check vote status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if voted {
		middleware.ErrorResponse(w, http.StatusConflict, "You already voted in this election")
		return
	}

	challenge, err := h.verifier.Issue(req.UserID, middleware.GetClientIP(r))
	if err != nil {
		writeCoreError(w, err)
		return
	}

	slog.Info("verification code issued",
		"user_id", req.UserID,
		"election_id", electionID,
		"expires_at", challenge.ExpiresAt)

	middleware.JSONResponse(w, http.StatusCreated, models.RequestOtpResponse{
		Message:   "Verification code sent",
		ExpiresAt: challenge.ExpiresAt,
	})
}

// CastVote handles POST /elections/:id/votes
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" || req.CandidateID == "" || req.Otp == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id, candidate_id and otp are required")
		return
	}

	if err := h.verifier.Verify(req.UserID, req.Otp); err != nil {
		writeCoreError(w, err)
		return
	}

	if err := h.engine.CastVote(electionID, req.UserID, req.CandidateID); err != nil {
		writeCoreError(w, err)
		return
	}

	// The audit trail names the election, never the ballot, so the log
	// cannot be joined against ballots to undo anonymity.
	h.audit.Record(req.UserID, "vote.cast", electionID)
	slog.Info("vote cast", "election_id", electionID, "user_id", req.UserID)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		Message: "Vote recorded",
		CastAt:  time.Now(),
	})
}

// VoteStatus handles GET /elections/:id/vote-status?user_id=...
func (h *VoteHandler) VoteStatus(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	userID := r.URL.Query().Get("user_id")
	if electionID == "" || userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id and user_id are required")
		return
	}

	voted, err := h.engine.HasVoted(electionID, userID)
	if err != nil {
		slog.Error("failed to check vote status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteStatusResponse{
		HasVoted: voted,
	})
}
