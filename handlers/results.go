// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/univote/univote/middleware"
	"github.com/univote/univote/models"
	"github.com/univote/univote/tally"
)

type ResultsHandler struct {
	tally *tally.Engine
}

func NewResultsHandler(engine *tally.Engine) *ResultsHandler {
	return &ResultsHandler{tally: engine}
}

// GetResults handles GET /elections/:id/results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	result, err := h.tally.ComputeResults(electionID)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, result)
}

// GetAllResults handles GET /results
func (h *ResultsHandler) GetAllResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.tally.ComputeAllResults()
	if err != nil {
		slog.Error("failed to compute results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if results == nil {
		results = []models.ElectionResult{}
	}
	middleware.JSONResponse(w, http.StatusOK, results)
}
