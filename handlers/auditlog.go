// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/univote/univote/audit"
	"github.com/univote/univote/identity"
	"github.com/univote/univote/middleware"
	"github.com/univote/univote/models"
)

type AuditHandler struct {
	identity *identity.Store
	audit    *audit.Recorder
}

func NewAuditHandler(store *identity.Store, recorder *audit.Recorder) *AuditHandler {
	return &AuditHandler{identity: store, audit: recorder}
}

// Recent handles GET /audit?limit=N (admin)
func (h *AuditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.identity, w, r); !ok {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	entries, err := h.audit.Recent(limit)
	if err != nil {
		slog.Error("failed to query audit log", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if entries == nil {
		entries = []models.AuditEntry{}
	}
	middleware.JSONResponse(w, http.StatusOK, entries)
}
