// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/univote/univote/audit"
	"github.com/univote/univote/auth"
	"github.com/univote/univote/identity"
	"github.com/univote/univote/middleware"
	"github.com/univote/univote/models"
)

type ElectionHandler struct {
	db       *sql.DB
	identity *identity.Store
	audit    *audit.Recorder
}

func NewElectionHandler(database *sql.DB, store *identity.Store, recorder *audit.Recorder) *ElectionHandler {
	return &ElectionHandler{db: database, identity: store, audit: recorder}
}

// CreateElection handles POST /elections (admin)
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAdmin(h.identity, w, r)
	if !ok {
		return
	}

	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.StartTime != nil && req.EndTime != nil && !req.EndTime.After(*req.StartTime) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	electionID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate election ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO elections (id, title, description, start_time, end_time, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, electionID, req.Title, req.Description, req.StartTime, req.EndTime, actor.ID, time.Now())
	if err != nil {
		slog.Error("failed to insert election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	h.audit.Record(actor.ID, "election.create", electionID)
	slog.Info("election created", "election_id", electionID, "actor_id", actor.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID: electionID,
	})
}

// ListElections handles GET /elections
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, title, description, start_time, end_time, created_by, created_at
		FROM elections ORDER BY created_at, id
	`)
	if err != nil {
		slog.Error("failed to query elections", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			slog.Error("failed to scan election", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		elections = append(elections, *e)
	}

	middleware.JSONResponse(w, http.StatusOK, elections)
}

// GetElection handles GET /elections/:id
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	rows, err := h.db.Query(`
		SELECT id, title, description, start_time, end_time, created_by, created_at
		FROM elections WHERE id = $1
	`, electionID)
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	if !rows.Next() {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}

	election, err := scanElection(rows)
	if err != nil {
		slog.Error("failed to scan election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, election)
}

// UpdateElection handles PUT /elections/:id (admin)
func (h *ElectionHandler) UpdateElection(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAdmin(h.identity, w, r)
	if !ok {
		return
	}

	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	var req models.UpdateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	res, err := h.db.Exec(`
		UPDATE elections SET title = $1, description = $2, start_time = $3, end_time = $4
		WHERE id = $5
	`, req.Title, req.Description, req.StartTime, req.EndTime, electionID)
	if err != nil {
		slog.Error("failed to update election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update election")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}

	h.audit.Record(actor.ID, "election.update", electionID)
	slog.Info("election updated", "election_id", electionID, "actor_id", actor.ID)

	w.WriteHeader(http.StatusNoContent)
}

// DeleteElection handles DELETE /elections/:id (admin)
func (h *ElectionHandler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAdmin(h.identity, w, r)
	if !ok {
		return
	}

	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	res, err := h.db.Exec(`DELETE FROM elections WHERE id = $1`, electionID)
	if err != nil {
		slog.Error("failed to delete election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete election")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}

	h.audit.Record(actor.ID, "election.delete", electionID)
	slog.Info("election deleted", "election_id", electionID, "actor_id", actor.ID)

	w.WriteHeader(http.StatusNoContent)
}

// AddCandidate handles POST /elections/:id/candidates (admin)
func (h *ElectionHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAdmin(h.identity, w, r)
	if !ok {
		return
	}

	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM elections WHERE id = $1)`, electionID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}

	candidateID, err := auth.GenerateID(12)
	if err != nil {
		slog.Error("failed to generate candidate ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add candidate")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO candidates (id, election_id, name, manifesto)
		VALUES ($1, $2, $3, $4)
	`, candidateID, electionID, req.Name, req.Manifesto)
	if err != nil {
		slog.Error("failed to insert candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add candidate")
		return
	}

	h.audit.Record(actor.ID, "candidate.create", candidateID)
	slog.Info("candidate added", "election_id", electionID, "candidate_id", candidateID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddCandidateResponse{
		CandidateID: candidateID,
	})
}

// ListCandidates handles GET /elections/:id/candidates
func (h *ElectionHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM elections WHERE id = $1)`, electionID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}

	rows, err := h.db.Query(`
		SELECT id, election_id, name, manifesto FROM candidates WHERE election_id = $1 ORDER BY id
	`, electionID)
	if err != nil {
		slog.Error("failed to query candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		var manifesto sql.NullString
		if err := rows.Scan(&c.ID, &c.ElectionID, &c.Name, &manifesto); err != nil {
			slog.Error("failed to scan candidate", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		c.Manifesto = manifesto.String
		candidates = append(candidates, c)
	}

	middleware.JSONResponse(w, http.StatusOK, candidates)
}

func scanElection(rows *sql.Rows) (*models.Election, error) {
	var e models.Election
	var description, createdBy sql.NullString
	var start, end sql.NullTime
	if err := rows.Scan(&e.ID, &e.Title, &description, &start, &end, &createdBy, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Description = description.String
	e.CreatedBy = createdBy.String
	if start.Valid {
		e.StartTime = &start.Time
	}
	if end.Valid {
		e.EndTime = &end.Time
	}
	return &e, nil
}
