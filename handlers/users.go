// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/univote/univote/audit"
	"github.com/univote/univote/identity"
	"github.com/univote/univote/middleware"
	"github.com/univote/univote/models"
)

type UserHandler struct {
	identity *identity.Store
	audit    *audit.Recorder
}

func NewUserHandler(store *identity.Store, recorder *audit.Recorder) *UserHandler {
	return &UserHandler{identity: store, audit: recorder}
}

// Register handles POST /users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.UniversityID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "university_id is required")
		return
	}
	if req.FullName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "full_name is required")
		return
	}
	if len(req.Password) < 8 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "role must be VOTER or ADMIN")
		return
	}

	user, err := h.identity.Register(req.UniversityID, req.FullName, role, req.Password, req.PhoneNumber)
	if errors.Is(err, identity.ErrDuplicateID) {
		middleware.ErrorResponse(w, http.StatusConflict, "University ID already registered")
		return
	}
	if err != nil {
		slog.Error("failed to register user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	h.audit.Record(user.ID, "user.register", user.ID)
	slog.Info("user registered", "user_id", user.ID, "role", role)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterUserResponse{
		UserID: user.ID,
	})
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	user, err := h.identity.FindUser(userID)
	if errors.Is(err, identity.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to load user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// CreateLinkToken handles POST /users/:id/telegram-link
func (h *UserHandler) CreateLinkToken(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	link, err := h.identity.CreateLinkToken(userID)
	if errors.Is(err, identity.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to create link token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create link token")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.LinkTokenResponse{
		Token: link.Token,
	})
}

// CompleteLink handles POST /telegram/link
// Called by the bot side of the /start handoff with the token and chat id.
func (h *UserHandler) CompleteLink(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteLinkRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Token == "" || req.ChatID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "token and chat_id are required")
		return
	}

	err := h.identity.CompleteLink(req.Token, req.ChatID)
	if errors.Is(err, identity.ErrLinkNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown or already used link token")
		return
	}
	if err != nil {
		slog.Error("failed to complete link", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to complete link")
		return
	}

	slog.Info("telegram link completed")
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers handles GET /users (admin)
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.identity, w, r); !ok {
		return
	}

	users, err := h.identity.ListUsers()
	if err != nil {
		slog.Error("failed to list users", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if users == nil {
		users = []models.User{}
	}
	middleware.JSONResponse(w, http.StatusOK, users)
}

// DeleteUser handles DELETE /users/:id (admin)
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAdmin(h.identity, w, r)
	if !ok {
		return
	}

	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	err := h.identity.DeleteUser(userID)
	if errors.Is(err, identity.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	h.audit.Record(actor.ID, "user.delete", userID)
	slog.Info("user deleted", "user_id", userID, "actor_id", actor.ID)

	w.WriteHeader(http.StatusNoContent)
}

// requireAdmin resolves the X-Actor-Id header to a user and checks the
// ADMIN role. Writes the error response itself when the check fails.
func requireAdmin(store *identity.Store, w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	actorID := r.Header.Get("X-Actor-Id")
	if actorID == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Actor-Id header required")
		return nil, false
	}

	actor, err := store.FindUser(actorID)
	if errors.Is(err, identity.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unknown actor")
		return nil, false
	}
	if err != nil {
		slog.Error("failed to load actor", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return nil, false
	}

	if actor.Role != models.RoleAdmin {
		middleware.ErrorResponse(w, http.StatusForbidden, "Admin role required")
		return nil, false
	}

	return actor, true
}
