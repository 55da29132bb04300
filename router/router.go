// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/univote/univote/audit"
	"github.com/univote/univote/cliparse"
	"github.com/univote/univote/handlers"
	"github.com/univote/univote/identity"
	"github.com/univote/univote/middleware"
	"github.com/univote/univote/notify"
	"github.com/univote/univote/otp"
	"github.com/univote/univote/tally"
	"github.com/univote/univote/voting"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Wire core services
	store := identity.NewStore(db)
	recorder := audit.NewRecorder(db)

	var channel notify.Channel = notify.LogOnly{}
	if cfg.TelegramBotToken != "" {
		channel = notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramAPIBase)
	}

	verifier := otp.NewVerifier(db, store, channel)
	engine := voting.NewEngine(db)
	counter := tally.NewEngine(db)

	userHandler := handlers.NewUserHandler(store, recorder)
	electionHandler := handlers.NewElectionHandler(db, store, recorder)
	voteHandler := handlers.NewVoteHandler(verifier, engine, recorder)
	resultsHandler := handlers.NewResultsHandler(counter)
	auditHandler := handlers.NewAuditHandler(store, recorder)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Users and Telegram linking
	mux.HandleFunc("POST /users", middleware.WithLogging(userHandler.Register))
	mux.HandleFunc("GET /users", middleware.WithLogging(userHandler.ListUsers))
	mux.HandleFunc("GET /users/{id}", middleware.WithLogging(userHandler.GetUser))
	mux.HandleFunc("DELETE /users/{id}", middleware.WithLogging(userHandler.DeleteUser))
	mux.HandleFunc("POST /users/{id}/telegram-link", middleware.WithLogging(userHandler.CreateLinkToken))
	mux.HandleFunc("POST /telegram/link", middleware.WithLogging(userHandler.CompleteLink))

	// Election management (admin operations)
	mux.HandleFunc("POST /elections", middleware.WithLogging(electionHandler.CreateElection))
	mux.HandleFunc("GET /elections", middleware.WithLogging(electionHandler.ListElections))
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(electionHandler.GetElection))
	mux.HandleFunc("PUT /elections/{id}", middleware.WithLogging(electionHandler.UpdateElection))
	mux.HandleFunc("DELETE /elections/{id}", middleware.WithLogging(electionHandler.DeleteElection))
	mux.HandleFunc("POST /elections/{id}/candidates", middleware.WithLogging(electionHandler.AddCandidate))
	mux.HandleFunc("GET /elections/{id}/candidates", middleware.WithLogging(electionHandler.ListCandidates))

	// Voting
	mux.HandleFunc("POST /elections/{id}/otp", middleware.WithLogging(voteHandler.RequestOtp))
	mux.HandleFunc("POST /elections/{id}/votes", middleware.WithLogging(voteHandler.CastVote))
	mux.HandleFunc("GET /elections/{id}/vote-status", middleware.WithLogging(voteHandler.VoteStatus))

	// Results
	mux.HandleFunc("GET /elections/{id}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /results", middleware.WithLogging(resultsHandler.GetAllResults))

	// Audit trail (admin)
	mux.HandleFunc("GET /audit", middleware.WithLogging(auditHandler.Recent))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("univote API v1"))
	})

	return mux
}
