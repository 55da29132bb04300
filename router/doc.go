// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the UniVote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Users and Telegram linking:

	POST   /users                     - Register user
	GET    /users                     - List users (admin)
	GET    /users/{id}                - Get user
	DELETE /users/{id}                - Delete user (admin)
	POST   /users/{id}/telegram-link  - Issue one-shot link token
	POST   /telegram/link             - Complete link (bot side)

Election management (admin, requires X-Actor-Id):

	POST   /elections                  - Create election
	PUT    /elections/{id}             - Update election
	DELETE /elections/{id}             - Delete election
	POST   /elections/{id}/candidates  - Add candidate

Public election reads:

	GET /elections
	GET /elections/{id}
	GET /elections/{id}/candidates

Voting:

	POST /elections/{id}/otp         - Request one-time code
	POST /elections/{id}/votes       - Cast vote (code required)
	GET  /elections/{id}/vote-status - Has this user voted?

Results:

	GET /elections/{id}/results
	GET /results

Audit trail (admin):

	GET /audit

# Service Wiring

The router builds the core services and injects them into the handlers:

	store := identity.NewStore(db)
	verifier := otp.NewVerifier(db, store, channel)
	engine := voting.NewEngine(db)

The delivery channel is Telegram when a bot token is configured and a
log-only stub otherwise, so development never needs live credentials.
*/
package router
