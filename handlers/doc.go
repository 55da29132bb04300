// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the UniVote API.

# Handler Types

Each handler is a struct holding the core services it fronts:

  - UserHandler: Registration, lookup, Telegram linking, admin user management
  - ElectionHandler: Election and candidate lifecycle (admin CRUD)
  - VoteHandler: OTP issuance and ballot casting
  - ResultsHandler: Tally retrieval
  - AuditHandler: Audit trail retrieval (admin)

Handlers are created via constructor functions:

	voteHandler := handlers.NewVoteHandler(verifier, engine, recorder)

# Voting Flow

A voter goes through three steps per election:

	POST /elections/{id}/otp   → RequestOtp (code delivered via Telegram)
	POST /elections/{id}/votes → CastVote (code + candidate choice)
	GET  /elections/{id}/vote-status?user_id=... → VoteStatus

RequestOtp refuses with 409 when the voter already holds a receipt, so
no code is ever issued for a vote that cannot be cast. CastVote verifies
the code first and only then hands off to the voting engine; the engine
writes the receipt and the anonymous ballot in one transaction.

# Error Translation

Core packages return sentinel errors; writeCoreError maps them onto the
HTTP surface. The important ones:

	otp.ErrRateLimited    → 429
	otp.ErrExpired        → 401
	otp.ErrConsumed       → 401
	otp.ErrCodeMismatch   → 401
	voting.ErrAlreadyVoted → 409
	otp.ErrDeliveryFailed → 502

Unrecognized errors are logged and reported as a generic 500.

# Admin Operations

Election and user management require the X-Actor-Id header naming a user
with the ADMIN role. requireAdmin resolves the header and writes 401/403
itself when the check fails. Admin mutations are written to the audit
log alongside the acting admin's id.
*/
package handlers
