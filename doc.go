// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the UniVote API server.

UniVote is a university election service with anonymous ballots. A vote
is recorded as two disconnected rows: a receipt saying WHO voted and an
anonymous ballot saying WHAT was voted, with no key linking the two.
Casting requires a fresh one-time code delivered over Telegram, which
proves possession of the voter's linked account.

# Starting the Server

The server reads environment variables (optionally from a .env file) or
CLI flags:

	DATABASE_URL="postgres://..." DATABASE_TYPE=postgres go run .

Or with flags:

	go run . -p 3464 -t sqlite -d "file:univote.db"

# Configuration

Settings:

  - DATABASE_URL (-d): Connection string
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - PORT (-p): Server port (default: 3464)
  - TELEGRAM_BOT_TOKEN (--telegram-token): Bot token for code delivery;
    when empty, codes are logged instead of sent

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (users, elections, votes, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and domain types
  - identity: User accounts, credentials, Telegram link tokens
  - otp: One-time code issuance and verification
  - voting: Receipt + anonymous ballot writes, double-vote guard
  - tally: Result computation with multi-winner ties
  - notify: Delivery channels (Telegram, log-only)
  - audit: Append-only action log
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
