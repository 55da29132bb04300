// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation and storage-error classification.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL is portable across the two supported backends (Postgres via lib/pq,
sqlite via modernc.org/sqlite).

# Tables

The schema includes:

  - users: identity store (university id, role, Telegram chat id)
  - elections: election metadata and advisory voting window
  - candidates: candidates per election
  - otp_challenges: hashed one-time codes with TTL and attempt counters
  - vote_receipts: one record per (election, user) that voted
  - ballots: anonymous vote records
  - telegram_links: one-shot chat linking tokens
  - audit_logs: append-only audit trail

# The Receipt/Ballot Split

vote_receipts and ballots are written in the same transaction but share no
foreign key. vote_receipts carries the user id and no candidate; ballots
carries the candidate and no user id. The UNIQUE (election_id, user_id)
constraint on vote_receipts is the storage-level double-voting guard.

# Unique Violations

IsUniqueViolation classifies constraint errors from either backend:

	if db.IsUniqueViolation(err) {
		// concurrent duplicate write lost the race
	}

Postgres errors are matched by SQLSTATE 23505 via *pq.Error; sqlite errors
by the driver's "UNIQUE constraint failed" text.
*/
package db
