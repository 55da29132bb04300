// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Users (identity store)
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    university_id TEXT NOT NULL UNIQUE,
    full_name TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('VOTER', 'ADMIN')),
    phone_number TEXT,
    telegram_chat_id TEXT,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_university_id ON users(university_id);

-- Elections
CREATE TABLE IF NOT EXISTS elections (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    start_time TIMESTAMP,
    end_time TIMESTAMP,
    created_by TEXT,
    created_at TIMESTAMP NOT NULL
);

-- Candidates
CREATE TABLE IF NOT EXISTS candidates (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    manifesto TEXT
);

CREATE INDEX IF NOT EXISTS idx_candidates_election_id ON candidates(election_id);

-- OTP challenges. Only the bcrypt hash of the code is stored, never the
-- plaintext. Stale challenges are superseded by recency, not deleted.
CREATE TABLE IF NOT EXISTS otp_challenges (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    otp_hash TEXT NOT NULL,
    ip_address TEXT,
    created_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP NOT NULL,
    verified_at TIMESTAMP,
    attempts INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_otp_challenges_user_created ON otp_challenges(user_id, created_at);

-- Vote receipts: who voted. The UNIQUE constraint is the double-voting
-- safety net; the application pre-check is only a fast path.
CREATE TABLE IF NOT EXISTS vote_receipts (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    otp_verified BOOLEAN NOT NULL,
    cast_at TIMESTAMP NOT NULL,
    UNIQUE (election_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_receipts_election_id ON vote_receipts(election_id);

-- Ballots: what was voted. No user id, no key to vote_receipts beyond the
-- election id.
CREATE TABLE IF NOT EXISTS ballots (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL,
    candidate_id TEXT NOT NULL,
    ballot_uuid TEXT NOT NULL UNIQUE
);

CREATE INDEX IF NOT EXISTS idx_ballots_election_id ON ballots(election_id);
CREATE INDEX IF NOT EXISTS idx_ballots_candidate_id ON ballots(candidate_id);

-- Telegram link tokens (one-shot)
CREATE TABLE IF NOT EXISTS telegram_links (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    token TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL
);

-- Audit log (append only)
CREATE TABLE IF NOT EXISTS audit_logs (
    id TEXT PRIMARY KEY,
    actor_id TEXT,
    action TEXT NOT NULL,
    entity TEXT,
    created_at TIMESTAMP NOT NULL,
    hash TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_actor_id ON audit_logs(actor_id);
`
