// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/univote/univote/auth"
	"github.com/univote/univote/db"
)

var (
	ErrInvalidArgument = errors.New("missing required identifier")
	ErrAlreadyVoted    = errors.New("user already voted in this election")
)

// Engine is the ballot casting engine. It records who voted and what was
// voted in one transaction, with no stored linkage between the two.
type Engine struct {
	db *sql.DB

	// injectable for tests
	now func() time.Time
}

func NewEngine(database *sql.DB) *Engine {
	return &Engine{db: database, now: time.Now}
}

// CastVote atomically writes a vote receipt for (electionID, userID) and an
// anonymous ballot for candidateID. Both rows commit together or not at all.
//
// The engine trusts that the caller verified an OTP first; its own safety
// property - one vote per user per election - holds regardless. The
// up-front receipt check is only a fast path: the UNIQUE constraint on
// vote_receipts is what actually decides a concurrent race, and the loser's
// constraint violation surfaces as ErrAlreadyVoted.
//
// The election's time window is deliberately not checked here.
func (e *Engine) CastVote(electionID, userID, candidateID string) error {
	if isBlank(electionID) || isBlank(userID) || isBlank(candidateID) {
		return ErrInvalidArgument
	}

	voted, err := e.HasVoted(electionID, userID)
	if err != nil {
		return err
	}
	if voted {
		return ErrAlreadyVoted
	}

	return e.castOnce(electionID, userID, candidateID)
}

// castOnce performs the transactional double write without the receipt
// pre-check. Concurrent callers that both reach this point are decided by
// the storage-level uniqueness constraint.
func (e *Engine) castOnce(electionID, userID, candidateID string) error {
	receiptID, err := auth.GenerateID(16)
	if err != nil {
		return err
	}
	ballotID, err := auth.GenerateID(16)
	if err != nil {
		return err
	}

	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO vote_receipts (id, election_id, user_id, otp_verified, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`, receiptID, electionID, userID, true, e.now())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrAlreadyVoted
		}
		return fmt.Errorf("failed to insert vote receipt: %w", err)
	}

	// The ballot carries a fresh opaque identifier and no user id.
	_, err = tx.Exec(`
		INSERT INTO ballots (id, election_id, candidate_id, ballot_uuid)
		VALUES ($1, $2, $3, $4)
	`, ballotID, electionID, candidateID, uuid.NewString())
	if err != nil {
		return fmt.Errorf("failed to insert ballot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrAlreadyVoted
		}
		return fmt.Errorf("failed to commit vote: %w", err)
	}

	slog.Info("vote cast", "election_id", electionID, "receipt_id", receiptID)
	return nil
}

// HasVoted reports whether a vote receipt exists for (electionID, userID).
// Callers use it to short-circuit the OTP flow before spending a
// rate-limited issuance on a user who cannot vote again.
func (e *Engine) HasVoted(electionID, userID string) (bool, error) {
	var exists bool
	err := e.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM vote_receipts
			WHERE election_id = $1 AND user_id = $2
		)
	`, electionID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check vote receipt: %w", err)
	}
	return exists, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
