// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting implements the ballot casting engine.

# Casting

	engine := voting.NewEngine(db)
	err := engine.CastVote(electionID, userID, candidateID)

CastVote performs the double write that defines the system: a vote receipt
(who voted) and an anonymous ballot (what was voted) inserted in a single
transaction. The two rows share only the election id; the ballot has no
user-id-shaped field, so nothing stored can re-link a ballot to its voter.

# Double-Voting Guard

Two layers:

 1. A read-only receipt pre-check that produces a clean ErrAlreadyVoted
    without storage work. This is a latency optimization only.
 2. The UNIQUE (election_id, user_id) constraint on vote_receipts. When two
    concurrent casts both pass the pre-check, exactly one commit succeeds;
    the loser's constraint violation is translated to ErrAlreadyVoted, never
    leaked as a raw storage error.

# What CastVote Does Not Do

It does not verify OTPs (the caller does that first) and it does not check
the election's start/end window - the window is advisory, matching the
upstream system's behavior.

# HasVoted

	voted, err := engine.HasVoted(electionID, userID)

Read-only existence check, used by callers to short-circuit OTP issuance
for users who already voted.
*/
package voting
