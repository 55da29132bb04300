// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterUserRequest: university_id, full_name, role, password, phone_number
  - CreateElectionRequest / UpdateElectionRequest: title, description, window
  - AddCandidateRequest: name, manifesto
  - RequestOtpRequest: user_id
  - CastVoteRequest: user_id, candidate_id, otp
  - CompleteLinkRequest: token, chat_id

# Response Types

Types for JSON responses:

  - RegisterUserResponse: user_id
  - CreateElectionResponse: election_id
  - AddCandidateResponse: candidate_id
  - RequestOtpResponse: message, expires_at
  - CastVoteResponse: message, cast_at
  - VoteStatusResponse: has_voted
  - LinkTokenResponse: token
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - User: identity, role, optional Telegram chat id
  - Election: title and advisory voting window
  - Candidate: name and manifesto, many per election
  - OtpChallenge: hashed one-time code with TTL and attempt counter
  - VoteReceipt: proof that a user voted ("who voted")
  - Ballot: anonymous vote record ("what was voted")
  - TelegramLink: one-shot chat linking token
  - AuditEntry: append-only audit record
  - CandidateResult / ElectionResult: tally output

VoteReceipt and Ballot are deliberately disjoint: Ballot has no user id and
no key back to VoteReceipt beyond the election id.

# Roles

Role is a closed enumeration:

	role, err := models.ParseRole("VOTER")

Only RoleVoter ("VOTER") and RoleAdmin ("ADMIN") parse successfully.
*/
package models
