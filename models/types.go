// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"time"
)

// Role is the closed set of user roles. Free-form role strings are rejected
// at the boundary by ParseRole.
type Role string

const (
	RoleVoter Role = "VOTER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole validates a role string from an external source.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleVoter, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Request types

type RegisterUserRequest struct {
	UniversityID string `json:"university_id"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	Password     string `json:"password"`
	PhoneNumber  string `json:"phone_number"`
}

type CreateElectionRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

type UpdateElectionRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

type AddCandidateRequest struct {
	Name      string `json:"name"`
	Manifesto string `json:"manifesto"`
}

type RequestOtpRequest struct {
	UserID string `json:"user_id"`
}

type CastVoteRequest struct {
	UserID      string `json:"user_id"`
	CandidateID string `json:"candidate_id"`
	Otp         string `json:"otp"`
}

type CompleteLinkRequest struct {
	Token  string `json:"token"`
	ChatID string `json:"chat_id"`
}

// Response types

type RegisterUserResponse struct {
	UserID string `json:"user_id"`
}

type CreateElectionResponse struct {
	ElectionID string `json:"election_id"`
}

type AddCandidateResponse struct {
	CandidateID string `json:"candidate_id"`
}

type RequestOtpResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CastVoteResponse struct {
	Message string    `json:"message"`
	CastAt  time.Time `json:"cast_at"`
}

type VoteStatusResponse struct {
	HasVoted bool `json:"has_voted"`
}

type LinkTokenResponse struct {
	Token string `json:"token"`
}

// Domain types

type User struct {
	ID             string    `json:"id"`
	UniversityID   string    `json:"university_id"`
	FullName       string    `json:"full_name"`
	Role           Role      `json:"role"`
	PhoneNumber    string    `json:"phone_number,omitempty"`
	TelegramChatID *string   `json:"-"` // Never expose in JSON
	PasswordHash   string    `json:"-"` // Never expose in JSON
	CreatedAt      time.Time `json:"created_at"`
}

type Election struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	CreatedBy   string     `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Candidate struct {
	ID         string `json:"id"`
	ElectionID string `json:"election_id"`
	Name       string `json:"name"`
	Manifesto  string `json:"manifesto"`
}

// OtpChallenge holds a hashed one-time code. The plaintext code is never
// persisted; only its bcrypt hash.
type OtpChallenge struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	OtpHash    string     `json:"-"` // Never expose in JSON
	IPAddress  *string    `json:"-"` // Never expose in JSON
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	Attempts   int        `json:"attempts"`
}

// VoteReceipt records that a user voted in an election, without revealing
// the choice. At most one receipt exists per (election_id, user_id).
type VoteReceipt struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	UserID      string    `json:"user_id"`
	OtpVerified bool      `json:"otp_verified"`
	CastAt      time.Time `json:"cast_at"`
}

// Ballot is the anonymous half of a cast vote. It carries no user-id-shaped
// field and shares no key with VoteReceipt beyond the election id.
type Ballot struct {
	ID          string `json:"id"`
	ElectionID  string `json:"election_id"`
	CandidateID string `json:"candidate_id"`
	BallotUUID  string `json:"ballot_uuid"`
}

type TelegramLink struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditEntry struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id,omitempty"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Hash      string    `json:"hash"`
}

// Tally result types

type CandidateResult struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Manifesto   string `json:"manifesto,omitempty"`
	VoteCount   int64  `json:"vote_count"`
	Winner      bool   `json:"winner"`
}

type ElectionResult struct {
	ElectionID string            `json:"election_id"`
	Title      string            `json:"title"`
	Candidates []CandidateResult `json:"candidates"`
	TotalVotes int64             `json:"total_votes"`
	HasResults bool              `json:"has_results"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
