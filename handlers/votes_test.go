// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"github.com/univote/univote/audit"
	"github.com/univote/univote/identity"
	"github.com/univote/univote/models"
	"github.com/univote/univote/otp"
	"github.com/univote/univote/testutil"
	"github.com/univote/univote/voting"
)

// captureChannel records deliveries so tests can read the plaintext code
// out of the message.
type captureChannel struct {
	mu       sync.Mutex
	messages []string
}

func (c *captureChannel) Deliver(handle, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
	return nil
}

func (c *captureChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *captureChannel) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return ""
	}
	return c.messages[len(c.messages)-1]
}

var codePattern = regexp.MustCompile(`\d{6}`)

func extractCode(t *testing.T, message string) string {
	t.Helper()
	code := codePattern.FindString(message)
	if code == "" {
		t.Fatalf("No code found in delivered message: %q", message)
	}
	return code
}

func setupVoteHandler(t *testing.T, conn *sql.DB) (*VoteHandler, *captureChannel) {
	t.Helper()

	store := identity.NewStore(conn)
	channel := &captureChannel{}
	verifier := otp.NewVerifier(conn, store, channel)
	engine := voting.NewEngine(conn)
	recorder := audit.NewRecorder(conn)

	return NewVoteHandler(verifier, engine, recorder), channel
}

// requestCode drives the OTP endpoint and returns the delivered plaintext.
func requestCode(t *testing.T, handler *VoteHandler, channel *captureChannel, electionID, userID string) string {
	t.Helper()

	req := testutil.MakeRequest("POST", "/elections/"+electionID+"/otp",
		models.RequestOtpRequest{UserID: userID}, nil)
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	handler.RequestOtp(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	return extractCode(t, channel.last())
}

func TestRequestOtp(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler, channel := setupVoteHandler(t, conn)
	electionID := testutil.CreateTestElection(t, conn, "Student Council 2026")
	linkedUser := testutil.CreateTestUser(t, conn, models.RoleVoter, "chat-100")
	unlinkedUser := testutil.CreateTestUser(t, conn, models.RoleVoter, "")

	tests := []struct {
		name           string
		userID         string
		expectedStatus int
	}{
		{"linked voter gets a code", linkedUser, http.StatusCreated},
		{"missing user_id", "", http.StatusBadRequest},
		{"unknown user", "nonexistent", http.StatusNotFound},
		{"user without telegram link", unlinkedUser, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/elections/"+electionID+"/otp",
				models.RequestOtpRequest{UserID: tt.userID}, nil)
			req.SetPathValue("id", electionID)
			w := httptest.NewRecorder()
			handler.RequestOtp(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	if channel.count() != 1 {
		t.Errorf("Expected exactly 1 delivery, got %d", channel.count())
	}

	var resp models.RequestOtpResponse
	// Re-issue to inspect the response body
	req := testutil.MakeRequest("POST", "/elections/"+electionID+"/otp",
		models.RequestOtpRequest{UserID: linkedUser}, nil)
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	handler.RequestOtp(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)
	testutil.AssertJSON(t, w, &resp)
	if resp.ExpiresAt.IsZero() {
		t.Error("Expected a non-zero expires_at")
	}
}

func TestRequestOtpRateLimit(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler, _ := setupVoteHandler(t, conn)
	electionID := testutil.CreateTestElection(t, conn, "Rate Limited Election")
	userID := testutil.CreateTestUser(t, conn, models.RoleVoter, "chat-200")

	for i := 0; i < 3; i++ {
		req := testutil.MakeRequest("POST", "/elections/"+electionID+"/otp",
			models.RequestOtpRequest{UserID: userID}, nil)
		req.SetPathValue("id", electionID)
		w := httptest.NewRecorder()
		handler.RequestOtp(w, req)
		testutil.AssertStatus(t, w, http.StatusCreated)
	}

	req := testutil.MakeRequest("POST", "/elections/"+electionID+"/otp",
		models.RequestOtpRequest{UserID: userID}, nil)
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	handler.RequestOtp(w, req)
	testutil.AssertStatus(t, w, http.StatusTooManyRequests)
}

func TestRequestOtpAfterVoting(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler, channel := setupVoteHandler(t, conn)
	electionID := testutil.CreateTestElection(t, conn, "One Shot Election")
	candidateID := testutil.AddTestCandidate(t, conn, electionID, "Alice")
	userID := testutil.CreateTestUser(t, conn, models.RoleVoter, "chat-300")

	code := requestCode(t, handler, channel, electionID, userID)
	castVote(t, handler, electionID, userID, candidateID, code, http.StatusCreated)

	delivered := channel.count()

	// A voter who already holds a receipt is refused before any code is
	// generated or sent.
	req := testutil.MakeRequest("POST", "/elections/"+electionID+"/otp",
		models.RequestOtpRequest{UserID: userID}, nil)
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	handler.RequestOtp(w, req)
	testutil.AssertStatus(t, w, http.StatusConflict)

	if channel.count() != delivered {
		t.Error("A code was delivered despite the existing receipt")
	}
}

func castVote(t *testing.T, handler *VoteHandler, electionID, userID, candidateID, code string, expectedStatus int) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.MakeRequest("POST", "/elections/"+electionID+"/votes",
		models.CastVoteRequest{UserID: userID, CandidateID: candidateID, Otp: code}, nil)
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	handler.CastVote(w, req)
	testutil.AssertStatus(t, w, expectedStatus)
	return w
}

func TestCastVote(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler, channel := setupVoteHandler(t, conn)
	electionID := testutil.CreateTestElection(t, conn, "Senate Election")
	candidateID := testutil.AddTestCandidate(t, conn, electionID, "Bob")
	userID := testutil.CreateTestUser(t, conn, models.RoleVoter, "chat-400")

	code := requestCode(t, handler, channel, electionID, userID)

	w := castVote(t, handler, electionID, userID, candidateID, code, http.StatusCreated)

	var resp models.CastVoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.CastAt.IsZero() {
		t.Error("Expected a non-zero cast_at")
	}

	// Both halves of the vote must exist
	var receipts, ballots int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote_receipts WHERE election_id = $1 AND user_id = $2`,
		electionID, userID).Scan(&receipts); err != nil {
		t.Fatalf("Failed to count receipts: %v", err)
	}
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ballots WHERE election_id = $1 AND candidate_id = $2`,
		electionID, candidateID).Scan(&ballots); err != nil {
		t.Fatalf("Failed to count ballots: %v", err)
	}
	if receipts != 1 || ballots != 1 {
		t.Errorf("Expected 1 receipt and 1 ballot, got %d and %d", receipts, ballots)
	}
}

func TestCastVoteWrongCode(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler, channel := setupVoteHandler(t, conn)
	electionID := testutil.CreateTestElection(t, conn, "Wrong Code Election")
	candidateID := testutil.AddTestCandidate(t, conn, electionID, "Carol")
	userID := testutil.CreateTestUser(t, conn, models.RoleVoter, "chat-500")

	code := requestCode(t, handler, channel, electionID, userID)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	castVote(t, handler, electionID, userID, candidateID, wrong, http.StatusUnauthorized)

	// A wrong attempt does not burn the challenge
	castVote(t, handler, electionID, userID, candidateID, code, http.StatusCreated)
}

func TestCastVoteReplayedCode(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler, channel := setupVoteHandler(t, conn)
	electionID := testutil.CreateTestElection(t, conn, "Replay Election")
	otherElection := testutil.CreateTestElection(t, conn, "Second Election")
	candidateID := testutil.AddTestCandidate(t, conn, electionID, "Dave")
	otherCandidate := testutil.AddTestCandidate(t, conn, otherElection, "Erin")
	userID := testutil.CreateTestUser(t, conn, models.RoleVoter, "chat-600")

	code := requestCode(t, handler, channel, electionID, userID)
	castVote(t, handler, electionID, userID, candidateID, code, http.StatusCreated)

	// The consumed code cannot authorize a second cast, even in a
	// different election.
	castVote(t, handler, otherElection, userID, otherCandidate, code, http.StatusUnauthorized)
}

func TestCastVoteTwice(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler, channel := setupVoteHandler(t, conn)
	electionID := testutil.CreateTestElection(t, conn, "Double Vote Election")
	candidateID := testutil.AddTestCandidate(t, conn, electionID, "Frank")
	userID := testutil.CreateTestUser(t, conn, models.RoleVoter, "chat-700")

	code := requestCode(t, handler, channel, electionID, userID)
	castVote(t, handler, electionID, userID, candidateID, code, http.StatusCreated)

	// Fresh valid code, same election: the receipt guard still refuses
	code = requestCode(t, handler, channel, electionID, userID)
	castVote(t, handler, electionID, userID, candidateID, code, http.StatusConflict)
}

func TestCastVoteWithoutChallenge(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler, _ := setupVoteHandler(t, conn)
	electionID := testutil.CreateTestElection(t, conn, "No Challenge Election")
	candidateID := testutil.AddTestCandidate(t, conn, electionID, "Grace")
	userID := testutil.CreateTestUser(t, conn, models.RoleVoter, "chat-800")

	castVote(t, handler, electionID, userID, candidateID, "123456", http.StatusUnauthorized)
}

func TestCastVoteValidation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler, _ := setupVoteHandler(t, conn)
	electionID := testutil.CreateTestElection(t, conn, "Validation Election")

	tests := []struct {
		name string
		body models.CastVoteRequest
	}{
		{"missing user_id", models.CastVoteRequest{CandidateID: "c", Otp: "123456"}},
		{"missing candidate_id", models.CastVoteRequest{UserID: "u", Otp: "123456"}},
		{"missing otp", models.CastVoteRequest{UserID: "u", CandidateID: "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/elections/"+electionID+"/votes", tt.body, nil)
			req.SetPathValue("id", electionID)
			w := httptest.NewRecorder()
			handler.CastVote(w, req)
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestVoteStatus(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	handler, channel := setupVoteHandler(t, conn)
	electionID := testutil.CreateTestElection(t, conn, "Status Election")
	candidateID := testutil.AddTestCandidate(t, conn, electionID, "Heidi")
	userID := testutil.CreateTestUser(t, conn, models.RoleVoter, "chat-900")

	status := func() bool {
		req := testutil.MakeRequest("GET", "/elections/"+electionID+"/vote-status?user_id="+userID, nil, nil)
		req.SetPathValue("id", electionID)
		w := httptest.NewRecorder()
		handler.VoteStatus(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.VoteStatusResponse
		testutil.AssertJSON(t, w, &resp)
		return resp.HasVoted
	}

	if status() {
		t.Error("Expected has_voted=false before casting")
	}

	code := requestCode(t, handler, channel, electionID, userID)
	castVote(t, handler, electionID, userID, candidateID, code, http.StatusCreated)

	if !status() {
		t.Error("Expected has_voted=true after casting")
	}

	// Missing user_id query parameter
	req := testutil.MakeRequest("GET", "/elections/"+electionID+"/vote-status", nil, nil)
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	handler.VoteStatus(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}
