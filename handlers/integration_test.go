// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/univote/univote/audit"
	"github.com/univote/univote/identity"
	"github.com/univote/univote/models"
	"github.com/univote/univote/otp"
	"github.com/univote/univote/tally"
	"github.com/univote/univote/testutil"
	"github.com/univote/univote/voting"
)

// TestFullElectionWorkflow tests the complete end-to-end workflow:
// 1. Register an admin and two voters
// 2. Link the voters' Telegram accounts
// 3. Create an election with candidates
// 4. Voters request codes and cast votes
// 5. Double-vote and replay attempts are refused
// 6. Verify results and the audit trail
func TestFullElectionWorkflow(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	store := identity.NewStore(conn)
	recorder := audit.NewRecorder(conn)
	channel := &captureChannel{}
	verifier := otp.NewVerifier(conn, store, channel)
	engine := voting.NewEngine(conn)

	userHandler := NewUserHandler(store, recorder)
	electionHandler := NewElectionHandler(conn, store, recorder)
	voteHandler := NewVoteHandler(verifier, engine, recorder)
	resultsHandler := NewResultsHandler(tally.NewEngine(conn))

	// Step 1: Register users
	register := func(universityID, name, role string) string {
		req := testutil.MakeRequest("POST", "/users", models.RegisterUserRequest{
			UniversityID: universityID,
			FullName:     name,
			Role:         role,
			Password:     "long-enough-password",
		}, nil)
		w := httptest.NewRecorder()
		userHandler.Register(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 1 - Register %s failed: %d - %s", name, w.Code, w.Body.String())
		}
		var resp models.RegisterUserResponse
		testutil.AssertJSON(t, w, &resp)
		return resp.UserID
	}

	adminID := register("admin01", "Election Admin", "ADMIN")
	voter1 := register("voter01", "First Voter", "VOTER")
	voter2 := register("voter02", "Second Voter", "VOTER")
	t.Logf("Step 1 - Registered admin %s and voters %s, %s", adminID, voter1, voter2)

	// Step 2: Link Telegram accounts via the one-shot token handoff
	link := func(userID, chatID string) {
		req := testutil.MakeRequest("POST", "/users/"+userID+"/telegram-link", nil, nil)
		req.SetPathValue("id", userID)
		w := httptest.NewRecorder()
		userHandler.CreateLinkToken(w, req)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var tokenResp models.LinkTokenResponse
		testutil.AssertJSON(t, w, &tokenResp)

		req = testutil.MakeRequest("POST", "/telegram/link",
			models.CompleteLinkRequest{Token: tokenResp.Token, ChatID: chatID}, nil)
		w = httptest.NewRecorder()
		userHandler.CompleteLink(w, req)
		testutil.AssertStatus(t, w, http.StatusNoContent)
	}
	link(voter1, "chat-v1")
	link(voter2, "chat-v2")
	t.Log("Step 2 - Linked Telegram accounts")

	// Step 3: Create the election and candidates
	req := testutil.MakeRequest("POST", "/elections",
		models.CreateElectionRequest{Title: "Student Body President"}, asActor(adminID))
	w := httptest.NewRecorder()
	electionHandler.CreateElection(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var electionResp models.CreateElectionResponse
	testutil.AssertJSON(t, w, &electionResp)
	electionID := electionResp.ElectionID

	addCandidate := func(name string) string {
		req := testutil.MakeRequest("POST", "/elections/"+electionID+"/candidates",
			models.AddCandidateRequest{Name: name}, asActor(adminID))
		req.SetPathValue("id", electionID)
		w := httptest.NewRecorder()
		electionHandler.AddCandidate(w, req)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.AddCandidateResponse
		testutil.AssertJSON(t, w, &resp)
		return resp.CandidateID
	}
	alice := addCandidate("Alice")
	bob := addCandidate("Bob")
	t.Logf("Step 3 - Created election %s with candidates %s, %s", electionID, alice, bob)

	// Step 4: Both voters request codes and vote
	code1 := requestCode(t, voteHandler, channel, electionID, voter1)
	castVote(t, voteHandler, electionID, voter1, alice, code1, http.StatusCreated)

	code2 := requestCode(t, voteHandler, channel, electionID, voter2)
	castVote(t, voteHandler, electionID, voter2, bob, code2, http.StatusCreated)
	t.Log("Step 4 - Both voters cast their votes")

	// Step 5: Replay and double-vote attempts fail
	castVote(t, voteHandler, electionID, voter1, bob, code1, http.StatusUnauthorized)

	req = testutil.MakeRequest("POST", "/elections/"+electionID+"/otp",
		models.RequestOtpRequest{UserID: voter1}, nil)
	req.SetPathValue("id", electionID)
	w = httptest.NewRecorder()
	voteHandler.RequestOtp(w, req)
	testutil.AssertStatus(t, w, http.StatusConflict)
	t.Log("Step 5 - Replay and double-vote refused")

	// Step 6: Results show a two-way tie and the audit trail is populated
	req = testutil.MakeRequest("GET", "/elections/"+electionID+"/results", nil, nil)
	req.SetPathValue("id", electionID)
	w = httptest.NewRecorder()
	resultsHandler.GetResults(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var result models.ElectionResult
	testutil.AssertJSON(t, w, &result)
	if result.TotalVotes != 2 {
		t.Errorf("Expected 2 total votes, got %d", result.TotalVotes)
	}
	if !result.HasResults {
		t.Error("Expected has_results=true")
	}
	for _, c := range result.Candidates {
		if c.VoteCount != 1 || !c.Winner {
			t.Errorf("Expected a two-way tie with both winning, got %+v", c)
		}
	}

	var auditCount int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM audit_logs WHERE action = 'vote.cast'`).Scan(&auditCount); err != nil {
		t.Fatalf("Failed to count audit entries: %v", err)
	}
	if auditCount != 2 {
		t.Errorf("Expected 2 vote.cast audit entries, got %d", auditCount)
	}

	// The audit trail must not reference ballots
	var ballotRefs int
	if err := conn.QueryRow(`
		SELECT COUNT(*) FROM audit_logs a
		WHERE EXISTS (SELECT 1 FROM ballots b WHERE b.id = a.entity OR b.ballot_uuid = a.entity)
	`).Scan(&ballotRefs); err != nil {
		t.Fatalf("Failed to check audit entities: %v", err)
	}
	if ballotRefs != 0 {
		t.Errorf("Audit log references %d ballots; expected none", ballotRefs)
	}
	t.Log("Step 6 - Results and audit trail verified")
}
