// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/univote/univote/auth"
	"github.com/univote/univote/cliparse"
	"github.com/univote/univote/db"
	"github.com/univote/univote/models"
)

var dbSeq atomic.Int64

// SetupTestDB creates a fresh in-memory sqlite database with the full
// schema. Each call gets its own database; it lives as long as the pool
// keeps a connection open, so close only at test end.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:testdb%d?mode=memory&cache=shared&_pragma=busy_timeout(10000)&_pragma=foreign_keys(1)&_time_format=sqlite",
		dbSeq.Add(1),
	)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// One connection keeps the shared in-memory database alive and
	// serializes writers, which sqlite wants anyway.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3464,
		DatabaseURL:     "file:unused",
		DatabaseType:    "sqlite",
		TelegramAPIBase: "http://telegram.invalid",
	}
}

// CreateTestUser inserts a user and returns its ID. If chatID is non-empty
// the user gets a linked Telegram handle. The password hash is a
// placeholder; tests that exercise credentials register through the
// identity store instead.
func CreateTestUser(t *testing.T, conn *sql.DB, role models.Role, chatID string) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	var chat *string
	if chatID != "" {
		chat = &chatID
	}

	_, err := conn.Exec(`
		INSERT INTO users (id, university_id, full_name, role, phone_number, telegram_chat_id, password_hash, created_at)
		VALUES ($1, $2, 'Test User', $3, NULL, $4, 'x', $5)
	`, id, "uni-"+id[:12], string(role), chat, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return id
}

// CreateTestElection inserts an election and returns its ID
func CreateTestElection(t *testing.T, conn *sql.DB, title string) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)

	_, err := conn.Exec(`
		INSERT INTO elections (id, title, description, start_time, end_time, created_at)
		VALUES ($1, $2, 'A test election', $3, $4, $5)
	`, id, title, start, end, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return id
}

// AddTestCandidate adds a candidate to an election and returns its ID
func AddTestCandidate(t *testing.T, conn *sql.DB, electionID, name string) string {
	t.Helper()

	id, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO candidates (id, election_id, name, manifesto)
		VALUES ($1, $2, $3, 'Test manifesto')
	`, id, electionID, name)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return id
}

// InsertTestBallot inserts an anonymous ballot directly, bypassing the
// casting engine. Used by tally tests.
func InsertTestBallot(t *testing.T, conn *sql.DB, electionID, candidateID string) {
	t.Helper()

	id, _ := auth.GenerateID(16)
	ballotUUID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO ballots (id, election_id, candidate_id, ballot_uuid)
		VALUES ($1, $2, $3, $4)
	`, id, electionID, candidateID, ballotUUID)
	if err != nil {
		t.Fatalf("Failed to insert test ballot: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
