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
	"github.com/univote/univote/testutil"
)

func TestRecentAudit(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	store := identity.NewStore(conn)
	recorder := audit.NewRecorder(conn)
	handler := NewAuditHandler(store, recorder)

	adminID := testutil.CreateTestUser(t, conn, models.RoleAdmin, "")
	voterID := testutil.CreateTestUser(t, conn, models.RoleVoter, "")

	recorder.Record(adminID, "election.create", "e1")
	recorder.Record(voterID, "vote.cast", "e1")

	req := testutil.MakeRequest("GET", "/audit", nil, asActor(adminID))
	w := httptest.NewRecorder()
	handler.Recent(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var entries []models.AuditEntry
	testutil.AssertJSON(t, w, &entries)
	if len(entries) != 2 {
		t.Errorf("Expected 2 audit entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Hash == "" {
			t.Errorf("Entry %s has no integrity hash", e.ID)
		}
	}

	// Limit applies
	req = testutil.MakeRequest("GET", "/audit?limit=1", nil, asActor(adminID))
	w = httptest.NewRecorder()
	handler.Recent(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	entries = nil
	testutil.AssertJSON(t, w, &entries)
	if len(entries) != 1 {
		t.Errorf("Expected 1 audit entry with limit=1, got %d", len(entries))
	}

	// Bad limit
	req = testutil.MakeRequest("GET", "/audit?limit=0", nil, asActor(adminID))
	w = httptest.NewRecorder()
	handler.Recent(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	// Voters cannot read the audit trail
	req = testutil.MakeRequest("GET", "/audit", nil, asActor(voterID))
	w = httptest.NewRecorder()
	handler.Recent(w, req)
	testutil.AssertStatus(t, w, http.StatusForbidden)
}
