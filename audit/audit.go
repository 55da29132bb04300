// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/univote/univote/auth"
	"github.com/univote/univote/models"
)

// Recorder appends tamper-evident entries to the audit log. Entries name
// actors and entities only, never ballot contents.
type Recorder struct {
	db  *sql.DB
	now func() time.Time
}

func NewRecorder(database *sql.DB) *Recorder {
	return &Recorder{db: database, now: time.Now}
}

// Record appends one entry. Failures are logged and swallowed: auditing
// must never abort the operation being audited.
func (r *Recorder) Record(actorID, action, entity string) {
	id, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("audit id generation failed", "error", err)
		return
	}

	now := r.now()
	var actor *string
	if actorID != "" {
		actor = &actorID
	}

	_, err = r.db.Exec(`
		INSERT INTO audit_logs (id, actor_id, action, entity, created_at, hash)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, actor, action, entity, now, EntryHash(actorID, action, entity, now))
	if err != nil {
		slog.Error("audit record failed", "action", action, "error", err)
	}
}

// EntryHash computes the integrity hash of one entry's fields.
func EntryHash(actorID, action, entity string, at time.Time) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", actorID, action, entity, at.UTC().Format(time.RFC3339Nano))
	return hex.EncodeToString(h.Sum(nil))
}

// Recent returns the newest entries, up to limit.
func (r *Recorder) Recent(limit int) ([]models.AuditEntry, error) {
	rows, err := r.db.Query(`
		SELECT id, actor_id, action, entity, created_at, hash
		FROM audit_logs ORDER BY created_at DESC, id LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var actor, entity sql.NullString
		if err := rows.Scan(&e.ID, &actor, &e.Action, &entity, &e.CreatedAt, &e.Hash); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.ActorID = actor.String
		e.Entity = entity.String
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
