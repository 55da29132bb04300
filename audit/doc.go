// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audit appends tamper-evident records of admin and voting actions.

	recorder := audit.NewRecorder(db)
	recorder.Record(actorID, "election.create", electionID)

Each entry carries a SHA-256 hash over its own fields so after-the-fact
edits are detectable. Recording is best-effort: a failed append is logged
and never aborts the audited operation.

A vote cast is audited against the receipt, never the ballot, so the audit
trail cannot re-link a ballot to its voter either.
*/
package audit
