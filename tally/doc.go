// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally aggregates anonymous ballots into election results.

# Per-Election Results

	engine := tally.NewEngine(db)
	result, err := engine.ComputeResults(electionID)

The result carries one entry per candidate, zero-ballot candidates
included, sorted by descending vote count. Every candidate tied at the
maximum (when the maximum is positive) carries the winner flag - a
two-way tie yields two winners. HasResults is true iff the election has
at least one ballot; an election with no candidates returns an empty
list and HasResults=false without error.

# All Elections

	results, err := engine.ComputeAllResults()

Each election is computed independently; a failure in one is logged and
skipped so it cannot corrupt the others.

# Anonymity

The tally reads ballots and candidate metadata only. Vote receipts are
never consulted, so no tally path touches voter identity.
*/
package tally
