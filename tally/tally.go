// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/univote/univote/models"
)

var ErrElectionNotFound = errors.New("election not found")

// Engine aggregates anonymous ballots into per-candidate counts. It reads
// only the ballots table and candidate metadata, never vote receipts.
type Engine struct {
	db *sql.DB
}

func NewEngine(database *sql.DB) *Engine {
	return &Engine{db: database}
}

// ComputeResults tallies one election. Candidates with no ballots appear
// with count 0. Every candidate whose count equals the maximum is flagged
// as a winner, so ties produce multiple winners rather than an arbitrary
// pick. HasResults is true iff at least one ballot exists.
func (e *Engine) ComputeResults(electionID string) (*models.ElectionResult, error) {
	var title string
	err := e.db.QueryRow(`SELECT title FROM elections WHERE id = $1`, electionID).Scan(&title)
	if err == sql.ErrNoRows {
		return nil, ErrElectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load election: %w", err)
	}

	result := &models.ElectionResult{
		ElectionID: electionID,
		Title:      title,
		Candidates: []models.CandidateResult{},
	}

	candidates, err := e.loadCandidates(electionID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return result, nil
	}

	counts, total, err := e.countBallots(electionID)
	if err != nil {
		return nil, err
	}

	for _, c := range candidates {
		result.Candidates = append(result.Candidates, models.CandidateResult{
			CandidateID: c.ID,
			Name:        c.Name,
			Manifesto:   c.Manifesto,
			VoteCount:   counts[c.ID],
		})
	}

	// Descending by count; name breaks presentation order only, winner
	// flags below make actual ties explicit.
	sort.SliceStable(result.Candidates, func(i, j int) bool {
		a, b := result.Candidates[i], result.Candidates[j]
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		return a.Name < b.Name
	})

	maxVotes := result.Candidates[0].VoteCount
	if maxVotes > 0 {
		for i := range result.Candidates {
			if result.Candidates[i].VoteCount == maxVotes {
				result.Candidates[i].Winner = true
			}
		}
	}

	result.TotalVotes = total
	result.HasResults = total > 0

	return result, nil
}

// ComputeAllResults applies ComputeResults to every known election
// independently. One election's failure is logged and skipped; it never
// affects another's result.
func (e *Engine) ComputeAllResults() ([]models.ElectionResult, error) {
	rows, err := e.db.Query(`SELECT id FROM elections ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list elections: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan election id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	results := make([]models.ElectionResult, 0, len(ids))
	for _, id := range ids {
		r, err := e.ComputeResults(id)
		if err != nil {
			slog.Warn("failed to compute election results", "election_id", id, "error", err)
			continue
		}
		results = append(results, *r)
	}

	return results, nil
}

func (e *Engine) loadCandidates(electionID string) ([]models.Candidate, error) {
	rows, err := e.db.Query(`
		SELECT id, election_id, name, manifesto FROM candidates WHERE election_id = $1 ORDER BY id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var c models.Candidate
		var manifesto sql.NullString
		if err := rows.Scan(&c.ID, &c.ElectionID, &c.Name, &manifesto); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.Manifesto = manifesto.String
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

// countBallots groups the election's ballots by candidate. The total spans
// all ballots, including any for candidates removed after casting.
func (e *Engine) countBallots(electionID string) (map[string]int64, int64, error) {
	rows, err := e.db.Query(`
		SELECT candidate_id, COUNT(*) FROM ballots WHERE election_id = $1 GROUP BY candidate_id
	`, electionID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ballots: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	var total int64
	for rows.Next() {
		var candidateID string
		var n int64
		if err := rows.Scan(&candidateID, &n); err != nil {
			return nil, 0, fmt.Errorf("failed to scan ballot count: %w", err)
		}
		counts[candidateID] = n
		total += n
	}

	return counts, total, rows.Err()
}
