// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/rankpick/models"
	"github.com/danielhkuo/rankpick/tally"
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// dayKey is the UTC calendar day used for the daily creation counter
func dayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// loadPoll returns sql.ErrNoRows when the poll does not exist
func loadPoll(q queryer, pollID string) (models.Poll, error) {
	var p models.Poll
	err := q.QueryRow(`
		SELECT id, title, poll_type, method, phase, created_at
		FROM poll
		WHERE id = $1
	`, pollID).Scan(&p.ID, &p.Title, &p.PollType, &p.Method, &p.Phase, &p.CreatedAt)
	return p, err
}

// loadCandidates returns a poll's candidates in nomination order
func loadCandidates(q queryer, pollID string) ([]models.Candidate, error) {
	rows, err := q.Query(`
		SELECT id, title, added_by, added_at, description,
		       description_fetched_at, description_attempted_at
		FROM candidate
		WHERE poll_id = $1
		ORDER BY added_at, id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var (
			c           models.Candidate
			description sql.NullString
			fetchedAt   sql.NullInt64
			attemptedAt sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.AddedBy, &c.AddedAt, &description, &fetchedAt, &attemptedAt); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		c.PollID = pollID
		c.Description = description.String
		if fetchedAt.Valid {
			c.DescriptionFetchedAt = &fetchedAt.Int64
		}
		if attemptedAt.Valid {
			c.DescriptionAttemptedAt = &attemptedAt.Int64
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// loadVotes returns every ballot of a poll with its rankings, oldest first
func loadVotes(q queryer, pollID string) ([]models.Vote, error) {
	rows, err := q.Query(`
		SELECT b.id, b.nickname, b.submitted_at, r.candidate_id
		FROM ballot b
		LEFT JOIN ballot_ranking r ON r.ballot_id = b.id
		WHERE b.poll_id = $1
		ORDER BY b.submitted_at, b.id, r.rank_position
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var (
			id, nickname string
			submittedAt  int64
			candidateID  sql.NullString
		)
		if err := rows.Scan(&id, &nickname, &submittedAt, &candidateID); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		if n := len(votes); n == 0 || votes[n-1].ID != id {
			votes = append(votes, models.Vote{
				ID:          id,
				Nickname:    nickname,
				Rankings:    []string{},
				SubmittedAt: submittedAt,
			})
		}
		if candidateID.Valid {
			last := &votes[len(votes)-1]
			last.Rankings = append(last.Rankings, candidateID.String)
		}
	}
	return votes, rows.Err()
}

func countVotes(q queryer, pollID string) (int, error) {
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM ballot WHERE poll_id = $1`, pollID).Scan(&n)
	return n, err
}

func candidateIDs(candidates []models.Candidate) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	return ids
}

func ballotsOf(votes []models.Vote) []tally.Ballot {
	ballots := make([]tally.Ballot, len(votes))
	for i, v := range votes {
		ballots[i] = tally.Ballot{Rankings: v.Rankings}
	}
	return ballots
}

// cleanRankings keeps ids that name a current candidate, dropping repeats
func cleanRankings(rankings []string, valid tally.CandidateSet) []string {
	seen := make(map[string]struct{}, len(rankings))
	out := make([]string, 0, len(rankings))
	for _, id := range tally.Normalize(rankings, valid) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
