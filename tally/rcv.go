// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import "encoding/json"

// EliminationReason records why a round eliminated its candidate
type EliminationReason string

const (
	ReasonLastPlace  EliminationReason = "last-place"
	ReasonHeadToHead EliminationReason = "head-to-head"
	ReasonCoinFlip   EliminationReason = "coin-flip"
)

// Round is a snapshot of one RCV counting pass
type Round struct {
	Counts     map[string]int    `json:"counts"`
	Eliminated string            `json:"eliminated"`
	Reason     EliminationReason `json:"eliminationReason,omitempty"`
	// TotalVotes excludes exhausted ballots
	TotalVotes int `json:"totalVotes"`
}

// MarshalJSON writes an empty Eliminated as null
func (r Round) MarshalJSON() ([]byte, error) {
	type plain Round
	return json.Marshal(struct {
		plain
		Eliminated *string `json:"eliminated"`
	}{plain(r), nullable(r.Eliminated)})
}

// RCVResult is the outcome of an instant-runoff tally
type RCVResult struct {
	Method     Method  `json:"method"`
	Winner     string  `json:"winner"`
	Rounds     []Round `json:"rounds"`
	TotalVotes int     `json:"totalVotes"`
}

func (r *RCVResult) Kind() Method     { return MethodRCV }
func (r *RCVResult) WinnerID() string { return r.Winner }
func (r *RCVResult) result()          {}

// MarshalJSON writes an empty Winner as null
func (r RCVResult) MarshalJSON() ([]byte, error) {
	type plain RCVResult
	return json.Marshal(struct {
		plain
		Winner *string `json:"winner"`
	}{plain(r), nullable(r.Winner)})
}

// FinalRound returns the last recorded round
func (r *RCVResult) FinalRound() (Round, bool) {
	if len(r.Rounds) == 0 {
		return Round{}, false
	}
	return r.Rounds[len(r.Rounds)-1], true
}

// RCV runs instant-runoff rounds. Each round counts every ballot's first
// continuing choice; a strict majority of that round's counted votes wins.
// Otherwise the last-place candidate is eliminated, with ties for last place
// going to BreakTie in FindWeakest mode over the full ballots. When a single
// candidate remains it wins and that final count is recorded as a round.
func RCV(candidates []string, ballots []Ballot) *RCVResult {
	ids := uniqueIDs(candidates)
	res := &RCVResult{
		Method: MethodRCV,
		Rounds: []Round{},
	}
	if len(ids) == 0 || len(ballots) == 0 {
		return res
	}
	res.TotalVotes = len(ballots)

	remaining := ids
	active := NewCandidateSet(ids)

	for {
		counts := make(map[string]int, len(remaining))
		for _, id := range remaining {
			counts[id] = 0
		}
		total := 0
		for _, b := range ballots {
			if id, ok := firstChoice(b.Rankings, active); ok {
				counts[id]++
				total++
			}
		}
		round := Round{Counts: counts, TotalVotes: total}

		if len(remaining) == 1 {
			res.Rounds = append(res.Rounds, round)
			res.Winner = remaining[0]
			return res
		}

		for _, id := range remaining {
			if 2*counts[id] > total {
				res.Rounds = append(res.Rounds, round)
				res.Winner = id
				return res
			}
		}

		least := counts[remaining[0]]
		for _, id := range remaining[1:] {
			if counts[id] < least {
				least = counts[id]
			}
		}
		var losers []string
		for _, id := range remaining {
			if counts[id] == least {
				losers = append(losers, id)
			}
		}

		if len(losers) == 1 {
			round.Eliminated = losers[0]
			round.Reason = ReasonLastPlace
		} else {
			tb := BreakTie(losers, ballots, FindWeakest)
			round.Eliminated = tb.WinnerID
			round.Reason = EliminationReason(tb.Method)
		}
		res.Rounds = append(res.Rounds, round)

		delete(active, round.Eliminated)
		next := make([]string, 0, len(remaining)-1)
		for _, id := range remaining {
			if id != round.Eliminated {
				next = append(next, id)
			}
		}
		remaining = next
	}
}
