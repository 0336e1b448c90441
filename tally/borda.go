// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import "encoding/json"

// BordaResult is the outcome of a Borda count
type BordaResult struct {
	Method           Method         `json:"method"`
	Winner           string         `json:"winner"`
	Scores           map[string]int `json:"scores"`
	TotalVotes       int            `json:"totalVotes"`
	MaxPossibleScore int            `json:"maxPossibleScore"`
	TieBreaker       TieBreakMethod `json:"tieBreakerMethod,omitempty"`
}

func (r *BordaResult) Kind() Method     { return MethodBorda }
func (r *BordaResult) WinnerID() string { return r.Winner }
func (r *BordaResult) result()          {}

// MarshalJSON writes an empty Winner as null
func (r BordaResult) MarshalJSON() ([]byte, error) {
	type plain BordaResult
	return json.Marshal(struct {
		plain
		Winner *string `json:"winner"`
	}{plain(r), nullable(r.Winner)})
}

// Borda scores each ballot positionally: with k valid candidates ranked,
// position i earns k-1-i points and unranked candidates earn nothing.
// A tie for the top score goes to BreakTie in FindStrongest mode.
func Borda(candidates []string, ballots []Ballot) *BordaResult {
	ids := uniqueIDs(candidates)
	res := &BordaResult{
		Method: MethodBorda,
		Scores: map[string]int{},
	}
	if len(ids) == 0 || len(ballots) == 0 {
		return res
	}

	valid := NewCandidateSet(ids)
	for _, id := range ids {
		res.Scores[id] = 0
	}
	for _, b := range ballots {
		ranked := Normalize(b.Rankings, valid)
		k := len(ranked)
		for i, id := range ranked {
			res.Scores[id] += k - 1 - i
		}
	}

	res.TotalVotes = len(ballots)
	res.MaxPossibleScore = (len(ids) - 1) * len(ballots)

	top := res.Scores[ids[0]]
	for _, id := range ids[1:] {
		if res.Scores[id] > top {
			top = res.Scores[id]
		}
	}
	var tied []string
	for _, id := range ids {
		if res.Scores[id] == top {
			tied = append(tied, id)
		}
	}

	if len(tied) == 1 {
		res.Winner = tied[0]
		return res
	}
	tb := BreakTie(tied, ballots, FindStrongest)
	res.Winner = tb.WinnerID
	res.TieBreaker = tb.Method
	return res
}
