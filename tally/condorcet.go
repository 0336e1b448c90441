// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"encoding/json"
	"sort"
)

// Standing is one candidate's pairwise record
type Standing struct {
	CandidateID string `json:"candidateId"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
}

// Copeland returns wins minus losses
func (s Standing) Copeland() int {
	return s.Wins - s.Losses
}

// CondorcetResult is the outcome of a Condorcet/Copeland tally
type CondorcetResult struct {
	Method            Method         `json:"method"`
	Winner            string         `json:"winner"`
	Rankings          []Standing     `json:"rankings"`
	TotalVotes        int            `json:"totalVotes"`
	NoCondorcetWinner bool           `json:"noCondorcetWinner"`
	TieBreaker        TieBreakMethod `json:"tieBreakerMethod,omitempty"`
}

func (r *CondorcetResult) Kind() Method     { return MethodCondorcet }
func (r *CondorcetResult) WinnerID() string { return r.Winner }
func (r *CondorcetResult) result()          {}

// MarshalJSON writes an empty Winner as null
func (r CondorcetResult) MarshalJSON() ([]byte, error) {
	type plain CondorcetResult
	return json.Marshal(struct {
		plain
		Winner *string `json:"winner"`
	}{plain(r), nullable(r.Winner)})
}

// Condorcet builds the pairwise preference matrix and looks for a candidate
// that beats every other one. Ranked candidates are preferred over every
// candidate a ballot leaves unranked. Without a Condorcet winner the
// candidate with the best Copeland score wins, ties on both Copeland score
// and raw wins going to BreakTie.
func Condorcet(candidates []string, ballots []Ballot) *CondorcetResult {
	ids := uniqueIDs(candidates)
	res := &CondorcetResult{
		Method:            MethodCondorcet,
		Rankings:          []Standing{},
		NoCondorcetWinner: true,
	}
	if len(ids) == 0 || len(ballots) == 0 {
		return res
	}

	n := len(ids)
	index := make(map[string]int, n)
	for i, id := range ids {
		index[id] = i
	}
	valid := NewCandidateSet(ids)

	// winsAgainst[a][b] counts ballots preferring a over b
	winsAgainst := make([][]int, n)
	for i := range winsAgainst {
		winsAgainst[i] = make([]int, n)
	}

	ranked := make([]bool, n)
	for _, b := range ballots {
		order := Normalize(b.Rankings, valid)
		for i := range ranked {
			ranked[i] = false
		}
		for _, id := range order {
			ranked[index[id]] = true
		}
		for i := 0; i < len(order); i++ {
			a := index[order[i]]
			for j := i + 1; j < len(order); j++ {
				winsAgainst[a][index[order[j]]]++
			}
		}
		for _, id := range order {
			a := index[id]
			for u := 0; u < n; u++ {
				if !ranked[u] {
					winsAgainst[a][u]++
				}
			}
		}
	}

	standings := make([]Standing, n)
	for i, id := range ids {
		standings[i].CandidateID = id
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			switch {
			case winsAgainst[a][b] > winsAgainst[b][a]:
				standings[a].Wins++
				standings[b].Losses++
			case winsAgainst[b][a] > winsAgainst[a][b]:
				standings[b].Wins++
				standings[a].Losses++
			}
		}
	}

	winner := ""
	for _, s := range standings {
		if s.Wins == n-1 {
			winner = s.CandidateID
			break
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Copeland() != b.Copeland() {
			return a.Copeland() > b.Copeland()
		}
		return a.Wins > b.Wins
	})

	res.Rankings = standings
	res.TotalVotes = len(ballots)

	if winner != "" {
		res.Winner = winner
		res.NoCondorcetWinner = false
		return res
	}

	top := standings[0]
	var tied []string
	for _, s := range standings {
		if s.Copeland() == top.Copeland() && s.Wins == top.Wins {
			tied = append(tied, s.CandidateID)
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
