// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import "sort"

// Mode selects which end of a tie BreakTie resolves to
type Mode int

const (
	// FindStrongest picks the candidate to award a win to
	FindStrongest Mode = iota
	// FindWeakest picks the candidate to eliminate
	FindWeakest
)

func (m Mode) String() string {
	if m == FindWeakest {
		return "weakest"
	}
	return "strongest"
}

// TieBreak is the outcome of BreakTie
type TieBreak struct {
	WinnerID string
	Method   TieBreakMethod
}

type standing struct {
	id     string
	wins   int
	losses int
}

// BreakTie picks one candidate out of tiedIDs using head-to-head comparison
// restricted to the tied subset. Only ballots ranking both members of a pair
// count toward that pair. If the top of the ordering is still shared on both
// wins and losses, the smallest id wins and the method is CoinFlip.
//
// Identical inputs always produce the identical TieBreak.
func BreakTie(tiedIDs []string, ballots []Ballot, mode Mode) TieBreak {
	ids := uniqueIDs(tiedIDs)
	switch len(ids) {
	case 0:
		return TieBreak{}
	case 1:
		return TieBreak{WinnerID: ids[0], Method: HeadToHead}
	}

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	// prefers[i][j] counts ballots ranking ids[i] ahead of ids[j] with both present
	prefers := make([][]int, len(ids))
	for i := range prefers {
		prefers[i] = make([]int, len(ids))
	}

	pos := make([]int, len(ids))
	for _, b := range ballots {
		for i := range pos {
			pos[i] = -1
		}
		for p, id := range b.Rankings {
			if i, ok := index[id]; ok && pos[i] == -1 {
				pos[i] = p
			}
		}
		for i := range ids {
			if pos[i] == -1 {
				continue
			}
			for j := range ids {
				if i != j && pos[j] != -1 && pos[i] < pos[j] {
					prefers[i][j]++
				}
			}
		}
	}

	standings := make([]standing, len(ids))
	for i, id := range ids {
		standings[i].id = id
	}
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			switch {
			case prefers[i][j] > prefers[j][i]:
				standings[i].wins++
				standings[j].losses++
			case prefers[j][i] > prefers[i][j]:
				standings[j].wins++
				standings[i].losses++
			}
		}
	}

	sort.SliceStable(standings, func(a, b int) bool {
		x, y := standings[a], standings[b]
		if mode == FindWeakest {
			if x.wins != y.wins {
				return x.wins < y.wins
			}
			return x.losses > y.losses
		}
		if x.wins != y.wins {
			return x.wins > y.wins
		}
		return x.losses < y.losses
	})

	top := standings[0]
	var stillTied []string
	for _, s := range standings {
		if s.wins == top.wins && s.losses == top.losses {
			stillTied = append(stillTied, s.id)
		}
	}

	if len(stillTied) > 1 {
		sort.Strings(stillTied)
		return TieBreak{WinnerID: stillTied[0], Method: CoinFlip}
	}
	return TieBreak{WinnerID: top.id, Method: HeadToHead}
}
