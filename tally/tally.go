// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"errors"
	"fmt"
)

// Method identifies a tallying method
type Method string

const (
	MethodRCV       Method = "rcv"
	MethodBorda     Method = "borda"
	MethodCondorcet Method = "condorcet"
)

// DefaultMethod is used when a poll does not name one
const DefaultMethod = MethodBorda

var ErrUnknownMethod = errors.New("unknown voting method")

// Methods lists every supported method in display order
func Methods() []Method {
	return []Method{MethodBorda, MethodCondorcet, MethodRCV}
}

// ParseMethod validates a method tag from user input
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodRCV, MethodBorda, MethodCondorcet:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Ballot is one voter's preference order, most preferred first
type Ballot struct {
	Rankings []string `json:"rankings"`
}

// TieBreakMethod reports how BreakTie settled a tie
type TieBreakMethod string

const (
	HeadToHead TieBreakMethod = "head-to-head"
	CoinFlip   TieBreakMethod = "coin-flip"
)

// Result is one of *RCVResult, *BordaResult or *CondorcetResult.
// The set of implementations is closed.
type Result interface {
	Kind() Method
	WinnerID() string
	result()
}

// Compute runs the tally for method. Unknown methods fall back to Borda.
func Compute(method Method, candidates []string, ballots []Ballot) Result {
	switch method {
	case MethodRCV:
		return RCV(candidates, ballots)
	case MethodCondorcet:
		return Condorcet(candidates, ballots)
	default:
		return Borda(candidates, ballots)
	}
}

// HasWinner reports whether r names a winner
func HasWinner(r Result) bool {
	return r != nil && r.WinnerID() != ""
}

// uniqueIDs returns ids with duplicates and empty strings removed, first occurrence kept
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// nullable maps "" to nil so optional ids encode as JSON null
func nullable(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
