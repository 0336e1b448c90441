// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

// CandidateSet is the set of candidate ids valid for one computation
type CandidateSet map[string]struct{}

// NewCandidateSet builds a set from ids
func NewCandidateSet(ids []string) CandidateSet {
	set := make(CandidateSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set
func (s CandidateSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Normalize filters rankings to ids present in valid, keeping their order.
// The input slice is not modified.
func Normalize(rankings []string, valid CandidateSet) []string {
	out := make([]string, 0, len(rankings))
	for _, id := range rankings {
		if valid.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// firstChoice is the head of Normalize(rankings, valid) without the allocation
func firstChoice(rankings []string, valid CandidateSet) (string, bool) {
	for _, id := range rankings {
		if valid.Has(id) {
			return id, true
		}
	}
	return "", false
}
