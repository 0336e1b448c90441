// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally computes poll winners from ranked ballots.

Three interchangeable methods are supported, all sharing one deterministic
tie-breaking routine:

  - rcv: Instant-Runoff. Round-by-round elimination of the weakest
    continuing candidate until one holds a strict majority.
  - borda: positional scoring. A ballot ranking k candidates awards
    k-1 points to its first choice down to 0 for its last.
  - condorcet: pairwise comparison. A candidate beating every other
    head-to-head wins outright; otherwise Copeland score (wins - losses)
    decides.

# Usage

	result := tally.Compute(tally.MethodRCV, candidateIDs, ballots)
	switch r := result.(type) {
	case *tally.RCVResult:
		// r.Rounds
	case *tally.BordaResult:
		// r.Scores
	case *tally.CondorcetResult:
		// r.Rankings
	}

Every function in this package is a pure function of its arguments: it
performs no I/O, keeps no state between calls, and never mutates the
candidate or ballot slices it is given. Calls are safe to run
concurrently.

# Normalization

Ballot rankings may reference ids that are not in the race (a candidate
removed after the ballot was cast, for example). Normalize drops those
ids and keeps the remaining order. A ballot that normalizes to nothing
simply contributes nothing.

# Tie-breaking

BreakTie resolves a tied subset by head-to-head comparison restricted to
that subset, counting only ballots that rank both members of a pair. If
candidates remain tied on both wins and losses, the lexicographically
smallest id is picked and the method is reported as "coin-flip". Results
are recomputed on every read, so the fallback is deterministic on purpose;
it must never be replaced with real randomness.

The coin-flip fallback picks the smallest id in both FindStrongest and
FindWeakest mode. For RCV eliminations that means low-sorting ids are the
ones eliminated on an unresolvable tie, while for Borda and Condorcet they
are the ones that win. This asymmetry is kept as-is and pinned by tests.

# Degenerate input

No candidates or no ballots yields a well-formed result with an empty
winner and zero counts. Compute never returns an error.
*/
package tally
