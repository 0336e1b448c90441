// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the rankpick API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - PollHandler: Poll creation, lookup, stats and phase changes
  - CandidateHandler: Nominations and admin removal
  - VotingHandler: Ranked ballot submission
  - ResultsHandler: Tally computation
  - DeviceHandler: Device registration and poll history

Handlers are created via constructor functions that accept *sql.DB and Config:

	pollHandler := handlers.NewPollHandler(db, cfg)
	candidateHandler := handlers.NewCandidateHandler(db, cfg, describer)

# Poll Lifecycle

Polls move between three phases: nominating, voting, closed. The admin may
set any phase at any time, including reopening a closed poll.

	POST /polls                              → CreatePoll (returns adminToken)
	POST /polls/{id}/candidates              → AddCandidate (nominating only)
	DELETE /polls/{id}/candidates/{candidateId} → RemoveCandidate (admin)
	PUT  /polls/{id}/phase                   → UpdatePhase (admin)

Admin operations accept the X-Admin-Key header or the adminToken query
parameter. Operations attempted in the wrong phase return 409.

# Voting Flow

	POST /polls/{id}/votes   → SubmitVote (create or replace)
	GET  /polls/{id}/results → GetResults (closed, or admin)

Voters identify themselves with a client-held voterKey. Only an HMAC of
the key is stored, and a second submission with the same key replaces the
first ballot. Rankings naming unknown candidates are dropped.

# Results

Results are recomputed from stored ballots on every request using the tally
package. The method query parameter selects a different method for display
without changing the poll.

# Device Tracking

Optional device tracking for native apps:

	POST /devices/register → Register
	GET /devices/me        → GetMe
	GET /devices/my-polls  → GetMyPolls

Device operations require the X-Device-UUID header. Creating a poll or
voting with the header present links the device to the poll.
*/
package handlers
