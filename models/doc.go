// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

JSON field names are camelCase throughout.

# Request Types

  - CreatePollRequest: title, pollType, method
  - UpdatePhaseRequest: phase
  - AddCandidateRequest: title, addedBy
  - SubmitVoteRequest: voterKey, nickname, rankings
  - RegisterDeviceRequest: platform

# Response Types

  - CreatePollResponse: pollId, adminToken, title, pollType, method, phase, dailyPollCount
  - DailyLimitResponse: error, dailyLimit, currentCount (429 body)
  - StatsResponse: dailyPollCount, dailyLimit, date
  - PollView: poll with candidates, voteCount, isAdmin, and votes once closed
  - SubmitVoteResponse: voteId, nickname, rankings
  - ResultsResponse: pollId, method, result (a tally.Result variant)
  - RegisterDeviceResponse, GetMyPollsResponse
  - ErrorResponse: error, message

# Domain Types

  - Poll: poll metadata and lifecycle phase
  - Candidate: nominated entry, with optional fetched description
  - Vote: one voter's ranked ballot; the voter key hash never leaves the server

Timestamps are unix milliseconds.

# Constants

Phases:

	PhaseNominating = "nominating"
	PhaseVoting     = "voting"
	PhaseClosed     = "closed"

Poll types:

	PollTypeMovie = "movie"
	PollTypeOther = "other"

Device roles:

	RoleVoter = "voter"
	RoleAdmin = "admin"

Platforms:

	PlatformIOS     = "ios"
	PlatformMacOS   = "macos"
	PlatformAndroid = "android"
	PlatformWeb     = "web"
*/
package models
