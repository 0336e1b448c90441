// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the rankpick API server.

rankpick runs small group polls: participants nominate candidates, rank
them, and the poll is decided by Borda count, Condorcet (with Copeland
fallback) or instant-runoff voting.

# Starting the Server

Configuration comes from the environment, an optional .env file, or flags:

	DATABASE_URL=rankpick.db ADMIN_KEY_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin tokens and voter hashes

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - DAILY_POLL_LIMIT (--daily-limit): Polls per UTC day (default: 50)
  - MAX_CANDIDATES (--max-candidates): Candidates per poll (default: 20)
  - DESCRIPTION_API_KEY: Enables descriptions for movie candidates

# Architecture

  - tally: Borda, Condorcet and RCV counting plus tie-breaking
  - handlers: HTTP request handlers (polls, candidates, votes, results, devices)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Admin tokens and voter key hashing
  - moderation: Title blocklist and duplicate keys
  - enrich: Candidate description client
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
