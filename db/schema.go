// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The statements are valid for both SQLite and PostgreSQL.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are unix milliseconds so both drivers round-trip them as int64.
const schema = `
-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    poll_type TEXT NOT NULL DEFAULT 'movie' CHECK (poll_type IN ('movie', 'other')),
    method TEXT NOT NULL DEFAULT 'borda' CHECK (method IN ('rcv', 'borda', 'condorcet')),
    phase TEXT NOT NULL DEFAULT 'nominating' CHECK (phase IN ('nominating', 'voting', 'closed')),
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_poll_phase ON poll(phase);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    title_key TEXT NOT NULL,
    added_by TEXT NOT NULL,
    added_at BIGINT NOT NULL,
    description TEXT,
    description_fetched_at BIGINT,
    description_attempted_at BIGINT,
    UNIQUE (poll_id, title_key)
);

CREATE INDEX IF NOT EXISTS idx_candidate_poll_id ON candidate(poll_id);

-- Ballots (one per voter key per poll)
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    voter_hash TEXT NOT NULL,
    nickname TEXT NOT NULL,
    submitted_at BIGINT NOT NULL,
    ip_hash TEXT,
    UNIQUE (poll_id, voter_hash)
);

CREATE INDEX IF NOT EXISTS idx_ballot_poll_id ON ballot(poll_id);

-- Ballot rankings. candidate_id deliberately has no foreign key: removed
-- candidates are filtered out at tally time.
CREATE TABLE IF NOT EXISTS ballot_ranking (
    ballot_id TEXT NOT NULL REFERENCES ballot(id) ON DELETE CASCADE,
    rank_position INTEGER NOT NULL,
    candidate_id TEXT NOT NULL,
    PRIMARY KEY (ballot_id, rank_position)
);

-- Daily poll creation counter
CREATE TABLE IF NOT EXISTS daily_counter (
    day TEXT PRIMARY KEY,
    poll_count INTEGER NOT NULL DEFAULT 0
);

-- Devices
CREATE TABLE IF NOT EXISTS device (
    id TEXT PRIMARY KEY,
    device_uuid TEXT NOT NULL UNIQUE,
    platform TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    last_seen_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS device_poll (
    device_id TEXT NOT NULL REFERENCES device(id) ON DELETE CASCADE,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    role TEXT NOT NULL DEFAULT 'voter',
    linked_at BIGINT NOT NULL,
    PRIMARY KEY (device_id, poll_id)
);

CREATE INDEX IF NOT EXISTS idx_device_poll_device ON device_poll(device_id);
`
