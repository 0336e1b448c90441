// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Drivers

Open selects a driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types:

  - sqlite (default): modernc.org/sqlite, a pure-Go build. Foreign keys,
    WAL, a busy timeout and immediate transactions are enabled on every
    connection via SQLiteDSN.
  - postgres: github.com/lib/pq.

All queries in the application use $N placeholders in ascending order,
which both drivers accept.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - poll: Poll metadata, method and lifecycle phase
  - candidate: Nominated entries; title_key is the case-folded title
  - ballot: One ballot per voter key hash per poll
  - ballot_ranking: Ordered candidate ids per ballot
  - daily_counter: Polls created per UTC day
  - device: Registered devices
  - device_poll: Links devices to polls

# Relationships

	poll 1──* candidate
	poll 1──* ballot
	ballot 1──* ballot_ranking
	device *──* poll (via device_poll)

All foreign keys use ON DELETE CASCADE. ballot_ranking.candidate_id is not a
foreign key; rankings that point at removed candidates are ignored when
results are computed.

# Errors

IsUniqueViolation recognizes unique and primary key failures from both
drivers (*pq.Error code 23505, *sqlite.Error SQLITE_CONSTRAINT_UNIQUE).
*/
package db
