// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Environment variables are bound first (github.com/caarlos0/env), then CLI
flags override them. CLI flags take precedence over environment variables.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: sqlite path/DSN or PostgreSQL connection string (required)
  - DatabaseType: sqlite (default) or postgres
  - AdminKeySalt: Secret for admin token HMAC and voter key hashing (required)
  - DailyPollLimit: Polls creatable per UTC day (default: 50)
  - MaxCandidates: Candidates per poll (default: 20)
  - DescriptionAPIKey/URL/Model/Timeout: optional candidate description service

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	-admin-salt      Admin key salt
	-daily-limit     Daily poll creation limit
	-max-candidates  Candidates per poll

# Environment Variables

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	ADMIN_KEY_SALT      → -admin-salt
	DAILY_POLL_LIMIT    → -daily-limit
	MAX_CANDIDATES      → -max-candidates
	DESCRIPTION_API_KEY   (env only)
	DESCRIPTION_API_URL   (env only)
	DESCRIPTION_MODEL     (env only)
	DESCRIPTION_TIMEOUT   (env only, Go duration)

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - ADMIN_KEY_SALT is missing
  - DATABASE_TYPE is neither sqlite nor postgres
  - a limit is out of range or an env value does not parse
*/
package cliparse
