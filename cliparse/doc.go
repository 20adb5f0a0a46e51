// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are resolved in three layers, later layers winning:

 1. a .env file in the working directory (optional)
 2. environment variables, with defaults from struct tags
 3. CLI flags

# Environment Variables

	PORT                  -p              (default: 3318)
	DATABASE_URL          -d              (required; file path for sqlite)
	DATABASE_TYPE         -t              sqlite or postgres (default: sqlite)
	ADMIN_KEY_SALT        --admin-salt    (required)
	RECEIPT_SALT          --receipt-salt  (required)
	LOG_LEVEL                             debug, info, warn, error (default: info)
	RESULTS_POLL_INTERVAL                 live results staleness bound (default: 5s)
	VOTE_RATE_LIMIT                       vote requests per second per voter (default: 5)
	VOTE_RATE_BURST                       vote request burst per voter (default: 10)
	SHUTDOWN_TIMEOUT                      graceful shutdown bound (default: 30s)

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	store, err := db.Open(ctx, cfg)
	// ...
*/
package cliparse
