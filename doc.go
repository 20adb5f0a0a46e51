// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the VoteBox API server.

VoteBox runs time-boxed single-choice voting campaigns. Organizers define
options, an optional voter allow-list and a voting window; each voter gets
exactly one vote per campaign and a receipt for it. Tallies are computed
from the ledger on demand and never drift from the recorded votes.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=votebox.db ADMIN_KEY_SALT=... RECEIPT_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is loaded first when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC
  - RECEIPT_SALT (--receipt-salt): Secret for vote receipt HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - LOG_LEVEL: debug, info, warn or error (default: info)
  - RESULTS_POLL_INTERVAL: Live results freshness (default: 5s)
  - VOTE_RATE_LIMIT, VOTE_RATE_BURST: Per-voter vote rate (default: 5/s, burst 10)
  - SHUTDOWN_TIMEOUT: Graceful shutdown deadline (default: 30s)

# Architecture

  - lifecycle: Status derivation from the voting window
  - campaigns: Campaign definitions, validation and storage
  - ledger: Atomic one-vote-per-voter recording
  - tally: Result computation and the live results poller
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, rate limiting, JSON and error helpers
  - metrics: Prometheus collectors
  - models: Domain, request and response types
  - auth: Admin keys, ids and receipts
  - db: Connection setup, schema and driver error classification
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
