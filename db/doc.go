// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db owns the store handle: opening, schema creation, and closing.

# Lifecycle

	store, err := db.Open(ctx, "sqlite", "votebox.db")
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

Open pings the database and runs CreateSchema, which is safe to call
multiple times. Close checkpoints the SQLite write-ahead log before
closing. The handle is passed explicitly to every component; there is no
package-level connection.

# Drivers

  - sqlite (modernc.org/sqlite): WAL journal, 5s busy timeout, immediate
    write transactions
  - postgres (github.com/lib/pq): pooled connections, row locks via
    ForUpdate/ForShare

Queries use ? placeholders; call Rebind before executing.

# Tables

  - campaign: definition and window (timestamps in unix millis)
  - campaign_option: ordered options, ordinal gives display order
  - campaign_voter: eligibility allow-list
  - vote_record: one row per (campaign_id, voter_id)

# Relationships

	campaign 1──* campaign_option
	campaign 1──* campaign_voter
	campaign 1──* vote_record

Options and voters cascade on campaign delete. Vote records do not: a
campaign with votes cannot be deleted.

# Errors

IsTransient classifies lock and serialization conflicts (eligible for
retry). IsUniqueViolation classifies key collisions.
*/
package db
