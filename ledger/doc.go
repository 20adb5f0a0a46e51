// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger records votes: one per (campaign, voter), never updated,
never deleted.

# Casting

CastVote runs one transaction:

 1. load the campaign (shared row lock on Postgres)
 2. derive status from the caller's now; only active campaigns accept votes
 3. check the option exists and the voter passes the allow-list
 4. INSERT the vote record

There is no separate "has this voter voted" read before the insert. The
primary key on (campaign_id, voter_id) is the check, and a unique
violation becomes models.ErrAlreadyVoted. Concurrent calls for the same
voter therefore produce exactly one success.

Serialization failures, deadlocks and SQLite busy errors are retried with
exponential backoff up to a small bound, then reported as
models.ErrConcurrencyConflict. Nothing else is retried.

# Receipts

Each accepted vote gets a receipt of the form 0x followed by 64 hex
characters, an HMAC over the vote fields and a random nonce. Receipts
are generated here and never accepted from callers.

# Anchoring

An optional Anchor runs after commit, for example to publish the receipt
on a chain. Its failure is logged and counted; the vote stands.
*/
package ledger
