// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the VoteBox API.

# Route Registration

NewRouter builds the campaign store, vote ledger and tally engine on top
of one database handle and returns a configured http.ServeMux:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health and monitoring:

	GET /health
	GET /metrics - Prometheus exposition

Campaign management (update and delete require X-Admin-Key):

	POST   /campaigns        - Create campaign (requires X-Organizer-ID)
	GET    /campaigns        - List all campaigns
	GET    /campaigns/active - List campaigns open for voting now
	GET    /campaigns/{id}   - Campaign with derived status
	PATCH  /campaigns/{id}   - Update fields
	DELETE /campaigns/{id}   - Delete (no votes recorded only)

Voting (requires X-Voter-ID):

	POST /campaigns/{id}/votes     - Cast vote (rate limited per voter)
	GET  /campaigns/{id}/votes/me  - Own vote record
	GET  /campaigns/{id}/has-voted - Whether a vote exists

Results:

	GET /campaigns/{id}/results      - Exact tally
	GET /campaigns/{id}/results/live - Tally at most one poll interval old

# Handler Initialization

	store := campaigns.NewStore(db)
	voteLedger := ledger.New(db, store, cfg.ReceiptSalt)
	engine := tally.NewEngine(db, store)
	poller := tally.NewPoller(engine, cfg.ResultsPollInterval)

The live results poller is shared with the voting handler, which drops a
campaign's cached snapshot after each accepted vote.
*/
package router
