// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the VoteBox API.

# Handler Types

Each handler is a struct holding the domain services it needs and the
server config:

  - CampaignHandler: Campaign create, read, update and delete
  - VotingHandler: Vote casting and per-voter lookups
  - ResultsHandler: Exact and live tallies

Handlers are created via constructor functions:

	store := campaigns.NewStore(db)
	campaignHandler := handlers.NewCampaignHandler(store, cfg)

# Campaign Lifecycle

Status is never stored. It is derived on every request from the campaign
window: draft before start_at, active until end_at, closed afterwards.

	POST   /campaigns      → CreateCampaign (returns admin_key)
	PATCH  /campaigns/{id} → UpdateCampaign
	DELETE /campaigns/{id} → DeleteCampaign (refused once votes exist)

Organizer operations require the X-Admin-Key header. Creation requires
X-Organizer-ID.

# Voting

	POST /campaigns/{id}/votes     → CastVote (returns receipt)
	GET  /campaigns/{id}/votes/me  → GetMyVote
	GET  /campaigns/{id}/has-voted → HasVoted

Voter operations require the X-Voter-ID header. A voter gets one vote per
campaign; a second attempt returns 409.

# Results

	GET /campaigns/{id}/results      → GetResults (computed per request)
	GET /campaigns/{id}/results/live → GetLiveResults (cached per poll interval)

Both accept ?sort=options (default) or ?sort=votes.

# Errors

Domain errors are mapped to status codes by middleware.WriteError, so
handlers return whatever the store, ledger or engine reports.
*/
package handlers
