// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain, request, and response types shared by
the vote ledger and its HTTP surface.

# Domain Types

	Campaign     A votable decision: ordered options, a window, an organizer
	Option       One selectable choice, identified by id within its campaign
	VoteRecord   The single vote of one voter in one campaign
	TallyResult  Per-option counts and percentages, recomputed on demand

Campaign status is never stored. It is derived from the window:

	now < start_at            draft
	start_at <= now <= end_at active
	now > end_at              closed

# Errors

Every failure the core reports is one of the sentinel errors in errors.go,
tested with errors.Is:

	if errors.Is(err, models.ErrAlreadyVoted) {
		// show "already voted", not a generic failure
	}

Validation failures are *ValidationError values listing every violated
field, and match ErrValidation.

# JSON Conventions

All JSON fields use snake_case. Timestamps are RFC 3339.
*/
package models
