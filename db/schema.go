// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func (d *DB) CreateSchema(ctx context.Context) error {
	_, err := d.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are stored as UTC unix milliseconds so both drivers agree.
const schema = `
-- Campaigns
CREATE TABLE IF NOT EXISTS campaign (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    organizer_id TEXT NOT NULL,
    contract_address TEXT NOT NULL DEFAULT '',
    start_at BIGINT NOT NULL,
    end_at BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL,
    CHECK (end_at > start_at)
);

CREATE INDEX IF NOT EXISTS idx_campaign_window ON campaign(start_at, end_at);

-- Options, in display order
CREATE TABLE IF NOT EXISTS campaign_option (
    campaign_id TEXT NOT NULL REFERENCES campaign(id) ON DELETE CASCADE,
    id TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (campaign_id, id),
    UNIQUE (campaign_id, ordinal)
);

-- Eligibility allow-list (empty means open)
CREATE TABLE IF NOT EXISTS campaign_voter (
    campaign_id TEXT NOT NULL REFERENCES campaign(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL,
    PRIMARY KEY (campaign_id, voter_id)
);

-- Vote records: one per (campaign, voter), never updated or deleted
CREATE TABLE IF NOT EXISTS vote_record (
    campaign_id TEXT NOT NULL REFERENCES campaign(id),
    voter_id TEXT NOT NULL,
    option_id TEXT NOT NULL,
    cast_at BIGINT NOT NULL,
    receipt TEXT NOT NULL UNIQUE,
    PRIMARY KEY (campaign_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_record_option ON vote_record(campaign_id, option_id);
`
