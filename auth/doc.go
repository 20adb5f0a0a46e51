// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides organizer keys, receipts, and ID generation.

Voter identity is authenticated upstream; this package never verifies
voters, it only issues and checks organizer keys.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(campaignID, salt)
	err := auth.ValidateAdminKey(campaignID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same campaign ID and salt always produce the same key. This allows
validation without storing the key in the database.

# Receipts

Receipts are returned to voters as proof their vote was accepted:

	receipt, err := auth.GenerateReceipt(salt, auth.ReceiptInput{...})

The format is 0x followed by 64 hex characters. Each receipt binds the
campaign, voter, option, cast time and a random nonce.

# ID Generation

	id := auth.NewCampaignID()    // UUID
	id, err := auth.GenerateID(6) // 12 hex characters, used for option ids
*/
package auth
