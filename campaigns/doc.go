// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package campaigns stores campaign definitions: title, ordered options,
voting window and eligibility allow-list.

# Rules

Create and Update validate the whole campaign and report every violation
at once as a *models.ValidationError:

  - title and organizer are required
  - at least two options, each with a unique id and a name
  - the window must end strictly after it starts

Options are append-only. Existing options keep their id and position,
names may be edited. Once the first vote is recorded the option list is
frozen and any options patch fails with models.ErrImmutableField.

Delete refuses campaigns that hold votes (models.ErrCampaignHasVotes).
Votes are never removed.

# Status

Nothing here stores a status. ListActive filters by window at call time
using package lifecycle.
*/
package campaigns
