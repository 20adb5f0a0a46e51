// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally computes campaign results from the vote ledger.

Results are never stored. ComputeResults reads the campaign options and
a GROUP BY over vote_record in one snapshot transaction, so the
per-option counts always add up to the total. Percentages are rounded to
one decimal and are 0 for every option while there are no votes.

Poller fronts the engine for live displays. A snapshot is reused for up
to one poll interval and concurrent refreshes share a single query.
Casting a vote is unaffected by the cache.
*/
package tally
