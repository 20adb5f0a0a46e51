// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/danielhkuo/votebox/campaigns"
	"github.com/danielhkuo/votebox/db"
	"github.com/danielhkuo/votebox/lifecycle"
	"github.com/danielhkuo/votebox/metrics"
	"github.com/danielhkuo/votebox/models"
)

// Engine computes results from committed vote records. It keeps no
// counters of its own.
type Engine struct {
	db        *db.DB
	campaigns *campaigns.Store
	now       func() time.Time
}

func NewEngine(d *db.DB, store *campaigns.Store) *Engine {
	return &Engine{db: d, campaigns: store, now: time.Now}
}

// WithClock replaces the clock used for status and computedAt.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

type optionCount struct {
	OptionID string `db:"option_id"`
	Votes    int    `db:"votes"`
}

// ComputeResults tallies one campaign. The options and the grouped
// counts are read in a single snapshot, so the per-option counts always
// sum to TotalVotes. Options without votes are included with count 0, in
// campaign option order.
func (e *Engine) ComputeResults(ctx context.Context, campaignID string) (models.TallyResult, error) {
	start := time.Now()
	defer func() {
		metrics.RecordTally(time.Since(start).Seconds())
	}()

	tx, err := e.db.BeginTxx(ctx, e.db.SnapshotTxOptions())
	if err != nil {
		return models.TallyResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	c, err := e.campaigns.GetInTx(ctx, tx, campaignID)
	if err != nil {
		return models.TallyResult{}, err
	}

	var counts []optionCount
	err = tx.SelectContext(ctx, &counts, e.db.Rebind(`
		SELECT option_id, COUNT(*) AS votes
		FROM vote_record
		WHERE campaign_id = ?
		GROUP BY option_id
	`), campaignID)
	if err != nil {
		return models.TallyResult{}, fmt.Errorf("failed to count votes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.TallyResult{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	now := e.now()
	result := models.TallyResult{
		CampaignID:    c.ID,
		CampaignTitle: c.Title,
		Status:        lifecycle.DeriveStatus(c.Window, now),
		Options:       make([]models.OptionTally, len(c.Options)),
		ComputedAt:    now.UTC(),
	}
	for i, opt := range c.Options {
		result.Options[i] = models.OptionTally{OptionID: opt.ID, Name: opt.Name}
	}

	idx := c.OptionIndex()
	for _, oc := range counts {
		i, ok := idx[oc.OptionID]
		if !ok {
			// Options are frozen once votes exist, so this is corruption.
			slog.Error("vote for unknown option", "campaign_id", campaignID, "option_id", oc.OptionID)
			return models.TallyResult{}, fmt.Errorf("campaign %s has votes for unknown option %q", campaignID, oc.OptionID)
		}
		result.Options[i].Count = oc.Votes
		result.TotalVotes += oc.Votes
	}

	for i := range result.Options {
		result.Options[i].Percentage = Percentage(result.Options[i].Count, result.TotalVotes)
	}

	slog.Debug("tally computed", "campaign_id", campaignID, "total_votes", result.TotalVotes)
	return result, nil
}

// Percentage returns count/total as a percentage rounded to one decimal,
// or 0 when total is 0.
func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// SortByVotes returns a copy of r with options ordered by count,
// descending. Ties keep campaign option order.
func SortByVotes(r models.TallyResult) models.TallyResult {
	r.Options = slices.Clone(r.Options)
	slices.SortStableFunc(r.Options, func(a, b models.OptionTally) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return r
}
