// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/danielhkuo/votebox/auth"
	"github.com/danielhkuo/votebox/campaigns"
	"github.com/danielhkuo/votebox/db"
	"github.com/danielhkuo/votebox/lifecycle"
	"github.com/danielhkuo/votebox/metrics"
	"github.com/danielhkuo/votebox/models"
)

const (
	DefaultMaxAttempts    = 4
	DefaultInitialBackoff = 10 * time.Millisecond
	DefaultAnchorTimeout  = 10 * time.Second
)

// Anchor publishes a committed vote somewhere outside the ledger, for
// example a chain or a transparency log. It runs after commit; an error is
// logged and never undoes the vote.
type Anchor interface {
	Anchor(ctx context.Context, rec models.VoteRecord) error
}

// AnchorFunc adapts a function to Anchor.
type AnchorFunc func(ctx context.Context, rec models.VoteRecord) error

func (f AnchorFunc) Anchor(ctx context.Context, rec models.VoteRecord) error {
	return f(ctx, rec)
}

type Option func(*Ledger)

func WithAnchor(a Anchor) Option {
	return func(l *Ledger) { l.anchor = a }
}

// WithRetry bounds transient-conflict retries. maxAttempts counts the
// first try.
func WithRetry(maxAttempts uint, initialBackoff time.Duration) Option {
	return func(l *Ledger) {
		l.maxAttempts = maxAttempts
		l.initialBackoff = initialBackoff
	}
}

// Ledger records at most one vote per (campaign, voter).
type Ledger struct {
	db             *db.DB
	campaigns      *campaigns.Store
	receiptSalt    string
	anchor         Anchor
	anchorTimeout  time.Duration
	maxAttempts    uint
	initialBackoff time.Duration
}

func New(d *db.DB, store *campaigns.Store, receiptSalt string, opts ...Option) *Ledger {
	l := &Ledger{
		db:             d,
		campaigns:      store,
		receiptSalt:    receiptSalt,
		anchorTimeout:  DefaultAnchorTimeout,
		maxAttempts:    DefaultMaxAttempts,
		initialBackoff: DefaultInitialBackoff,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.maxAttempts == 0 {
		l.maxAttempts = 1
	}
	return l
}

// CastVote validates the vote against the campaign as of now and inserts
// it. The insert relies on the (campaign_id, voter_id) primary key, so of
// any number of concurrent calls for one voter exactly one succeeds and
// the rest get models.ErrAlreadyVoted.
func (l *Ledger) CastVote(ctx context.Context, campaignID, voterID, optionID string, now time.Time) (models.VoteRecord, error) {
	start := time.Now()
	outcome := metrics.OutcomeInternal
	defer func() {
		metrics.RecordCastVote(outcome, time.Since(start).Seconds())
	}()

	voterID = normalizeVoter(voterID)
	if voterID == "" {
		outcome = metrics.OutcomeRejected
		v := &models.ValidationError{}
		v.Add("voter_id", "must not be empty")
		return models.VoteRecord{}, v
	}

	rec, err := l.withRetry(ctx, func() (models.VoteRecord, error) {
		return l.castOnce(ctx, campaignID, voterID, optionID, now)
	})
	if err != nil {
		outcome = outcomeFor(err)
		switch outcome {
		case metrics.OutcomeDuplicate:
			slog.Info("duplicate vote rejected", "campaign_id", campaignID)
		case metrics.OutcomeRejected:
			slog.Info("vote rejected", "campaign_id", campaignID, "reason", models.ErrorCode(err))
		default:
			slog.Error("failed to cast vote", "campaign_id", campaignID, "error", err)
		}
		return models.VoteRecord{}, err
	}

	outcome = metrics.OutcomeAccepted
	slog.Info("vote cast", "campaign_id", campaignID, "option_id", optionID)

	l.runAnchor(ctx, rec)
	return rec, nil
}

// withRetry retries op while it fails with a transient storage conflict.
// Any other error ends the loop at once.
func (l *Ledger) withRetry(ctx context.Context, op func() (models.VoteRecord, error)) (models.VoteRecord, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.initialBackoff
	b.MaxInterval = 20 * l.initialBackoff

	attempt := 0
	rec, err := backoff.Retry(ctx, func() (models.VoteRecord, error) {
		attempt++
		if attempt > 1 {
			metrics.RecordRetry()
		}
		rec, err := op()
		if err == nil {
			return rec, nil
		}
		if db.IsTransient(err) {
			slog.Debug("transient conflict, retrying", "attempt", attempt, "error", err)
			return rec, err
		}
		return rec, backoff.Permanent(err)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(l.maxAttempts))

	if err == nil {
		return rec, nil
	}
	// The final attempt can come back still marked permanent.
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	if db.IsTransient(err) {
		return models.VoteRecord{}, fmt.Errorf("%w after %d attempts: %v", models.ErrConcurrencyConflict, attempt, err)
	}
	return models.VoteRecord{}, err
}

func (l *Ledger) castOnce(ctx context.Context, campaignID, voterID, optionID string, now time.Time) (models.VoteRecord, error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.VoteRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	c, err := l.campaigns.GetForVote(ctx, tx, campaignID)
	if err != nil {
		return models.VoteRecord{}, err
	}

	// One now for both window bounds.
	if status := lifecycle.DeriveStatus(c.Window, now); status != models.StatusActive {
		return models.VoteRecord{}, fmt.Errorf("%w: campaign is %s", models.ErrCampaignNotActive, status)
	}
	if !c.HasOption(optionID) {
		return models.VoteRecord{}, fmt.Errorf("%w: %q", models.ErrInvalidOption, optionID)
	}
	if !c.AllowsVoter(voterID) {
		return models.VoteRecord{}, models.ErrVoterNotEligible
	}

	rec := models.VoteRecord{
		CampaignID: campaignID,
		VoterID:    voterID,
		OptionID:   optionID,
		CastAt:     now.UTC().Truncate(time.Millisecond),
	}
	rec.Receipt, err = auth.GenerateReceipt(l.receiptSalt, auth.ReceiptInput{
		CampaignID: rec.CampaignID,
		VoterID:    rec.VoterID,
		OptionID:   rec.OptionID,
		CastAt:     rec.CastAt,
	})
	if err != nil {
		return models.VoteRecord{}, err
	}

	_, err = tx.ExecContext(ctx, l.db.Rebind(`
		INSERT INTO vote_record (campaign_id, voter_id, option_id, cast_at, receipt)
		VALUES (?, ?, ?, ?, ?)
	`), rec.CampaignID, rec.VoterID, rec.OptionID, db.ToMillis(rec.CastAt), rec.Receipt)
	if db.IsUniqueViolation(err) {
		return models.VoteRecord{}, models.ErrAlreadyVoted
	}
	if err != nil {
		return models.VoteRecord{}, fmt.Errorf("failed to insert vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.VoteRecord{}, fmt.Errorf("failed to commit vote: %w", err)
	}
	return rec, nil
}

// runAnchor detaches from the caller's cancellation: the vote is
// committed and stands whether or not the client is still waiting.
func (l *Ledger) runAnchor(ctx context.Context, rec models.VoteRecord) {
	if l.anchor == nil {
		return
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.anchorTimeout)
	defer cancel()

	if err := l.anchor.Anchor(actx, rec); err != nil {
		metrics.RecordAnchor(false)
		slog.Warn("failed to anchor vote",
			"campaign_id", rec.CampaignID,
			"receipt", rec.Receipt,
			"error", err,
		)
		return
	}
	metrics.RecordAnchor(true)
}

// normalizeVoter gives the form voter ids are stored and looked up in.
func normalizeVoter(id string) string {
	return strings.TrimSpace(id)
}

// HasVoted reports whether voterID has a vote in campaignID. An unknown
// campaign simply has no votes.
func (l *Ledger) HasVoted(ctx context.Context, campaignID, voterID string) (bool, error) {
	voterID = normalizeVoter(voterID)
	var n int
	err := l.db.GetContext(ctx, &n, l.db.Rebind(`
		SELECT COUNT(*) FROM vote_record WHERE campaign_id = ? AND voter_id = ?
	`), campaignID, voterID)
	if err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}
	return n > 0, nil
}

type voteRow struct {
	CampaignID string `db:"campaign_id"`
	VoterID    string `db:"voter_id"`
	OptionID   string `db:"option_id"`
	CastAt     int64  `db:"cast_at"`
	Receipt    string `db:"receipt"`
}

// GetVoteRecord returns the voter's record; found is false when there is none.
func (l *Ledger) GetVoteRecord(ctx context.Context, campaignID, voterID string) (rec models.VoteRecord, found bool, err error) {
	voterID = normalizeVoter(voterID)
	var row voteRow
	err = l.db.GetContext(ctx, &row, l.db.Rebind(`
		SELECT campaign_id, voter_id, option_id, cast_at, receipt
		FROM vote_record
		WHERE campaign_id = ? AND voter_id = ?
	`), campaignID, voterID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VoteRecord{}, false, nil
	}
	if err != nil {
		return models.VoteRecord{}, false, fmt.Errorf("failed to query vote: %w", err)
	}

	return models.VoteRecord{
		CampaignID: row.CampaignID,
		VoterID:    row.VoterID,
		OptionID:   row.OptionID,
		CastAt:     db.FromMillis(row.CastAt),
		Receipt:    row.Receipt,
	}, true, nil
}

// VoteCount returns the number of votes recorded for a campaign.
func (l *Ledger) VoteCount(ctx context.Context, campaignID string) (int, error) {
	var n int
	err := l.db.GetContext(ctx, &n, l.db.Rebind(`SELECT COUNT(*) FROM vote_record WHERE campaign_id = ?`), campaignID)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, models.ErrAlreadyVoted):
		return metrics.OutcomeDuplicate
	case errors.Is(err, models.ErrConcurrencyConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrCampaignNotActive),
		errors.Is(err, models.ErrInvalidOption),
		errors.Is(err, models.ErrVoterNotEligible),
		errors.Is(err, models.ErrValidation):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeInternal
	}
}
