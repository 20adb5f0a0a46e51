// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package campaigns

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/votebox/auth"
	"github.com/danielhkuo/votebox/db"
	"github.com/danielhkuo/votebox/lifecycle"
	"github.com/danielhkuo/votebox/models"
)

// Store owns campaign definitions. Status is never stored; it is derived
// with lifecycle.DeriveStatus on every read that needs it.
type Store struct {
	db  *db.DB
	now func() time.Time
}

func NewStore(d *db.DB) *Store {
	return &Store{db: d, now: time.Now}
}

// WithClock replaces the clock used for createdAt/updatedAt stamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

type campaignRow struct {
	ID              string `db:"id"`
	Title           string `db:"title"`
	Description     string `db:"description"`
	OrganizerID     string `db:"organizer_id"`
	ContractAddress string `db:"contract_address"`
	StartAt         int64  `db:"start_at"`
	EndAt           int64  `db:"end_at"`
	CreatedAt       int64  `db:"created_at"`
	UpdatedAt       int64  `db:"updated_at"`
}

func (r campaignRow) toModel() models.Campaign {
	return models.Campaign{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		OrganizerID:     r.OrganizerID,
		ContractAddress: r.ContractAddress,
		Window: models.Window{
			StartAt: db.FromMillis(r.StartAt),
			EndAt:   db.FromMillis(r.EndAt),
		},
		Options:     []models.Option{},
		Eligibility: []string{},
		CreatedAt:   db.FromMillis(r.CreatedAt),
		UpdatedAt:   db.FromMillis(r.UpdatedAt),
	}
}

type optionRow struct {
	CampaignID string `db:"campaign_id"`
	models.Option
}

type voterRow struct {
	CampaignID string `db:"campaign_id"`
	VoterID    string `db:"voter_id"`
}

const selectCampaign = `
	SELECT id, title, description, organizer_id, contract_address,
	       start_at, end_at, created_at, updated_at
	FROM campaign`

// Create validates def and persists a new campaign. All violated
// constraints are reported together in a *models.ValidationError.
func (s *Store) Create(ctx context.Context, def models.CampaignDefinition) (models.Campaign, error) {
	opts, err := normalizeOptions(def.Options)
	if err != nil {
		return models.Campaign{}, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	c := models.Campaign{
		ID:              auth.NewCampaignID(),
		Title:           def.Title,
		Description:     def.Description,
		OrganizerID:     def.OrganizerID,
		Options:         opts,
		Window:          normalizeWindow(def.Window),
		Eligibility:     normalizeEligibility(def.Eligibility),
		ContractAddress: def.ContractAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	c = trimCampaign(c)

	if err := Validate(c); err != nil {
		return models.Campaign{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Campaign{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO campaign (id, title, description, organizer_id, contract_address,
		                      start_at, end_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), c.ID, c.Title, c.Description, c.OrganizerID, c.ContractAddress,
		db.ToMillis(c.Window.StartAt), db.ToMillis(c.Window.EndAt),
		db.ToMillis(c.CreatedAt), db.ToMillis(c.UpdatedAt))
	if err != nil {
		return models.Campaign{}, fmt.Errorf("failed to insert campaign: %w", err)
	}

	if err := s.insertOptions(ctx, tx, c.ID, c.Options); err != nil {
		return models.Campaign{}, err
	}
	if err := s.insertVoters(ctx, tx, c.ID, c.Eligibility); err != nil {
		return models.Campaign{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Campaign{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("campaign created",
		"campaign_id", c.ID,
		"organizer_id", c.OrganizerID,
		"options", len(c.Options),
	)
	return c, nil
}

// Update merges patch into the campaign and re-validates the result.
// Options may only be appended to, and only while the campaign has no votes.
func (s *Store) Update(ctx context.Context, id string, patch models.CampaignPatch) (models.Campaign, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Campaign{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	c, err := s.load(ctx, tx, id, s.db.ForUpdate())
	if err != nil {
		return models.Campaign{}, err
	}

	if patch.Options != nil {
		votes, err := s.countVotes(ctx, tx, id)
		if err != nil {
			return models.Campaign{}, err
		}
		if votes > 0 {
			return models.Campaign{}, fmt.Errorf("%w: options are frozen after the first vote", models.ErrImmutableField)
		}

		opts, err := normalizeOptions(*patch.Options)
		if err != nil {
			return models.Campaign{}, err
		}
		for i, old := range c.Options {
			if i >= len(opts) || opts[i].ID != old.ID {
				return models.Campaign{}, fmt.Errorf("%w: existing option %q may not be removed or reordered", models.ErrImmutableField, old.ID)
			}
		}
		c.Options = opts
	}

	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.StartAt != nil {
		c.Window.StartAt = *patch.StartAt
	}
	if patch.EndAt != nil {
		c.Window.EndAt = *patch.EndAt
	}
	c.Window = normalizeWindow(c.Window)
	if patch.Eligibility != nil {
		c.Eligibility = normalizeEligibility(*patch.Eligibility)
	}
	if patch.ContractAddress != nil {
		c.ContractAddress = *patch.ContractAddress
	}
	c = trimCampaign(c)
	c.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	if err := Validate(c); err != nil {
		return models.Campaign{}, err
	}

	_, err = tx.ExecContext(ctx, s.db.Rebind(`
		UPDATE campaign
		SET title = ?, description = ?, contract_address = ?,
		    start_at = ?, end_at = ?, updated_at = ?
		WHERE id = ?
	`), c.Title, c.Description, c.ContractAddress,
		db.ToMillis(c.Window.StartAt), db.ToMillis(c.Window.EndAt),
		db.ToMillis(c.UpdatedAt), c.ID)
	if err != nil {
		return models.Campaign{}, fmt.Errorf("failed to update campaign: %w", err)
	}

	if patch.Options != nil {
		if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM campaign_option WHERE campaign_id = ?`), c.ID); err != nil {
			return models.Campaign{}, fmt.Errorf("failed to replace options: %w", err)
		}
		if err := s.insertOptions(ctx, tx, c.ID, c.Options); err != nil {
			return models.Campaign{}, err
		}
	}
	if patch.Eligibility != nil {
		if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM campaign_voter WHERE campaign_id = ?`), c.ID); err != nil {
			return models.Campaign{}, fmt.Errorf("failed to replace eligibility: %w", err)
		}
		if err := s.insertVoters(ctx, tx, c.ID, c.Eligibility); err != nil {
			return models.Campaign{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Campaign{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("campaign updated", "campaign_id", c.ID, "options_changed", patch.Options != nil)
	return c, nil
}

// Delete removes a campaign that has no votes. A campaign with votes is
// never deleted; the error reports how many votes it holds.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var found string
	err = tx.GetContext(ctx, &found, s.db.Rebind(`SELECT id FROM campaign WHERE id = ?`+s.db.ForUpdate()), id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("campaign %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to query campaign: %w", err)
	}

	votes, err := s.countVotes(ctx, tx, id)
	if err != nil {
		return err
	}
	if votes > 0 {
		return fmt.Errorf("%w: %d votes recorded", models.ErrCampaignHasVotes, votes)
	}

	if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM campaign WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("campaign deleted", "campaign_id", id)
	return nil
}

// Get returns one campaign with its options in display order.
func (s *Store) Get(ctx context.Context, id string) (models.Campaign, error) {
	return s.load(ctx, s.db, id, "")
}

// GetForVote loads a campaign inside tx, holding a shared row lock so
// organizer updates to options cannot interleave with the vote insert.
func (s *Store) GetForVote(ctx context.Context, tx *sqlx.Tx, id string) (models.Campaign, error) {
	return s.load(ctx, tx, id, s.db.ForShare())
}

// GetInTx loads a campaign inside tx without row locks, for read-only
// snapshot transactions.
func (s *Store) GetInTx(ctx context.Context, tx *sqlx.Tx, id string) (models.Campaign, error) {
	return s.load(ctx, tx, id, "")
}

// List returns every campaign, oldest first.
func (s *Store) List(ctx context.Context) ([]models.Campaign, error) {
	var rows []campaignRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, selectCampaign+` ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return s.hydrate(ctx, s.db, rows)
}

// ListActive returns the campaigns whose window contains now. The filter
// runs at call time; nothing is cached.
func (s *Store) ListActive(ctx context.Context, now time.Time) ([]models.Campaign, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.Campaign, 0, len(all))
	for _, c := range all {
		if lifecycle.IsActive(c.Window, now) {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *Store) load(ctx context.Context, q sqlx.QueryerContext, id, lock string) (models.Campaign, error) {
	var row campaignRow
	err := sqlx.GetContext(ctx, q, &row, s.db.Rebind(selectCampaign+` WHERE id = ?`+lock), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Campaign{}, fmt.Errorf("campaign %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Campaign{}, fmt.Errorf("failed to query campaign: %w", err)
	}

	list, err := s.hydrate(ctx, q, []campaignRow{row})
	if err != nil {
		return models.Campaign{}, err
	}
	return list[0], nil
}

// hydrate attaches options and allow-lists to rows with one query each.
func (s *Store) hydrate(ctx context.Context, q sqlx.QueryerContext, rows []campaignRow) ([]models.Campaign, error) {
	out := make([]models.Campaign, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]string, len(rows))
	pos := make(map[string]int, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
		ids[i] = r.ID
		pos[r.ID] = i
	}

	query, args, err := sqlx.In(`
		SELECT campaign_id, id, name, description
		FROM campaign_option
		WHERE campaign_id IN (?)
		ORDER BY campaign_id, ordinal
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build options query: %w", err)
	}
	var opts []optionRow
	if err := sqlx.SelectContext(ctx, q, &opts, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	for _, o := range opts {
		i := pos[o.CampaignID]
		out[i].Options = append(out[i].Options, o.Option)
	}

	query, args, err = sqlx.In(`
		SELECT campaign_id, voter_id
		FROM campaign_voter
		WHERE campaign_id IN (?)
		ORDER BY campaign_id, voter_id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build eligibility query: %w", err)
	}
	var voters []voterRow
	if err := sqlx.SelectContext(ctx, q, &voters, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query eligibility: %w", err)
	}
	for _, v := range voters {
		i := pos[v.CampaignID]
		out[i].Eligibility = append(out[i].Eligibility, v.VoterID)
	}

	return out, nil
}

func (s *Store) insertOptions(ctx context.Context, tx *sqlx.Tx, campaignID string, opts []models.Option) error {
	stmt := s.db.Rebind(`
		INSERT INTO campaign_option (campaign_id, id, ordinal, name, description)
		VALUES (?, ?, ?, ?, ?)
	`)
	for i, opt := range opts {
		if _, err := tx.ExecContext(ctx, stmt, campaignID, opt.ID, i, opt.Name, opt.Description); err != nil {
			return fmt.Errorf("failed to insert option %s: %w", opt.ID, err)
		}
	}
	return nil
}

func (s *Store) insertVoters(ctx context.Context, tx *sqlx.Tx, campaignID string, voters []string) error {
	stmt := s.db.Rebind(`INSERT INTO campaign_voter (campaign_id, voter_id) VALUES (?, ?)`)
	for _, v := range voters {
		if _, err := tx.ExecContext(ctx, stmt, campaignID, v); err != nil {
			return fmt.Errorf("failed to insert eligible voter: %w", err)
		}
	}
	return nil
}

func (s *Store) countVotes(ctx context.Context, q sqlx.QueryerContext, campaignID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n, s.db.Rebind(`SELECT COUNT(*) FROM vote_record WHERE campaign_id = ?`), campaignID)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}
