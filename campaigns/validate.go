// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package campaigns

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/danielhkuo/votebox/auth"
	"github.com/danielhkuo/votebox/models"
)

const (
	MinOptions     = 2
	MaxOptions     = 64
	MaxTitleLength = 200
)

// Validate checks a complete campaign and collects every violation.
// It returns nil or a *models.ValidationError.
func Validate(c models.Campaign) error {
	v := &models.ValidationError{}

	if c.Title == "" {
		v.Add("title", "must not be empty")
	} else if len(c.Title) > MaxTitleLength {
		v.Add("title", fmt.Sprintf("must be at most %d characters", MaxTitleLength))
	}
	if c.OrganizerID == "" {
		v.Add("organizer_id", "must not be empty")
	}

	if len(c.Options) < MinOptions {
		v.Add("options", fmt.Sprintf("at least %d options are required", MinOptions))
	}
	if len(c.Options) > MaxOptions {
		v.Add("options", fmt.Sprintf("at most %d options are allowed", MaxOptions))
	}
	seen := make(map[string]bool, len(c.Options))
	for i, opt := range c.Options {
		field := fmt.Sprintf("options[%d]", i)
		if opt.ID == "" {
			v.Add(field+".id", "must not be empty")
		} else if seen[opt.ID] {
			v.Add(field+".id", fmt.Sprintf("duplicate option id %q", opt.ID))
		}
		seen[opt.ID] = true
		if opt.Name == "" {
			v.Add(field+".name", "must not be empty")
		}
	}

	if c.Window.StartAt.IsZero() {
		v.Add("window.start_at", "is required")
	}
	if c.Window.EndAt.IsZero() {
		v.Add("window.end_at", "is required")
	}
	if !c.Window.StartAt.IsZero() && !c.Window.EndAt.IsZero() && !c.Window.EndAt.After(c.Window.StartAt) {
		v.Add("window.end_at", "must be after start_at")
	}

	for i, voter := range c.Eligibility {
		if voter == "" {
			v.Add(fmt.Sprintf("eligibility[%d]", i), "must not be empty")
		}
	}

	return v.Err()
}

// normalizeOptions trims names and assigns an id to every option that
// arrived without one.
func normalizeOptions(in []models.Option) ([]models.Option, error) {
	out := make([]models.Option, len(in))
	for i, opt := range in {
		opt.ID = strings.TrimSpace(opt.ID)
		opt.Name = strings.TrimSpace(opt.Name)
		opt.Description = strings.TrimSpace(opt.Description)
		if opt.ID == "" {
			id, err := auth.GenerateID(6)
			if err != nil {
				return nil, err
			}
			opt.ID = id
		}
		out[i] = opt
	}
	return out, nil
}

// Timestamps are stored with millisecond precision.
func normalizeWindow(w models.Window) models.Window {
	norm := func(t time.Time) time.Time {
		if t.IsZero() {
			return t
		}
		return t.UTC().Truncate(time.Millisecond)
	}
	return models.Window{StartAt: norm(w.StartAt), EndAt: norm(w.EndAt)}
}

// normalizeEligibility trims, dedupes and sorts the allow-list, matching
// the order it is read back in. Blank entries are kept so Validate can
// report them.
func normalizeEligibility(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" && seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func trimCampaign(c models.Campaign) models.Campaign {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.OrganizerID = strings.TrimSpace(c.OrganizerID)
	c.ContractAddress = strings.TrimSpace(c.ContractAddress)
	return c
}
