// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package campaigns

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/votebox/models"
	"github.com/danielhkuo/votebox/testutil"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func validDefinition() models.CampaignDefinition {
	return models.CampaignDefinition{
		OrganizerID: "org-1",
		Title:       "Best Fruit",
		Description: "Pick one",
		Options: []models.Option{
			{ID: "apple", Name: "Apple"},
			{ID: "banana", Name: "Banana"},
		},
		Window: models.Window{
			StartAt: baseTime,
			EndAt:   baseTime.Add(24 * time.Hour),
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	d := testutil.SetupTestDB(t)
	return NewStore(d).WithClock(func() time.Time { return baseTime })
}

func TestCreateCampaign(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.Create(ctx, validDefinition())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.ID == "" {
		t.Fatal("Expected generated campaign ID")
	}
	if !c.CreatedAt.Equal(baseTime) {
		t.Errorf("Expected created_at %v, got %v", baseTime, c.CreatedAt)
	}

	got, err := s.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Best Fruit" || got.OrganizerID != "org-1" {
		t.Errorf("Unexpected campaign: %+v", got)
	}
	if len(got.Options) != 2 || got.Options[0].ID != "apple" || got.Options[1].ID != "banana" {
		t.Errorf("Options not stored in order: %+v", got.Options)
	}
	if !got.Window.StartAt.Equal(baseTime) || !got.Window.EndAt.Equal(baseTime.Add(24*time.Hour)) {
		t.Errorf("Window not round-tripped: %+v", got.Window)
	}
	if len(got.Eligibility) != 0 {
		t.Errorf("Expected open eligibility, got %v", got.Eligibility)
	}
}

func TestCreateCampaignGeneratesOptionIDs(t *testing.T) {
	s := newTestStore(t)

	def := validDefinition()
	def.Options = []models.Option{{Name: "Red"}, {Name: "Blue"}}

	c, err := s.Create(context.Background(), def)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.Options[0].ID == "" || c.Options[1].ID == "" {
		t.Fatalf("Expected generated option IDs, got %+v", c.Options)
	}
	if c.Options[0].ID == c.Options[1].ID {
		t.Error("Generated option IDs collide")
	}
}

func TestCreateCampaignEligibility(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	def := validDefinition()
	def.Eligibility = []string{"carol", " alice ", "alice", "bob"}

	c, err := s.Create(ctx, def)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	if strings.Join(got.Eligibility, ",") != strings.Join(want, ",") {
		t.Errorf("Expected eligibility %v, got %v", want, got.Eligibility)
	}
	if strings.Join(c.Eligibility, ",") != strings.Join(want, ",") {
		t.Errorf("Create returned eligibility %v, want %v", c.Eligibility, want)
	}
}

func TestCreateCampaignValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.CampaignDefinition)
		fields []string
	}{
		{
			name:   "empty title",
			mutate: func(d *models.CampaignDefinition) { d.Title = "   " },
			fields: []string{"title"},
		},
		{
			name:   "missing organizer",
			mutate: func(d *models.CampaignDefinition) { d.OrganizerID = "" },
			fields: []string{"organizer_id"},
		},
		{
			name:   "single option",
			mutate: func(d *models.CampaignDefinition) { d.Options = d.Options[:1] },
			fields: []string{"options"},
		},
		{
			name: "duplicate option id",
			mutate: func(d *models.CampaignDefinition) {
				d.Options = []models.Option{{ID: "x", Name: "X"}, {ID: "x", Name: "Y"}}
			},
			fields: []string{"options[1].id"},
		},
		{
			name: "blank option name",
			mutate: func(d *models.CampaignDefinition) {
				d.Options[1].Name = ""
			},
			fields: []string{"options[1].name"},
		},
		{
			name: "end equals start",
			mutate: func(d *models.CampaignDefinition) {
				d.Window.EndAt = d.Window.StartAt
			},
			fields: []string{"window.end_at"},
		},
		{
			name: "every violation reported together",
			mutate: func(d *models.CampaignDefinition) {
				d.Title = ""
				d.Options = d.Options[:1]
				d.Window.EndAt = d.Window.StartAt.Add(-time.Minute)
			},
			fields: []string{"title", "options", "window.end_at"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)

			def := validDefinition()
			tt.mutate(&def)

			_, err := s.Create(context.Background(), def)
			if !errors.Is(err, models.ErrValidation) {
				t.Fatalf("Expected validation error, got %v", err)
			}

			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ValidationError, got %T", err)
			}
			got := map[string]bool{}
			for _, v := range verr.Violations {
				got[v.Field] = true
			}
			for _, f := range tt.fields {
				if !got[f] {
					t.Errorf("Expected violation on %q, got %+v", f, verr.Violations)
				}
			}

			all, err := s.List(context.Background())
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(all) != 0 {
				t.Errorf("Invalid campaign was persisted")
			}
		})
	}
}

func TestGetCampaignNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	windows := map[string]models.Window{
		"draft":  {StartAt: baseTime.Add(time.Hour), EndAt: baseTime.Add(2 * time.Hour)},
		"active": {StartAt: baseTime.Add(-time.Hour), EndAt: baseTime.Add(time.Hour)},
		"closed": {StartAt: baseTime.Add(-2 * time.Hour), EndAt: baseTime.Add(-time.Hour)},
		"edge":   {StartAt: baseTime, EndAt: baseTime.Add(time.Minute)},
	}
	for title, w := range windows {
		def := validDefinition()
		def.Title = title
		def.Window = w
		if _, err := s.Create(ctx, def); err != nil {
			t.Fatalf("Create %s failed: %v", title, err)
		}
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Expected 4 campaigns, got %d", len(all))
	}

	active, err := s.ListActive(ctx, baseTime)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	titles := map[string]bool{}
	for _, c := range active {
		titles[c.Title] = true
		if len(c.Options) != 2 {
			t.Errorf("Campaign %s missing options", c.Title)
		}
	}
	if len(active) != 2 || !titles["active"] || !titles["edge"] {
		t.Errorf("Expected active and edge campaigns, got %v", titles)
	}

	// The same data viewed later: only the window decides
	later, err := s.ListActive(ctx, baseTime.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(later) != 1 || later[0].Title != "draft" {
		t.Errorf("Expected only draft to be active later, got %+v", later)
	}
}

func TestUpdateCampaign(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.Create(ctx, validDefinition())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	s.WithClock(func() time.Time { return baseTime.Add(time.Minute) })

	title := "Best Fruit 2025"
	newWindow := models.Window{StartAt: baseTime.Add(time.Hour), EndAt: baseTime.Add(48 * time.Hour)}
	opts := append(append([]models.Option{}, c.Options...), models.Option{ID: "cherry", Name: "Cherry"})
	opts[0].Name = "Green Apple"

	updated, err := s.Update(ctx, c.ID, models.CampaignPatch{
		Title:   &title,
		StartAt: &newWindow.StartAt,
		EndAt:   &newWindow.EndAt,
		Options: &opts,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != title {
		t.Errorf("Expected title %q, got %q", title, updated.Title)
	}
	if !updated.UpdatedAt.Equal(baseTime.Add(time.Minute)) {
		t.Errorf("Expected updated_at bump, got %v", updated.UpdatedAt)
	}

	got, err := s.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Options) != 3 || got.Options[2].ID != "cherry" || got.Options[0].Name != "Green Apple" {
		t.Errorf("Options not updated: %+v", got.Options)
	}
	if !got.Window.EndAt.Equal(newWindow.EndAt) {
		t.Errorf("Window not updated: %+v", got.Window)
	}
	if got.Description != "Pick one" {
		t.Errorf("Unpatched field changed: %q", got.Description)
	}
}

func TestUpdateCampaignRejectsRemovingOptions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	def := validDefinition()
	def.Options = append(def.Options, models.Option{ID: "cherry", Name: "Cherry"})
	c, err := s.Create(ctx, def)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	reordered := []models.Option{c.Options[1], c.Options[0], c.Options[2]}
	_, err = s.Update(ctx, c.ID, models.CampaignPatch{Options: &reordered})
	if !errors.Is(err, models.ErrImmutableField) {
		t.Errorf("Expected ErrImmutableField for reorder, got %v", err)
	}

	removed := c.Options[:2]
	_, err = s.Update(ctx, c.ID, models.CampaignPatch{Options: &removed})
	if !errors.Is(err, models.ErrImmutableField) {
		t.Errorf("Expected ErrImmutableField for removal, got %v", err)
	}
}

func TestUpdateCampaignOptionsFrozenAfterVote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.Create(ctx, validDefinition())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	testutil.InsertTestVote(t, s.db, c.ID, "voter-1", "apple")

	opts := append(append([]models.Option{}, c.Options...), models.Option{ID: "cherry", Name: "Cherry"})
	_, err = s.Update(ctx, c.ID, models.CampaignPatch{Options: &opts})
	if !errors.Is(err, models.ErrImmutableField) {
		t.Fatalf("Expected ErrImmutableField, got %v", err)
	}

	// Non-option fields stay editable
	title := "Renamed"
	if _, err := s.Update(ctx, c.ID, models.CampaignPatch{Title: &title}); err != nil {
		t.Errorf("Title update after vote failed: %v", err)
	}
}

func TestUpdateCampaignValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.Create(ctx, validDefinition())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	empty := ""
	_, err = s.Update(ctx, c.ID, models.CampaignPatch{Title: &empty})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}

	badEnd := baseTime.Add(-time.Hour)
	_, err = s.Update(ctx, c.ID, models.CampaignPatch{EndAt: &badEnd})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}

	_, err = s.Update(ctx, "missing", models.CampaignPatch{Title: &empty})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCampaign(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.Create(ctx, validDefinition())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, c.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, c.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteCampaignWithVotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.Create(ctx, validDefinition())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	testutil.InsertTestVote(t, s.db, c.ID, "voter-1", "apple")
	testutil.InsertTestVote(t, s.db, c.ID, "voter-2", "banana")

	err = s.Delete(ctx, c.ID)
	if !errors.Is(err, models.ErrCampaignHasVotes) {
		t.Fatalf("Expected ErrCampaignHasVotes, got %v", err)
	}
	if !strings.Contains(err.Error(), "2 votes") {
		t.Errorf("Expected vote count in error, got %q", err.Error())
	}
	if _, err := s.Get(ctx, c.ID); err != nil {
		t.Errorf("Campaign should survive blocked delete: %v", err)
	}
}
