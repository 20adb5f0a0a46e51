// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/danielhkuo/votebox/models"
	"github.com/danielhkuo/votebox/testutil"
)

func TestGetResultsHandler(t *testing.T) {
	env := newTestEnv(t)
	campaignID, _ := testutil.CreateTestCampaign(t, env.db, env.cfg, models.StatusActive)

	// opt-c: 2, opt-b: 1, opt-a: 0
	testutil.InsertTestVote(t, env.db, campaignID, "v1", "opt-c")
	testutil.InsertTestVote(t, env.db, campaignID, "v2", "opt-c")
	testutil.InsertTestVote(t, env.db, campaignID, "v3", "opt-b")

	results := func(query string) *models.TallyResult {
		t.Helper()
		w := serve(env.results.GetResults,
			testutil.MakeRequest("GET", "/campaigns/"+campaignID+"/results"+query, nil, nil), campaignID)
		testutil.AssertStatus(t, w, http.StatusOK)
		if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
			t.Errorf("Expected Cache-Control no-store, got %q", cc)
		}
		var r models.TallyResult
		testutil.AssertJSON(t, w, &r)
		return &r
	}

	t.Run("option order", func(t *testing.T) {
		r := results("")
		if r.TotalVotes != 3 {
			t.Errorf("Expected 3 total votes, got %d", r.TotalVotes)
		}
		if len(r.Options) != 3 {
			t.Fatalf("Expected 3 options, got %d", len(r.Options))
		}
		for i, id := range testutil.TestOptionIDs {
			if r.Options[i].OptionID != id {
				t.Errorf("Position %d: expected %s, got %s", i, id, r.Options[i].OptionID)
			}
		}
		if r.Options[2].Count != 2 || r.Options[2].Percentage != 66.7 {
			t.Errorf("Unexpected opt-c tally: %+v", r.Options[2])
		}
		if r.Status != models.StatusActive {
			t.Errorf("Expected active status, got %q", r.Status)
		}
	})

	t.Run("sort by votes", func(t *testing.T) {
		r := results("?sort=votes")
		want := []string{"opt-c", "opt-b", "opt-a"}
		for i, id := range want {
			if r.Options[i].OptionID != id {
				t.Errorf("Position %d: expected %s, got %s", i, id, r.Options[i].OptionID)
			}
		}
	})

	t.Run("bad sort", func(t *testing.T) {
		w := serve(env.results.GetResults,
			testutil.MakeRequest("GET", "/campaigns/"+campaignID+"/results?sort=name", nil, nil), campaignID)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("unknown campaign", func(t *testing.T) {
		w := serve(env.results.GetResults,
			testutil.MakeRequest("GET", "/campaigns/missing/results", nil, nil), "missing")
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestGetLiveResultsHandler(t *testing.T) {
	env := newTestEnv(t)
	campaignID, _ := testutil.CreateTestCampaign(t, env.db, env.cfg, models.StatusActive)

	live := func() models.TallyResult {
		t.Helper()
		w := serve(env.results.GetLiveResults,
			testutil.MakeRequest("GET", "/campaigns/"+campaignID+"/results/live", nil, nil), campaignID)
		testutil.AssertStatus(t, w, http.StatusOK)
		if cc := w.Header().Get("Cache-Control"); cc != "max-age=1" {
			t.Errorf("Expected Cache-Control max-age=1, got %q", cc)
		}
		var r models.TallyResult
		testutil.AssertJSON(t, w, &r)
		return r
	}

	if r := live(); r.TotalVotes != 0 {
		t.Fatalf("Expected empty tally, got %d", r.TotalVotes)
	}

	// Votes cast through the handler drop the cached snapshot.
	w := castVote(env, campaignID, "alice", "opt-a")
	testutil.AssertStatus(t, w, http.StatusCreated)

	r := live()
	if r.TotalVotes != 1 || r.Options[0].Count != 1 {
		t.Errorf("Expected the new vote in live results, got %+v", r)
	}
	if r.Options[0].Percentage != 100 {
		t.Errorf("Expected 100%%, got %v", r.Options[0].Percentage)
	}
}
