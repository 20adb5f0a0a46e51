// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/votebox/campaigns"
	"github.com/danielhkuo/votebox/cliparse"
	"github.com/danielhkuo/votebox/db"
	"github.com/danielhkuo/votebox/ledger"
	"github.com/danielhkuo/votebox/tally"
	"github.com/danielhkuo/votebox/testutil"
)

type testEnv struct {
	db        *db.DB
	cfg       cliparse.Config
	store     *campaigns.Store
	ledger    *ledger.Ledger
	campaigns *CampaignHandler
	voting    *VotingHandler
	results   *ResultsHandler
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	d := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	store := campaigns.NewStore(d)
	l := ledger.New(d, store, cfg.ReceiptSalt)
	engine := tally.NewEngine(d, store)
	poller := tally.NewPoller(engine, cfg.ResultsPollInterval)

	return testEnv{
		db:        d,
		cfg:       cfg,
		store:     store,
		ledger:    l,
		campaigns: NewCampaignHandler(store, cfg),
		voting:    NewVotingHandler(l, poller),
		results:   NewResultsHandler(engine, poller, cfg),
	}
}

// serve runs h on a request whose {id} path value is campaignID.
func serve(h http.HandlerFunc, req *http.Request, campaignID string) *httptest.ResponseRecorder {
	if campaignID != "" {
		req.SetPathValue("id", campaignID)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}
