// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/votebox/campaigns"
	"github.com/danielhkuo/votebox/cliparse"
	"github.com/danielhkuo/votebox/db"
	"github.com/danielhkuo/votebox/handlers"
	"github.com/danielhkuo/votebox/ledger"
	"github.com/danielhkuo/votebox/middleware"
	"github.com/danielhkuo/votebox/tally"
)

func NewRouter(d *db.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Domain services
	store := campaigns.NewStore(d)
	voteLedger := ledger.New(d, store, cfg.ReceiptSalt)
	engine := tally.NewEngine(d, store)
	poller := tally.NewPoller(engine, cfg.ResultsPollInterval)

	// Initialize handlers
	campaignHandler := handlers.NewCampaignHandler(store, cfg)
	votingHandler := handlers.NewVotingHandler(voteLedger, poller)
	resultsHandler := handlers.NewResultsHandler(engine, poller, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Campaign management (organizer operations)
	mux.HandleFunc("POST /campaigns", middleware.WithLogging(campaignHandler.CreateCampaign))
	mux.HandleFunc("GET /campaigns", middleware.WithLogging(campaignHandler.ListCampaigns))
	mux.HandleFunc("GET /campaigns/active", middleware.WithLogging(campaignHandler.ListActiveCampaigns))
	mux.HandleFunc("GET /campaigns/{id}", middleware.WithLogging(campaignHandler.GetCampaign))
	mux.HandleFunc("PATCH /campaigns/{id}", middleware.WithLogging(campaignHandler.UpdateCampaign))
	mux.HandleFunc("DELETE /campaigns/{id}", middleware.WithLogging(campaignHandler.DeleteCampaign))

	// Voting operations
	mux.HandleFunc("POST /campaigns/{id}/votes", middleware.WithLogging(
		middleware.WithVoterRateLimit(cfg.VoteRateLimit, cfg.VoteRateBurst, votingHandler.CastVote)))
	mux.HandleFunc("GET /campaigns/{id}/votes/me", middleware.WithLogging(votingHandler.GetMyVote))
	mux.HandleFunc("GET /campaigns/{id}/has-voted", middleware.WithLogging(votingHandler.HasVoted))

	// Results
	mux.HandleFunc("GET /campaigns/{id}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /campaigns/{id}/results/live", middleware.WithLogging(resultsHandler.GetLiveResults))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("votebox API v1"))
	})

	return mux
}
