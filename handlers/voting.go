// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/danielhkuo/votebox/ledger"
	"github.com/danielhkuo/votebox/middleware"
	"github.com/danielhkuo/votebox/models"
	"github.com/danielhkuo/votebox/tally"
)

type VotingHandler struct {
	ledger *ledger.Ledger
	poller *tally.Poller
	now    func() time.Time
}

// NewVotingHandler wires vote casting. poller may be nil; when set, its
// snapshot is dropped after each accepted vote.
func NewVotingHandler(l *ledger.Ledger, poller *tally.Poller) *VotingHandler {
	return &VotingHandler{ledger: l, poller: poller, now: time.Now}
}

func voterFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	voterID := r.Header.Get(middleware.HeaderVoterID)
	if voterID == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-ID header required")
		return "", false
	}
	return voterID, true
}

// CastVote handles POST /campaigns/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("id")
	voterID, ok := voterFrom(w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	rec, err := h.ledger.CastVote(r.Context(), campaignID, voterID, req.OptionID, h.now())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if h.poller != nil {
		h.poller.Invalidate(campaignID)
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		Receipt: rec.Receipt,
		CastAt:  rec.CastAt,
	})
}

// GetMyVote handles GET /campaigns/{id}/votes/me
func (h *VotingHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("id")
	voterID, ok := voterFrom(w, r)
	if !ok {
		return
	}

	rec, found, err := h.ledger.GetVoteRecord(r.Context(), campaignID, voterID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if !found {
		middleware.WriteError(w, fmt.Errorf("vote record: %w", models.ErrNotFound))
		return
	}
	middleware.JSONResponse(w, http.StatusOK, rec)
}

// HasVoted handles GET /campaigns/{id}/has-voted
func (h *VotingHandler) HasVoted(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("id")
	voterID, ok := voterFrom(w, r)
	if !ok {
		return
	}

	voted, err := h.ledger.HasVoted(r.Context(), campaignID, voterID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.HasVotedResponse{HasVoted: voted})
}
