// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"

	"github.com/danielhkuo/votebox/cliparse"
	"github.com/danielhkuo/votebox/middleware"
	"github.com/danielhkuo/votebox/models"
	"github.com/danielhkuo/votebox/tally"
)

type ResultsHandler struct {
	engine *tally.Engine
	poller *tally.Poller
	cfg    cliparse.Config
}

func NewResultsHandler(engine *tally.Engine, poller *tally.Poller, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{engine: engine, poller: poller, cfg: cfg}
}

// sortParam reads ?sort=, which only changes presentation order.
func sortParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	switch s := r.URL.Query().Get("sort"); s {
	case "", models.SortOptionOrder:
		return models.SortOptionOrder, true
	case models.SortVotesDesc:
		return models.SortVotesDesc, true
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("sort must be %q or %q", models.SortOptionOrder, models.SortVotesDesc))
		return "", false
	}
}

func present(result models.TallyResult, sort string) models.TallyResult {
	if sort == models.SortVotesDesc {
		return tally.SortByVotes(result)
	}
	return result
}

// GetResults handles GET /campaigns/{id}/results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	sort, ok := sortParam(w, r)
	if !ok {
		return
	}

	result, err := h.engine.ComputeResults(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	middleware.JSONResponse(w, http.StatusOK, present(result, sort))
}

// GetLiveResults handles GET /campaigns/{id}/results/live
func (h *ResultsHandler) GetLiveResults(w http.ResponseWriter, r *http.Request) {
	sort, ok := sortParam(w, r)
	if !ok {
		return
	}

	result, err := h.poller.Results(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(h.cfg.ResultsPollInterval.Seconds())))
	middleware.JSONResponse(w, http.StatusOK, present(result, sort))
}
