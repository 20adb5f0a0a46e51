// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/votebox/auth"
	"github.com/danielhkuo/votebox/campaigns"
	"github.com/danielhkuo/votebox/cliparse"
	"github.com/danielhkuo/votebox/lifecycle"
	"github.com/danielhkuo/votebox/middleware"
	"github.com/danielhkuo/votebox/models"
)

type CampaignHandler struct {
	store *campaigns.Store
	cfg   cliparse.Config
	now   func() time.Time
}

func NewCampaignHandler(store *campaigns.Store, cfg cliparse.Config) *CampaignHandler {
	return &CampaignHandler{store: store, cfg: cfg, now: time.Now}
}

// toCampaignResponse derives status and relative times from a single now.
func toCampaignResponse(c models.Campaign, now time.Time) models.CampaignResponse {
	return models.CampaignResponse{
		Campaign: c,
		Status:   lifecycle.DeriveStatus(c.Window, now),
		StartsIn: humanize.RelTime(c.Window.StartAt, now, "ago", "from now"),
		EndsIn:   humanize.RelTime(c.Window.EndAt, now, "ago", "from now"),
	}
}

func toOptions(req []models.OptionRequest) []models.Option {
	opts := make([]models.Option, len(req))
	for i, o := range req {
		opts[i] = models.Option{ID: o.ID, Name: o.Name, Description: o.Description}
	}
	return opts
}

// CreateCampaign handles POST /campaigns
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	organizerID := r.Header.Get(middleware.HeaderOrganizerID)
	if organizerID == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Organizer-ID header required")
		return
	}

	var req models.CreateCampaignRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, err := h.store.Create(r.Context(), models.CampaignDefinition{
		OrganizerID:     organizerID,
		Title:           req.Title,
		Description:     req.Description,
		Options:         toOptions(req.Options),
		Window:          models.Window{StartAt: req.StartAt, EndAt: req.EndAt},
		Eligibility:     req.Eligibility,
		ContractAddress: req.ContractAddress,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateCampaignResponse{
		Campaign: toCampaignResponse(c, h.now()),
		AdminKey: auth.GenerateAdminKey(c.ID, h.cfg.AdminKeySalt),
	})
}

// ListCampaigns handles GET /campaigns
func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	now := h.now()
	resp := make([]models.CampaignResponse, len(list))
	for i, c := range list {
		resp[i] = toCampaignResponse(c, now)
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// ListActiveCampaigns handles GET /campaigns/active
func (h *CampaignHandler) ListActiveCampaigns(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	list, err := h.store.ListActive(r.Context(), now)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	resp := make([]models.CampaignResponse, len(list))
	for i, c := range list {
		resp[i] = toCampaignResponse(c, now)
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetCampaign handles GET /campaigns/{id}
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, toCampaignResponse(c, h.now()))
}

// UpdateCampaign handles PATCH /campaigns/{id}
func (h *CampaignHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("id")
	if !h.authorize(w, r, campaignID) {
		return
	}

	var req models.UpdateCampaignRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	patch := models.CampaignPatch{
		Title:           req.Title,
		Description:     req.Description,
		StartAt:         req.StartAt,
		EndAt:           req.EndAt,
		Eligibility:     req.Eligibility,
		ContractAddress: req.ContractAddress,
	}
	if req.Options != nil {
		opts := toOptions(*req.Options)
		patch.Options = &opts
	}

	c, err := h.store.Update(r.Context(), campaignID, patch)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, toCampaignResponse(c, h.now()))
}

// DeleteCampaign handles DELETE /campaigns/{id}
func (h *CampaignHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("id")
	if !h.authorize(w, r, campaignID) {
		return
	}

	if err := h.store.Delete(r.Context(), campaignID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CampaignHandler) authorize(w http.ResponseWriter, r *http.Request, campaignID string) bool {
	adminKey := r.Header.Get(middleware.HeaderAdminKey)
	if err := auth.ValidateAdminKey(campaignID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}
