// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/votebox/models"
)

// StatusForError maps a domain error to its HTTP status.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyVoted),
		errors.Is(err, models.ErrImmutableField),
		errors.Is(err, models.ErrCampaignHasVotes):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidOption),
		errors.Is(err, models.ErrCampaignNotActive):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrVoterNotEligible):
		return http.StatusForbidden
	case errors.Is(err, models.ErrConcurrencyConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as a JSON error with its kind and, for validation
// failures, every violated field. Internal errors are logged and their
// text is not exposed.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusForError(err)
	resp := models.ErrorResponse{
		Error: http.StatusText(status),
		Code:  models.ErrorCode(err),
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		resp.Message = "internal error"
	} else {
		resp.Message = err.Error()
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		resp.Message = models.ErrValidation.Error()
		resp.Violations = verr.Violations
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	JSONResponse(w, status, resp)
}
