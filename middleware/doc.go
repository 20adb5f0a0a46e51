// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /campaigns", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms).

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows GET, POST, PATCH, DELETE, OPTIONS and the identity headers
X-Voter-ID, X-Organizer-ID and X-Admin-Key.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")

WriteError turns a domain error into the matching status and a body
carrying a machine-readable code:

	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	ErrValidation                              400 (with violations)
	ErrNotFound                                404
	ErrAlreadyVoted, ErrImmutableField,
	ErrCampaignHasVotes                        409
	ErrInvalidOption, ErrCampaignNotActive     422
	ErrVoterNotEligible                        403
	ErrConcurrencyConflict                     503 (Retry-After: 1)
	anything else                              500, text not exposed

# Rate Limiting

WithVoterRateLimit puts a token bucket in front of vote casting, one per
X-Voter-ID (or client IP when the header is missing). Callers over budget
get 429.
*/
package middleware
