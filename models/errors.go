// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"strings"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrCampaignNotActive   = errors.New("campaign is not active")
	ErrInvalidOption       = errors.New("invalid option")
	ErrVoterNotEligible    = errors.New("voter is not eligible")
	ErrAlreadyVoted        = errors.New("already voted in this campaign")
	ErrImmutableField      = errors.New("field is immutable")
	ErrConcurrencyConflict = errors.New("concurrent write conflict")
	ErrCampaignHasVotes    = errors.New("campaign has recorded votes")
)

type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated constraint of a campaign definition.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
}

// Err returns e when at least one violation was recorded, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ErrorCode names the error kind for API clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCampaignNotActive):
		return "campaign_not_active"
	case errors.Is(err, ErrInvalidOption):
		return "invalid_option"
	case errors.Is(err, ErrVoterNotEligible):
		return "voter_not_eligible"
	case errors.Is(err, ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, ErrImmutableField):
		return "immutable_field"
	case errors.Is(err, ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, ErrCampaignHasVotes):
		return "campaign_has_votes"
	default:
		return "internal"
	}
}
