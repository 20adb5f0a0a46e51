// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package lifecycle derives a campaign's status from its voting window.
package lifecycle

import (
	"time"

	"github.com/danielhkuo/votebox/models"
)

// DeriveStatus maps a window and an instant to a status. Both window
// bounds are inclusive for active. Callers must pass the same now to every
// call within one logical operation.
func DeriveStatus(w models.Window, now time.Time) models.Status {
	switch {
	case now.Before(w.StartAt):
		return models.StatusDraft
	case now.After(w.EndAt):
		return models.StatusClosed
	default:
		return models.StatusActive
	}
}

// IsActive is shorthand for DeriveStatus(w, now) == StatusActive.
func IsActive(w models.Window, now time.Time) bool {
	return DeriveStatus(w, now) == models.StatusActive
}
