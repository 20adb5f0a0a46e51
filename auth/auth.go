// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewCampaignID returns a random UUID string.
func NewCampaignID() string {
	return uuid.NewString()
}

// GenerateAdminKey creates an HMAC-based admin key for a campaign
// This is deterministic and verifiable
func GenerateAdminKey(campaignID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(campaignID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the campaign
func ValidateAdminKey(campaignID, adminKey, salt string) error {
	expected := GenerateAdminKey(campaignID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// ReceiptInput is the vote data bound into a receipt.
type ReceiptInput struct {
	CampaignID string
	VoterID    string
	OptionID   string
	CastAt     time.Time
}

// GenerateReceipt returns a 0x-prefixed HMAC-SHA256 over the vote and a
// fresh random nonce, so identical votes never share a receipt.
func GenerateReceipt(salt string, in ReceiptInput) (string, error) {
	nonce, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate receipt nonce: %w", err)
	}

	h := hmac.New(sha256.New, []byte(salt))
	// Length-prefix each field so ("ab","c") and ("a","bc") differ.
	for _, part := range []string{
		in.CampaignID,
		in.VoterID,
		in.OptionID,
		strconv.FormatInt(in.CastAt.UnixNano(), 10),
		nonce.String(),
	} {
		h.Write([]byte(strconv.Itoa(len(part))))
		h.Write([]byte{':'})
		h.Write([]byte(part))
	}
	return "0x" + hex.EncodeToString(h.Sum(nil)), nil
}
