// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/votebox/auth"
	"github.com/danielhkuo/votebox/cliparse"
	"github.com/danielhkuo/votebox/db"
	"github.com/danielhkuo/votebox/models"
)

// TestPostgresURLEnv names the variable that switches tests to Postgres.
// Unset, every test gets its own SQLite file.
const TestPostgresURLEnv = "VOTEBOX_TEST_POSTGRES_URL"

// Default option ids created by CreateTestCampaign, in display order
var TestOptionIDs = []string{"opt-a", "opt-b", "opt-c"}

// SetupTestDB opens a fresh database with the full schema
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()
	ctx := context.Background()

	if url := os.Getenv(TestPostgresURLEnv); url != "" {
		d, err := db.Open(ctx, cliparse.DatabasePostgres, url)
		if err != nil {
			t.Fatalf("Failed to open test database: %v", err)
		}
		// Clean up rows from earlier tests
		_, err = d.Exec(`
			DELETE FROM vote_record;
			DELETE FROM campaign_voter;
			DELETE FROM campaign_option;
			DELETE FROM campaign;
		`)
		if err != nil {
			t.Fatalf("Failed to clean database: %v", err)
		}
		t.Cleanup(func() { d.Close() })
		return d
	}

	path := filepath.Join(t.TempDir(), "votebox.db")
	d, err := db.Open(ctx, cliparse.DatabaseSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                3318,
		DatabaseURL:         "votebox-test.db",
		DatabaseType:        cliparse.DatabaseSQLite,
		AdminKeySalt:        "test-admin-salt",
		ReceiptSalt:         "test-receipt-salt",
		LogLevel:            "debug",
		ResultsPollInterval: time.Second,
		VoteRateLimit:       1000,
		VoteRateBurst:       1000,
		ShutdownTimeout:     time.Second,
	}
}

// WindowFor returns a one-hour window placing now in the requested status
func WindowFor(status models.Status, now time.Time) models.Window {
	now = now.UTC().Truncate(time.Millisecond)
	switch status {
	case models.StatusDraft:
		return models.Window{StartAt: now.Add(time.Hour), EndAt: now.Add(2 * time.Hour)}
	case models.StatusClosed:
		return models.Window{StartAt: now.Add(-2 * time.Hour), EndAt: now.Add(-time.Hour)}
	default:
		return models.Window{StartAt: now.Add(-time.Hour), EndAt: now.Add(time.Hour)}
	}
}

// CreateTestCampaign inserts a campaign with TestOptionIDs whose window
// places the current time in status. It returns the id and admin key.
func CreateTestCampaign(t *testing.T, d *db.DB, cfg cliparse.Config, status models.Status) (campaignID, adminKey string) {
	t.Helper()
	return CreateTestCampaignWindow(t, d, cfg, WindowFor(status, time.Now()))
}

// CreateTestCampaignWindow inserts a campaign with an explicit window
func CreateTestCampaignWindow(t *testing.T, d *db.DB, cfg cliparse.Config, w models.Window) (campaignID, adminKey string) {
	t.Helper()

	campaignID = auth.NewCampaignID()
	adminKey = auth.GenerateAdminKey(campaignID, cfg.AdminKeySalt)
	now := db.ToMillis(time.Now())

	_, err := d.Exec(d.Rebind(`
		INSERT INTO campaign (id, title, description, organizer_id, contract_address,
		                      start_at, end_at, created_at, updated_at)
		VALUES (?, 'Test Campaign', 'A test campaign', 'test-organizer', '', ?, ?, ?, ?)
	`), campaignID, db.ToMillis(w.StartAt), db.ToMillis(w.EndAt), now, now)
	if err != nil {
		t.Fatalf("Failed to create test campaign: %v", err)
	}

	for i, id := range TestOptionIDs {
		_, err := d.Exec(d.Rebind(`
			INSERT INTO campaign_option (campaign_id, id, ordinal, name, description)
			VALUES (?, ?, ?, ?, '')
		`), campaignID, id, i, "Option "+id)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
	}

	return campaignID, adminKey
}

// AddTestVoter puts voterID on the campaign allow-list
func AddTestVoter(t *testing.T, d *db.DB, campaignID, voterID string) {
	t.Helper()

	_, err := d.Exec(d.Rebind(`
		INSERT INTO campaign_voter (campaign_id, voter_id) VALUES (?, ?)
	`), campaignID, voterID)
	if err != nil {
		t.Fatalf("Failed to add test voter: %v", err)
	}
}

// InsertTestVote writes a vote record directly, bypassing the ledger
func InsertTestVote(t *testing.T, d *db.DB, campaignID, voterID, optionID string) {
	t.Helper()

	receipt, _ := auth.GenerateID(32)
	_, err := d.Exec(d.Rebind(`
		INSERT INTO vote_record (campaign_id, voter_id, option_id, cast_at, receipt)
		VALUES (?, ?, ?, ?, ?)
	`), campaignID, voterID, optionID, db.ToMillis(time.Now()), "0x"+receipt)
	if err != nil {
		t.Fatalf("Failed to insert test vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
