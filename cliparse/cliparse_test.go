// cliparse/cliparse_test.go
package cliparse

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("ADMIN_KEY_SALT", "test-salt")
	t.Setenv("RECEIPT_SALT", "test-receipt")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("RESULTS_POLL_INTERVAL", "2s")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.ResultsPollInterval != 2*time.Second {
		t.Errorf("expected poll interval 2s, got %s", cfg.ResultsPollInterval)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabaseSQLite {
		t.Errorf("expected default database type sqlite, got %q", cfg.DatabaseType)
	}
	if cfg.ResultsPollInterval != 5*time.Second {
		t.Errorf("expected default poll interval 5s, got %s", cfg.ResultsPollInterval)
	}
	if cfg.VoteRateBurst != 10 {
		t.Errorf("expected default burst 10, got %d", cfg.VoteRateBurst)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-admin-salt", "s1", "-receipt-salt", "s2"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.AdminKeySalt != "s1" || cfg.ReceiptSalt != "s2" {
		t.Errorf("expected salts from flags, got %q and %q", cfg.AdminKeySalt, cfg.ReceiptSalt)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr string
	}{
		{
			name:    "missing database url",
			env:     map[string]string{"ADMIN_KEY_SALT": "a", "RECEIPT_SALT": "b"},
			wantErr: "database URL required",
		},
		{
			name:    "missing admin salt",
			env:     map[string]string{"DATABASE_URL": "x", "RECEIPT_SALT": "b"},
			wantErr: "ADMIN_KEY_SALT required",
		},
		{
			name:    "missing receipt salt",
			env:     map[string]string{"DATABASE_URL": "x", "ADMIN_KEY_SALT": "a"},
			wantErr: "RECEIPT_SALT required",
		},
		{
			name:    "unknown database type",
			env:     map[string]string{"DATABASE_URL": "x", "ADMIN_KEY_SALT": "a", "RECEIPT_SALT": "b"},
			args:    []string{"-t", "mysql"},
			wantErr: "unsupported database type",
		},
		{
			name:    "malformed port",
			env:     map[string]string{"PORT": "not-a-number"},
			wantErr: "failed to process environment config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DATABASE_URL", "ADMIN_KEY_SALT", "RECEIPT_SALT"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := ParseFlags(tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
