package cliparse

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port         int    `env:"PORT,default=3318"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE,default=sqlite"`
	AdminKeySalt string `env:"ADMIN_KEY_SALT"`
	ReceiptSalt  string `env:"RECEIPT_SALT"`
	LogLevel     string `env:"LOG_LEVEL,default=info"`

	ResultsPollInterval time.Duration `env:"RESULTS_POLL_INTERVAL,default=5s"`
	VoteRateLimit       float64       `env:"VOTE_RATE_LIMIT,default=5"`
	VoteRateBurst       int           `env:"VOTE_RATE_BURST,default=10"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT,default=30s"`
}

// ParseFlags loads .env (if present), then the environment, then lets CLI
// flags override. Secrets may come from either source but must be set.
func ParseFlags(args []string) (Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment config: %w", err)
	}

	fs := flag.NewFlagSet("votebox", flag.ContinueOnError)

	port := fs.Int("p", 0, "Server port")
	dbURL := fs.String("d", "", "Database URL (file path for sqlite)")
	dbType := fs.String("t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	adminSalt := fs.String("admin-salt", "", "Admin key salt (prefer env)")
	receiptSalt := fs.String("receipt-salt", "", "Receipt salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.Port = *port
		case "d":
			cfg.DatabaseURL = *dbURL
		case "t":
			cfg.DatabaseType = *dbType
		case "admin-salt":
			cfg.AdminKeySalt = *adminSalt
		case "receipt-salt":
			cfg.ReceiptSalt = *receiptSalt
		}
	})

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}
	if cfg.ReceiptSalt == "" {
		return Config{}, errors.New("RECEIPT_SALT required")
	}

	if cfg.ResultsPollInterval <= 0 {
		return Config{}, errors.New("RESULTS_POLL_INTERVAL must be positive")
	}

	return cfg, nil
}
