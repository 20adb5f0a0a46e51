// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/votebox/cliparse"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver(cliparse.DatabaseSQLite, sqlx.QUESTION)
}

// DB is the store handle passed to every component. Queries are written
// with ? placeholders and rebound for the active driver.
type DB struct {
	*sqlx.DB
	Type string
}

// Open connects to the configured database, verifies the connection and
// creates the schema.
func Open(ctx context.Context, dbType, url string) (*DB, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	var dsn string
	switch dbType {
	case cliparse.DatabaseSQLite:
		dsn = sqliteDSN(url)
	case cliparse.DatabasePostgres:
		dsn = url
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sqlx.Open(dbType, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}

	if dbType == cliparse.DatabasePostgres {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(time.Hour)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dbType, err)
	}

	d := &DB{DB: conn, Type: dbType}
	if err := d.CreateSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return d, nil
}

// sqliteDSN enables WAL, a busy timeout and immediate write transactions so
// concurrent writers queue instead of failing on lock upgrade.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join([]string{
		"_pragma=journal_mode(WAL)",
		"_pragma=busy_timeout(5000)",
		"_pragma=foreign_keys(1)",
		"_pragma=synchronous(NORMAL)",
		"_txlock=immediate",
	}, "&")
}

// Close checkpoints the SQLite WAL and closes the handle.
func (d *DB) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	if d.Type == cliparse.DatabaseSQLite {
		if _, err := d.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			slog.Warn("wal checkpoint failed", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// ForUpdate returns the row-lock suffix for SELECTs that precede a write on
// the same row. SQLite transactions already hold the write lock.
func (d *DB) ForUpdate() string {
	if d.Type == cliparse.DatabasePostgres {
		return " FOR UPDATE"
	}
	return ""
}

// ForShare returns the shared row-lock suffix, blocking concurrent
// ForUpdate holders without blocking other readers.
func (d *DB) ForShare() string {
	if d.Type == cliparse.DatabasePostgres {
		return " FOR SHARE"
	}
	return ""
}

// SnapshotTxOptions returns options for a read transaction that sees one
// consistent snapshot across several statements.
func (d *DB) SnapshotTxOptions() *sql.TxOptions {
	if d.Type == cliparse.DatabasePostgres {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return nil
}

func ToMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
