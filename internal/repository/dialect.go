package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Dialect captures the differences between the SQL engines the ledger runs on.
type Dialect struct {
	name       string
	lockSuffix string
	schema     []string
	isUnique   func(error) bool
	positional bool
}

func (d Dialect) Name() string { return d.name }

// rebind rewrites $N placeholders into the engine's own numbered form.
func (d Dialect) rebind(query string) string {
	if d.positional {
		return strings.ReplaceAll(query, "$", "?")
	}
	return query
}

var Postgres = Dialect{
	name:       "postgres",
	lockSuffix: " FOR UPDATE",
	isUnique: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == "23505"
	},
	schema: []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id            TEXT PRIMARY KEY,
			phone_number  TEXT NOT NULL,
			address       TEXT NOT NULL,
			date_of_birth TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id             TEXT PRIMARY KEY,
			account_number TEXT NOT NULL UNIQUE,
			customer_id    TEXT NOT NULL REFERENCES customers(id),
			kind           TEXT NOT NULL,
			balance        NUMERIC(15,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
			active         BOOLEAN NOT NULL DEFAULT TRUE,
			created_at     TIMESTAMPTZ NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_customer ON accounts (customer_id)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id                   BIGINT PRIMARY KEY,
			account_id           TEXT NOT NULL REFERENCES accounts(id),
			kind                 TEXT NOT NULL,
			amount               NUMERIC(15,2) NOT NULL CHECK (amount > 0),
			description          TEXT,
			recipient_account_id TEXT REFERENCES accounts(id),
			created_at           TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions (account_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_recipient ON transactions (recipient_account_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS loans (
			id              TEXT PRIMARY KEY,
			customer_id     TEXT NOT NULL REFERENCES customers(id),
			kind            TEXT NOT NULL,
			amount          NUMERIC(15,2) NOT NULL CHECK (amount > 0),
			interest_rate   NUMERIC(5,2) NOT NULL,
			duration_months INTEGER NOT NULL,
			approved        BOOLEAN NOT NULL DEFAULT FALSE,
			approved_at     TIMESTAMPTZ,
			created_at      TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_customer ON loans (customer_id)`,
	},
}

// SQLite keeps amounts as TEXT so no value ever passes through a float.
// Writers are serialised by the database lock (_txlock=immediate), which is
// why lockSuffix is empty.
var SQLite = Dialect{
	name:       "sqlite",
	positional: true,
	isUnique: func(err error) bool {
		var sqErr sqlite3.Error
		if !errors.As(err, &sqErr) {
			return false
		}
		return sqErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	},
	schema: []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id            TEXT PRIMARY KEY,
			phone_number  TEXT NOT NULL,
			address       TEXT NOT NULL,
			date_of_birth TEXT NOT NULL,
			created_at    TIMESTAMP NOT NULL,
			updated_at    TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id             TEXT PRIMARY KEY,
			account_number TEXT NOT NULL UNIQUE,
			customer_id    TEXT NOT NULL REFERENCES customers(id),
			kind           TEXT NOT NULL,
			balance        TEXT NOT NULL DEFAULT '0',
			active         BOOLEAN NOT NULL DEFAULT 1,
			created_at     TIMESTAMP NOT NULL,
			updated_at     TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_customer ON accounts (customer_id)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id                   INTEGER PRIMARY KEY,
			account_id           TEXT NOT NULL REFERENCES accounts(id),
			kind                 TEXT NOT NULL,
			amount               TEXT NOT NULL,
			description          TEXT,
			recipient_account_id TEXT REFERENCES accounts(id),
			created_at           TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions (account_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_recipient ON transactions (recipient_account_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS loans (
			id              TEXT PRIMARY KEY,
			customer_id     TEXT NOT NULL REFERENCES customers(id),
			kind            TEXT NOT NULL,
			amount          TEXT NOT NULL,
			interest_rate   TEXT NOT NULL,
			duration_months INTEGER NOT NULL,
			approved        BOOLEAN NOT NULL DEFAULT 0,
			approved_at     TIMESTAMP,
			created_at      TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_customer ON loans (customer_id)`,
	},
}

// OpenPostgres connects to url and verifies the connection.
func OpenPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// OpenSQLite opens the database file at path. Transactions take the write
// lock on BEGIN and the pool holds a single connection, so concurrent
// ledger operations queue instead of failing with SQLITE_BUSY.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	for _, stmt := range dialect.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate %s schema: %w", dialect.name, err)
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
