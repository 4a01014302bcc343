// Package sqlite implements the repository interfaces on top of SQLite.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no CGo, no C toolchain, and the whole
// site ships as one static binary with its database file next to it. That suits
// a small studio site running on a single host.
//
// The pattern for every query is the database/sql one:
//  1. db.conn.QueryContext / ExecContext with ? placeholders (never string-built SQL)
//  2. rows.Scan into Go values, always `defer rows.Close()`
//  3. translate sql.ErrNoRows into apperror.NotFound and driver failures into
//     apperror.Store, so the layers above only see domain errors
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/ijwihub/studio-cms/internal/apperror"
	"github.com/ijwihub/studio-cms/internal/repository"
)

// compile-time check that *DB can back the whole application
var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and provides every repository method.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/studio.db" → file-based database (persistent)
//   - ":memory:"       → in-memory database for tests
//
// An in-memory database lives inside a single connection, so for ":memory:" the
// pool is pinned to one connection. Otherwise every pooled connection would see
// its own empty database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// dsn appends the connection pragmas to dbPath. PRAGMAs are per connection, so
// they go in the DSN where the driver runs them on every connection the pool
// opens:
//   - busy_timeout(5000): a writer waits up to 5s for the lock instead of
//     failing with SQLITE_BUSY
//   - foreign_keys(1): sessions are dropped with their admin
//   - journal_mode(WAL): readers (public pages) proceed while an admin write
//     is in flight; file databases only
func dsn(dbPath string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	if dbPath != ":memory:" {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	return dbPath + "?" + q.Encode()
}

// Close closes the database connection pool. Defer it right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database is reachable. Used by /healthz.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// migrate creates all tables. CREATE TABLE IF NOT EXISTS keeps it idempotent,
// so it runs on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS services (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			icon        TEXT NOT NULL,
			price       TEXT NOT NULL DEFAULT '',
			features    TEXT NOT NULL DEFAULT '[]',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_services_created_at ON services(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating services table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS portfolio_works (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			category    TEXT NOT NULL,
			image_url   TEXT NOT NULL,
			trailer_url TEXT NOT NULL DEFAULT '',
			client_name TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_portfolio_works_created_at ON portfolio_works(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating portfolio_works table: %w", err)
	}

	// email is UNIQUE: one credential record per admin identity.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS admins (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'admin',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating admins table: %w", err)
	}

	// Session times are unix seconds (INTEGER) so expiry checks and purges can
	// compare them in SQL. Deleting an admin drops their sessions with them.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			admin_id   TEXT NOT NULL REFERENCES admins(id) ON DELETE CASCADE,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL,
			revoked_at INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`)
	if err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}

	return nil
}

// checkAffected turns "0 rows affected" into a NotFound error for resource/id.
func checkAffected(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperror.Store("checking rows affected", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
