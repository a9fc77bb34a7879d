// Package sqlite implements the repository interfaces on an embedded SQLite
// database via the pure-Go modernc.org/sqlite driver, so the binary needs no
// C toolchain and no external database server.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface. New opens it, Close releases it; the server owns the lifecycle.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests for a throwaway database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight, which matters
	// for a server where requests hit the DB in parallel.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this
// idempotent, so it is safe to run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS categories (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating categories table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS banks (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			account_type TEXT NOT NULL,
			user_id      TEXT NOT NULL REFERENCES users(id),
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_banks_user_id ON banks(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating banks table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS bills (
			id                 TEXT PRIMARY KEY,
			name               TEXT NOT NULL,
			amount             REAL NOT NULL,
			status             TEXT NOT NULL DEFAULT 'unpaid',
			payment_type       TEXT NOT NULL,
			category_id        TEXT NOT NULL REFERENCES categories(id),
			due_date           DATETIME NOT NULL,
			bank_id            TEXT NOT NULL REFERENCES banks(id),
			entered_by_user_id TEXT NOT NULL REFERENCES users(id),
			month              DATETIME NOT NULL,
			created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_bills_month ON bills(month);
		CREATE INDEX IF NOT EXISTS idx_bills_category_id ON bills(category_id);
	`)
	if err != nil {
		return fmt.Errorf("creating bills table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS monthly_balances (
			id                 TEXT PRIMARY KEY,
			person_name        TEXT NOT NULL,
			bank_id            TEXT NOT NULL REFERENCES banks(id),
			month              DATETIME NOT NULL,
			opening_balance    REAL NOT NULL,
			entered_by_user_id TEXT NOT NULL REFERENCES users(id),
			created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (person_name, bank_id, month)
		);
		CREATE INDEX IF NOT EXISTS idx_monthly_balances_month ON monthly_balances(month);
	`)
	if err != nil {
		return fmt.Errorf("creating monthly_balances table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// The pure-Go driver exposes constraint errors only through the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
