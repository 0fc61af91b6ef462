// Package sqlitestore implements the repositories on an embedded SQLite
// database. It is used for local development and tests.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/isdelr/storefront-be/internal/repository"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT NOT NULL PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id TEXT NOT NULL PRIMARY KEY,
	image TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	price REAL NOT NULL CHECK (price >= 0),
	-- Stored as a JSON array
	features_json TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	id TEXT NOT NULL PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	slug TEXT NOT NULL UNIQUE,
	category TEXT NOT NULL DEFAULT '',
	date DATETIME NOT NULL,
	image TEXT NOT NULL DEFAULT '',
	excerpt TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS events (
	id TEXT NOT NULL PRIMARY KEY,
	type TEXT NOT NULL,
	level TEXT NOT NULL,
	message TEXT NOT NULL,
	subject_id TEXT,
	created_at DATETIME NOT NULL
);
`

// Migrate runs the SQL statements to set up the database schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// New builds the repository bundle on db. Close closes db.
func New(db *sql.DB) repository.Stores {
	return repository.Stores{
		Users:    NewUserRepository(db),
		Products: NewProductRepository(db),
		Posts:    NewPostRepository(db),
		Events:   NewEventRepository(db),
		Ping:     db.PingContext,
		Close: func(context.Context) error {
			return db.Close()
		},
	}
}

// isUniqueViolation reports whether err comes from a UNIQUE or PRIMARY KEY constraint.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func mapWriteErr(err error) error {
	if err != nil && isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func mapScanErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}
