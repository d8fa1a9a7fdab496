// Package testdb provides an in-memory sqlite database with the application
// schema for store and processor tests.
package testdb

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE jobs (
	job_id       TEXT PRIMARY KEY,
	job_type     TEXT NOT NULL,
	payload      TEXT,
	status       TEXT NOT NULL DEFAULT 'PENDING',
	error        TEXT,
	priority     INTEGER NOT NULL DEFAULT 1,
	retry_count  INTEGER NOT NULL DEFAULT 0,
	result       TEXT,
	processed_at TIMESTAMP,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);

CREATE INDEX idx_jobs_status ON jobs(status);

CREATE TABLE users (
	user_id    TEXT PRIMARY KEY,
	clerk_id   TEXT NOT NULL UNIQUE,
	email      TEXT,
	name       TEXT NOT NULL DEFAULT '',
	user_role  TEXT NOT NULL DEFAULT 'user',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE glucose_readings (
	reading_id TEXT PRIMARY KEY,
	clerk_id   TEXT NOT NULL,
	value_mgdl INTEGER NOT NULL,
	notes      TEXT NOT NULL DEFAULT '',
	taken_at   TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX idx_readings_clerk ON glucose_readings(clerk_id, taken_at);
`

// New opens an in-memory database with the full schema applied. The pool is
// capped at one connection: each sqlite :memory: connection is its own
// database, so the cap keeps every query on the same one.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to apply test schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
