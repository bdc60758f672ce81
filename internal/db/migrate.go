package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the idempotent schema. Statements are ordered so reruns
// against an existing database are no-ops.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL DEFAULT 'viewer',
			active        BOOLEAN NOT NULL DEFAULT TRUE,
			last_login_at TIMESTAMPTZ,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS content (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			slug         TEXT NOT NULL,
			body         TEXT NOT NULL DEFAULT '',
			excerpt      TEXT NOT NULL DEFAULT '',
			type         TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'draft',
			author_id    TEXT,
			featured     BOOLEAN NOT NULL DEFAULT FALSE,
			sort_order   INTEGER NOT NULL DEFAULT 0,
			tags         TEXT[] NOT NULL DEFAULT '{}',
			categories   TEXT[] NOT NULL DEFAULT '{}',
			published_at TIMESTAMPTZ,
			created_at   TIMESTAMPTZ NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL
		)`,

		// Slug uniqueness is enforced here; the handler pre-check only
		// provides the friendly error for the common case.
		`CREATE UNIQUE INDEX IF NOT EXISTS content_slug_key ON content (slug)`,
		`CREATE INDEX IF NOT EXISTS content_listing_idx
			ON content (status, featured, published_at DESC, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL DEFAULT '',
			type       TEXT NOT NULL DEFAULT 'string',
			category   TEXT NOT NULL DEFAULT '',
			public     BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS contact_messages (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			subject    TEXT NOT NULL DEFAULT '',
			body       TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS jobs (
			id           TEXT PRIMARY KEY,
			type         TEXT NOT NULL,
			payload      JSONB NOT NULL,
			status       TEXT NOT NULL DEFAULT 'pending',
			attempts     INTEGER NOT NULL DEFAULT 0,
			max_attempts INTEGER NOT NULL DEFAULT 5,
			run_at       TIMESTAMPTZ NOT NULL,
			locked_at    TIMESTAMPTZ,
			locked_by    TEXT,
			last_error   TEXT,
			created_at   TIMESTAMPTZ NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS jobs_claim_idx ON jobs (status, run_at)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
