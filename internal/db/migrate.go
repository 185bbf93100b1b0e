package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the users schema. Statements are idempotent so startup can
// run them unconditionally.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`DO $$ BEGIN
			CREATE TYPE user_role AS ENUM ('platform_admin', 'company_admin', 'company_interviewer', 'candidate');
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$`,

		`CREATE TABLE IF NOT EXISTS users (
			id             UUID PRIMARY KEY,
			email          TEXT NOT NULL UNIQUE,
			password_hash  TEXT,
			auth_provider  TEXT DEFAULT 'credentials',
			full_name      TEXT NOT NULL,
			avatar_url     TEXT,
			role           user_role NOT NULL,
			is_active      BOOLEAN NOT NULL DEFAULT TRUE,
			email_verified BOOLEAN NOT NULL DEFAULT FALSE,
			last_login_at  TIMESTAMPTZ,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS users_email_idx ON users (email)`,
		`CREATE INDEX IF NOT EXISTS users_role_idx ON users (role)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
