package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentforge/authhub/internal/config"
	"github.com/talentforge/authhub/internal/domain/user"
	"github.com/talentforge/authhub/internal/security"
)

// EnsureAdminUser seeds a platform admin when ADMIN_EMAIL/ADMIN_PASSWORD are
// configured and no such user exists yet.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword, cfg.BcryptCost)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, auth_provider, full_name, role,
		    is_active, email_verified, created_at, updated_at)
		 VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, TRUE, TRUE, NOW(), NOW())
		 ON CONFLICT (email) DO NOTHING`,
		cfg.AdminEmail, hash, user.ProviderCredentials, cfg.AdminName, user.RolePlatformAdmin,
	)

	return err
}
