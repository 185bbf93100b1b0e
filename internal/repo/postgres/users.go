package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentforge/authhub/internal/domain/user"
	"github.com/talentforge/authhub/internal/observability"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
)

const userColumns = `id, email, password_hash, auth_provider, full_name, avatar_url,
         role, is_active, email_verified, last_login_at, created_at, updated_at`

type UsersRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, metrics *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, metrics: metrics}
}

// observe wraps a logical op with DB metrics when a registry is wired.
func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.metrics == nil {
		return fn()
	}
	return r.metrics.ObserveDB(op, fn)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+`
	         FROM users
	         WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&u.AuthProvider,
			&u.FullName,
			&u.AvatarURL,
			&u.Role,
			&u.IsActive,
			&u.EmailVerified,
			&u.LastLoginAt,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// Create inserts a new identity. The unique index on email is the only
// duplicate check; a 23505 from it maps to ErrEmailTaken.
func (r *UsersRepo) Create(ctx context.Context, params user.CreateParams) (user.User, error) {
	u := newUserFromParams(params)

	err := r.observe("users.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, auth_provider, full_name, avatar_url,
			    role, is_active, email_verified, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			u.ID, u.Email, u.PasswordHash, u.AuthProvider, u.FullName, u.AvatarURL,
			u.Role, u.IsActive, u.EmailVerified, u.CreatedAt, u.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

// CreateIfAbsent is the idempotent variant used by the federated sign-in path:
// two concurrent first-time callbacks for the same email race on the unique
// index and the loser silently no-ops instead of failing.
func (r *UsersRepo) CreateIfAbsent(ctx context.Context, params user.CreateParams) error {
	u := newUserFromParams(params)

	return r.observe("users.create_if_absent", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, auth_provider, full_name, avatar_url,
			    role, is_active, email_verified, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			 ON CONFLICT (email) DO NOTHING`,
			u.ID, u.Email, u.PasswordHash, u.AuthProvider, u.FullName, u.AvatarURL,
			u.Role, u.IsActive, u.EmailVerified, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})
}

// CountByRole aggregates identities per role (served by the role index).
func (r *UsersRepo) CountByRole(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)

	err := r.observe("users.count_by_role", func() error {
		rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var role string
			var n int
			if err := rows.Scan(&role, &n); err != nil {
				return err
			}
			counts[role] = n
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return counts, nil
}

// TouchLastLogin stamps a successful sign-in. Best effort from callers.
func (r *UsersRepo) TouchLastLogin(ctx context.Context, id string) error {
	return r.observe("users.touch_last_login", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE users SET last_login_at = $2, updated_at = $2 WHERE id = $1`,
			id, time.Now().UTC(),
		)
		return err
	})
}

func newUserFromParams(params user.CreateParams) user.User {
	now := time.Now().UTC()

	return user.User{
		ID:            uuid.NewString(),
		Email:         params.Email,
		PasswordHash:  params.PasswordHash,
		AuthProvider:  params.AuthProvider,
		FullName:      params.FullName,
		AvatarURL:     params.AvatarURL,
		Role:          params.Role,
		IsActive:      true,
		EmailVerified: params.EmailVerified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
