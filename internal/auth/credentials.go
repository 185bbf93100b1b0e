package auth

import (
	"context"
	"errors"

	"github.com/talentforge/authhub/internal/domain/user"
	"github.com/talentforge/authhub/internal/repo/postgres"
	"github.com/talentforge/authhub/internal/security"
)

// ErrInvalidCredentials is the single opaque rejection for every failed
// credential check. Unknown email and wrong password must be
// indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserReader is the slice of the users repo the auth core needs.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// Verifier confirms an email/password pair against the stored hash.
type Verifier struct {
	users UserReader
}

func NewVerifier(users UserReader) *Verifier {
	return &Verifier{users: users}
}

// Verify resolves an email/password pair to the matching identity. The
// returned record never carries the password hash. Store failures other than
// "no such row" propagate as-is so the handler can answer with a 500 instead
// of a misleading auth rejection.
func (v *Verifier) Verify(ctx context.Context, email, plaintext string) (user.User, error) {
	if email == "" || plaintext == "" {
		return user.User{}, ErrInvalidCredentials
	}

	found, err := v.users.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, err
	}

	// A federated-only identity must not authenticate via password.
	if found.IsFederated() {
		return user.User{}, ErrInvalidCredentials
	}

	if found.PasswordHash == nil {
		return user.User{}, ErrInvalidCredentials
	}

	if err := security.CheckPassword(*found.PasswordHash, plaintext); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	return found.Sanitized(), nil
}
