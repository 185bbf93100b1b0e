package auth

import (
	"context"
	"errors"

	"github.com/talentforge/authhub/internal/repo/postgres"
)

// Session is the application-visible view of a verified claim set.
type Session struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Issuer mints and reads back session claims.
type Issuer struct {
	users UserReader
	jwt   *Manager
}

func NewIssuer(users UserReader, jwt *Manager) *Issuer {
	return &Issuer{users: users, jwt: jwt}
}

// Mint builds a signed claim set for the identity currently persisted under
// email. The record is re-read here rather than trusting whatever partial
// identity the verifier or reconciler returned, so a role change between
// password check and mint is picked up. If the record is gone by mint time
// the claim carries no id/role and Read will refuse it.
func (i *Issuer) Mint(ctx context.Context, email string) (string, error) {
	u, err := i.users.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return i.jwt.GenerateSessionToken("", email, "")
		}
		return "", err
	}

	return i.jwt.GenerateSessionToken(u.ID, u.Email, string(u.Role))
}

// Read exposes the identity fields of a verified claim set. A syntactically
// valid token missing id or role is not an authenticated session.
func (i *Issuer) Read(claims *Claims) (Session, bool) {
	if claims == nil || claims.UserID == "" || claims.Role == "" {
		return Session{}, false
	}

	return Session{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}, true
}

// Verify parses and validates a presented token.
func (i *Issuer) Verify(token string) (*Claims, error) {
	return i.jwt.VerifySessionToken(token)
}
