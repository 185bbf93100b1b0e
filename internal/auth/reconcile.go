package auth

import (
	"context"
	"errors"

	"github.com/talentforge/authhub/internal/domain/user"
	"github.com/talentforge/authhub/internal/repo/postgres"
)

// UserStore extends UserReader with the idempotent insert the federated path
// relies on.
type UserStore interface {
	UserReader
	CreateIfAbsent(ctx context.Context, params user.CreateParams) error
}

// Reconciler decides whether a federated sign-in may proceed, creating the
// identity on first contact.
type Reconciler struct {
	users UserStore
}

func NewReconciler(users UserStore) *Reconciler {
	return &Reconciler{users: users}
}

// Reconcile returns admit=true to continue the sign-in flow. Deny is not an
// error: a false/nil result means the attempt must be surfaced as an
// authentication failure. Errors are store failures only.
//
// Policy:
//   - no email from the provider: deny
//   - existing credentials account for the email: deny (a federated login
//     must not take over a password-secured account)
//   - existing federated account, any provider: admit without mutation
//   - no account: create one with the candidate role via the idempotent
//     insert; losing the insert race to a concurrent callback still admits
func (r *Reconciler) Reconcile(ctx context.Context, provider, email, displayName, avatarURL string) (bool, error) {
	if email == "" {
		return false, nil
	}

	existing, err := r.users.GetByEmail(ctx, email)

	switch {
	case err == nil:
		if existing.IsFederated() {
			return true, nil
		}
		return false, nil

	case errors.Is(err, postgres.ErrUserNotFound):
		// fall through to create

	default:
		return false, err
	}

	fullName := displayName
	if fullName == "" {
		fullName = user.FallbackName(email)
	}

	var avatar *string
	if avatarURL != "" {
		avatar = &avatarURL
	}

	err = r.users.CreateIfAbsent(ctx, user.CreateParams{
		Email:         email,
		PasswordHash:  nil,
		AuthProvider:  provider,
		FullName:      fullName,
		AvatarURL:     avatar,
		Role:          user.RoleCandidate,
		EmailVerified: true,
	})

	if err != nil {
		return false, err
	}

	return true, nil
}
