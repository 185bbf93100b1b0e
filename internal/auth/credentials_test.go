package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/talentforge/authhub/internal/auth"
	"github.com/talentforge/authhub/internal/domain/user"
	"github.com/talentforge/authhub/internal/repo/postgres"
	"github.com/talentforge/authhub/internal/security"
)

// Fake store implementation of the auth.UserReader interface.

type fakeUserReader struct {
	getFn func(ctx context.Context, email string) (user.User, error)
	calls int
}

func (f *fakeUserReader) GetByEmail(ctx context.Context, email string) (user.User, error) {
	f.calls++
	if f.getFn != nil {
		return f.getFn(ctx, email)
	}
	return user.User{}, postgres.ErrUserNotFound
}

func mustHash(t *testing.T, plain string) *string {
	t.Helper()
	h, err := security.HashPassword(plain, 4) // low cost keeps the test fast
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &h
}

func credentialsUser(t *testing.T, email, password string) user.User {
	return user.User{
		ID:           "u-1",
		Email:        email,
		PasswordHash: mustHash(t, password),
		AuthProvider: user.ProviderCredentials,
		FullName:     "Sam Doe",
		Role:         user.RoleCandidate,
		IsActive:     true,
	}
}

func TestVerify_EmptyInputSkipsLookup(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty_email", email: "", password: "pw123456"},
		{name: "empty_password", email: "a@x.com", password: ""},
		{name: "both_empty", email: "", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeUserReader{}
			v := auth.NewVerifier(reader)

			_, err := v.Verify(context.Background(), tt.email, tt.password)

			if !errors.Is(err, auth.ErrInvalidCredentials) {
				t.Fatalf("got %v, want ErrInvalidCredentials", err)
			}
			if reader.calls != 0 {
				t.Fatalf("expected no store lookup, got %d", reader.calls)
			}
		})
	}
}

func TestVerify_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	known := credentialsUser(t, "a@x.com", "pw123456")

	reader := &fakeUserReader{
		getFn: func(ctx context.Context, email string) (user.User, error) {
			if email == known.Email {
				return known, nil
			}
			return user.User{}, postgres.ErrUserNotFound
		},
	}

	v := auth.NewVerifier(reader)

	_, errUnknown := v.Verify(context.Background(), "nobody@x.com", "whatever")
	_, errWrongPw := v.Verify(context.Background(), "a@x.com", "wrong")

	if !errors.Is(errUnknown, auth.ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", errUnknown)
	}
	if !errors.Is(errWrongPw, auth.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", errWrongPw)
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Fatalf("rejection reasons differ: %q vs %q", errUnknown, errWrongPw)
	}
}

func TestVerify_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		found func(t *testing.T) user.User
	}{
		{
			name: "federated_identity_cannot_use_password",
			found: func(t *testing.T) user.User {
				u := credentialsUser(t, "a@x.com", "pw123456")
				u.AuthProvider = user.ProviderGoogle
				u.PasswordHash = nil
				return u
			},
		},
		{
			name: "missing_hash",
			found: func(t *testing.T) user.User {
				u := credentialsUser(t, "a@x.com", "pw123456")
				u.PasswordHash = nil
				return u
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := tt.found(t)
			reader := &fakeUserReader{
				getFn: func(ctx context.Context, email string) (user.User, error) {
					return found, nil
				},
			}

			v := auth.NewVerifier(reader)

			_, err := v.Verify(context.Background(), "a@x.com", "pw123456")

			if !errors.Is(err, auth.ErrInvalidCredentials) {
				t.Fatalf("got %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestVerify_SuccessStripsHash(t *testing.T) {
	known := credentialsUser(t, "a@x.com", "pw123456")

	reader := &fakeUserReader{
		getFn: func(ctx context.Context, email string) (user.User, error) {
			return known, nil
		},
	}

	v := auth.NewVerifier(reader)

	got, err := v.Verify(context.Background(), "a@x.com", "pw123456")

	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if got.PasswordHash != nil {
		t.Fatalf("verify leaked the password hash")
	}
	if got.ID != known.ID || got.Email != known.Email || got.Role != known.Role {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestVerify_StoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("connection refused")

	reader := &fakeUserReader{
		getFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{}, storeErr
		},
	}

	v := auth.NewVerifier(reader)

	_, err := v.Verify(context.Background(), "a@x.com", "pw123456")

	if errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("store failure must not masquerade as an auth rejection")
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("got %v, want store error", err)
	}
}
