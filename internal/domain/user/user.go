package user

import (
	"strings"
	"time"
)

// Auth provider tags. An empty provider on a row is treated as credentials.
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
)

type Role string

const (
	RolePlatformAdmin      Role = "platform_admin"
	RoleCompanyAdmin       Role = "company_admin"
	RoleCompanyInterviewer Role = "company_interviewer"
	RoleCandidate          Role = "candidate"
)

func (r Role) Valid() bool {
	switch r {
	case RolePlatformAdmin, RoleCompanyAdmin, RoleCompanyInterviewer, RoleCandidate:
		return true
	}
	return false
}

type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  *string    `json:"-"` // never expose hash in JSON; nil for federated accounts
	AuthProvider  string     `json:"authProvider"`
	FullName      string     `json:"fullName"`
	AvatarURL     *string    `json:"avatarUrl,omitempty"`
	Role          Role       `json:"role"`
	IsActive      bool       `json:"isActive"`
	EmailVerified bool       `json:"emailVerified"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// CreateParams carries the caller-supplied fields for a new identity; ids,
// activity flag and timestamps are assigned by the store.
type CreateParams struct {
	Email         string
	PasswordHash  *string
	AuthProvider  string
	FullName      string
	AvatarURL     *string
	Role          Role
	EmailVerified bool
}

// IsFederated reports whether the identity was established through an external
// provider. An empty provider means a credentials row from before the tag existed.
func (u User) IsFederated() bool {
	return u.AuthProvider != "" && u.AuthProvider != ProviderCredentials
}

// Sanitized returns a copy safe to hand outside the auth core.
func (u User) Sanitized() User {
	u.PasswordHash = nil
	return u
}

// FallbackName derives a display name from the email local part, for federated
// signups where the provider supplied none.
func FallbackName(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return email
	}
	return local
}
