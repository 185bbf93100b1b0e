package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/talentforge/authhub/internal/auth"
	"github.com/talentforge/authhub/internal/config"
	"github.com/talentforge/authhub/internal/domain/user"
	"github.com/talentforge/authhub/internal/http/middlewares"
	"github.com/talentforge/authhub/internal/observability"
	"github.com/talentforge/authhub/internal/repo/postgres"
	"github.com/talentforge/authhub/internal/security"
)

type UserWriter interface {
	Create(ctx context.Context, params user.CreateParams) (user.User, error)
	TouchLastLogin(ctx context.Context, id string) error
}

type AuthHandler struct {
	writer     UserWriter
	verifier   *auth.Verifier
	reconciler *auth.Reconciler
	issuer     *auth.Issuer
	cfg        config.Config
	metrics    *observability.Prom
}

func NewAuthHandler(writer UserWriter, verifier *auth.Verifier, reconciler *auth.Reconciler, issuer *auth.Issuer, cfg config.Config, metrics *observability.Prom) *AuthHandler {
	return &AuthHandler{
		writer:     writer,
		verifier:   verifier,
		reconciler: reconciler,
		issuer:     issuer,
		cfg:        cfg,
		metrics:    metrics,
	}
}

type SignUpRequest struct {
	FullName     string `json:"fullName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	AuthProvider string `json:"authProvider" binding:"required"`
	AvatarURL    string `json:"avatarUrl"`
	Role         string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CallbackRequest is what the federated-provider integration posts after the
// provider redirect. Email may be absent when the provider withheld it; the
// reconciler denies that case.
type CallbackRequest struct {
	Provider    string `json:"provider" binding:"required"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AvatarImage string `json:"avatarImage"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		h.countSignup("invalid")
		return
	}

	if !user.Role(req.Role).Valid() {
		h.countSignup("invalid")
		RespondBadRequest(ctx, "Invalid role specified", nil)
		return
	}

	if req.AuthProvider != user.ProviderCredentials {
		h.countSignup("invalid")
		RespondBadRequest(ctx, "Signup is for credential accounts only", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password, h.cfg.BcryptCost)

	if err != nil {
		h.countSignup("error")
		RespondInternal(ctx, "Could not create user")
		return
	}

	var avatar *string
	if req.AvatarURL != "" {
		avatar = &req.AvatarURL
	}

	_, err = h.writer.Create(cctx, user.CreateParams{
		Email:        req.Email,
		PasswordHash: &hash,
		AuthProvider: user.ProviderCredentials,
		FullName:     req.FullName,
		AvatarURL:    avatar,
		Role:         user.Role(req.Role),
	})

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			h.countSignup("conflict")
			RespondBadRequest(ctx, "User already exists", nil)
			return
		}

		h.countSignup("error")
		RespondInternal(ctx, "Could not create user")
		return
	}

	h.countSignup("created")

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"success": true,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.verifier.Verify(cctx, req.Email, req.Password)

	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.countLogin("rejected")
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		h.countLogin("error")
		RespondInternal(ctx, "Could not sign in")
		return
	}

	token, err := h.issuer.Mint(cctx, foundUser.Email)

	if err != nil {
		h.countLogin("error")
		RespondInternal(ctx, "Could not create session")
		return
	}

	// Best effort; a failed stamp must not fail the login.
	_ = h.writer.TouchLastLogin(cctx, foundUser.ID)

	h.setSessionCookie(ctx, token)
	h.countLogin("ok")

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}

// Callback is invoked by the federated-provider integration once the provider
// has asserted an identity. Admit continues the sign-in flow with a freshly
// minted session; Deny is an authentication failure, never a crash.
func (h *AuthHandler) Callback(ctx *gin.Context) {
	var req CallbackRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	admit, err := h.reconciler.Reconcile(cctx, req.Provider, req.Email, req.DisplayName, req.AvatarImage)

	if err != nil {
		h.countReconcile(req.Provider, "error")
		RespondInternal(ctx, "Could not sign in")
		return
	}

	if !admit {
		h.countReconcile(req.Provider, "deny")
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"admit":   false,
			"message": "Sign-in was refused.",
		})
		return
	}

	token, err := h.issuer.Mint(cctx, req.Email)

	if err != nil {
		h.countReconcile(req.Provider, "error")
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token)
	h.countReconcile(req.Provider, "admit")

	ctx.JSON(http.StatusOK, gin.H{
		"admit": true,
		"token": token,
	})
}

// Session materializes the application-visible session view from a presented
// claim. A token that verifies but lacks id or role is still unauthenticated.
func (h *AuthHandler) Session(ctx *gin.Context) {
	raw := h.sessionToken(ctx)

	if raw == "" {
		RespondUnAuthorized(ctx, "unauthorized", "No session")
		return
	}

	claims, err := h.issuer.Verify(raw)

	if err != nil {
		RespondUnAuthorized(ctx, "unauthorized", "No session")
		return
	}

	session, ok := h.issuer.Read(claims)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "No session")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": session})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.clearSessionCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Helper functions

func (h *AuthHandler) sessionToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(middlewares.SessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	const prefix = "Bearer "
	header := ctx.GetHeader("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}

	return ""
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	secure := h.cfg.Env == "prod"

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		middlewares.SessionCookieName,
		token,
		int(h.cfg.SessionTTL().Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.SessionCookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}

func (h *AuthHandler) countSignup(outcome string) {
	if h.metrics != nil {
		h.metrics.SignupsTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *AuthHandler) countLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *AuthHandler) countReconcile(provider, outcome string) {
	if h.metrics != nil {
		h.metrics.ReconcilesTotal.WithLabelValues(provider, outcome).Inc()
	}
}
