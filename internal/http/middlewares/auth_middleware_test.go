package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/talentforge/authhub/internal/auth"
	"github.com/talentforge/authhub/internal/http/middlewares"
)

func protectedRouter(m *auth.Manager, requiredRole string) *gin.Engine {
	mw := middlewares.NewAuthMiddleware(m)

	r := gin.New()

	group := r.Group("/api/admin")
	group.Use(mw.RequireAuth())
	if requiredRole != "" {
		group.Use(mw.RequireRole(requiredRole))
	}
	group.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

func TestRequireAuth(t *testing.T) {
	m := auth.NewManager("test-secret-key", time.Hour)

	valid, err := m.GenerateSessionToken("u-1", "a@x.com", "platform_admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	// Signed but unresolved: no id/role. Must not pass RequireAuth.
	unresolved, err := m.GenerateSessionToken("", "gone@x.com", "")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "missing_token", token: "", wantStatus: http.StatusUnauthorized},
		{name: "garbage_token", token: "garbage", wantStatus: http.StatusUnauthorized},
		{name: "unresolved_claims", token: unresolved, wantStatus: http.StatusUnauthorized},
		{name: "valid_token", token: valid, wantStatus: http.StatusOK},
	}

	r := protectedRouter(m, "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	m := auth.NewManager("test-secret-key", time.Hour)

	admin, _ := m.GenerateSessionToken("u-1", "admin@x.com", "platform_admin")
	candidate, _ := m.GenerateSessionToken("u-2", "c@x.com", "candidate")

	r := protectedRouter(m, "platform_admin")

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "matching_role", token: admin, wantStatus: http.StatusOK},
		{name: "insufficient_role", token: candidate, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
