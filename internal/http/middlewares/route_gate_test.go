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

func init() {
	gin.SetMode(gin.TestMode)
}

func newGate() (*middlewares.RouteGate, *auth.Manager) {
	m := auth.NewManager("test-secret-key", time.Hour)
	return middlewares.NewRouteGate(m, nil), m
}

func validToken(t *testing.T, m *auth.Manager) string {
	t.Helper()
	token, err := m.GenerateSessionToken("u-1", "a@x.com", "candidate")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func TestDecide(t *testing.T) {
	gate, m := newGate()
	token := validToken(t, m)

	tests := []struct {
		name      string
		path      string
		token     string
		wantAllow bool
	}{
		{name: "login_page_public", path: "/login", token: "", wantAllow: true},
		{name: "signup_page_public", path: "/signup", token: "", wantAllow: true},
		{name: "auth_api_never_gates_itself", path: "/api/auth/anything", token: "", wantAllow: true},
		{name: "protected_without_token", path: "/dashboard", token: "", wantAllow: false},
		{name: "protected_with_valid_token", path: "/dashboard", token: token, wantAllow: true},
		{name: "protected_with_garbage_token", path: "/dashboard", token: "garbage", wantAllow: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := gate.Decide(tt.path, tt.token)

			if decision.Allow != tt.wantAllow {
				t.Fatalf("Decide(%q) allow=%v, want %v", tt.path, decision.Allow, tt.wantAllow)
			}

			if !tt.wantAllow && decision.RedirectURL == "" {
				t.Fatalf("redirect decision must carry a target")
			}
		})
	}
}

func TestDecide_RedirectCarriesOriginalPath(t *testing.T) {
	gate, _ := newGate()

	decision := gate.Decide("/dashboard", "")

	if decision.Allow {
		t.Fatalf("expected redirect")
	}
	if decision.RedirectURL != "/login?from=%2Fdashboard" {
		t.Fatalf("got redirect %q", decision.RedirectURL)
	}
}

func TestDecide_ExpiredToken(t *testing.T) {
	expired := auth.NewManager("test-secret-key", -time.Minute)
	gate := middlewares.NewRouteGate(expired, nil)

	token, err := expired.GenerateSessionToken("u-1", "a@x.com", "candidate")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if gate.Decide("/dashboard", token).Allow {
		t.Fatalf("expired token must redirect")
	}
}

func TestGateMiddleware(t *testing.T) {
	gate, m := newGate()
	token := validToken(t, m)

	r := gin.New()
	r.Use(gate.Middleware("/healthz"))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/dashboard", func(c *gin.Context) {
		email, _ := middlewares.EmailFromContext(c)
		c.JSON(http.StatusOK, gin.H{"email": email})
	})

	tests := []struct {
		name         string
		path         string
		cookie       bool
		wantStatus   int
		wantLocation string
	}{
		{name: "skip_prefix_bypasses_gate", path: "/healthz", wantStatus: http.StatusOK},
		{name: "public_path", path: "/login", wantStatus: http.StatusOK},
		{name: "protected_redirects", path: "/dashboard", wantStatus: http.StatusFound, wantLocation: "/login?from=%2Fdashboard"},
		{name: "protected_with_session", path: "/dashboard", cookie: true, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie {
				req.AddCookie(&http.Cookie{Name: middlewares.SessionCookieName, Value: token})
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantLocation != "" && w.Header().Get("Location") != tt.wantLocation {
				t.Fatalf("got location %q, want %q", w.Header().Get("Location"), tt.wantLocation)
			}
		})
	}
}

func TestGateMiddleware_BearerFallback(t *testing.T) {
	gate, m := newGate()
	token := validToken(t, m)

	r := gin.New()
	r.Use(gate.Middleware())
	r.GET("/dashboard", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
}
