package middlewares

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/talentforge/authhub/internal/auth"
	"github.com/talentforge/authhub/internal/observability"
)

// SessionCookieName is where browser clients carry the session token.
const SessionCookieName = "authhub_session"

const loginPath = "/login"

// Public prefixes the gate admits unconditionally. The auth API namespace
// must never gate itself or nobody could ever log in.
var defaultPublicPrefixes = []string{"/login", "/signup", "/api/auth"}

// Decision is the outcome of a gate check for one request.
type Decision struct {
	Allow bool
	// RedirectURL is set when Allow is false; it carries the original path
	// so callers can implement return-to-origin.
	RedirectURL string
	// Claims are set when a valid token was presented.
	Claims *auth.Claims
}

// RouteGate admits public paths unconditionally and requires a valid session
// claim for everything else.
type RouteGate struct {
	jwt            TokenVerifier
	publicPrefixes []string
	metrics        *observability.Prom
}

func NewRouteGate(jwt TokenVerifier, metrics *observability.Prom) *RouteGate {
	return &RouteGate{
		jwt:            jwt,
		publicPrefixes: defaultPublicPrefixes,
		metrics:        metrics,
	}
}

// Decide is the pure gate decision: path + presented token in, allow or
// redirect out. Static assets are expected to be excluded by the caller.
func (g *RouteGate) Decide(path, token string) Decision {
	for _, prefix := range g.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			g.count("public")
			return Decision{Allow: true}
		}
	}

	if token != "" {
		claims, err := g.jwt.VerifySessionToken(token)
		if err == nil {
			g.count("allow")
			return Decision{Allow: true, Claims: claims}
		}
	}

	g.count("redirect")
	return Decision{
		RedirectURL: loginPath + "?from=" + url.QueryEscape(path),
	}
}

// Middleware runs the gate on every request except the skip list (health,
// metrics, static assets).
func (g *RouteGate) Middleware(skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		decision := g.Decide(path, sessionTokenFrom(c))

		if !decision.Allow {
			c.Redirect(http.StatusFound, decision.RedirectURL)
			c.Abort()
			return
		}

		if decision.Claims != nil {
			setIdentityContext(c, decision.Claims)
		}

		c.Next()
	}
}

func (g *RouteGate) count(decision string) {
	if g.metrics != nil {
		g.metrics.GateDecisions.WithLabelValues(decision).Inc()
	}
}

// sessionTokenFrom prefers the session cookie and falls back to a bearer
// header for API clients.
func sessionTokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	}

	return ""
}
