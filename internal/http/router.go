package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/talentforge/authhub/internal/auth"
	"github.com/talentforge/authhub/internal/config"
	"github.com/talentforge/authhub/internal/domain/user"
	"github.com/talentforge/authhub/internal/http/handlers"
	"github.com/talentforge/authhub/internal/http/middlewares"
	"github.com/talentforge/authhub/internal/observability"
	"github.com/talentforge/authhub/internal/repo/postgres"
)

// Paths the caller excludes before the gate runs: infrastructure endpoints
// and static assets are not the gate's concern.
var gateSkipPrefixes = []string{"/healthz", "/readyz", "/metrics", "/favicon.ico", "/static"}

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// observability

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(otelgin.Middleware("authhub"))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))

	// auth core

	usersRepo := postgres.NewUsersRepo(pool, prom)
	jwtManager := auth.NewManager(cfg.SessionSecret, cfg.SessionTTL())
	verifier := auth.NewVerifier(usersRepo)
	reconciler := auth.NewReconciler(usersRepo)
	issuer := auth.NewIssuer(usersRepo, jwtManager)

	// the gate runs on every inbound request except the skip list

	gate := middlewares.NewRouteGate(jwtManager, prom)
	r.Use(gate.Middleware(gateSkipPrefixes...))

	authMW := middlewares.NewAuthMiddleware(jwtManager)

	// health

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	healthHandler := handlers.NewHealthHandler(ping)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// pages

	pages := handlers.NewPagesHandler()
	r.GET("/login", pages.Login)
	r.GET("/signup", pages.Signup)
	r.GET("/dashboard", pages.Dashboard)

	// auth API

	authHandler := handlers.NewAuthHandler(usersRepo, verifier, reconciler, issuer, cfg, prom)

	// form posts hit /signup directly; the JSON API lives under /api/auth
	r.POST("/signup", authHandler.SignUp)

	authAPI := r.Group("/api/auth")
	authAPI.POST("/signup", authHandler.SignUp)
	authAPI.POST("/login", authHandler.Login)
	authAPI.POST("/callback", authHandler.Callback)
	authAPI.GET("/session", authHandler.Session)
	authAPI.POST("/logout", authHandler.Logout)

	// admin API, role-gated

	adminHandler := handlers.NewAdminHandler(usersRepo)

	adminAPI := r.Group("/api/admin")
	adminAPI.Use(authMW.RequireAuth(), authMW.RequireRole(string(user.RolePlatformAdmin)))
	adminAPI.GET("/users/stats", adminHandler.UserStats)

	return r
}
