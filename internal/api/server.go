// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	adminauth "github.com/kvasirlabs/ward/internal/admin/auth"
	"github.com/kvasirlabs/ward/internal/admin/rbac"
	"github.com/kvasirlabs/ward/internal/platform/config"
	"github.com/kvasirlabs/ward/internal/platform/constants"
	"github.com/kvasirlabs/ward/internal/platform/middleware"
	"github.com/kvasirlabs/ward/internal/users/account"
	"github.com/kvasirlabs/ward/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles end-user authentication (register, login, refresh, recovery).
	Auth *auth.Handler

	// Account handles end-user profile management.
	Account *account.Handler

	// AdminAuth handles administrator authentication and the admin console.
	AdminAuth *adminauth.Handler

	// RBAC handles role and permission administration.
	RBAC *rbac.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// # Route Gating
//
// Authentication runs globally (anonymous requests pass through); the
// per-group gates are: RequireAuth for profile routes, RequireAdmin for the
// admin console, RequireAnyOf for role administration. The read-through
// response cache wraps only the idempotent admin GET lists — never token or
// authorization decision endpoints.
func NewServer(
	context context.Context,
	cfg *config.Config,
	log *slog.Logger,
	verifier middleware.TokenVerifier,
	resolver middleware.AuthorizationResolver,
	cacheGETs func(http.Handler) http.Handler,
	h Handlers,
) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # End-User Surface
	r.Mount("/auth", h.Auth.Routes())
	r.Get("/token", h.Auth.Token)

	r.Route("/users", func(users chi.Router) {
		users.Use(middleware.RequireAuth)
		users.Mount("/", h.Account.Routes())
	})

	// # Administrator Surface
	r.Route("/admin", func(admin chi.Router) {
		// The refresh cookie is the credential on these three.
		admin.Post("/login", h.AdminAuth.Login)
		admin.Get("/token", h.AdminAuth.Token)
		admin.Delete("/logout", h.AdminAuth.Logout)

		admin.Group(func(console chi.Router) {
			console.Use(middleware.RequireAdmin)

			console.With(cacheGETs).Get("/users", h.AdminAuth.ListUsers)
			console.With(cacheGETs).Get("/admin-users", h.AdminAuth.ListAdmins)
			console.Post("/create", h.AdminAuth.Create)

			console.
				With(middleware.RequireAnyOf(resolver, "SUPERADMIN", "MANAGE_ADMINS")).
				Patch("/admin-users/{id}/roles", h.RBAC.UpdateAdminRoles)
		})
	})

	// # Role Administration Surface
	r.Route("/roles", func(roles chi.Router) {
		roles.Use(middleware.RequireAdmin)
		roles.With(cacheGETs).Get("/", h.RBAC.ListRoles)
		roles.
			With(middleware.RequireAnyOf(resolver, "SUPERADMIN", "MANAGE_ROLES")).
			Patch("/{id}/permissions", h.RBAC.UpdateRolePermissions)
	})

	r.Route("/permissions", func(permissions chi.Router) {
		permissions.Use(middleware.RequireAdmin)
		permissions.With(cacheGETs).Get("/", h.RBAC.ListPermissions)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
