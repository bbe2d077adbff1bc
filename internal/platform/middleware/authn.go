// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

// Package middleware: request authentication and authorization gates.
//
// # State Machine
//
// Every gated request walks a fixed chain of states:
//
//	NoToken            -> 401 (only when the route requires auth)
//	TokenPresent       -> verify signature -> 401 on failure
//	ClaimsExtracted    -> admin routes check the isAdmin claim -> 403
//	ClaimsExtracted    -> role/permission routes resolve authorization
//	                      -> 401 if the principal vanished, 403 if unsatisfied
//	Authorized         -> request proceeds
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kvasirlabs/ward/internal/platform/apperr"
	"github.com/kvasirlabs/ward/internal/platform/constants"
	"github.com/kvasirlabs/ward/internal/platform/ctxutil"
	"github.com/kvasirlabs/ward/internal/platform/respond"
	"github.com/kvasirlabs/ward/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access tokens.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the [sec.Tokens]
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyAccess(tokenString string) (*sec.AccessClaims, error)
}

// AuthorizationResolver answers whether an administrator principal satisfies
// a set of required role or permission names.
type AuthorizationResolver interface {
	// Satisfies reports whether any of the principal's role names or
	// reachable permission names intersects the required set. A principal
	// that no longer exists is signaled with a NOT_FOUND [apperr.AppError].
	Satisfies(ctx context.Context, principalID string, required []string) (bool, error)
}

// Authenticate extracts and verifies the access token for a request.
//
// # Extraction Precedence
//
// The 'Authorization: Bearer <token>' header is checked first; only when it
// is completely absent does the chain fall back to the access-token cookie.
// Exactly one of the two sources is trusted per request — claims are never
// merged across sources.
//
// # Flow
//  1. No token from either source: request proceeds as anonymous.
//  2. Token present: parse and verify via [TokenVerifier]; failure is 401.
//  3. Verified claims are injected into the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			tokenString, found, err := extractToken(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if !found {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyAccess(tokenString)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithPrincipal(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// extractToken pulls the bearer token from the Authorization header, falling
// back to the access-token cookie. The header, when present, always wins.
func extractToken(request *http.Request) (token string, found bool, err error) {
	authHeader := request.Header.Get(constants.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", false, apperr.Unauthorized("Invalid authorization format")
		}
		return parts[1], true, nil
	}

	cookie, cookieErr := request.Cookie(constants.AccessTokenCookieName)
	if cookieErr != nil || cookie.Value == "" {
		return "", false, nil
	}
	return cookie.Value, true, nil
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetPrincipal(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireAdmin blocks requests whose principal does not carry the isAdmin claim.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It automatically
// implies [RequireAuth] so you don't need to mount both.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetPrincipal(request.Context())

		// ── 1. Authentication Check ───────────────────────────────────────
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		// ── 2. Principal Class Check ──────────────────────────────────────
		if !claims.IsAdmin {
			respond.Error(writer, request, apperr.Forbidden("Administrator access required"))
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// RequireAnyOf blocks requests unless the principal's resolved role names or
// permission names intersect the required set.
//
// # Semantics
//
// This is an OR over the union of role names and permission names — a route
// requiring ("SUPERADMIN", "MANAGE_ROLES") admits a principal holding either
// the SUPERADMIN role or any role that grants MANAGE_ROLES. There is no AND
// form in this model.
//
// # Flow
//  1. Check the isAdmin claim (regular users have no role graph at all).
//  2. Resolve the principal's roles via [AuthorizationResolver].
//  3. A vanished principal (deleted since the token was issued) is 401.
//  4. An authenticated principal with no intersection is 403.
func RequireAnyOf(resolver AuthorizationResolver, required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetPrincipal(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !claims.IsAdmin {
				respond.Error(writer, request, apperr.Forbidden("Administrator access required"))
				return
			}

			// ── 2. Authorization Resolution ───────────────────────────────────
			satisfied, err := resolver.Satisfies(request.Context(), claims.PrincipalID, required)
			if err != nil {
				if appError := apperr.As(err); appError != nil && appError.Code == "NOT_FOUND" {
					// Token outlived the account it was issued for.
					respond.Error(writer, request, apperr.Unauthorized("Principal no longer exists"))
					return
				}
				respond.Error(writer, request, err)
				return
			}

			if !satisfied {
				respond.Error(writer, request, apperr.Forbidden("Insufficient role or permission"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
