// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvasirlabs/ward/internal/platform/apperr"
	"github.com/kvasirlabs/ward/internal/platform/constants"
	"github.com/kvasirlabs/ward/internal/platform/ctxutil"
	"github.com/kvasirlabs/ward/internal/platform/middleware"
	"github.com/kvasirlabs/ward/internal/platform/sec"
)

// # Test Doubles

// fakeVerifier accepts exactly one token string and returns canned claims.
type fakeVerifier struct {
	validToken string
	claims     *sec.AccessClaims
}

func (verifier *fakeVerifier) VerifyAccess(tokenString string) (*sec.AccessClaims, error) {
	if tokenString == verifier.validToken {
		return verifier.claims, nil
	}
	return nil, sec.ErrInvalidToken
}

// fakeResolver returns a fixed answer, or an error when set.
type fakeResolver struct {
	satisfied bool
	err       error
	required  []string
}

func (resolver *fakeResolver) Satisfies(_ context.Context, _ string, required []string) (bool, error) {
	resolver.required = required
	if resolver.err != nil {
		return false, resolver.err
	}
	return resolver.satisfied, nil
}

// claimsCapture records the principal claims seen by the downstream handler.
func claimsCapture(captured **sec.AccessClaims) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*captured = ctxutil.GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

func userClaims(principalID string) *sec.AccessClaims {
	return &sec.AccessClaims{PrincipalID: principalID}
}

func adminClaims(principalID string) *sec.AccessClaims {
	return &sec.AccessClaims{PrincipalID: principalID, IsAdmin: true}
}

// # Authenticate

/*
TestAuthenticate_BearerHeader verifies a valid bearer token yields claims in
the downstream context.
*/
func TestAuthenticate_BearerHeader(t *testing.T) {
	verifier := &fakeVerifier{validToken: "good-token", claims: userClaims("p1")}

	var captured *sec.AccessClaims
	handler := middleware.Authenticate(verifier)(claimsCapture(&captured))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderAuthorization, "Bearer good-token")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "p1", captured.PrincipalID)
}

/*
TestAuthenticate_CookieFallback: with no Authorization header the access
cookie is trusted instead.
*/
func TestAuthenticate_CookieFallback(t *testing.T) {
	verifier := &fakeVerifier{validToken: "cookie-token", claims: userClaims("p1")}

	var captured *sec.AccessClaims
	handler := middleware.Authenticate(verifier)(claimsCapture(&captured))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "cookie-token"})
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "p1", captured.PrincipalID)
}

/*
TestAuthenticate_HeaderWinsOverCookie: when both sources are present, only
the header is consulted. An invalid header token is a 401 even when the
cookie carries a valid one.
*/
func TestAuthenticate_HeaderWinsOverCookie(t *testing.T) {
	verifier := &fakeVerifier{validToken: "cookie-token", claims: userClaims("p1")}

	var captured *sec.AccessClaims
	handler := middleware.Authenticate(verifier)(claimsCapture(&captured))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderAuthorization, "Bearer header-token")
	request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "cookie-token"})
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Nil(t, captured)
}

/*
TestAuthenticate_Anonymous: no token from either source lets the request
through without claims.
*/
func TestAuthenticate_Anonymous(t *testing.T) {
	verifier := &fakeVerifier{}

	var captured *sec.AccessClaims
	handler := middleware.Authenticate(verifier)(claimsCapture(&captured))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, captured)
}

/*
TestAuthenticate_Rejections covers malformed headers and invalid tokens.
*/
func TestAuthenticate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
	}{
		{"malformed_header", "NotBearer token", ""},
		{"missing_scheme", "good-token", ""},
		{"invalid_header_token", "Bearer bad-token", ""},
		{"invalid_cookie_token", "", "bad-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{validToken: "good-token", claims: userClaims("p1")}
			handler := middleware.Authenticate(verifier)(claimsCapture(new(*sec.AccessClaims)))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			if tt.cookie != "" {
				request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: tt.cookie})
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}
}

// # RequireAuth / RequireAdmin

func serveWithClaims(handler http.Handler, claims *sec.AccessClaims) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if claims != nil {
		request = request.WithContext(ctxutil.WithPrincipal(request.Context(), claims))
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestRequireAuth gates on the presence of a verified principal.
*/
func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(okHandler())

	assert.Equal(t, http.StatusUnauthorized, serveWithClaims(handler, nil).Code)
	assert.Equal(t, http.StatusOK, serveWithClaims(handler, userClaims("p1")).Code)
}

/*
TestRequireAdmin distinguishes missing authentication (401) from the wrong
principal class (403).
*/
func TestRequireAdmin(t *testing.T) {
	handler := middleware.RequireAdmin(okHandler())

	assert.Equal(t, http.StatusUnauthorized, serveWithClaims(handler, nil).Code)
	assert.Equal(t, http.StatusForbidden, serveWithClaims(handler, userClaims("p1")).Code)
	assert.Equal(t, http.StatusOK, serveWithClaims(handler, adminClaims("a1")).Code)
}

// # RequireAnyOf

/*
TestRequireAnyOf exercises every branch of the role gate.
*/
func TestRequireAnyOf(t *testing.T) {
	tests := []struct {
		name     string
		claims   *sec.AccessClaims
		resolver *fakeResolver
		want     int
	}{
		{"anonymous", nil, &fakeResolver{}, http.StatusUnauthorized},
		{"non_admin", userClaims("p1"), &fakeResolver{satisfied: true}, http.StatusForbidden},
		{"satisfied", adminClaims("a1"), &fakeResolver{satisfied: true}, http.StatusOK},
		{"unsatisfied", adminClaims("a1"), &fakeResolver{satisfied: false}, http.StatusForbidden},
		{
			"vanished_principal",
			adminClaims("a1"),
			&fakeResolver{err: apperr.NotFound("Administrator not found")},
			http.StatusUnauthorized,
		},
		{
			"resolver_failure",
			adminClaims("a1"),
			&fakeResolver{err: errors.New("connection refused")},
			http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.RequireAnyOf(tt.resolver, "SUPERADMIN", "MANAGE_ROLES")(okHandler())
			assert.Equal(t, tt.want, serveWithClaims(handler, tt.claims).Code)
		})
	}
}

/*
TestRequireAnyOf_PassesRequiredSet: the configured names reach the resolver
verbatim.
*/
func TestRequireAnyOf_PassesRequiredSet(t *testing.T) {
	resolver := &fakeResolver{satisfied: true}
	handler := middleware.RequireAnyOf(resolver, "SUPERADMIN", "MANAGE_ADMINS")(okHandler())

	serveWithClaims(handler, adminClaims("a1"))

	assert.Equal(t, []string{"SUPERADMIN", "MANAGE_ADMINS"}, resolver.required)
}
