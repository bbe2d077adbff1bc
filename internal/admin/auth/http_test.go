// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adminauth "github.com/kvasirlabs/ward/internal/admin/auth"
	"github.com/kvasirlabs/ward/internal/platform/constants"
)

// newRouter wires the public admin session endpoints the way the API
// composition root mounts them.
func newRouter(f *fixture) chi.Router {
	handler := adminauth.NewHandler(f.service)

	router := chi.NewRouter()
	router.Post("/admin/login", handler.Login)
	router.Get("/admin/token", handler.Token)
	router.Delete("/admin/logout", handler.Logout)
	return router
}

func do(router chi.Router, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func adminCookie(t *testing.T, recorder *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.AdminRefreshCookieName {
			return cookie
		}
	}
	t.Fatalf("response carries no %s cookie", constants.AdminRefreshCookieName)
	return nil
}

func adminLogin(t *testing.T, router chi.Router) *httptest.ResponseRecorder {
	t.Helper()
	recorder := do(router, http.MethodPost, "/admin/login",
		`{"email":"grace@example.com","password":"Password1"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	return recorder
}

/*
TestHandler_Login_SetsAdminCookie: the admin session rides its own cookie
name, so an end-user session in the same browser is untouched.
*/
func TestHandler_Login_SetsAdminCookie(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	recorder := adminLogin(t, router)

	cookie := adminCookie(t, recorder)
	assert.Equal(t, constants.AdminRefreshCookieName, cookie.Name)
	assert.NotEqual(t, constants.UserRefreshCookieName, cookie.Name)
	assert.Equal(t, f.refreshStore.tokens["a1"], cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var envelope struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
}

/*
TestHandler_Token_NoCookie is 204, mirroring the end-user surface.
*/
func TestHandler_Token_NoCookie(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	recorder := do(router, http.MethodGet, "/admin/token", "")
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

/*
TestHandler_Token_RotatesCookie: refresh re-sets the admin cookie with the
rotated token and the superseded value is refused.
*/
func TestHandler_Token_RotatesCookie(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	loginCookie := adminCookie(t, adminLogin(t, router))

	refreshed := do(router, http.MethodGet, "/admin/token", "", loginCookie)
	require.Equal(t, http.StatusOK, refreshed.Code)

	rotated := adminCookie(t, refreshed)
	assert.NotEqual(t, loginCookie.Value, rotated.Value)

	stale := do(router, http.MethodGet, "/admin/token", "", loginCookie)
	assert.Equal(t, http.StatusForbidden, stale.Code)
}

/*
TestHandler_Token_RejectsUserClassCookie: a cryptographically valid end-user
refresh token planted in the admin cookie is 403 — the principal classes
never cross.
*/
func TestHandler_Token_RejectsUserClassCookie(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	userToken, err := f.tokens.IssueRefresh("a1", false, false)
	require.NoError(t, err)

	recorder := do(router, http.MethodGet, "/admin/token", "",
		&http.Cookie{Name: constants.AdminRefreshCookieName, Value: userToken})
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

/*
TestHandler_Logout_ClearsCookie: 204 plus a deletion cookie; the revoked
session can no longer refresh, and a second logout still succeeds.
*/
func TestHandler_Logout_ClearsCookie(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	sessionCookie := adminCookie(t, adminLogin(t, router))

	loggedOut := do(router, http.MethodDelete, "/admin/logout", "", sessionCookie)
	assert.Equal(t, http.StatusNoContent, loggedOut.Code)

	expired := adminCookie(t, loggedOut)
	assert.Empty(t, expired.Value)
	assert.Negative(t, expired.MaxAge)

	replayed := do(router, http.MethodGet, "/admin/token", "", sessionCookie)
	assert.Equal(t, http.StatusForbidden, replayed.Code)

	again := do(router, http.MethodDelete, "/admin/logout", "", sessionCookie)
	assert.Equal(t, http.StatusNoContent, again.Code)
}

/*
TestHandler_SessionLifecycle: login -> refresh -> logout -> refresh refused,
evaluated over the wire.
*/
func TestHandler_SessionLifecycle(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	sessionCookie := adminCookie(t, adminLogin(t, router))

	refreshed := do(router, http.MethodGet, "/admin/token", "", sessionCookie)
	require.Equal(t, http.StatusOK, refreshed.Code)
	rotated := adminCookie(t, refreshed)

	loggedOut := do(router, http.MethodDelete, "/admin/logout", "", rotated)
	require.Equal(t, http.StatusNoContent, loggedOut.Code)

	refused := do(router, http.MethodGet, "/admin/token", "", rotated)
	assert.Equal(t, http.StatusForbidden, refused.Code)
}
