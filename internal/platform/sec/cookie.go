// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package sec

import (
	"net/http"
	"time"
)

// # Refresh Cookie Policy

// RememberMeCookieAge is the client-side retention window for persistent
// sessions. It matches [RememberMeRefreshTokenTTL] so the cookie and the
// token it carries expire together.
const RememberMeCookieAge = 30 * 24 * time.Hour

/*
RefreshCookie builds the Set-Cookie payload for a refresh token.

Description: The cookie is always HttpOnly (never readable by client script),
scoped to the whole API path, and SameSite strict. Without remember-me no
Max-Age is set, so the browser discards it when the session ends; with
remember-me the cookie persists for 30 days.

Parameters:
  - name: string (per-principal-class cookie name)
  - token: string
  - rememberMe: bool

Returns:
  - *http.Cookie: Ready to pass to [http.SetCookie]
*/
func RefreshCookie(name, token string, rememberMe bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}

	if rememberMe {
		cookie.MaxAge = int(RememberMeCookieAge / time.Second)
		cookie.Expires = time.Now().Add(RememberMeCookieAge)
	}

	return cookie
}

// ExpiredCookie builds a deletion cookie for the given name, used on logout
// to clear the client-side refresh token immediately.
func ExpiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
