// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package sec_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvasirlabs/ward/internal/platform/sec"
)

const (
	testAccessSecret  = "test-access-secret-0123456789"
	testRefreshSecret = "test-refresh-secret-0123456789"
	testIssuer        = "ward.test"
)

func newTokens(t *testing.T) *sec.Tokens {
	t.Helper()
	tokens, err := sec.NewTokens(testAccessSecret, testRefreshSecret, testIssuer)
	require.NoError(t, err)
	return tokens
}

/*
TestNewTokens_Guards rejects missing or identical signing secrets.
*/
func TestNewTokens_Guards(t *testing.T) {
	_, err := sec.NewTokens("", testRefreshSecret, testIssuer)
	assert.Error(t, err)

	_, err = sec.NewTokens(testAccessSecret, "", testIssuer)
	assert.Error(t, err)

	_, err = sec.NewTokens("same-secret", "same-secret", testIssuer)
	assert.Error(t, err)
}

/*
TestTokens_AccessRoundTrip verifies claims survive issue -> verify intact.
*/
func TestTokens_AccessRoundTrip(t *testing.T) {
	tokens := newTokens(t)

	signed, err := tokens.IssueAccess(sec.AccessProfile{
		PrincipalID: "p1",
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		DateOfBirth: "1815-12-10",
	})
	require.NoError(t, err)

	claims, err := tokens.VerifyAccess(signed)
	require.NoError(t, err)

	assert.Equal(t, "p1", claims.PrincipalID)
	assert.Equal(t, "Ada", claims.FirstName)
	assert.Equal(t, "Lovelace", claims.LastName)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "1815-12-10", claims.DateOfBirth)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, testIssuer, claims.Issuer)

	// Fixed 30-minute window.
	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 29*time.Minute)
	assert.LessOrEqual(t, remaining, sec.AccessTokenTTL)
}

/*
TestTokens_AdminClaim: administrator profiles carry isAdmin in both classes.
*/
func TestTokens_AdminClaim(t *testing.T) {
	tokens := newTokens(t)

	signed, err := tokens.IssueAccess(sec.AccessProfile{PrincipalID: "a1", IsAdmin: true})
	require.NoError(t, err)

	claims, err := tokens.VerifyAccess(signed)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)

	refresh, err := tokens.IssueRefresh("a1", true, false)
	require.NoError(t, err)

	refreshClaims, err := tokens.VerifyRefresh(refresh)
	require.NoError(t, err)
	assert.True(t, refreshClaims.IsAdmin)
}

/*
TestTokens_RefreshRememberMe: the persistence class widens the expiry and is
recorded in the claims.
*/
func TestTokens_RefreshRememberMe(t *testing.T) {
	tokens := newTokens(t)

	plain, err := tokens.IssueRefresh("p1", false, false)
	require.NoError(t, err)
	remembered, err := tokens.IssueRefresh("p1", false, true)
	require.NoError(t, err)

	plainClaims, err := tokens.VerifyRefresh(plain)
	require.NoError(t, err)
	rememberedClaims, err := tokens.VerifyRefresh(remembered)
	require.NoError(t, err)

	assert.False(t, plainClaims.Remember)
	assert.True(t, rememberedClaims.Remember)

	assert.LessOrEqual(t, time.Until(plainClaims.ExpiresAt.Time), sec.RefreshTokenTTL)
	assert.Greater(t, time.Until(rememberedClaims.ExpiresAt.Time), 29*24*time.Hour)
}

/*
TestTokens_KeySeparation: an access token never verifies as a refresh token
and vice versa, even for the same principal.
*/
func TestTokens_KeySeparation(t *testing.T) {
	tokens := newTokens(t)

	access, err := tokens.IssueAccess(sec.AccessProfile{PrincipalID: "p1"})
	require.NoError(t, err)
	refresh, err := tokens.IssueRefresh("p1", false, false)
	require.NoError(t, err)

	_, err = tokens.VerifyRefresh(access)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	_, err = tokens.VerifyAccess(refresh)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestTokens_VerifyRejections collapses every failure mode into ErrInvalidToken.
*/
func TestTokens_VerifyRejections(t *testing.T) {
	tokens := newTokens(t)

	// Wrong key.
	foreign, err := sec.NewTokens("other-access-secret", "other-refresh-secret", testIssuer)
	require.NoError(t, err)
	forged, err := foreign.IssueAccess(sec.AccessProfile{PrincipalID: "p1"})
	require.NoError(t, err)

	// Expired: signed with the right secret but a past expiry.
	expired := signExpiredAccess(t)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"empty", ""},
		{"wrong_key", forged},
		{"expired", expired},
		{"unsigned_alg_none", "eyJhbGciOiJub25lIn0.eyJpZCI6InAxIn0."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.VerifyAccess(tt.token)
			assert.ErrorIs(t, err, sec.ErrInvalidToken)
		})
	}
}

// signExpiredAccess crafts a token with the real access secret whose expiry
// is already in the past.
func signExpiredAccess(t *testing.T) string {
	t.Helper()

	claims := sec.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "p1",
			Issuer:    testIssuer,
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
		},
		PrincipalID: "p1",
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)
	return signed
}
