// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing, Cookie
// policy) from the domain logic. It acts as an Infrastructure service injected
// into the Application layer via small interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Token Lifetimes

const (
	// AccessTokenTTL is the fixed validity window of an access token.
	// Short (30m) to minimize the impact of a leaked token.
	AccessTokenTTL = 30 * time.Minute

	// RefreshTokenTTL is the default validity window of a refresh token.
	RefreshTokenTTL = 24 * time.Hour

	// RememberMeRefreshTokenTTL is the extended refresh validity used when a
	// login requests a persistent session. The cookie lifetime and the
	// token's cryptographic expiry move together so a remembered session is
	// never silently severed mid-window.
	RememberMeRefreshTokenTTL = 30 * 24 * time.Hour
)

// ErrInvalidToken is the single failure surfaced by token verification.
//
// Bad signatures, expired tokens, and malformed input all collapse into this
// error. Callers must treat every verification failure identically as
// "reject" — no partial trust, and nothing for a probe to learn from.
var ErrInvalidToken = errors.New("sec: invalid token")

// # Claim Sets

// AccessClaims is the payload embedded inside an access token.
//
// # Why profile fields in the token?
//
// By embedding the displayable profile directly inside the JWT, the
// authentication middleware can reconstruct the active principal WITHOUT
// querying the database on every single API request.
type AccessClaims struct {
	jwt.RegisteredClaims

	PrincipalID string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	IsAdmin     bool   `json:"isAdmin,omitempty"`
}

// RefreshClaims is the minimal payload embedded inside a refresh token.
// The token's authority comes from the exact-match comparison against the
// value stored on the principal record, not from these claims alone.
type RefreshClaims struct {
	jwt.RegisteredClaims

	PrincipalID string `json:"id"`
	IsAdmin     bool   `json:"isAdmin,omitempty"`

	// Remember records the persistence class chosen at login so that each
	// rotation re-issues the cookie with the same retention policy.
	Remember bool `json:"rememberMe,omitempty"`
}

// # Token Service

// AccessProfile carries the displayable identity baked into an access token.
type AccessProfile struct {
	PrincipalID string
	FirstName   string
	LastName    string
	Email       string
	DateOfBirth string
	IsAdmin     bool
}

// Tokens signs and verifies both token classes using HMAC-SHA256.
//
// # Key Separation
//
// Access and refresh tokens are signed with distinct secrets. This is a
// deliberate invariant: a compromised access key must not be able to forge
// refresh tokens, and vice versa.
type Tokens struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
}

// NewTokens constructs a [Tokens] service from the two signing secrets.
// Presence of the secrets is validated at configuration load; this
// constructor only guards against programmer error.
func NewTokens(accessSecret, refreshSecret, issuer string) (*Tokens, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("sec: signing secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("sec: access and refresh secrets must differ")
	}
	return &Tokens{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
	}, nil
}

/*
IssueAccess signs a new access token for the given principal profile.

Description: Fixed 30-minute expiry. Administrator principals carry the
isAdmin claim; end-user tokens omit it entirely.

Parameters:
  - profile: AccessProfile

Returns:
  - string: Signed compact JWT
  - error: Signing failures
*/
func (tokens *Tokens) IssueAccess(profile AccessProfile) (string, error) {
	currentTime := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.PrincipalID,
			Issuer:    tokens.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(AccessTokenTTL)),
		},
		PrincipalID: profile.PrincipalID,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Email:       profile.Email,
		DateOfBirth: profile.DateOfBirth,
		IsAdmin:     profile.IsAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(tokens.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign access token: %w", err)
	}

	return signedToken, nil
}

/*
IssueRefresh signs a new refresh token for the given principal.

Description: The time-to-live is 1 day by default and 30 days for
remember-me sessions. The cryptographic expiry and the cookie retention
window always move together: a remember-me session widens both, never
just one, so the cookie can never outlive the token it carries.

Parameters:
  - principalID: string
  - isAdmin: bool
  - rememberMe: bool

Returns:
  - string: Signed compact JWT
  - error: Signing failures
*/
func (tokens *Tokens) IssueRefresh(principalID string, isAdmin, rememberMe bool) (string, error) {
	timeToLive := RefreshTokenTTL
	if rememberMe {
		timeToLive = RememberMeRefreshTokenTTL
	}

	currentTime := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			Issuer:    tokens.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		PrincipalID: principalID,
		IsAdmin:     isAdmin,
		Remember:    rememberMe,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(tokens.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign refresh token: %w", err)
	}

	return signedToken, nil
}

/*
VerifyAccess checks the signature and validity of an access token string.

Description: The signature is verified before any claim is trusted; the
signing method is pinned to HMAC so algorithm-substitution tokens are
rejected outright.

Parameters:
  - tokenString: string

Returns:
  - *AccessClaims: Verified claim set
  - error: [ErrInvalidToken] for every failure mode
*/
func (tokens *Tokens) VerifyAccess(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return tokens.accessSecret, nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

/*
VerifyRefresh checks the signature and validity of a refresh token string.

Parameters:
  - tokenString: string

Returns:
  - *RefreshClaims: Verified claim set
  - error: [ErrInvalidToken] for every failure mode
*/
func (tokens *Tokens) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return tokens.refreshSecret, nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
