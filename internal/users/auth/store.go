// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for end-user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given canonical email.

		Parameters:
		  - context: context.Context
		  - email: string (already normalized)

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		Update persists changes to mutable profile fields.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error
}

// # Refresh Token State

// RefreshStore associates one active refresh token with one principal and
// supports atomic replace-on-rotate and revoke-on-logout.
type RefreshStore interface {

	/*
		Rotate atomically overwrites the stored refresh token for a principal.

		Description: A single UPDATE — concurrent rotations for the same
		principal leave exactly one winner and never a torn value.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newToken: string

		Returns:
		  - error: Persistence failures
	*/
	Rotate(context context.Context, userID, newToken string) error

	/*
		RotateIfMatch replaces the stored token only if it still equals
		oldToken (compare-and-swap). Two refreshes racing with the same old
		token therefore succeed at most once.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - oldToken: string
		  - newToken: string

		Returns:
		  - bool: Whether this caller won the swap
		  - error: Persistence failures
	*/
	RotateIfMatch(context context.Context, userID, oldToken, newToken string) (bool, error)

	/*
		FindByRefreshToken returns the principal whose stored token exactly
		matches the given value. Exact match — not signature-only — is what
		makes rotation effective: a superseded token no longer matches.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *User: Owning principal
		  - error: apperr.NotFound when no account holds this token
	*/
	FindByRefreshToken(context context.Context, token string) (*User, error)

	/*
		Revoke clears the stored refresh token for a principal.

		Description: Idempotent — revoking an already-revoked principal is a
		no-op success. The write is unconditional so logout strictly
		overrides a concurrently in-flight rotation.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	Revoke(context context.Context, userID string) error
}

// # Volatile Data Access

// ResetTokenRepository defines the contract for storing volatile password
// reset tokens. The TTL realizes the reset token expiry.
type ResetTokenRepository interface {

	/*
		Set stores a reset token associated with a userID for a limited duration.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, userID string, ttl time.Duration) error

	/*
		Get retrieves the userID associated with a given reset token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: UserID
		  - error: apperr.NotFound when absent or expired
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a reset token after successful use.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error
}
