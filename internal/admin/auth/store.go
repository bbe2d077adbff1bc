// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package auth

import (
	"context"

	userauth "github.com/kvasirlabs/ward/internal/users/auth"
	"github.com/kvasirlabs/ward/pkg/pagination"
)

// # Storage Contracts

// AdminRepository abstracts persistence of administrator accounts.
type AdminRepository interface {
	/*
		FindByID retrieves an admin account by ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *AdminUser: The account
		  - error: apperr.NotFound or query failures
	*/
	FindByID(context context.Context, id string) (*AdminUser, error)

	/*
		FindByEmail retrieves an admin account by canonical email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *AdminUser: The account
		  - error: apperr.NotFound or query failures
	*/
	FindByEmail(context context.Context, email string) (*AdminUser, error)

	/*
		Create persists a new admin account.

		Parameters:
		  - context: context.Context
		  - admin: *AdminUser

		Returns:
		  - error: Insert failures
	*/
	Create(context context.Context, admin *AdminUser) error

	/*
		List returns one page of admin accounts, newest first.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []AdminUser: The requested page
		  - int: Total number of live accounts
		  - error: Query failures
	*/
	List(context context.Context, params pagination.Params) ([]AdminUser, int, error)
}

// AdminRefreshStore mirrors the end-user refresh contract against the
// admin_account table: one active token per account, compare-and-swap
// rotation, unconditional revoke.
type AdminRefreshStore interface {
	// Rotate unconditionally replaces the stored refresh token.
	Rotate(context context.Context, adminID, newToken string) error

	// RotateIfMatch swaps the token only when oldToken is still the stored
	// value; reports whether this caller won.
	RotateIfMatch(context context.Context, adminID, oldToken, newToken string) (bool, error)

	// FindByRefreshToken resolves the account holding exactly this token.
	FindByRefreshToken(context context.Context, token string) (*AdminUser, error)

	// Revoke clears the stored token; idempotent.
	Revoke(context context.Context, adminID string) error
}

// UserDirectory exposes the end-user listing the admin console reads.
type UserDirectory interface {
	// ListUsers returns one page of non-deleted end-user accounts, newest
	// first, along with the total live-account count.
	ListUsers(context context.Context, params pagination.Params) ([]userauth.User, int, error)
}
