// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

/*
Package auth implements administrator identity and session lifecycle
management.

Administrators are a separate principal class from end-users: a distinct
table, a distinct refresh cookie, and access tokens carrying the isAdmin
claim. Email uniqueness holds within the class — the same address may exist
as both a user and an admin account without collision.

Role and permission semantics live in the rbac package; this one only
authenticates.
*/
package auth

import "time"

// AdminUser represents an administrator principal.
//
// Like the end-user entity, the RefreshToken column holds the single active
// refresh token; rotation overwrites it, logout clears it.
type AdminUser struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialized.
	RefreshToken *string   `json:"-"` // Server-side session state.
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
