// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

/*
Package auth implements end-user identity and session lifecycle management.

It defines the core domain entity (User) and the logic for registration,
credential verification, token issuance, refresh rotation, and password
recovery.

# Architecture

This layer is the "Truth" of the end-user principal class. Entities defined
here have no transport dependencies and encapsulate all business rules
related to user identity.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered end-user principal.
//
// The RefreshToken field holds the single active refresh token for this
// account. Issuing a new one overwrites the old, which implicitly revokes
// the prior token: verification is an exact match against this value, not a
// signature-only check.
type User struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Explicitly omitted from JSON for security.
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	RefreshToken *string    `json:"-"` // Server-side session state. Omitted for security.
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the user domain.
const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldDateOfBirth = "dateOfBirth"
	FieldToken       = "token"
	FieldAccessToken = "accessToken"
	FieldMessage     = "message"
)
