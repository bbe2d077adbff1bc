// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package sec

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// # Password Hashing

// HashPassword hashes a plain-text password using the bcrypt algorithm.
// Each call generates a fresh random salt; the default cost keeps a single
// hash around the 100ms mark on current hardware.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
// A malformed or truncated hash yields false, never a panic.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// # Password Policy

// ValidatePassword checks a candidate password against the account policy.
//
// # Rules
//
//   - At least 8 characters.
//   - At least one uppercase letter.
//   - At least one digit.
//
// The policy is enforced on registration, admin creation, and password reset
// only. Passwords already stored are never re-validated retroactively.
//
// # Returns
//   - bool: Whether the password satisfies the policy.
//   - string: A client-safe reason when it does not.
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Must be at least 8 characters"
	}

	hasUpper := false
	hasDigit := false
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		return false, "Must contain an uppercase letter"
	}
	if !hasDigit {
		return false, "Must contain a digit"
	}

	return true, ""
}
