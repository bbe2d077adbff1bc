// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvasirlabs/ward/internal/platform/apperr"
)

/*
TestConstructors: each constructor carries its code, status, and the caller's
message verbatim — no suffixing or rewriting.
*/
func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *apperr.AppError
		code    string
		status  int
		message string
	}{
		{"not_found", apperr.NotFound("Session not found"), "NOT_FOUND", http.StatusNotFound, "Session not found"},
		{"unauthorized", apperr.Unauthorized("Authentication required"), "UNAUTHORIZED", http.StatusUnauthorized, "Authentication required"},
		{"forbidden", apperr.Forbidden("Administrator access required"), "FORBIDDEN", http.StatusForbidden, "Administrator access required"},
		{"conflict", apperr.Conflict("An administrator with this email already exists"), "CONFLICT", http.StatusConflict, "An administrator with this email already exists"},
		{"invalid_credentials", apperr.InvalidCredentials(), "INVALID_CREDENTIALS", http.StatusBadRequest, "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.message, tt.err.Message)
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

/*
TestAs_ThroughWrapping: the taxonomy stays detectable across %w chains.
*/
func TestAs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("rbac_resolver_load_failed: %w", apperr.NotFound("Admin account not found"))

	appError := apperr.As(wrapped)
	require.NotNil(t, appError)
	assert.Equal(t, "NOT_FOUND", appError.Code)

	assert.Nil(t, apperr.As(errors.New("connection refused")))
}

/*
TestValidationError_Details carries the field errors through.
*/
func TestValidationError_Details(t *testing.T) {
	err := apperr.ValidationError("Validation failed",
		apperr.FieldError{Field: "email", Message: "Must be a valid email address"},
	)

	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	require.Len(t, err.Details, 1)
	assert.Equal(t, "email", err.Details[0].Field)
}
