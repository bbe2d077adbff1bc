// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

/*
TestIsUniqueViolation: a wrapped SQLSTATE 23505 is recognized so concurrent
duplicate enrollments surface as CONFLICT rather than a generic 500.
*/
func TestIsUniqueViolation(t *testing.T) {
	duplicate := &pgconn.PgError{Code: pgerrcode.UniqueViolation}

	assert.True(t, isUniqueViolation(duplicate))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert admin: %w", duplicate)))

	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.NotNullViolation}))
}
