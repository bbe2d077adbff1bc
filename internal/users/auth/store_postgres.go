// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

// # PostgreSQL Storage Layer
//
// Repositories in this file are strictly separated from domain logic. They
// implement domain-defined interfaces (e.g., [UserRepository]) using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kvasirlabs/ward/internal/platform/apperr"
)

const userColumns = `id, firstname, lastname, email, passwordhash, dateofbirth, refreshtoken, createdat, updatedat`

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.DateOfBirth,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create persists a new user record into the ward.user_account table.
//
// # Parameters
//   - ctx: Context for the database operation.
//   - user: The user entity to persist.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO ward.user_account (
			id, firstname, lastname, email, passwordhash, dateofbirth, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.DateOfBirth,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// The partial unique index on live emails backstops the service's
		// check-then-insert; a concurrent duplicate lands here.
		if isUniqueViolation(err) {
			return apperr.ValidationError("Email is already registered")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == pgerrcode.UniqueViolation
}

// FindByEmail retrieves a user record by their unique email address.
//
// # Returns
//
// Returns [*User] if found, or [apperr.NotFound] if no account exists.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM ward.user_account
		WHERE email = $1 AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found with this email")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

// FindByID retrieves a user record by their unique ID.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM ward.user_account
		WHERE id = $1 AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

// Update persists changes to a user's mutable profile fields.
func (repository *PostgresUserRepository) Update(ctx context.Context, user *User) error {
	const query = `
		UPDATE ward.user_account
		SET firstname = $2, lastname = $3, dateofbirth = $4, updatedat = $5
		WHERE id = $1 AND deletedat IS NULL`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.DateOfBirth,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_failed: %w", err)
	}

	return nil
}

// UpdatePassword updates only the password hash for a specific user.
func (repository *PostgresUserRepository) UpdatePassword(ctx context.Context, userID, newHash string) error {
	const query = `
		UPDATE ward.user_account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(ctx, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return nil
}

// ── Refresh Store ────────────────────────────────────────────────────────────

// PostgresRefreshStore implements the RefreshStore interface against the
// refreshtoken column of ward.user_account.
//
// A user holds at most one live refresh token, so rotation is a single-row
// UPDATE and revocation sets the column to NULL.
type PostgresRefreshStore struct {
	pool *pgxpool.Pool
}

// NewRefreshStore creates a new PostgreSQL implementation of RefreshStore.
func NewRefreshStore(pool *pgxpool.Pool) *PostgresRefreshStore {
	return &PostgresRefreshStore{pool: pool}
}

// Rotate unconditionally replaces the user's stored refresh token.
func (store *PostgresRefreshStore) Rotate(ctx context.Context, userID, newToken string) error {
	const query = `
		UPDATE ward.user_account
		SET refreshtoken = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := store.pool.Exec(ctx, query, userID, newToken, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_refresh_store_rotate_failed: %w", err)
	}

	return nil
}

// RotateIfMatch replaces the stored refresh token only if it still equals
// oldToken. The WHERE clause makes the swap a compare-and-set at the row
// level, so two concurrent refreshes with the same token resolve to exactly
// one winner.
//
// # Returns
//
// Returns true when this caller won the swap, false when the stored value
// had already changed (or was revoked).
func (store *PostgresRefreshStore) RotateIfMatch(ctx context.Context, userID, oldToken, newToken string) (bool, error) {
	const query = `
		UPDATE ward.user_account
		SET refreshtoken = $3, updatedat = $4
		WHERE id = $1 AND refreshtoken = $2 AND deletedat IS NULL`

	tag, err := store.pool.Exec(ctx, query, userID, oldToken, newToken, time.Now())
	if err != nil {
		return false, fmt.Errorf("postgres_refresh_store_rotate_if_match_failed: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// FindByRefreshToken retrieves the user holding exactly this refresh token.
//
// An exact column match is deliberate: a token that verifies cryptographically
// but was superseded by rotation (or cleared by logout) does not resolve.
func (store *PostgresRefreshStore) FindByRefreshToken(ctx context.Context, token string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM ward.user_account
		WHERE refreshtoken = $1 AND deletedat IS NULL`

	user, err := scanUser(store.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session not found")
		}
		return nil, fmt.Errorf("postgres_refresh_store_find_failed: %w", err)
	}

	return user, nil
}

// Revoke clears the user's stored refresh token unconditionally.
//
// Unconditional by contract: a logout racing a refresh must terminate the
// session regardless of which token value the row currently holds.
func (store *PostgresRefreshStore) Revoke(ctx context.Context, userID string) error {
	const query = `
		UPDATE ward.user_account
		SET refreshtoken = NULL, updatedat = $2
		WHERE id = $1 AND deletedat IS NULL`

	_, err := store.pool.Exec(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_refresh_store_revoke_failed: %w", err)
	}

	return nil
}
