// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

// # PostgreSQL Storage Layer
//
// Same shape as the end-user stores, against ward.admin_account. Kept as a
// separate implementation rather than a shared generic one: the two tables
// evolve independently and the SQL stays greppable.

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
	userauth "github.com/kvasirlabs/ward/internal/users/auth"
	"github.com/kvasirlabs/ward/pkg/pagination"
)

const adminColumns = `id, firstname, lastname, email, passwordhash, refreshtoken, createdat, updatedat`

// PostgresAdminRepository implements AdminRepository using pgx.
type PostgresAdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new PostgreSQL implementation of AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) *PostgresAdminRepository {
	return &PostgresAdminRepository{pool: pool}
}

func scanAdmin(row pgx.Row) (*AdminUser, error) {
	admin := &AdminUser{}
	err := row.Scan(
		&admin.ID,
		&admin.FirstName,
		&admin.LastName,
		&admin.Email,
		&admin.PasswordHash,
		&admin.RefreshToken,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// FindByID retrieves an admin account by ID.
func (repository *PostgresAdminRepository) FindByID(ctx context.Context, id string) (*AdminUser, error) {
	const query = `
		SELECT ` + adminColumns + `
		FROM ward.admin_account
		WHERE id = $1 AND deletedat IS NULL`

	admin, err := scanAdmin(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Admin account not found")
		}
		return nil, fmt.Errorf("postgres_admin_repo_find_by_id_failed: %w", err)
	}

	return admin, nil
}

// FindByEmail retrieves an admin account by its unique email address.
func (repository *PostgresAdminRepository) FindByEmail(ctx context.Context, email string) (*AdminUser, error) {
	const query = `
		SELECT ` + adminColumns + `
		FROM ward.admin_account
		WHERE email = $1 AND deletedat IS NULL`

	admin, err := scanAdmin(repository.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Admin account not found with this email")
		}
		return nil, fmt.Errorf("postgres_admin_repo_find_by_email_failed: %w", err)
	}

	return admin, nil
}

// Create persists a new admin account.
func (repository *PostgresAdminRepository) Create(ctx context.Context, admin *AdminUser) error {
	const query = `
		INSERT INTO ward.admin_account (
			id, firstname, lastname, email, passwordhash, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = now
	}
	admin.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		admin.ID,
		admin.FirstName,
		admin.LastName,
		admin.Email,
		admin.PasswordHash,
		admin.CreatedAt,
		admin.UpdatedAt,
	)

	if err != nil {
		// Concurrent duplicate past the service's FindByEmail check: the
		// unique index answers with SQLSTATE 23505.
		if isUniqueViolation(err) {
			return apperr.Conflict("An administrator with this email already exists")
		}
		return fmt.Errorf("postgres_admin_repo_create_failed: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == pgerrcode.UniqueViolation
}

// List returns one page of admin accounts, newest first, plus the total
// live-account count via a window function so a single query serves both.
func (repository *PostgresAdminRepository) List(ctx context.Context, params pagination.Params) ([]AdminUser, int, error) {
	const query = `
		SELECT ` + adminColumns + `, COUNT(*) OVER() AS total
		FROM ward.admin_account
		WHERE deletedat IS NULL
		ORDER BY createdat DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_admin_repo_list_failed: %w", err)
	}
	defer rows.Close()

	admins := []AdminUser{}
	total := 0
	for rows.Next() {
		admin := AdminUser{}
		if err := rows.Scan(
			&admin.ID,
			&admin.FirstName,
			&admin.LastName,
			&admin.Email,
			&admin.PasswordHash,
			&admin.RefreshToken,
			&admin.CreatedAt,
			&admin.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_admin_repo_list_scan_failed: %w", err)
		}
		admins = append(admins, admin)
	}

	return admins, total, rows.Err()
}

// ── Refresh Store ────────────────────────────────────────────────────────────

// PostgresAdminRefreshStore implements AdminRefreshStore against the
// refreshtoken column of ward.admin_account.
type PostgresAdminRefreshStore struct {
	pool *pgxpool.Pool
}

// NewAdminRefreshStore creates a new PostgreSQL implementation of AdminRefreshStore.
func NewAdminRefreshStore(pool *pgxpool.Pool) *PostgresAdminRefreshStore {
	return &PostgresAdminRefreshStore{pool: pool}
}

// Rotate unconditionally replaces the admin's stored refresh token.
func (store *PostgresAdminRefreshStore) Rotate(ctx context.Context, adminID, newToken string) error {
	const query = `
		UPDATE ward.admin_account
		SET refreshtoken = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := store.pool.Exec(ctx, query, adminID, newToken, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_admin_refresh_store_rotate_failed: %w", err)
	}

	return nil
}

// RotateIfMatch swaps the token only when oldToken is still stored; the
// row-level compare-and-set leaves exactly one winner under concurrency.
func (store *PostgresAdminRefreshStore) RotateIfMatch(ctx context.Context, adminID, oldToken, newToken string) (bool, error) {
	const query = `
		UPDATE ward.admin_account
		SET refreshtoken = $3, updatedat = $4
		WHERE id = $1 AND refreshtoken = $2 AND deletedat IS NULL`

	tag, err := store.pool.Exec(ctx, query, adminID, oldToken, newToken, time.Now())
	if err != nil {
		return false, fmt.Errorf("postgres_admin_refresh_store_rotate_if_match_failed: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// FindByRefreshToken resolves the admin holding exactly this refresh token.
func (store *PostgresAdminRefreshStore) FindByRefreshToken(ctx context.Context, token string) (*AdminUser, error) {
	const query = `
		SELECT ` + adminColumns + `
		FROM ward.admin_account
		WHERE refreshtoken = $1 AND deletedat IS NULL`

	admin, err := scanAdmin(store.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session not found")
		}
		return nil, fmt.Errorf("postgres_admin_refresh_store_find_failed: %w", err)
	}

	return admin, nil
}

// Revoke clears the admin's stored refresh token unconditionally.
func (store *PostgresAdminRefreshStore) Revoke(ctx context.Context, adminID string) error {
	const query = `
		UPDATE ward.admin_account
		SET refreshtoken = NULL, updatedat = $2
		WHERE id = $1 AND deletedat IS NULL`

	_, err := store.pool.Exec(ctx, query, adminID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_admin_refresh_store_revoke_failed: %w", err)
	}

	return nil
}

// ── User Directory ───────────────────────────────────────────────────────────

// PostgresUserDirectory implements UserDirectory over ward.user_account.
type PostgresUserDirectory struct {
	pool *pgxpool.Pool
}

// NewUserDirectory creates a new PostgreSQL implementation of UserDirectory.
func NewUserDirectory(pool *pgxpool.Pool) *PostgresUserDirectory {
	return &PostgresUserDirectory{pool: pool}
}

// ListUsers returns one page of non-deleted end-user accounts, newest first.
func (directory *PostgresUserDirectory) ListUsers(ctx context.Context, params pagination.Params) ([]userauth.User, int, error) {
	const query = `
		SELECT id, firstname, lastname, email, passwordhash, dateofbirth, refreshtoken, createdat, updatedat,
			COUNT(*) OVER() AS total
		FROM ward.user_account
		WHERE deletedat IS NULL
		ORDER BY createdat DESC
		LIMIT $1 OFFSET $2`

	rows, err := directory.pool.Query(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_user_directory_list_failed: %w", err)
	}
	defer rows.Close()

	users := []userauth.User{}
	total := 0
	for rows.Next() {
		user := userauth.User{}
		if err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.PasswordHash,
			&user.DateOfBirth,
			&user.RefreshToken,
			&user.CreatedAt,
			&user.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_user_directory_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	return users, total, rows.Err()
}
