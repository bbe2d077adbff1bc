// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

// # PostgreSQL Role Graph Storage
//
// The role graph lives in four tables: ward.role, ward.permission, and the
// junctions ward.role_permission and ward.admin_role. Wholesale replacement
// (the only write shape this package exposes) is delete-then-insert inside
// one transaction.

package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kvasirlabs/ward/internal/platform/apperr"
)

// PostgresRoleRepository implements RoleRepository using pgx.
type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new PostgreSQL implementation of RoleRepository.
func NewRoleRepository(pool *pgxpool.Pool) *PostgresRoleRepository {
	return &PostgresRoleRepository{pool: pool}
}

// ListRoles returns every role with its permission set hydrated.
func (repository *PostgresRoleRepository) ListRoles(ctx context.Context) ([]Role, error) {
	const query = `
		SELECT id, name, description, iscritical, issystem
		FROM ward.role
		ORDER BY name`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_role_repo_list_failed: %w", err)
	}
	defer rows.Close()

	roles, err := scanRoles(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres_role_repo_list_scan_failed: %w", err)
	}

	if err := repository.attachPermissions(ctx, roles); err != nil {
		return nil, err
	}

	return roles, nil
}

// ListPermissions returns the full permission catalog.
func (repository *PostgresRoleRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	const query = `
		SELECT id, name, description
		FROM ward.permission
		ORDER BY name`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_role_repo_list_permissions_failed: %w", err)
	}
	defer rows.Close()

	permissions := []Permission{}
	for rows.Next() {
		var permission Permission
		if err := rows.Scan(&permission.ID, &permission.Name, &permission.Description); err != nil {
			return nil, fmt.Errorf("postgres_role_repo_permission_scan_failed: %w", err)
		}
		permissions = append(permissions, permission)
	}

	return permissions, rows.Err()
}

// FindRoleByID retrieves one role with its permission set hydrated.
func (repository *PostgresRoleRepository) FindRoleByID(ctx context.Context, roleID string) (*Role, error) {
	const query = `
		SELECT id, name, description, iscritical, issystem
		FROM ward.role
		WHERE id = $1`

	role := &Role{}
	err := repository.pool.QueryRow(ctx, query, roleID).Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.Critical,
		&role.System,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Role not found")
		}
		return nil, fmt.Errorf("postgres_role_repo_find_failed: %w", err)
	}

	roles := []Role{*role}
	if err := repository.attachPermissions(ctx, roles); err != nil {
		return nil, err
	}

	return &roles[0], nil
}

// RolesForAdmin returns the roles held by an admin account, permissions
// hydrated. A vanished account is NotFound; an account with no roles is an
// empty slice.
func (repository *PostgresRoleRepository) RolesForAdmin(ctx context.Context, adminID string) ([]Role, error) {
	const existsQuery = `
		SELECT 1 FROM ward.admin_account
		WHERE id = $1 AND deletedat IS NULL`

	var one int
	if err := repository.pool.QueryRow(ctx, existsQuery, adminID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Admin account not found")
		}
		return nil, fmt.Errorf("postgres_role_repo_admin_check_failed: %w", err)
	}

	const query = `
		SELECT r.id, r.name, r.description, r.iscritical, r.issystem
		FROM ward.role r
		JOIN ward.admin_role ar ON ar.roleid = r.id
		WHERE ar.adminid = $1
		ORDER BY r.name`

	rows, err := repository.pool.Query(ctx, query, adminID)
	if err != nil {
		return nil, fmt.Errorf("postgres_role_repo_roles_for_admin_failed: %w", err)
	}
	defer rows.Close()

	roles, err := scanRoles(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres_role_repo_roles_for_admin_scan_failed: %w", err)
	}

	if err := repository.attachPermissions(ctx, roles); err != nil {
		return nil, err
	}

	return roles, nil
}

// ReplacePermissions replaces a role's permission set wholesale inside one
// transaction. Unknown permission IDs abort the whole swap.
func (repository *PostgresRoleRepository) ReplacePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_role_repo_tx_begin_failed: %w", err)
	}
	defer transaction.Rollback(ctx)

	if _, err := transaction.Exec(ctx,
		`DELETE FROM ward.role_permission WHERE roleid = $1`, roleID); err != nil {
		return fmt.Errorf("postgres_role_repo_disconnect_failed: %w", err)
	}

	for _, permissionID := range permissionIDs {
		if _, err := transaction.Exec(ctx,
			`INSERT INTO ward.role_permission (roleid, permissionid) VALUES ($1, $2)`,
			roleID, permissionID); err != nil {
			return apperr.ValidationError("One or more permission IDs do not exist")
		}
	}

	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_role_repo_tx_commit_failed: %w", err)
	}

	return nil
}

// ReplaceAdminRoles replaces an admin account's role set wholesale inside
// one transaction.
func (repository *PostgresRoleRepository) ReplaceAdminRoles(ctx context.Context, adminID string, roleIDs []string) error {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_role_repo_tx_begin_failed: %w", err)
	}
	defer transaction.Rollback(ctx)

	if _, err := transaction.Exec(ctx,
		`DELETE FROM ward.admin_role WHERE adminid = $1`, adminID); err != nil {
		return fmt.Errorf("postgres_role_repo_membership_disconnect_failed: %w", err)
	}

	for _, roleID := range roleIDs {
		if _, err := transaction.Exec(ctx,
			`INSERT INTO ward.admin_role (adminid, roleid) VALUES ($1, $2)`,
			adminID, roleID); err != nil {
			return apperr.ValidationError("One or more role IDs do not exist")
		}
	}

	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_role_repo_tx_commit_failed: %w", err)
	}

	return nil
}

// ── Scan Helpers ─────────────────────────────────────────────────────────────

func scanRoles(rows pgx.Rows) ([]Role, error) {
	roles := []Role{}
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.Critical, &role.System); err != nil {
			return nil, err
		}
		role.Permissions = []Permission{}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// attachPermissions hydrates the permission sets for all given roles with a
// single junction query.
func (repository *PostgresRoleRepository) attachPermissions(ctx context.Context, roles []Role) error {
	if len(roles) == 0 {
		return nil
	}

	roleIDs := make([]string, len(roles))
	index := make(map[string]int, len(roles))
	for position, role := range roles {
		roleIDs[position] = role.ID
		index[role.ID] = position
	}

	const query = `
		SELECT rp.roleid, p.id, p.name, p.description
		FROM ward.role_permission rp
		JOIN ward.permission p ON p.id = rp.permissionid
		WHERE rp.roleid = ANY($1)
		ORDER BY p.name`

	rows, err := repository.pool.Query(ctx, query, roleIDs)
	if err != nil {
		return fmt.Errorf("postgres_role_repo_attach_permissions_failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var roleID string
		var permission Permission
		if err := rows.Scan(&roleID, &permission.ID, &permission.Name, &permission.Description); err != nil {
			return fmt.Errorf("postgres_role_repo_attach_scan_failed: %w", err)
		}
		roles[index[roleID]].Permissions = append(roles[index[roleID]].Permissions, permission)
	}

	return rows.Err()
}
