// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package rbac

import "context"

// # Storage Contracts

// RoleRepository abstracts persistence of the role graph.
type RoleRepository interface {
	/*
		ListRoles returns every role with its permission set hydrated.

		Parameters:
		  - context: context.Context

		Returns:
		  - []Role: All roles, permissions attached
		  - error: Query failures
	*/
	ListRoles(context context.Context) ([]Role, error)

	/*
		ListPermissions returns the full permission catalog.

		Parameters:
		  - context: context.Context

		Returns:
		  - []Permission: All permissions
		  - error: Query failures
	*/
	ListPermissions(context context.Context) ([]Permission, error)

	/*
		FindRoleByID retrieves one role with its permission set hydrated.

		Parameters:
		  - context: context.Context
		  - roleID: string

		Returns:
		  - *Role: The role
		  - error: apperr.NotFound or query failures
	*/
	FindRoleByID(context context.Context, roleID string) (*Role, error)

	/*
		RolesForAdmin returns the roles held by an admin account, permissions
		hydrated.

		Description: Distinguishes "admin has no roles" (empty slice, nil
		error) from "admin row no longer exists" (apperr.NotFound) — callers
		gate 403 vs 401 on exactly this difference.

		Parameters:
		  - context: context.Context
		  - adminID: string

		Returns:
		  - []Role: Held roles (possibly empty)
		  - error: apperr.NotFound when the account vanished
	*/
	RolesForAdmin(context context.Context, adminID string) ([]Role, error)

	/*
		ReplacePermissions replaces a role's permission set wholesale.

		Description: Disconnect-then-reconnect inside a single transaction.
		After success the stored set exactly equals permissionIDs; no prior
		member survives. Unknown permission IDs fail the whole transaction.

		Parameters:
		  - context: context.Context
		  - roleID: string
		  - permissionIDs: []string

		Returns:
		  - error: apperr.NotFound, validation, or transaction failures
	*/
	ReplacePermissions(context context.Context, roleID string, permissionIDs []string) error

	/*
		ReplaceAdminRoles replaces an admin account's role set wholesale,
		with the same transactional set-then-reconnect semantics as
		ReplacePermissions.

		Parameters:
		  - context: context.Context
		  - adminID: string
		  - roleIDs: []string

		Returns:
		  - error: apperr.NotFound, validation, or transaction failures
	*/
	ReplaceAdminRoles(context context.Context, adminID string, roleIDs []string) error
}
