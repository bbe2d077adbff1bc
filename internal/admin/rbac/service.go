// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package rbac

import (
	"context"
	"fmt"

	"github.com/kvasirlabs/ward/internal/platform/apperr"
	"github.com/kvasirlabs/ward/pkg/slice"
)

// Service implements role administration use cases behind the protection
// invariants: system roles are immutable, critical roles need an explicit
// confirmation flag before permission changes apply.
type Service struct {
	roleRepository RoleRepository
}

// NewService constructs a new rbac [Service].
func NewService(repository RoleRepository) *Service {
	return &Service{roleRepository: repository}
}

// # Read Surface

// ListRoles returns every role with its permission set.
func (service *Service) ListRoles(context context.Context) ([]Role, error) {
	return service.roleRepository.ListRoles(context)
}

// ListPermissions returns the permission catalog.
func (service *Service) ListPermissions(context context.Context) ([]Permission, error) {
	return service.roleRepository.ListPermissions(context)
}

// # Guarded Mutations

/*
UpdateRolePermissions replaces a role's permission set wholesale.

Description: The guard runs before anything persists:
  - a system (immutable) role rejects the mutation outright with 403,
    leaving the stored set untouched no matter the payload;
  - a critical role without confirm describes the staged change back with
    409 CONFIRMATION_REQUIRED and persists nothing — there is no pending
    state, the caller simply resubmits with confirm set.

On success the role's permission set exactly equals permissionIDs.

Parameters:
  - context: context.Context
  - roleID: string
  - permissionIDs: []string (the complete new set)
  - confirm: bool (operator acknowledgment for critical roles)

Returns:
  - *Role: The role re-read with its new permission set
  - error: Forbidden, ConfirmationRequired, NotFound, or storage errors
*/
func (service *Service) UpdateRolePermissions(context context.Context, roleID string, permissionIDs []string, confirm bool) (*Role, error) {
	role, err := service.roleRepository.FindRoleByID(context, roleID)
	if err != nil {
		return nil, err
	}

	if role.System {
		return nil, apperr.Forbidden(fmt.Sprintf("Role %q is a system role and cannot be modified", role.Name))
	}

	if role.Critical && !confirm {
		return nil, apperr.ConfirmationRequired(fmt.Sprintf(
			"Role %q is critical: replacing its %d permissions with the %d submitted requires confirm=true",
			role.Name, len(role.Permissions), len(permissionIDs),
		))
	}

	if err := service.roleRepository.ReplacePermissions(context, roleID, permissionIDs); err != nil {
		return nil, err
	}

	return service.roleRepository.FindRoleByID(context, roleID)
}

/*
ReplaceAdminRoles replaces an admin account's role set wholesale.

Description: Removing membership of a system role is rejected with 403 —
the superadmin role cannot be stripped through this surface. Granting new
membership (including of system roles) is allowed.

Parameters:
  - context: context.Context
  - adminID: string
  - roleIDs: []string (the complete new set)

Returns:
  - []Role: The admin's roles re-read after the swap
  - error: Forbidden, NotFound, or storage errors
*/
func (service *Service) ReplaceAdminRoles(context context.Context, adminID string, roleIDs []string) ([]Role, error) {
	current, err := service.roleRepository.RolesForAdmin(context, adminID)
	if err != nil {
		return nil, err
	}

	submitted := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		submitted[id] = struct{}{}
	}

	stripped := slice.Filter(current, func(role Role) bool {
		_, kept := submitted[role.ID]
		return !kept && role.System
	})
	if len(stripped) > 0 {
		return nil, apperr.Forbidden(fmt.Sprintf("Membership of system role %q cannot be removed", stripped[0].Name))
	}

	if err := service.roleRepository.ReplaceAdminRoles(context, adminID, roleIDs); err != nil {
		return nil, err
	}

	return service.roleRepository.RolesForAdmin(context, adminID)
}
