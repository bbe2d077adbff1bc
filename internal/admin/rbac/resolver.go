// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package rbac

import (
	"context"
	"fmt"
)

// Resolver answers authorization questions for admin principals.
//
// It satisfies the middleware's AuthorizationResolver contract and is the
// only component that reads the role graph on the request path.
type Resolver struct {
	roleRepository RoleRepository
}

// NewResolver constructs a new [Resolver].
func NewResolver(repository RoleRepository) *Resolver {
	return &Resolver{roleRepository: repository}
}

/*
LoadAdminRoles returns the fully hydrated roles held by an admin account.

Parameters:
  - context: context.Context
  - adminID: string

Returns:
  - []Role: Held roles with permissions attached
  - error: apperr.NotFound when the account no longer exists
*/
func (resolver *Resolver) LoadAdminRoles(context context.Context, adminID string) ([]Role, error) {
	roles, err := resolver.roleRepository.RolesForAdmin(context, adminID)
	if err != nil {
		return nil, err
	}
	return roles, nil
}

/*
Satisfies reports whether the admin meets ANY of the required names.

Description: The admin's resolved set is the union of their role names and
every permission name those roles carry. A single intersection with the
required list is enough — callers requiring ["SUPERADMIN","MANAGE_USERS"]
pass with either name present. The answer is monotonic: growing the admin's
resolved set never turns a true into a false.

Parameters:
  - context: context.Context
  - adminID: string
  - required: []string (role or permission names)

Returns:
  - bool: true when any required name is in the resolved set
  - error: apperr.NotFound when the account vanished, or query failures
*/
func (resolver *Resolver) Satisfies(context context.Context, adminID string, required []string) (bool, error) {
	roles, err := resolver.roleRepository.RolesForAdmin(context, adminID)
	if err != nil {
		return false, fmt.Errorf("rbac_resolver_load_failed: %w", err)
	}

	resolved := make(map[string]struct{})
	for _, role := range roles {
		resolved[role.Name] = struct{}{}
		for _, permission := range role.Permissions {
			resolved[permission.Name] = struct{}{}
		}
	}

	for _, name := range required {
		if _, ok := resolved[name]; ok {
			return true, nil
		}
	}

	return false, nil
}
