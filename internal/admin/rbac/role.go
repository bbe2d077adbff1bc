// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

/*
Package rbac implements role-and-permission authorization for administrators.

It owns the role graph (roles, permissions, admin membership), the resolver
that answers "does this admin satisfy requirement set R", and the guard that
protects role mutation.

# Model

Authorization is an OR over a union set: an admin satisfies a requirement
list when ANY required name appears among their role names or among the
permission names those roles carry. There are no AND semantics.

Regular end-users have no role graph at all; this package is admin-only.
*/
package rbac

// # Domain Entities

// Permission is a single named capability. Lifecycle is admin-curated.
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Role groups permissions and is held by admin accounts (both many-to-many).
//
// Two protection flags gate mutation through the administrative surface:
//   - System: the role is immutable. Permission changes and membership
//     removal are rejected outright.
//   - Critical: permission changes require an explicit confirmation flag on
//     the request before they are applied.
type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Critical    bool         `json:"isCritical"`
	System      bool         `json:"isSystem"`
	Permissions []Permission `json:"permissions"`
}

// # Field Identifiers

const (
	FieldRoleIDs       = "roleIds"
	FieldPermissionIDs = "permissionIds"
	FieldConfirm       = "confirm"
)
