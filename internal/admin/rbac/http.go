// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package rbac

import (
	"net/http"

	requestutil "github.com/kvasirlabs/ward/internal/platform/request"
	"github.com/kvasirlabs/ward/internal/platform/respond"
	"github.com/kvasirlabs/ward/internal/platform/validate"
)

// Handler implements the HTTP layer for role administration.
//
// Routes are mounted by the API composition root because the paths span two
// prefixes (/roles, /permissions, /admin/admin-users) with different
// authorization gates.
type Handler struct {
	rbacService *Service
}

// NewHandler constructs a new rbac [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{rbacService: service}
}

/*
GET /roles.

Description: Lists every role with its permission set, for the admin console.

Response:
  - 200: []Role: Hydrated role list
  - 401/403: Authentication / admin gating (middleware)
*/
func (handler *Handler) ListRoles(writer http.ResponseWriter, request *http.Request) {
	roles, err := handler.rbacService.ListRoles(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, roles)
}

/*
GET /permissions.

Description: Lists the permission catalog.

Response:
  - 200: []Permission: All permissions
  - 401/403: Authentication / admin gating (middleware)
*/
func (handler *Handler) ListPermissions(writer http.ResponseWriter, request *http.Request) {
	permissions, err := handler.rbacService.ListPermissions(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, permissions)
}

// updatePermissionsRequest carries the complete replacement permission set.
type updatePermissionsRequest struct {
	PermissionIDs []string `json:"permissionIds"`
	Confirm       bool     `json:"confirm"`
}

/*
PATCH /roles/{id}/permissions.

Description: Replaces the role's permission set wholesale. System roles
reject the call; critical roles require confirm=true in the body.

Request:
  - id: string (Role UUID)
  - body: updatePermissionsRequest

Response:
  - 200: Role: The role with its new permission set
  - 400: ErrInvalidJSON/Validation: Bad payload
  - 403: ErrForbidden: System role, or caller lacks the requirement
  - 409: CONFIRMATION_REQUIRED: Critical role without confirm
*/
func (handler *Handler) UpdateRolePermissions(writer http.ResponseWriter, request *http.Request) {
	roleID := requestutil.Param(request, "id")

	var input updatePermissionsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.UUID("id", roleID)
	v.Custom(FieldPermissionIDs, input.PermissionIDs == nil, "Must be present (an empty list clears the role)")
	for _, permissionID := range input.PermissionIDs {
		v.UUID(FieldPermissionIDs, permissionID)
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.rbacService.UpdateRolePermissions(request.Context(), roleID, input.PermissionIDs, input.Confirm)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, role)
}

// updateAdminRolesRequest carries the complete replacement role set.
type updateAdminRolesRequest struct {
	RoleIDs []string `json:"roleIds"`
}

/*
PATCH /admin/admin-users/{id}/roles.

Description: Replaces an admin account's role memberships wholesale.
Removing a system role membership is rejected.

Request:
  - id: string (Admin UUID)
  - body: updateAdminRolesRequest

Response:
  - 200: []Role: The admin's new role set
  - 400: ErrInvalidJSON/Validation: Bad payload
  - 401: ErrUnauthorized: Target account vanished
  - 403: ErrForbidden: System membership removal, or caller lacks the requirement
*/
func (handler *Handler) UpdateAdminRoles(writer http.ResponseWriter, request *http.Request) {
	adminID := requestutil.Param(request, "id")

	var input updateAdminRolesRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.UUID("id", adminID)
	v.Custom(FieldRoleIDs, input.RoleIDs == nil, "Must be present (an empty list strips all roles)")
	for _, roleID := range input.RoleIDs {
		v.UUID(FieldRoleIDs, roleID)
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	roles, err := handler.rbacService.ReplaceAdminRoles(request.Context(), adminID, input.RoleIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, roles)
}
