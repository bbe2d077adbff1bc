// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package rbac_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvasirlabs/ward/internal/admin/rbac"
	"github.com/kvasirlabs/ward/internal/platform/apperr"
)

// fakeRoleRepo keeps the role graph in maps. Wholesale replacement mirrors
// the transactional store: the previous set is fully discarded.
type fakeRoleRepo struct {
	roles       map[string]*rbac.Role
	permissions map[string]rbac.Permission
	adminRoles  map[string][]string // adminID -> role IDs; key presence = account exists
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{
		roles:       map[string]*rbac.Role{},
		permissions: map[string]rbac.Permission{},
		adminRoles:  map[string][]string{},
	}
}

func (repo *fakeRoleRepo) ListRoles(_ context.Context) ([]rbac.Role, error) {
	roles := []rbac.Role{}
	for _, role := range repo.roles {
		roles = append(roles, *role)
	}
	return roles, nil
}

func (repo *fakeRoleRepo) ListPermissions(_ context.Context) ([]rbac.Permission, error) {
	permissions := []rbac.Permission{}
	for _, permission := range repo.permissions {
		permissions = append(permissions, permission)
	}
	return permissions, nil
}

func (repo *fakeRoleRepo) FindRoleByID(_ context.Context, roleID string) (*rbac.Role, error) {
	role, ok := repo.roles[roleID]
	if !ok {
		return nil, apperr.NotFound("Role not found")
	}
	copied := *role
	return &copied, nil
}

func (repo *fakeRoleRepo) RolesForAdmin(_ context.Context, adminID string) ([]rbac.Role, error) {
	roleIDs, ok := repo.adminRoles[adminID]
	if !ok {
		return nil, apperr.NotFound("Admin account not found")
	}
	roles := []rbac.Role{}
	for _, roleID := range roleIDs {
		roles = append(roles, *repo.roles[roleID])
	}
	return roles, nil
}

func (repo *fakeRoleRepo) ReplacePermissions(_ context.Context, roleID string, permissionIDs []string) error {
	role, ok := repo.roles[roleID]
	if !ok {
		return apperr.NotFound("Role not found")
	}
	replacement := []rbac.Permission{}
	for _, permissionID := range permissionIDs {
		permission, known := repo.permissions[permissionID]
		if !known {
			return apperr.ValidationError("One or more permission IDs do not exist")
		}
		replacement = append(replacement, permission)
	}
	role.Permissions = replacement
	return nil
}

func (repo *fakeRoleRepo) ReplaceAdminRoles(_ context.Context, adminID string, roleIDs []string) error {
	if _, ok := repo.adminRoles[adminID]; !ok {
		return apperr.NotFound("Admin account not found")
	}
	repo.adminRoles[adminID] = append([]string{}, roleIDs...)
	return nil
}

// seededRepo builds the canonical development graph: SUPERADMIN (system,
// critical, all permissions), ADMIN (critical), EDITOR (plain).
func seededRepo() *fakeRoleRepo {
	repo := newFakeRoleRepo()

	manageUsers := rbac.Permission{ID: "p-users", Name: "MANAGE_USERS"}
	manageAdmins := rbac.Permission{ID: "p-admins", Name: "MANAGE_ADMINS"}
	manageRoles := rbac.Permission{ID: "p-roles", Name: "MANAGE_ROLES"}
	viewReports := rbac.Permission{ID: "p-reports", Name: "VIEW_REPORTS"}
	for _, permission := range []rbac.Permission{manageUsers, manageAdmins, manageRoles, viewReports} {
		repo.permissions[permission.ID] = permission
	}

	repo.roles["r-super"] = &rbac.Role{
		ID: "r-super", Name: "SUPERADMIN", Critical: true, System: true,
		Permissions: []rbac.Permission{manageUsers, manageAdmins, manageRoles, viewReports},
	}
	repo.roles["r-admin"] = &rbac.Role{
		ID: "r-admin", Name: "ADMIN", Critical: true,
		Permissions: []rbac.Permission{manageUsers, viewReports},
	}
	repo.roles["r-editor"] = &rbac.Role{
		ID: "r-editor", Name: "EDITOR",
		Permissions: []rbac.Permission{viewReports},
	}

	repo.adminRoles["a-super"] = []string{"r-super"}
	repo.adminRoles["a-editor"] = []string{"r-editor"}
	repo.adminRoles["a-bare"] = []string{}

	return repo
}

// ── Resolver ─────────────────────────────────────────────────────────────────

/*
TestResolver_Satisfies covers the OR-over-union semantics.
*/
func TestResolver_Satisfies(t *testing.T) {
	resolver := rbac.NewResolver(seededRepo())

	tests := []struct {
		name      string
		adminID   string
		required  []string
		satisfied bool
	}{
		{"role_name_match", "a-super", []string{"SUPERADMIN"}, true},
		{"permission_name_match", "a-editor", []string{"VIEW_REPORTS"}, true},
		{"any_of_several", "a-editor", []string{"SUPERADMIN", "VIEW_REPORTS"}, true},
		{"no_intersection", "a-editor", []string{"MANAGE_ROLES"}, false},
		{"no_roles_at_all", "a-bare", []string{"VIEW_REPORTS"}, false},
		{"empty_requirement", "a-super", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			satisfied, err := resolver.Satisfies(context.Background(), tt.adminID, tt.required)
			require.NoError(t, err)
			assert.Equal(t, tt.satisfied, satisfied)
		})
	}
}

/*
TestResolver_Satisfies_VanishedPrincipal surfaces NOT_FOUND so the middleware
can answer 401 instead of 403.
*/
func TestResolver_Satisfies_VanishedPrincipal(t *testing.T) {
	resolver := rbac.NewResolver(seededRepo())

	_, err := resolver.Satisfies(context.Background(), "a-ghost", []string{"SUPERADMIN"})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

/*
TestResolver_Satisfies_Monotonic: growing the requirement list with names
the admin also holds never flips a true to false.
*/
func TestResolver_Satisfies_Monotonic(t *testing.T) {
	resolver := rbac.NewResolver(seededRepo())

	base := []string{"VIEW_REPORTS"}
	satisfied, err := resolver.Satisfies(context.Background(), "a-super", base)
	require.NoError(t, err)
	require.True(t, satisfied)

	superset := append(base, "MANAGE_USERS", "SUPERADMIN", "MANAGE_ROLES")
	satisfied, err = resolver.Satisfies(context.Background(), "a-super", superset)
	require.NoError(t, err)
	assert.True(t, satisfied)
}

// ── Role Administration Guard ────────────────────────────────────────────────

/*
TestService_UpdateRolePermissions_Plain: a non-critical role swaps its set
without any confirmation.
*/
func TestService_UpdateRolePermissions_Plain(t *testing.T) {
	repo := seededRepo()
	service := rbac.NewService(repo)

	role, err := service.UpdateRolePermissions(context.Background(), "r-editor", []string{"p-users", "p-reports"}, false)
	require.NoError(t, err)

	names := []string{}
	for _, permission := range role.Permissions {
		names = append(names, permission.Name)
	}
	assert.ElementsMatch(t, []string{"MANAGE_USERS", "VIEW_REPORTS"}, names)
}

/*
TestService_UpdateRolePermissions_Wholesale: no prior member survives the
replacement, including when the new set is empty.
*/
func TestService_UpdateRolePermissions_Wholesale(t *testing.T) {
	repo := seededRepo()
	service := rbac.NewService(repo)

	role, err := service.UpdateRolePermissions(context.Background(), "r-editor", []string{}, false)
	require.NoError(t, err)
	assert.Empty(t, role.Permissions)
}

/*
TestService_UpdateRolePermissions_System: an immutable role rejects every
payload and its stored set stays untouched.
*/
func TestService_UpdateRolePermissions_System(t *testing.T) {
	repo := seededRepo()
	service := rbac.NewService(repo)

	before := len(repo.roles["r-super"].Permissions)

	_, err := service.UpdateRolePermissions(context.Background(), "r-super", []string{}, true)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.Len(t, repo.roles["r-super"].Permissions, before)
}

/*
TestService_UpdateRolePermissions_Critical: a critical role stages nothing
without confirm and applies with it.
*/
func TestService_UpdateRolePermissions_Critical(t *testing.T) {
	repo := seededRepo()
	service := rbac.NewService(repo)

	before := len(repo.roles["r-admin"].Permissions)

	_, err := service.UpdateRolePermissions(context.Background(), "r-admin", []string{"p-reports"}, false)
	require.Error(t, err)
	assert.Equal(t, "CONFIRMATION_REQUIRED", apperr.As(err).Code)

	// Nothing persisted by the rejected attempt.
	assert.Len(t, repo.roles["r-admin"].Permissions, before)

	// Resubmitting with confirm applies the same change.
	role, err := service.UpdateRolePermissions(context.Background(), "r-admin", []string{"p-reports"}, true)
	require.NoError(t, err)
	require.Len(t, role.Permissions, 1)
	assert.Equal(t, "VIEW_REPORTS", role.Permissions[0].Name)
}

/*
TestService_UpdateRolePermissions_UnknownRole maps to 404.
*/
func TestService_UpdateRolePermissions_UnknownRole(t *testing.T) {
	service := rbac.NewService(seededRepo())

	_, err := service.UpdateRolePermissions(context.Background(), "r-ghost", []string{}, true)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestService_ReplaceAdminRoles swaps memberships wholesale.
*/
func TestService_ReplaceAdminRoles(t *testing.T) {
	repo := seededRepo()
	service := rbac.NewService(repo)

	roles, err := service.ReplaceAdminRoles(context.Background(), "a-editor", []string{"r-admin"})
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "ADMIN", roles[0].Name)
}

/*
TestService_ReplaceAdminRoles_SystemMembership: stripping a system role is
rejected; granting one is allowed.
*/
func TestService_ReplaceAdminRoles_SystemMembership(t *testing.T) {
	repo := seededRepo()
	service := rbac.NewService(repo)

	// Removal of SUPERADMIN membership is rejected.
	_, err := service.ReplaceAdminRoles(context.Background(), "a-super", []string{"r-editor"})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.Equal(t, []string{"r-super"}, repo.adminRoles["a-super"])

	// Granting SUPERADMIN membership to another admin is allowed.
	roles, err := service.ReplaceAdminRoles(context.Background(), "a-editor", []string{"r-editor", "r-super"})
	require.NoError(t, err)
	assert.Len(t, roles, 2)
}

/*
TestService_ReplaceAdminRoles_VanishedAdmin maps to NOT_FOUND for the 401 path.
*/
func TestService_ReplaceAdminRoles_VanishedAdmin(t *testing.T) {
	service := rbac.NewService(seededRepo())

	_, err := service.ReplaceAdminRoles(context.Background(), "a-ghost", []string{"r-editor"})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
