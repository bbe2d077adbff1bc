// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package auth

import (
	"context"
	"fmt"

	"github.com/kvasirlabs/ward/internal/platform/apperr"
	"github.com/kvasirlabs/ward/internal/platform/sec"
	userauth "github.com/kvasirlabs/ward/internal/users/auth"
	"github.com/kvasirlabs/ward/pkg/emailnorm"
	"github.com/kvasirlabs/ward/pkg/pagination"
	"github.com/kvasirlabs/ward/pkg/uuid"
)

// TokenProvider is the slice of the token engine this principal class uses.
// [sec.Tokens] satisfies it.
type TokenProvider interface {
	IssueAccess(profile sec.AccessProfile) (string, error)
	IssueRefresh(principalID string, isAdmin, rememberMe bool) (string, error)
	VerifyRefresh(tokenString string) (*sec.RefreshClaims, error)
}

// Service implements administrator authentication use cases.
type Service struct {
	adminRepository AdminRepository
	refreshStore    AdminRefreshStore
	userDirectory   UserDirectory
	tokenProvider   TokenProvider
}

// NewService constructs a new admin auth [Service].
func NewService(
	adminRepo AdminRepository,
	refreshStore AdminRefreshStore,
	directory UserDirectory,
	tokenProv TokenProvider,
) *Service {
	return &Service{
		adminRepository: adminRepo,
		refreshStore:    refreshStore,
		userDirectory:   directory,
		tokenProvider:   tokenProv,
	}
}

// LoginInput defines credentials for an admin authentication attempt.
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// Session represents a successfully established admin session.
type Session struct {
	AccessToken  string
	RefreshToken string
	RememberMe   bool
	Admin        *AdminUser
}

/*
Login validates admin credentials and issues a token pair.

Description: Identical contract to the end-user flow, against the admin
principal class: generic InvalidCredentials for unknown email and wrong
password alike, durable refresh storage before the session is returned, and
isAdmin baked into both tokens.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Transport-ready session credentials
  - error: InvalidCredentials or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {
	admin, err := service.adminRepository.FindByEmail(context, emailnorm.Canonical(input.Email))
	if err != nil {
		return nil, apperr.InvalidCredentials()
	}

	if !sec.CheckPasswordHash(input.Password, admin.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	accessToken, err := service.tokenProvider.IssueAccess(adminProfile(admin))
	if err != nil {
		return nil, fmt.Errorf("admin_auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenProvider.IssueRefresh(admin.ID, true, input.RememberMe)
	if err != nil {
		return nil, fmt.Errorf("admin_auth_service_refresh_token_failed: %w", err)
	}

	if err := service.refreshStore.Rotate(context, admin.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("admin_auth_service_rotate_failed: %w", err)
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		RememberMe:   input.RememberMe,
		Admin:        admin,
	}, nil
}

/*
Refresh rotates an admin refresh token.

Description: Same shape as the end-user flow with one extra gate — the
presented token must carry the isAdmin claim. A cryptographically valid
END-USER refresh token presented on the admin surface is rejected before any
lookup, so the two principal classes cannot be swapped.

Parameters:
  - context: context.Context
  - presentedToken: string

Returns:
  - *Session: Rotated session credentials
  - error: Forbidden for every invalid/stale/cross-class token
*/
func (service *Service) Refresh(context context.Context, presentedToken string) (*Session, error) {
	claims, err := service.tokenProvider.VerifyRefresh(presentedToken)
	if err != nil {
		return nil, apperr.Forbidden("Invalid or stale refresh token")
	}

	if !claims.IsAdmin {
		return nil, apperr.Forbidden("Invalid or stale refresh token")
	}

	admin, err := service.refreshStore.FindByRefreshToken(context, presentedToken)
	if err != nil {
		return nil, apperr.Forbidden("Invalid or stale refresh token")
	}

	if admin.ID != claims.PrincipalID {
		return nil, apperr.Forbidden("Invalid or stale refresh token")
	}

	newRefreshToken, err := service.tokenProvider.IssueRefresh(admin.ID, true, claims.Remember)
	if err != nil {
		return nil, fmt.Errorf("admin_auth_service_refresh_issue_failed: %w", err)
	}

	won, err := service.refreshStore.RotateIfMatch(context, admin.ID, presentedToken, newRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("admin_auth_service_rotate_failed: %w", err)
	}
	if !won {
		return nil, apperr.Forbidden("Invalid or stale refresh token")
	}

	accessToken, err := service.tokenProvider.IssueAccess(adminProfile(admin))
	if err != nil {
		return nil, fmt.Errorf("admin_auth_service_access_token_failed: %w", err)
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		RememberMe:   claims.Remember,
		Admin:        admin,
	}, nil
}

/*
Logout revokes the admin's active refresh token; idempotent.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - error: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	admin, err := service.refreshStore.FindByRefreshToken(context, refreshToken)
	if err != nil {
		return nil
	}

	if err := service.refreshStore.Revoke(context, admin.ID); err != nil {
		return fmt.Errorf("admin_auth_service_logout_failed: %w", err)
	}

	return nil
}

// CreateInput holds the data for enrolling a new administrator.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

/*
Create enrolls a new administrator account.

Description: Only reachable behind the admin surface. Unlike self-service
registration, a duplicate email here is a Conflict (409) — the caller is a
trusted operator, so there is nothing to hide.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *AdminUser: Created account (no roles attached yet)
  - error: Conflict, or storage errors
*/
func (service *Service) Create(context context.Context, input CreateInput) (*AdminUser, error) {
	email := emailnorm.Canonical(input.Email)

	if _, err := service.adminRepository.FindByEmail(context, email); err == nil {
		return nil, apperr.Conflict("An administrator with this email already exists")
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("admin_auth_service_hash_failed: %w", err)
	}

	admin := &AdminUser{
		ID:           uuid.New(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	if err := service.adminRepository.Create(context, admin); err != nil {
		return nil, fmt.Errorf("admin_auth_service_create_failed: %w", err)
	}

	return admin, nil
}

// ListAdmins returns one page of administrator accounts with its metadata.
func (service *Service) ListAdmins(context context.Context, params pagination.Params) ([]AdminUser, pagination.Meta, error) {
	admins, total, err := service.adminRepository.List(context, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return admins, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// ListUsers returns one page of end-user accounts for the admin console.
func (service *Service) ListUsers(context context.Context, params pagination.Params) ([]userauth.User, pagination.Meta, error) {
	users, total, err := service.userDirectory.ListUsers(context, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return users, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// adminProfile maps an admin entity to the claim profile for access tokens.
func adminProfile(admin *AdminUser) sec.AccessProfile {
	return sec.AccessProfile{
		PrincipalID: admin.ID,
		FirstName:   admin.FirstName,
		LastName:    admin.LastName,
		Email:       admin.Email,
		IsAdmin:     true,
	}
}
