// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/kvasirlabs/ward/internal/platform/apperr"
	"github.com/kvasirlabs/ward/internal/platform/sec"
	"github.com/kvasirlabs/ward/pkg/emailnorm"
	"github.com/kvasirlabs/ward/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and verifying session tokens.
type TokenProvider interface {
	// IssueAccess creates a signed access token carrying the displayable profile.
	IssueAccess(profile sec.AccessProfile) (string, error)

	// IssueRefresh creates a signed refresh token; rememberMe selects the
	// extended validity window.
	IssueRefresh(principalID string, isAdmin, rememberMe bool) (string, error)

	// VerifyRefresh checks signature and expiry of a presented refresh token.
	VerifyRefresh(tokenString string) (*sec.RefreshClaims, error)
}

// Service implements end-user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, rotation,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository       UserRepository
	refreshStore         RefreshStore
	resetTokenRepository ResetTokenRepository
	tokenProvider        TokenProvider
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	refreshStore RefreshStore,
	resetRepo ResetTokenRepository,
	tokenProv TokenProvider,
) *Service {
	return &Service{
		userRepository:       userRepo,
		refreshStore:         refreshStore,
		resetTokenRepository: resetRepo,
		tokenProvider:        tokenProv,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new user.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	DateOfBirth string // Optional, DateOfBirthLayout format.
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Enrollment of a new end-user, enforcing email uniqueness within
the user principal class and the account password policy (applied here and
never retroactively).

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Validation (duplicate email) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	email := emailnorm.Canonical(input.Email)

	// Verify email uniqueness within the user principal class.
	_, err := service.userRepository.FindByEmail(context, email)
	if err == nil {
		return nil, apperr.ValidationError("Email is already registered")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	if input.DateOfBirth != "" {
		dateOfBirth, parseErr := parseDateOfBirth(input.DateOfBirth)
		if parseErr != nil {
			return nil, parseErr
		}
		user.DateOfBirth = dateOfBirth
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// Session represents a successfully established user session.
type Session struct {
	AccessToken  string
	RefreshToken string
	RememberMe   bool
	User         *User
}

/*
Login validates user credentials and issues a fresh token pair.

Description: Verifies identity with a constant-time password comparison,
signs an access/refresh pair, and durably stores the refresh token on the
principal record BEFORE the session is returned — an interrupted response
never leaves an orphaned token the caller could have received.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Transport-ready session credentials
  - error: InvalidCredentials or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {
	user, err := service.userRepository.FindByEmail(context, emailnorm.Canonical(input.Email))

	// Generic failure for unknown email AND wrong password: the caller must
	// never learn which of the two was wrong.
	if err != nil {
		return nil, apperr.InvalidCredentials()
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	accessToken, err := service.tokenProvider.IssueAccess(accessProfile(user))
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenProvider.IssueRefresh(user.ID, false, input.RememberMe)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Login unconditionally replaces any previous session for this account.
	if err := service.refreshStore.Rotate(context, user.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("auth_service_rotate_failed: %w", err)
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		RememberMe:   input.RememberMe,
		User:         user,
	}, nil
}

// # Session Management

/*
Refresh implements the refresh token rotation mechanism.

Description: Verifies the presented token cryptographically, matches it
against the stored value (exact match — a superseded token is rejected even
though its signature is still valid), swaps in a fresh token with
compare-and-swap semantics, and only then issues a new access token.

Parameters:
  - context: context.Context
  - presentedToken: string

Returns:
  - *Session: Rotated session credentials
  - error: Forbidden for every invalid/stale token shape
*/
func (service *Service) Refresh(context context.Context, presentedToken string) (*Session, error) {
	claims, err := service.tokenProvider.VerifyRefresh(presentedToken)
	if err != nil {
		return nil, apperr.Forbidden("Invalid or stale refresh token")
	}

	user, err := service.refreshStore.FindByRefreshToken(context, presentedToken)
	if err != nil {
		// Cryptographically valid but superseded or revoked.
		return nil, apperr.Forbidden("Invalid or stale refresh token")
	}

	if user.ID != claims.PrincipalID {
		return nil, apperr.Forbidden("Invalid or stale refresh token")
	}

	newRefreshToken, err := service.tokenProvider.IssueRefresh(user.ID, false, claims.Remember)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_issue_failed: %w", err)
	}

	// Compare-and-swap: two refreshes racing with the same original token
	// succeed at most once. The loser's already-issued access token stays
	// valid until its own expiry; refresh state never invalidates it.
	won, err := service.refreshStore.RotateIfMatch(context, user.ID, presentedToken, newRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("auth_service_rotate_failed: %w", err)
	}
	if !won {
		return nil, apperr.Forbidden("Invalid or stale refresh token")
	}

	// The rotation is durable at this point; issuing the access token after
	// the write means an interrupted response loses only a token the caller
	// can replace with a fresh login.
	accessToken, err := service.tokenProvider.IssueAccess(accessProfile(user))
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		RememberMe:   claims.Remember,
		User:         user,
	}, nil
}

/*
Logout permanently revokes the user's active refresh token.

Description: Idempotent — an unknown or already-revoked token is a success.
The revoke write is unconditional, so a logout racing an in-flight refresh
strictly wins.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - error: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	user, err := service.refreshStore.FindByRefreshToken(context, refreshToken)
	if err != nil {
		return nil
	}

	if err := service.refreshStore.Revoke(context, user.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token and saves it to Redis with a TTL.
NOTE: An unknown email returns success with an empty token to prevent user
enumeration.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Reset token (empty for unknown accounts)
  - error: Generation errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	user, err := service.userRepository.FindByEmail(context, emailnorm.Canonical(email))
	if err != nil {
		return "", nil
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.resetTokenRepository.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	// TODO: hand the token to the outbound mail worker once it lands.
	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Resolves the token, hashes the new password, updates the DB,
and revokes the active refresh token so every device must re-authenticate.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string (already policy-checked at the boundary)

Returns:
  - error: Validation or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	userID, err := service.resetTokenRepository.Get(context, token)
	if err != nil {
		return apperr.ValidationError("Reset token is invalid or expired")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security cleanup: the active session dies with the old password.
	_ = service.refreshStore.Revoke(context, userID)
	_ = service.resetTokenRepository.Delete(context, token)

	return nil
}

// # Helpers

// parseDateOfBirth parses the optional wire-format date of birth.
func parseDateOfBirth(value string) (*time.Time, error) {
	parsed, err := time.Parse(DateOfBirthLayout, value)
	if err != nil {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldDateOfBirth,
			Message: "Must be a valid date (YYYY-MM-DD)",
		})
	}
	return &parsed, nil
}

// accessProfile maps a user entity to the claim profile baked into access tokens.
func accessProfile(user *User) sec.AccessProfile {
	profile := sec.AccessProfile{
		PrincipalID: user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
	}
	if user.DateOfBirth != nil {
		profile.DateOfBirth = user.DateOfBirth.Format(DateOfBirthLayout)
	}
	return profile
}
