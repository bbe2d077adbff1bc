// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

/*
Package account implements profile management for authenticated end-users.

It owns the mutable slice of the user record (name, date of birth); identity
and credential state stay with the auth package.

# Security

Profile writes are strictly self-service: the authenticated principal may
only modify its own record, no matter what ID the URL names.
*/
package account

import (
	"context"
	"fmt"
	"time"

	"github.com/kvasirlabs/ward/internal/platform/apperr"
	"github.com/kvasirlabs/ward/internal/users/auth"
)

// ProfileRepository is the slice of user persistence this package needs.
// *auth.PostgresUserRepository satisfies it.
type ProfileRepository interface {
	FindByID(context context.Context, id string) (*auth.User, error)
	Update(context context.Context, user *auth.User) error
}

// Service implements profile management use cases.
type Service struct {
	profileRepository ProfileRepository
}

// NewService constructs a new account [Service].
func NewService(repository ProfileRepository) *Service {
	return &Service{profileRepository: repository}
}

// UpdateProfileInput holds the optional profile fields; nil means unchanged.
type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	DateOfBirth *string // auth.DateOfBirthLayout format.
}

/*
UpdateProfile applies a partial update to the principal's own profile.

Description: Rejects any attempt to modify a record other than the
requester's own with Forbidden — existence of the target is not probed
first, so the response does not leak whether the other account exists.

Parameters:
  - context: context.Context
  - requesterID: string (authenticated principal)
  - targetID: string (URL-addressed record)
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated profile
  - error: Forbidden, validation, or storage errors
*/
func (service *Service) UpdateProfile(context context.Context, requesterID, targetID string, input UpdateProfileInput) (*auth.User, error) {
	if requesterID != targetID {
		return nil, apperr.Forbidden("You can only modify your own profile")
	}

	user, err := service.profileRepository.FindByID(context, requesterID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.DateOfBirth != nil {
		if *input.DateOfBirth == "" {
			user.DateOfBirth = nil
		} else {
			parsed, parseErr := time.Parse(auth.DateOfBirthLayout, *input.DateOfBirth)
			if parseErr != nil {
				return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
					Field:   auth.FieldDateOfBirth,
					Message: "Must be a valid date (YYYY-MM-DD)",
				})
			}
			user.DateOfBirth = &parsed
		}
	}

	if err := service.profileRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	return user, nil
}

/*
GetProfile retrieves the full profile of a user by ID.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: Hydrated profile
  - error: NotFound or storage errors
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	return service.profileRepository.FindByID(context, userID)
}
