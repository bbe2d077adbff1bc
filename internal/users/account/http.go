// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kvasirlabs/ward/internal/users/auth"

	requestutil "github.com/kvasirlabs/ward/internal/platform/request"
	"github.com/kvasirlabs/ward/internal/platform/respond"
	"github.com/kvasirlabs/ward/internal/platform/validate"
)

// Handler implements the HTTP layer for user profile management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] with the profile endpoints. All routes here
// sit behind the RequireAuth middleware; see the API composition root.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Put("/{id}", handler.updateUser)

	return router
}

// updateUserRequest defines the expected JSON payload for profile updates.
type updateUserRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	DateOfBirth *string `json:"dateOfBirth"`
}

/*
PUT /users/{id}.

Description: Applies updates to the authenticated user's own profile. A URL
naming any other account is rejected before the target is even looked up.

Request:
  - id: string (UUID)
  - body: updateUserRequest (Partial JSON)

Response:
  - 200: User: The updated profile
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: URL names a different principal
*/
func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	requesterID, err := requestutil.RequiredPrincipalID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateUserRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.FirstName != nil {
		v.Required(auth.FieldFirstName, *input.FirstName).MaxLen(auth.FieldFirstName, *input.FirstName, 100)
	}
	if input.LastName != nil {
		v.Required(auth.FieldLastName, *input.LastName).MaxLen(auth.FieldLastName, *input.LastName, 100)
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), requesterID, requestutil.Param(request, "id"), UpdateProfileInput{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		DateOfBirth: input.DateOfBirth,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}
