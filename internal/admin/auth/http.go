// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package auth

import (
	"net/http"

	"github.com/kvasirlabs/ward/internal/platform/constants"
	requestutil "github.com/kvasirlabs/ward/internal/platform/request"
	"github.com/kvasirlabs/ward/internal/platform/respond"
	"github.com/kvasirlabs/ward/internal/platform/sec"
	"github.com/kvasirlabs/ward/internal/platform/validate"
	userauth "github.com/kvasirlabs/ward/internal/users/auth"
	"github.com/kvasirlabs/ward/pkg/pagination"
)

// Handler implements administrator authentication HTTP endpoints.
//
// Routes are mounted by the API composition root: login/token/logout are
// public (the refresh cookie is the credential), the console endpoints sit
// behind RequireAdmin.
type Handler struct {
	adminService *Service
}

// NewHandler constructs a new admin auth [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{adminService: service}
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

/*
POST /admin/login.

Description: Authenticates an administrator and sets the admin refresh
cookie. The cookie name differs from the end-user one, so the two principal
classes can hold sessions in the same browser without collision.

Request:
  - body: loginRequest

Response:
  - 200: {accessToken}: Access token and admin profile
  - 400: InvalidCredentials
*/
func (handler *Handler) Login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required(userauth.FieldEmail, input.Email).Required(userauth.FieldPassword, input.Password)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.adminService.Login(request.Context(), LoginInput{
		Email:      input.Email,
		Password:   input.Password,
		RememberMe: input.RememberMe,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, sec.RefreshCookie(constants.AdminRefreshCookieName, session.RefreshToken, session.RememberMe))

	respond.OK(writer, map[string]any{
		userauth.FieldAccessToken: session.AccessToken,
		"admin":                   session.Admin,
	})
}

/*
GET /admin/token.

Description: Exchanges the admin refresh cookie for a new access token,
rotating the stored refresh token.

Response:
  - 200: {accessToken}: Fresh access token
  - 204: No admin refresh cookie present
  - 403: Invalid, stale, or non-admin refresh token
*/
func (handler *Handler) Token(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.AdminRefreshCookieName)
	if err != nil || cookie.Value == "" {
		respond.NoContent(writer)
		return
	}

	session, err := handler.adminService.Refresh(request.Context(), cookie.Value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, sec.RefreshCookie(constants.AdminRefreshCookieName, session.RefreshToken, session.RememberMe))

	respond.OK(writer, map[string]any{
		userauth.FieldAccessToken: session.AccessToken,
	})
}

/*
DELETE /admin/logout.

Description: Revokes the admin session and clears the cookie. Idempotent.

Response:
  - 204: No Content
*/
func (handler *Handler) Logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.AdminRefreshCookieName)
	if err == nil && cookie != nil && cookie.Value != "" {
		_ = handler.adminService.Logout(request.Context(), cookie.Value)
	}

	http.SetCookie(writer, sec.ExpiredCookie(constants.AdminRefreshCookieName))

	respond.NoContent(writer)
}

/*
GET /admin/users.

Description: Lists end-user accounts for the admin console, newest first.
Sits behind RequireAdmin plus the response cache.

Request:
  - query: page, limit (clamped, see [pagination.FromRequest])

Response:
  - 200: []User + pagination metadata
  - 401/403: Gating (middleware)
*/
func (handler *Handler) ListUsers(writer http.ResponseWriter, request *http.Request) {
	users, metadata, err := handler.adminService.ListUsers(request.Context(), pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, users, metadata)
}

/*
GET /admin/admin-users.

Description: Lists administrator accounts, newest first.

Request:
  - query: page, limit (clamped, see [pagination.FromRequest])

Response:
  - 200: []AdminUser + pagination metadata
  - 401/403: Gating (middleware)
*/
func (handler *Handler) ListAdmins(writer http.ResponseWriter, request *http.Request) {
	admins, metadata, err := handler.adminService.ListAdmins(request.Context(), pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, admins, metadata)
}

type createRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

/*
POST /admin/create.

Description: Enrolls a new administrator account. Roles are attached
afterwards via the role administration surface.

Request:
  - body: createRequest

Response:
  - 201: AdminUser: Created account
  - 400: Validation failure
  - 409: Conflict: Email already registered for an administrator
*/
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required(userauth.FieldFirstName, input.FirstName).
		Required(userauth.FieldLastName, input.LastName).
		Required(userauth.FieldEmail, input.Email).
		Email(userauth.FieldEmail, input.Email).
		Required(userauth.FieldPassword, input.Password).
		Password(userauth.FieldPassword, input.Password)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	admin, err := handler.adminService.Create(request.Context(), CreateInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, admin)
}
