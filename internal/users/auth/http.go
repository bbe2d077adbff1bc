// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

/*
Package auth provides the HTTP delivery layer for end-user identity management.

It implements the gateway for the authentication lifecycle — from account
creation to session rotation and recovery.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Handles JWT orchestration and refresh token cookie injection.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kvasirlabs/ward/internal/platform/constants"
	requestutil "github.com/kvasirlabs/ward/internal/platform/request"
	"github.com/kvasirlabs/ward/internal/platform/respond"
	"github.com/kvasirlabs/ward/internal/platform/sec"
	"github.com/kvasirlabs/ward/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements end-user authentication HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the user lifecycle entry points
// (Registration, Login, Refresh, Password Reset).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with the /auth route group.
//
// # Endpoints
//   - POST   /register        : Creates a new account.
//   - POST   /login           : Authenticates and returns a token pair.
//   - DELETE /logout          : Revokes the active refresh token.
//   - POST   /forgot-password : Starts the password recovery flow.
//   - POST   /reset-password  : Completes the password recovery flow.
//
// The companion GET /token endpoint lives at the API root; see [Handler.Token].
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Delete("/logout", handler.logout)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	return router
}

// # Request Payloads

type registerRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DateOfBirth string `json:"dateOfBirth"`
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

/*
Register handles the creation of a new user account.

POST /auth/register

Description: Validates input (including the password policy), checks for a
duplicate email, and persists a new user profile.

Request:
  - Body: registerRequest (FirstName, LastName, Email, Password, DateOfBirth?)

Response:
  - 201: User: Created user profile
  - 400: ErrInvalidJSON: Bad input, weak password, or duplicate email
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldFirstName, input.FirstName).
		Required(FieldLastName, input.LastName).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Password:    input.Password,
		DateOfBirth: input.DateOfBirth,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Login authenticates a user and establishes a session.

POST /auth/login

Description: Verifies credentials, signs the token pair, durably stores the
refresh token, and injects the refresh cookie. With rememberMe the cookie
persists for 30 days; otherwise it is session-scoped.

Request:
  - Body: loginRequest (Email, Password, RememberMe)

Response:
  - 200: {accessToken}: Access token and user profile
  - 400: InvalidCredentials: Unknown email or wrong password (indistinguishable)
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:      input.Email,
		Password:   input.Password,
		RememberMe: input.RememberMe,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, sec.RefreshCookie(constants.UserRefreshCookieName, session.RefreshToken, session.RememberMe))

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		"user":           session.User,
	})
}

/*
Token exchanges a valid refresh cookie for a new access token.

GET /token

Description: Rotates the refresh token — the presented value is superseded
the moment the new one is durably stored — and re-issues the cookie with the
same persistence class the login chose.

Response:
  - 200: {accessToken}: Fresh access token
  - 204: No refresh cookie present
  - 403: Invalid, expired, or superseded refresh token
*/
func (handler *Handler) Token(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.UserRefreshCookieName)
	if err != nil || cookie.Value == "" {
		respond.NoContent(writer)
		return
	}

	session, err := handler.authService.Refresh(request.Context(), cookie.Value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, sec.RefreshCookie(constants.UserRefreshCookieName, session.RefreshToken, session.RememberMe))

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
	})
}

/*
Logout terminates the current user session.

DELETE /auth/logout

Description: Revokes the stored refresh token (if any) and clears the
refresh cookie from the client. Always succeeds.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.UserRefreshCookieName)

	if err == nil && cookie != nil && cookie.Value != "" {
		_ = handler.authService.Logout(request.Context(), cookie.Value)
	}

	http.SetCookie(writer, sec.ExpiredCookie(constants.UserRefreshCookieName))

	respond.NoContent(writer)
}

/*
ForgotPassword initiates the password recovery flow.

POST /auth/forgot-password

Description: Stores a short-lived reset token for the account if it exists.
The response never reveals whether the email is registered.

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: Success: Generic recovery message
  - 400: ErrInvalidJSON: Invalid email format
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	_, err := handler.authService.RequestPasswordReset(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this email is registered, a reset link has been sent.",
	})
}

/*
ResetPassword completes the password recovery flow.

POST /auth/reset-password

Description: Validates the reset token and the new password against the
account policy, then updates the stored hash and revokes the active session.

Request:
  - Body: resetPasswordRequest (Token, Password)

Response:
  - 200: Success: Password updated
  - 400: ErrInvalidJSON: Bad token or weak password
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldToken, input.Token).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}
