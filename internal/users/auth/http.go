// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/crudkit/internal/platform/request"
	"github.com/taibuivan/crudkit/internal/platform/respond"
	"github.com/taibuivan/crudkit/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the login endpoints. Every route is public.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with the login routes.
//
// # Endpoints
//   - POST /login/user     : Username and password login.
//   - POST /login/client   : Client key login.
//   - POST /login/external : Federated login (not available).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login/user", handler.loginUser)
	router.Post("/login/client", handler.loginClient)
	router.Post("/login/external", handler.loginExternal)

	return router
}

// # Request Payloads

type userLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type clientLoginRequest struct {
	ClientKey string `json:"clientKey"`
}

/*
POST /api/v1/auth/login/user

Description: Verifies the credentials and issues an access token carrying the
effective permissions.

Request:
  - Body: userLoginRequest (Username, Password)

Response:
  - 200: LoginResult
  - 400: ValidationError: Missing username or password
  - 401: AuthenticationFailed: Bad credentials or inactive account
*/
func (handler *Handler) loginUser(writer http.ResponseWriter, request *http.Request) {
	var input userLoginRequest

	// ── 1. Decode ───────────────────────────────────────────────────────────
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Validate ─────────────────────────────────────────────────────────
	if err := validate.For("Login").
		Required(FieldUsername, input.Username).
		Required(FieldPassword, input.Password).
		Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Authenticate ─────────────────────────────────────────────────────
	result, err := handler.authService.LoginUser(request.Context(), input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, result)
}

/*
POST /api/v1/auth/login/client

Request:
  - Body: clientLoginRequest (ClientKey)

Response:
  - 200: LoginResult
  - 401: AuthenticationFailed: Invalid Client Key
*/
func (handler *Handler) loginClient(writer http.ResponseWriter, request *http.Request) {
	var input clientLoginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := validate.For("Login").Required(FieldClientKey, input.ClientKey).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.LoginClient(request.Context(), input.ClientKey)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, result)
}

// POST /api/v1/auth/login/external. Always 503.
func (handler *Handler) loginExternal(writer http.ResponseWriter, request *http.Request) {
	_, err := handler.authService.LoginExternal(request.Context())
	respond.Error(writer, request, err)
}
