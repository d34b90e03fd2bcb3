// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/crudkit/internal/platform/middleware"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	requestutil "github.com/taibuivan/crudkit/internal/platform/request"
	"github.com/taibuivan/crudkit/internal/platform/respond"
	"github.com/taibuivan/crudkit/internal/platform/validate"
	"github.com/taibuivan/crudkit/internal/users/identity"
	"github.com/taibuivan/crudkit/pkg/pagination"
	"github.com/taibuivan/crudkit/pkg/query"
)

// Handler implements the HTTP layer for user management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] with the user endpoints. Every route is
// guarded by a permission on the User resource.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	read := middleware.RequirePermission(permission.ResourceUser, permission.Read)

	router.With(read).Get("/", handler.listUsers)
	router.With(read).Get("/details", handler.listUserDetails)
	router.With(read).Get("/{id}", handler.getUser)
	router.With(read).Get("/{id}/details", handler.getUserDetails)
	router.With(middleware.RequirePermission(permission.ResourceUser, permission.Create)).Post("/", handler.addUser)
	router.With(middleware.RequirePermission(permission.ResourceUser, permission.Update)).Put("/{id}", handler.updateUser)
	router.With(middleware.RequirePermission(permission.ResourceUser, permission.Delete)).Delete("/{id}", handler.deleteUser)

	return router
}

/*
GET /api/v1/users?page=&limit=&status=

Description: Lists user accounts one page at a time. status is an optional
comma-separated list of account statuses.

Response:
  - 200: Page[UserSummary]
  - 400: ValidationError: Unknown status
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	filter, ok := listFilter(writer, request)
	if !ok {
		return
	}

	page, err := handler.accountService.GetUsers(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, page)
}

/*
GET /api/v1/users/details?page=&limit=&status=

Description: Lists user accounts with their creator, last modifier and owner
resolved. Accepts the same filters as the summary list.

Response:
  - 200: Page[UserDetail]
  - 400: ValidationError: Unknown status
*/
func (handler *Handler) listUserDetails(writer http.ResponseWriter, request *http.Request) {
	filter, ok := listFilter(writer, request)
	if !ok {
		return
	}

	page, err := handler.accountService.GetUserDetails(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, page)
}

// listFilter reads paging and statuses from the query string. On a bad status
// it writes the validation error and reports false.
func listFilter(writer http.ResponseWriter, request *http.Request) (ListFilter, bool) {
	filter := ListFilter{Page: pagination.FromRequest(request)}

	statuses, rejected := query.Enums(request.URL.Query().Get(FieldStatus), identity.ParseAccountStatus)
	filter.Statuses = statuses

	validator := validate.For(resourceUser)
	for _, name := range rejected {
		validator.Custom(FieldStatus, validate.CodeOneOf, true, "Unknown account status: "+name)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return filter, false
	}

	return filter, true
}

/*
GET /api/v1/users/{id}

Response:
  - 200: UserSummary
  - 404: ResourceNotFound
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetUserByID(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// GET /api/v1/users/{id}/details. Summary plus the resolved audit trail.
func (handler *Handler) getUserDetails(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.accountService.GetUserDetailByID(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, detail)
}

/*
POST /api/v1/users

Request:
  - Body: AddUserInput

Response:
  - 201: UserSummary
  - 400: ValidationError
  - 409: Conflict: Username already exists
*/
func (handler *Handler) addUser(writer http.ResponseWriter, request *http.Request) {
	var input AddUserInput

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.AddUser(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
PUT /api/v1/users/{id}

Request:
  - Body: UpdateUserInput (rowVersion required)

Response:
  - 200: UserSummary
  - 409: ConcurrencyConflict: The row version is stale
*/
func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateUserInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateUser(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// DELETE /api/v1/users/{id}?rowVersion=. Soft delete.
func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteUser(request.Context(), id, request.URL.Query().Get(FieldRowVersion)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
