// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/crudkit/internal/platform/middleware"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	requestutil "github.com/taibuivan/crudkit/internal/platform/request"
	"github.com/taibuivan/crudkit/internal/platform/respond"
)

// Handler implements the HTTP layer for role management.
type Handler struct {
	roleService *Service
}

// NewHandler constructs a new role [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{roleService: service}
}

// Routes returns a [chi.Router] with the role endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(middleware.RequirePermission(permission.ResourceRole, permission.Read)).Get("/", handler.listRoles)
	router.With(middleware.RequirePermission(permission.ResourceRole, permission.Create)).Post("/", handler.createRole)
	router.With(middleware.RequirePermission(permission.ResourceRole, permission.Update)).Post("/{id}/accounts/{accountId}", handler.assignRole)

	return router
}

// GET /api/v1/roles
func (handler *Handler) listRoles(writer http.ResponseWriter, request *http.Request) {
	roles, err := handler.roleService.ListRoles(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, roles)
}

/*
POST /api/v1/roles

Request:
  - Body: {"name": "Editor", "claims": [{"resource": "Product", "permission": "Read|Update"}]}

Response:
  - 201: RoleSummary
  - 400: ValidationError: missing name, taken name or unknown claim
*/
func (handler *Handler) createRole(writer http.ResponseWriter, request *http.Request) {
	var input CreateRoleInput

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.roleService.CreateRole(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, role)
}

/*
POST /api/v1/roles/{id}/accounts/{accountId}

Response:
  - 204: assigned
  - 404: ResourceNotFound: role or account
  - 409: Conflict: already assigned
*/
func (handler *Handler) assignRole(writer http.ResponseWriter, request *http.Request) {
	roleID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	accountID, err := requestutil.ID(request, "accountId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.roleService.AssignRole(request.Context(), roleID, accountID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
