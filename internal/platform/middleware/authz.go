// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/taibuivan/crudkit/internal/platform/apperr"
	"github.com/taibuivan/crudkit/internal/platform/authz"
	"github.com/taibuivan/crudkit/internal/platform/constants"
	"github.com/taibuivan/crudkit/internal/platform/ctxutil"
	"github.com/taibuivan/crudkit/internal/platform/metrics"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/platform/respond"
	"github.com/taibuivan/crudkit/internal/platform/sec"
)

// TokenValidator is the part of [sec.TokenService] the middleware needs.
type TokenValidator interface {
	ValidateToken(token string) (*sec.Identity, bool)
}

// Authenticate extracts and validates the bearer token.
//
// # Flow
//  1. No 'Authorization' header: the request proceeds as anonymous.
//  2. Malformed scheme or invalid token: the request also proceeds as anonymous.
//  3. Valid token: the [*sec.Identity] is injected into the request context.
//
// Rejection is left to [RequireAuth] and [RequirePermission] on guarded routes.
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Format Validation ──────────────────────────────────────────
			token, ok := bearerToken(request.Header.Get(constants.HeaderAuthorization))
			if !ok {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			identity, valid := validator.ValidateToken(token)
			if !valid {
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "bearer_token_rejected")
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// bearerToken splits "Bearer <token>" (scheme is case-insensitive).
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetIdentity(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

/*
RequirePermission guards a route with the flags it needs on one resource.

It implies [RequireAuth]: an anonymous request gets 401 and an identity lacking
any required bit gets 403. Every decision is counted in
crudkit_authz_decisions_total.

Example:

	r.With(middleware.RequirePermission(permission.ResourceUser, permission.Read)).Get("/", h.list)
*/
func RequirePermission(resource permission.Resource, required permission.Type) func(http.Handler) http.Handler {
	requirement := authz.Requirement{Resource: resource, Required: required}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			decision := requirement.Check(ctxutil.GetIdentity(request.Context()))
			metrics.AuthzDecisions.WithLabelValues(resource.String(), decision.String()).Inc()

			switch decision {
			case authz.Unauthorized:
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			case authz.Forbidden:
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
			default:
				next.ServeHTTP(writer, request)
			}
		})
	}
}
