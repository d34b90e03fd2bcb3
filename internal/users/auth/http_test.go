// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/platform/respond"
	"github.com/taibuivan/crudkit/internal/users/auth"
	"github.com/taibuivan/crudkit/internal/users/identity"
	"github.com/taibuivan/crudkit/internal/users/identity/identitytest"
)

/*
TestHandler_Login verifies the login routes, status codes and error codes.
*/
func TestHandler_Login(t *testing.T) {
	f := newFixture(t)

	role := identitytest.SeedRole(t, f.db, "Clerk", permission.Map{permission.ResourceOrder: permission.Read | permission.Create})
	account := identitytest.SeedUser(t, f.db, identitytest.User{Username: "clerk", Password: "secret-pass"})
	identitytest.Assign(t, f.db, account, role)
	identitytest.SeedClient(t, f.db, "Importer", "import-key", identity.StatusActive)

	router := auth.NewHandler(f.service).Routes()

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"user login", "/login/user", `{"username":"clerk","password":"secret-pass"}`, http.StatusOK, ""},
		{"bad password", "/login/user", `{"username":"clerk","password":"nope"}`, http.StatusUnauthorized, "AuthenticationFailed"},
		{"missing fields", "/login/user", `{"username":""}`, http.StatusBadRequest, "ValidationError"},
		{"malformed json", "/login/user", `{`, http.StatusBadRequest, "InvalidInput"},
		{"client login", "/login/client", `{"clientKey":"import-key"}`, http.StatusOK, ""},
		{"unknown client", "/login/client", `{"clientKey":"other"}`, http.StatusUnauthorized, "AuthenticationFailed"},
		{"external login", "/login/external", `{}`, http.StatusServiceUnavailable, "ServiceUnavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			recorder := httptest.NewRecorder()

			router.ServeHTTP(recorder, request)
			require.Equal(t, tt.wantStatus, recorder.Code, recorder.Body.String())

			if tt.wantCode == "" {
				var result auth.LoginResult
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
				assert.True(t, result.Success)
				assert.NotEmpty(t, result.AccessToken)
				return
			}

			var envelope respond.ErrorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			require.NotEmpty(t, envelope.Errors)
			assert.Equal(t, tt.wantStatus, envelope.StatusCode)
			assert.Equal(t, tt.wantCode, envelope.Errors[0].ErrorCode)
		})
	}
}

/*
TestHandler_LoginUserPermissions verifies the display form of the permission map.
*/
func TestHandler_LoginUserPermissions(t *testing.T) {
	f := newFixture(t)

	role := identitytest.SeedRole(t, f.db, "Clerk", permission.Map{permission.ResourceOrder: permission.Read | permission.Create})
	account := identitytest.SeedUser(t, f.db, identitytest.User{Username: "clerk", Password: "secret-pass"})
	identitytest.Assign(t, f.db, account, role)

	recorder := httptest.NewRecorder()
	auth.NewHandler(f.service).Routes().ServeHTTP(recorder,
		httptest.NewRequest(http.MethodPost, "/login/user", strings.NewReader(`{"username":"clerk","password":"secret-pass"}`)))
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "", body["refreshToken"])
	assert.Equal(t, map[string]any{"Order": "Read|Create"}, body["permissions"])
}
