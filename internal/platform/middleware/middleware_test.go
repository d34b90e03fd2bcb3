// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/crudkit/internal/platform/apperr"
	"github.com/taibuivan/crudkit/internal/platform/ctxutil"
	"github.com/taibuivan/crudkit/internal/platform/middleware"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/internal/platform/respond"
	"github.com/taibuivan/crudkit/internal/platform/sec"
)

// stubValidator accepts exactly one token.
type stubValidator struct {
	token    string
	identity *sec.Identity
}

func (s stubValidator) ValidateToken(token string) (*sec.Identity, bool) {
	if token != s.token {
		return nil, false
	}
	return s.identity, true
}

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Errors)
	return envelope.Errors[0].ErrorCode
}

/*
TestAuthenticate verifies invalid headers fall through as anonymous.
*/
func TestAuthenticate(t *testing.T) {
	identity := &sec.Identity{AccountID: 7, HasPermissionClaim: true, Permissions: permission.Map{}}
	validator := stubValidator{token: "good", identity: identity}

	tests := []struct {
		name      string
		header    string
		wantFound bool
	}{
		{"no_header", "", false},
		{"valid_bearer", "Bearer good", true},
		{"lowercase_scheme", "bearer good", true},
		{"wrong_scheme", "Basic good", false},
		{"missing_token", "Bearer ", false},
		{"invalid_token", "Bearer forged", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *sec.Identity
			handler := middleware.Authenticate(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = ctxutil.GetIdentity(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusOK, recorder.Code)
			if tt.wantFound {
				require.NotNil(t, seen)
				assert.Equal(t, int64(7), seen.AccountID)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

/*
TestRequirePermission verifies the 401/403/allow mapping end to end.
*/
func TestRequirePermission(t *testing.T) {
	editor := &sec.Identity{
		AccountID:          3,
		HasPermissionClaim: true,
		Permissions:        permission.Map{permission.ResourceProduct: permission.Read | permission.Update},
	}
	validator := stubValidator{token: "editor", identity: editor}

	chain := func(required permission.Type) http.Handler {
		guarded := middleware.RequirePermission(permission.ResourceProduct, required)(http.HandlerFunc(okHandler))
		return middleware.Authenticate(validator)(guarded)
	}

	t.Run("anonymous_is_unauthorized", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		chain(permission.Read).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, apperr.CodeUnauthorizedAccess, errorCode(t, recorder))
	})

	t.Run("missing_bit_is_forbidden", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodDelete, "/", nil)
		request.Header.Set("Authorization", "Bearer editor")

		recorder := httptest.NewRecorder()
		chain(permission.Delete).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Equal(t, apperr.CodeForbidden, errorCode(t, recorder))
	})

	t.Run("granted_bits_pass", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPut, "/", nil)
		request.Header.Set("Authorization", "Bearer editor")

		recorder := httptest.NewRecorder()
		chain(permission.Read | permission.Update).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

/*
TestRequireAuth verifies anonymous requests are rejected.
*/
func TestRequireAuth(t *testing.T) {
	recorder := httptest.NewRecorder()
	middleware.RequireAuth(http.HandlerFunc(okHandler)).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestRateLimit verifies the burst is enforced per client IP.
*/
func TestRateLimit(t *testing.T) {
	limiter := middleware.RateLimit(middleware.RateLimitConfig{RPS: 0.001, Burst: 2})
	handler := limiter(http.HandlerFunc(okHandler))

	send := func(ip string) int {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("X-Real-IP", ip)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"), "limits are per client")
}

/*
TestRateLimit_ConcurrentFirstRequests verifies that a burst of simultaneous
first requests from one IP shares a single bucket.
*/
func TestRateLimit_ConcurrentFirstRequests(t *testing.T) {
	const burst = 5

	limiter := middleware.RateLimit(middleware.RateLimitConfig{RPS: 0.001, Burst: burst})
	handler := limiter(http.HandlerFunc(okHandler))

	var allowed atomic.Int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set("X-Real-IP", "10.0.0.9")
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			if recorder.Code == http.StatusOK {
				allowed.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int64(burst), allowed.Load())
}

/*
TestPanicRecovery verifies a panic becomes a generic 500 envelope.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write in handler")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users?page=1", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, apperr.CodeUnexpected, errorCode(t, recorder))
	assert.NotContains(t, recorder.Body.String(), "nil map")
}

/*
TestRequestID verifies the header is echoed or generated.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxutil.GetRequestID(r.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "abc-123")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", recorder.Header().Get("X-Request-ID"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "abc-123", seen)
}

/*
TestRequestTimeout verifies a handler cut off by the deadline yields the 408
envelope, whether it writes nothing or reports the context error itself.
*/
func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"silent handler", func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}},
		{"handler reports context error", func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
			respond.Error(w, r, r.Context().Err())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.RequestTimeout(10 * time.Millisecond)(tt.handler)

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

			assert.Equal(t, http.StatusRequestTimeout, recorder.Code)
			assert.Equal(t, apperr.CodeTimeout, errorCode(t, recorder))
		})
	}

	t.Run("fast handler untouched", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		middleware.RequestTimeout(time.Second)(http.HandlerFunc(okHandler)).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Empty(t, recorder.Body.String())
	})
}
