// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware provides the cross-cutting HTTP processing chain.

It acts as a series of decorators around the standard http.Handler, injecting
traceability, safety, and security into every request lifecycle.

Standard Stack:

  - Trace: RequestID generation for log correlation.
  - Log: Structured activity logging (slog).
  - Guard: Rate limiting and CORS validation.
  - Safe: Panic recovery to prevent server crashes.
  - Identity: bearer token authentication and per-resource authorization.
*/
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/cors"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/taibuivan/crudkit/internal/platform/apperr"
	"github.com/taibuivan/crudkit/internal/platform/constants"
	"github.com/taibuivan/crudkit/internal/platform/ctxutil"
	"github.com/taibuivan/crudkit/internal/platform/logging"
	"github.com/taibuivan/crudkit/internal/platform/respond"
	"github.com/taibuivan/crudkit/pkg/uuid"
)

// # Request Tracing

// RequestID attaches a correlation ID to every request for log tracing.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Check if the client already provided an ID
			requestID := request.Header.Get(constants.HeaderXRequestID)

			// 2. Generate a time-sortable one if missing
			if requestID == "" {
				requestID = uuid.New()
			}

			// 3. Inject into context and response headers
			ctx := ctxutil.WithRequestID(request.Context(), requestID)
			writer.Header().Set(constants.HeaderXRequestID, requestID)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Activity Logging

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// StructuredLogger logs every request status and latency.
// It also injects a request-specific logger into the context.
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			startTime := time.Now()
			rid := ctxutil.GetRequestID(request.Context())

			// 1. Create a sub-logger for this specific request
			requestLogger := logger.With(
				slog.String("request_id", rid),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", RealIP(request)),
			)

			// 2. Inject this logger into the context for downstream use
			ctx := ctxutil.WithLogger(request.Context(), requestLogger)
			wrappedWriter := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			// 3. Proceed to downstream handlers with the enriched context
			next.ServeHTTP(wrappedWriter, request.WithContext(ctx))

			// 4. Final log entry after the request is finished
			logLevel := slog.LevelInfo
			if wrappedWriter.status >= 500 {
				logLevel = slog.LevelError
			} else if wrappedWriter.status >= 400 {
				logLevel = slog.LevelWarn
			}

			attrs := []any{
				slog.Int("status", wrappedWriter.status),
				slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
				slog.String("user_agent", request.UserAgent()),
			}

			// Authenticate runs ahead of this middleware
			if identity := ctxutil.GetIdentity(ctx); identity != nil {
				attrs = append(attrs, slog.Int64("account_id", identity.AccountID))
			}

			requestLogger.Log(ctx, logLevel, "http_request_finished", attrs...)
		})
	}
}

// # Rate Limiting

// RateLimitConfig sizes the per-client token buckets.
type RateLimitConfig struct {
	RPS        float64
	Burst      int
	MaxClients int
	TTL        time.Duration
}

// DefaultRateLimitConfig returns the platform defaults.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RPS:        constants.DefaultRateLimitRPS,
		Burst:      constants.DefaultRateLimitBurst,
		MaxClients: constants.RateLimitMaxClients,
		TTL:        constants.RateLimitClientTTL,
	}
}

// RateLimit limits requests per IP using the token bucket algorithm.
//
// Limiters live in a size-bounded LRU whose entries expire after TTL, so idle
// clients are evicted without a cleanup goroutine.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	defaults := DefaultRateLimitConfig()
	if cfg.RPS <= 0 {
		cfg.RPS = defaults.RPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaults.Burst
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = defaults.MaxClients
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}

	clients := expirable.NewLRU[string, *rate.Limiter](cfg.MaxClients, nil, cfg.TTL)
	retryAfter := max(1, int(1/cfg.RPS))

	// Guards the lookup and insert so one client never gets two buckets
	var mu sync.Mutex
	limiterFor := func(clientIP string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		limiter, found := clients.Get(clientIP)
		if !found {
			limiter = rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
		}

		// Re-adding refreshes the entry's expiry
		clients.Add(clientIP, limiter)
		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// Identify the client by their IP address
			clientIP := RealIP(request)

			if !limiterFor(clientIP).Allow() {
				writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(retryAfter))
				respond.Error(writer, request, apperr.RateLimited(retryAfter))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Reliability & Safety

// PanicRecovery recovers from panics, logs the stack trace at FATAL and returns
// a generic 500 envelope.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}

			stackTrace := make([]byte, 4096)
			length := runtime.Stack(stackTrace, false)

			ctx := request.Context()
			err := fmt.Errorf("panic: %v", recovered)

			logging.Fatal(ctx, ctxutil.GetLogger(ctx), "panic_recovered", err,
				slog.String("path", request.URL.Path),
				slog.String("query", request.URL.RawQuery),
				slog.String("stack", string(stackTrace[:length])),
			)

			respond.JSON(writer, http.StatusInternalServerError, respond.Envelope(apperr.Internal(err)))
		}()

		next.ServeHTTP(writer, request)
	})
}

// writeTracker records whether the handler produced any response.
type writeTracker struct {
	http.ResponseWriter
	written bool
}

func (tracker *writeTracker) WriteHeader(code int) {
	tracker.written = true
	tracker.ResponseWriter.WriteHeader(code)
}

func (tracker *writeTracker) Write(body []byte) (int, error) {
	tracker.written = true
	return tracker.ResponseWriter.Write(body)
}

// RequestTimeout bounds the request context. When the deadline passes and the
// handler returns without writing, the client gets the 408 Timeout envelope.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx, cancel := context.WithTimeout(request.Context(), timeout)
			defer cancel()

			tracker := &writeTracker{ResponseWriter: writer}
			next.ServeHTTP(tracker, request.WithContext(ctx))

			if !tracker.written && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				respond.Error(writer, request.WithContext(ctx), ctx.Err())
			}
		})
	}
}

// # Cross-Origin Resource Sharing

// CORS applies the cross-origin policy. An empty origin list allows any origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Content-Type", constants.HeaderAuthorization, constants.HeaderXRequestID},
		ExposedHeaders:   []string{constants.HeaderXRequestID, constants.HeaderRetryAfter},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// # Middleware Helpers

// RealIP extracts client IP, respecting common proxy headers.
func RealIP(request *http.Request) string {

	// Check standard proxy headers first
	if ip := request.Header.Get(constants.HeaderXRealIP); ip != "" {
		return ip
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	// Fallback to the direct connection's address
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
