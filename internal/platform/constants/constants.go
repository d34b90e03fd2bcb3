// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and client registry sizing.
  - Security: token defaults and administrator seeding.
  - Cache: Redis key prefixes.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "crudkit-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// StartupTimeout bounds database and cache connection during boot.
	StartupTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitMaxClients caps the number of tracked client IPs.
	RateLimitMaxClients = 10_000

	// RateLimitClientTTL is how long a client must be idle before its entry is evicted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the default 'iss' claim in JWTs.
	AuthIssuer = "crudkit"

	// AuthAudience is the default 'aud' claim in JWTs.
	AuthAudience = "crudkit-api"

	// BearerScheme is the Authorization header scheme for access tokens.
	BearerScheme = "Bearer"

	// DefaultBcryptCost is the bcrypt work factor for password hashes.
	DefaultBcryptCost = 12

	// AdminUsername is the account created by the seed command.
	AdminUsername = "admin"

	// AdminRoleName is the role created by the seed command.
	AdminRoleName = "Administrator"
)

// # JSON Field Identifiers

const (
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixPermissions keys the aggregated permission map per account.
	RedisPrefixPermissions = "auth:permissions:"

	// DefaultPermissionCacheTTL is how long a cached permission map stays valid.
	DefaultPermissionCacheTTL = 5 * time.Minute
)

// # HTTP Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderRetryAfter    = "Retry-After"
)
