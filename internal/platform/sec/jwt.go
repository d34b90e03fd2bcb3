// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, JWT signing) from
// the domain logic. The [TokenService] resolves its signing material once at
// construction and is safe for concurrent use afterwards.
package sec

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"

	"github.com/taibuivan/crudkit/internal/platform/apperr"
	"github.com/taibuivan/crudkit/internal/platform/permission"
	"github.com/taibuivan/crudkit/pkg/convert"
	"github.com/taibuivan/crudkit/pkg/uuid"
)

// TokenService issues and validates access tokens carrying an [Identity].
type TokenService struct {
	material   SigningMaterial
	issuers    []string
	audiences  []string
	expiration time.Duration
	now        func() time.Time
}

// Option customizes a [TokenService].
type Option func(*TokenService)

// WithClock replaces the wall clock. Used by tests to pin expiry boundaries.
func WithClock(now func() time.Time) Option {
	return func(service *TokenService) { service.now = now }
}

/*
NewTokenService resolves the signing material and validates the token settings.

Every failure is an [apperr.Configuration] error wrapping [ErrSigningMaterial]:
no usable key or secret, or no issuer or audience configured.
*/
func NewTokenService(cfg SigningConfig, opts ...Option) (*TokenService, error) {
	material, err := ResolveSigningMaterial(cfg)
	if err != nil {
		return nil, apperr.Configuration(err)
	}

	if len(cfg.Issuers) == 0 || len(cfg.Audiences) == 0 {
		return nil, apperr.Configuration(fmt.Errorf("%w: at least one issuer and one audience are required", ErrSigningMaterial))
	}

	expiration := cfg.Expiration
	if expiration <= 0 {
		expiration = DefaultExpiration
	}

	service := &TokenService{
		material:   material,
		issuers:    cfg.Issuers,
		audiences:  cfg.Audiences,
		expiration: expiration,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Algorithm returns the resolved JOSE algorithm.
func (service *TokenService) Algorithm() string { return service.material.Algorithm() }

// # Issuance

/*
GenerateToken signs an access token for identity.

The whole permission map travels as one JSON string claim. Claim names use the
user namespace for users and external users and the client namespace for clients.
iat and exp carry milliseconds so the token lives exactly the configured
lifetime from the instant it was issued.
*/
func (service *TokenService) GenerateToken(identity Identity) (string, error) {
	currentTime := service.now().Truncate(time.Millisecond)

	permissionClaim, err := identity.Permissions.MarshalClaim()
	if err != nil {
		return "", fmt.Errorf("sec: failed to encode permissions: %w", err)
	}

	claims := jwt.MapClaims{
		"jti": uuid.NewRandom(),
		"iss": service.issuers[0],
		"aud": service.audiences[0],
		"iat": numericMillis(currentTime),
		"exp": numericMillis(currentTime.Add(service.expiration)),
	}

	accountID := strconv.FormatInt(identity.AccountID, 10)

	if identity.IsClient() {
		claims[ClientClaimAccountType] = identity.AccountType.String()
		claims[ClientClaimClientType] = identity.ClientType.String()
		claims[ClientClaimClientID] = accountID
		claims[ClientClaimName] = identity.ClientName
		claims[ClientClaimPermissions] = permissionClaim
	} else {
		claims[UserClaimAccountType] = identity.AccountType.String()
		claims[UserClaimUserID] = accountID
		claims[UserClaimUsername] = identity.Username
		claims[UserClaimEmail] = identity.Email
		claims[UserClaimPermissions] = permissionClaim
	}

	token := jwt.NewWithClaims(service.material.Method, claims)
	signedToken, err := token.SignedString(service.material.SignKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// # Validation

/*
ValidateToken verifies a token and extracts its identity.

Checks signature and algorithm, issuer and audience membership, and expiry with
zero leeway: a token is rejected at the exact expiry instant. Every failure
yields (nil, false); callers treat that as an anonymous request.
*/
func (service *TokenService) ValidateToken(tokenString string) (*Identity, bool) {
	// the library compares whole seconds; expiry is checked below in milliseconds
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{service.material.Algorithm()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return service.material.VerifyKey, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	expiresAt, ok := expiryOf(claims)
	if !ok || !service.now().Before(expiresAt) {
		return nil, false
	}

	if !service.acceptsIssuer(claims) || !service.acceptsAudience(claims) {
		return nil, false
	}

	return decodeIdentity(claims), true
}

func (service *TokenService) acceptsIssuer(claims jwt.MapClaims) bool {
	issuer, err := claims.GetIssuer()
	return err == nil && slices.Contains(service.issuers, issuer)
}

func (service *TokenService) acceptsAudience(claims jwt.MapClaims) bool {
	audiences, err := claims.GetAudience()
	if err != nil {
		return false
	}
	for _, audience := range audiences {
		if slices.Contains(service.audiences, audience) {
			return true
		}
	}
	return false
}

/*
decodeIdentity maps the namespaced claims onto an [Identity].

It never fails a signed token: an unparseable id becomes 0, an unknown account
type becomes User, and a permission claim that is not a JSON string map
becomes an empty map while still counting as present.
*/
func decodeIdentity(claims jwt.MapClaims) *Identity {
	var raw rawClaims

	// every target field is `any`, so decoding cannot fail on claim shape
	_ = mapstructure.Decode(map[string]any(claims), &raw)

	identity := &Identity{
		TokenID:     claimString(raw.TokenID),
		AccountType: AccountTypeUser,
		Permissions: permission.Map{},
	}

	var permissionClaim any

	if raw.ClientAccountType != nil || raw.ClientID != nil {
		identity.AccountType = parseAccountTypeOr(claimString(raw.ClientAccountType), AccountTypeUser)
		identity.AccountID = convert.ToInt64(claimString(raw.ClientID))
		identity.ClientName = claimString(raw.ClientName)
		if clientType, ok := ParseClientType(claimString(raw.ClientType)); ok {
			identity.ClientType = clientType
		}
		permissionClaim = raw.ClientPermissions
	} else {
		identity.AccountType = parseAccountTypeOr(claimString(raw.UserAccountType), AccountTypeUser)
		identity.AccountID = convert.ToInt64(claimString(raw.UserID))
		identity.Username = claimString(raw.Username)
		identity.Email = claimString(raw.Email)
		permissionClaim = raw.UserPermissions
	}

	if permissionClaim != nil {
		identity.HasPermissionClaim = true
		if text, ok := permissionClaim.(string); ok {
			if perms, err := permission.ParseClaim(text); err == nil {
				identity.Permissions = perms
			}
		}
	}

	return identity
}

// claimString renders scalar claim values as text. Objects, arrays and
// absent claims yield "".
func claimString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case json.Number:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	default:
		return ""
	}
}

// numericMillis renders t as a NumericDate with millisecond precision.
func numericMillis(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000
}

// expiryOf reads exp as seconds since the epoch, keeping milliseconds.
func expiryOf(claims jwt.MapClaims) (time.Time, bool) {
	var seconds float64
	switch value := claims["exp"].(type) {
	case float64:
		seconds = value
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return time.Time{}, false
		}
		seconds = parsed
	default:
		return time.Time{}, false
	}
	return time.UnixMilli(int64(math.Round(seconds * 1000))), true
}

func parseAccountTypeOr(name string, fallback AccountType) AccountType {
	if parsed, ok := ParseAccountType(name); ok {
		return parsed
	}
	return fallback
}

