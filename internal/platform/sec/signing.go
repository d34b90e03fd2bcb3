// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSigningMaterial is returned when no usable signing key is configured.
var ErrSigningMaterial = errors.New("sec: no signing material configured")

// DefaultExpiration is the access token lifetime when none is configured.
const DefaultExpiration = time.Hour

// # Configuration

// SigningConfig is the token configuration projected from the application config.
type SigningConfig struct {
	PrivateKeyPath string
	PublicKeyPath  string
	Secret         string
	Issuers        []string
	Audiences      []string
	Expiration     time.Duration
}

// SigningMaterial is the resolved key pair and algorithm. It is immutable once resolved.
type SigningMaterial struct {
	Method    jwt.SigningMethod
	SignKey   any
	VerifyKey any
}

// Algorithm returns the JOSE algorithm name (RS256 or HS256).
func (m SigningMaterial) Algorithm() string {
	return m.Method.Alg()
}

/*
ResolveSigningMaterial picks the signing key and algorithm.

# Resolution Order
 1. Both key paths configured and both files exist: RS256 with the RSA pair.
 2. A shared secret is configured: HS256 with the secret.
 3. Otherwise [ErrSigningMaterial].

A key file that exists but cannot be parsed is an error, not a fallback.
*/
func ResolveSigningMaterial(cfg SigningConfig) (SigningMaterial, error) {

	// ── 1. Asymmetric ─────────────────────────────────────────────────────
	if fileExists(cfg.PrivateKeyPath) && fileExists(cfg.PublicKeyPath) {
		privateKeyData, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return SigningMaterial{}, fmt.Errorf("sec: failed to read private key from %s: %w", cfg.PrivateKeyPath, err)
		}

		privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
		if err != nil {
			return SigningMaterial{}, fmt.Errorf("sec: failed to parse private key: %w", err)
		}

		publicKeyData, err := os.ReadFile(cfg.PublicKeyPath)
		if err != nil {
			return SigningMaterial{}, fmt.Errorf("sec: failed to read public key from %s: %w", cfg.PublicKeyPath, err)
		}

		publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
		if err != nil {
			return SigningMaterial{}, fmt.Errorf("sec: failed to parse public key: %w", err)
		}

		return SigningMaterial{Method: jwt.SigningMethodRS256, SignKey: privateKey, VerifyKey: publicKey}, nil
	}

	// ── 2. Symmetric ──────────────────────────────────────────────────────
	if strings.TrimSpace(cfg.Secret) != "" {
		secret := []byte(cfg.Secret)
		return SigningMaterial{Method: jwt.SigningMethodHS256, SignKey: secret, VerifyKey: secret}, nil
	}

	// ── 3. Nothing usable ─────────────────────────────────────────────────
	return SigningMaterial{}, ErrSigningMaterial
}

func fileExists(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
